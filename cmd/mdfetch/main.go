package main

import (
	"fmt"
	"os"
	"strings"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitRepositoryError  = 3
	ExitStorageError     = 4
	ExitChecksumMismatch = 5
	ExitCatalogError     = 6
	ExitArchiveError     = 7
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Without a command, fetch the default datasets.
	if len(args) == 0 || (strings.HasPrefix(args[0], "-") && !isHelp(args[0])) {
		return runFetch(args)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "fetch":
		return runFetch(cmdArgs)
	case "list":
		return runList(cmdArgs)
	case "search":
		return runSearch(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "-help"
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: mdfetch [command] [options]

Commands:
  fetch     Download every file matching the patterns (default command)
  list      Show the repository catalogue
  search    Show which files the given patterns match

Run 'mdfetch <command> -h' for command-specific help.`)
}
