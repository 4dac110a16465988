package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/mdfetch/internal/config"
	"github.com/ligustah/mdfetch/internal/downloader"
	"github.com/ligustah/mdfetch/internal/progress"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)

	common := addCommonFlags(fs)
	output := fs.String("output", "", "Output directory or bucket URL (default "+config.DefaultOutput+")")
	quiet := fs.Bool("quiet", false, "Do not display progress")
	noVerify := fs.Bool("no-verify", false, "Skip SHA-256 verification against the catalogue")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mdfetch fetch [options]

Download every catalogue file matching the patterns into the output
directory, one file at a time. Without -pattern the default datasets
are fetched.

Options:`)
		fs.PrintDefaults()
	}

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := common.load(config.Config{
		Output:     *output,
		Quiet:      *quiet,
		NoChecksum: *noVerify,
	})
	if err != nil {
		printError(os.Stderr, err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := downloader.Run(ctx, cfg.Output, common.dialer(cfg), downloader.Options{
		Patterns:    cfg.Patterns,
		Description: cfg.Description,
		Source:      redact(cfg.Repository),
		Output:      os.Stderr,
		Quiet:       cfg.Quiet,
		NoChecksum:  cfg.NoChecksum,
	})
	if err != nil {
		printError(os.Stderr, err)
		return exitCode(err)
	}

	successColor.Fprintf(os.Stderr, "[mdfetch] Fetched %d files (%s) into %s\n",
		len(res.Fetched),
		progress.FormatBytes(res.Bytes),
		cfg.Output,
	)
	return ExitSuccess
}
