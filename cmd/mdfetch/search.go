package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/mdfetch/internal/catalog"
	"github.com/ligustah/mdfetch/internal/config"
	"github.com/ligustah/mdfetch/internal/progress"
)

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)

	common := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mdfetch search [options] [pattern...]

Show the files each pattern matches and the total download size.
Patterns are resolved exactly as fetch resolves them, so a file
matched twice is counted twice.

Options:`)
		fs.PrintDefaults()
	}

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	common.patterns = append(common.patterns, fs.Args()...)

	cfg, err := common.load(config.Config{})
	if err != nil {
		printError(os.Stderr, err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	cat, err := common.fetchCatalog(ctx, cfg)
	if err != nil {
		printError(os.Stderr, err)
		return exitCode(err)
	}

	plan, err := catalog.Resolve(cat, cfg.Patterns)
	if err != nil {
		printError(os.Stderr, err)
		return ExitInvalidArgs
	}

	for _, set := range plan.Sets {
		fmt.Printf("%s (%d matches)\n", set.Pattern, len(set.Files))
		for _, e := range set.Files {
			fmt.Printf("  %s\t%s\n", e.Name, progress.FormatBytes(e.Size))
		}
	}

	fmt.Printf("Total: %d files, %s\n", len(plan.Files()), progress.FormatBytes(plan.Total()))
	return ExitSuccess
}
