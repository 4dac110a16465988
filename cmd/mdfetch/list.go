package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ligustah/mdfetch/internal/catalog"
	"github.com/ligustah/mdfetch/internal/config"
	"github.com/ligustah/mdfetch/internal/progress"
)

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)

	common := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mdfetch list [options]

Show the repository catalogue. With -pattern only matching entries
are listed.

Options:`)
		fs.PrintDefaults()
	}

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	filtered := len(common.patterns) > 0
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

	names := cat.Names()
	if filtered {
		plan, err := catalog.Resolve(cat, cfg.Patterns)
		if err != nil {
			printError(os.Stderr, err)
			return ExitInvalidArgs
		}
		names = names[:0]
		seen := make(map[string]bool)
		for _, e := range plan.Files() {
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Configure(func(c *tablewriter.Config) {
		c.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
		c.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
	})
	table.Header("Name", "Kind", "Files", "Size")

	var total int64
	for _, name := range names {
		e, _ := cat.Lookup(name)
		kind, members := "file", "-"
		if e.IsContainer() {
			kind, members = "container", strconv.Itoa(len(e.Files))
		}
		table.Append([]string{name, kind, members, progress.FormatBytes(e.Size)})
		total += e.Size
	}
	if err := table.Render(); err != nil {
		printError(os.Stderr, err)
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[mdfetch] %d entries | %s\n", len(names), progress.FormatBytes(total))
	return ExitSuccess
}
