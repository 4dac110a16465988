// Package progress reports fetch progress on a terminal.
//
// Progress is counted in bytes against a total fixed up front. Callers
// advance it one file at a time with the size the catalogue recorded for
// that file, so the display is only as accurate as the catalogue.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Description: "Fetching data",
//	    TotalSize:   plan.Total(),
//	    TotalFiles:  len(plan.Files()),
//	    Output:      os.Stderr,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	reporter.FileStarted(name)
//	reporter.FileCompleted(size)
//
// # Output Format
//
//	[mdfetch] Source: ftp://ftp.imp.fu-berlin.de/pub/cmb-data/
//	[mdfetch] Total size: 2.5 GiB | Files: 14
//	[mdfetch] Fetching data: 45.2% | 1.1 GiB / 2.5 GiB | Speed: 12.0 MiB/s | ETA: 1m 52s
//	[mdfetch] Files: 6/14 | Current: alanine-dipeptide-0-250ns-nowater.xtc
package progress
