// Package downloader fetches the files matching a list of patterns from a
// dataset repository into an output destination.
//
// # Usage
//
// The main entry point is the Run function:
//
//	res, err := downloader.Run(ctx, "notebooks/data", dial, downloader.Options{
//	    Patterns: []string{"pentapeptide*", "alanine*"},
//	})
//
// Run performs these steps in order and stops at the first error:
//   - create the output destination
//   - dial the repository and read its catalogue
//   - resolve each pattern against the catalogue
//   - fetch every resolved file, one at a time, advancing progress by the
//     catalogue size of each file once it has been written
//
// The destination is opened before the repository is dialled, so an
// unwritable output directory fails without any network traffic.
//
// # Containers
//
// Catalogue entries that are containers are gzip-compressed tar archives.
// Their regular files are written to the destination under their base
// names. The archive itself is not stored.
//
// # Checksums
//
// When a catalogue entry carries a SHA-256 checksum it is verified while
// streaming. A plain file that fails verification is not written. Files
// already extracted from a failing container are left in place.
package downloader
