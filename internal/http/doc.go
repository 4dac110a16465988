// Package http serves a dataset repository mirrored over HTTP.
//
// The mirror must have the same layout as the FTP repository: the catalogue
// document and every data file sit directly under the base URL.
//
// # Usage
//
//	client, err := http.NewClient("https://example.org/cmb-data/", http.DefaultOptions())
//	rc, err := client.Open(ctx, "alanine-dipeptide-nowater.pdb")
//	defer rc.Close()
//
// Each Open is a single GET. Requests are not retried.
package http
