// Package store writes fetched files to their destination.
//
// A destination is either a local directory or a gocloud bucket URL such as
// mem:// or s3://bucket?region=eu-central-1. Local directories are created
// on Open and are written without metadata sidecar files, so the directory
// holds exactly the fetched files.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// ErrCreateDir is returned when a local destination cannot be created.
var ErrCreateDir = errors.New("store: cannot create output directory")

// IsURL reports whether dest names a bucket URL rather than a local path.
func IsURL(dest string) bool {
	return strings.Contains(dest, "://")
}

// Open returns a bucket for dest, creating the directory for local paths.
// Creating an existing directory is not an error.
func Open(ctx context.Context, dest string) (*blob.Bucket, error) {
	if IsURL(dest) {
		b, err := blob.OpenBucket(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", dest, err)
		}
		return b, nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateDir, err)
	}

	b, err := fileblob.OpenBucket(dest, &fileblob.Options{
		NoTempDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("open directory %s: %w", dest, err)
	}
	return b, nil
}

// Put streams r into key and returns the number of bytes written.
// A failed copy aborts the write, leaving any previous object in place.
func Put(ctx context.Context, b *blob.Bucket, key string, r io.Reader) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := b.NewWriter(ctx, key, nil)
	if err != nil {
		return 0, fmt.Errorf("open %s for writing: %w", key, err)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		cancel()
		w.Close()
		return n, fmt.Errorf("write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", key, err)
	}
	return n, nil
}
