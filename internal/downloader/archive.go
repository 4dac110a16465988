package downloader

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/klauspost/compress/gzip"
	"gocloud.dev/blob"

	"github.com/ligustah/mdfetch/internal/store"
)

// extract writes the regular files of a tar.gz stream to bucket, flattened
// to their base names. The gzip stream is always read to its end so the
// trailer CRC is checked, even when the tar end-of-archive marker comes
// first.
func extract(ctx context.Context, bucket *blob.Bucket, r io.Reader) ([]string, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, archiveError(err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	var keys []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return keys, archiveError(err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		key := path.Base(hdr.Name)
		if key == "." || key == "/" || key == ".." {
			continue
		}

		// Errors from the member reader are archive errors; anything else
		// Put returns came from the destination.
		if _, err := store.Put(ctx, bucket, key, &memberReader{r: tr}); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	if _, err := io.Copy(io.Discard, zr); err != nil {
		return keys, archiveError(err)
	}
	return keys, nil
}

// memberReader marks read errors of an archive member as ErrArchive.
type memberReader struct {
	r io.Reader
}

func (m *memberReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	if err != nil && err != io.EOF {
		err = archiveError(err)
	}
	return n, err
}

// archiveError marks a failure to read the archive as ErrArchive unless it
// was caused by the source, by checksum verification or by the context.
func archiveError(err error) error {
	var csErr *ChecksumError
	switch {
	case errors.As(err, &csErr),
		errors.Is(err, ErrArchive),
		errors.Is(err, ErrRepository),
		isContextError(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrArchive, err)
	}
}
