package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocloud.dev/blob"

	"github.com/ligustah/mdfetch/internal/catalog"
	"github.com/ligustah/mdfetch/internal/progress"
	"github.com/ligustah/mdfetch/internal/repository"
	"github.com/ligustah/mdfetch/internal/store"
)

// Error classes. Errors returned by Run wrap exactly one of these, or are a
// *ChecksumError, or come from the context.
var (
	ErrStorage    = errors.New("downloader: storage error")
	ErrRepository = errors.New("downloader: repository error")
	ErrCatalog    = errors.New("downloader: catalogue error")
	ErrArchive    = errors.New("downloader: invalid container archive")
)

// Options configures the downloader.
type Options struct {
	// Patterns are resolved in order against the catalogue.
	Patterns []string

	// Description labels the progress display.
	// Default: "Fetching data"
	Description string

	// Source is shown in the progress header.
	Source string

	// Output receives the progress display.
	// Default: os.Stderr
	Output io.Writer

	// Quiet disables the progress display. Progress is still counted.
	Quiet bool

	// NoChecksum disables SHA-256 verification against the catalogue.
	NoChecksum bool
}

// Result summarises a run.
type Result struct {
	// Fetched lists catalogue entries in the order they were fetched.
	Fetched []string

	// Written lists the keys written to the destination.
	Written []string

	// Bytes is the progress advanced, in catalogue bytes.
	Bytes int64

	// Total is the planned total in catalogue bytes.
	Total int64
}

// ChecksumError is returned when fetched content does not match the
// checksum recorded in the catalogue.
//
// Use errors.As to extract this error.
type ChecksumError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// DialFunc connects to the repository.
type DialFunc func(ctx context.Context) (repository.Repository, error)

// Run fetches every file matching opts.Patterns into dest.
func Run(ctx context.Context, dest string, dial DialFunc, opts Options) (*Result, error) {
	bucket, err := store.Open(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer bucket.Close()

	repo, err := dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	defer repo.Close()

	cat, err := LoadCatalog(ctx, repo)
	if err != nil {
		return nil, err
	}

	plan, err := catalog.Resolve(cat, opts.Patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}

	return Download(ctx, repo, bucket, plan, opts)
}

// LoadCatalog reads and parses the repository catalogue.
func LoadCatalog(ctx context.Context, repo repository.Repository) (*catalog.Catalog, error) {
	rc, err := repo.Open(ctx, catalog.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	r := &sourceReader{r: rc}
	cat, err := catalog.Parse(r)
	if err == nil {
		_, err = io.Copy(io.Discard, r)
	}
	if cerr := closeSource(rc, catalog.FileName); err == nil {
		err = cerr
	}
	if err != nil {
		if errors.Is(err, ErrRepository) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	return cat, nil
}

// Download fetches the planned files sequentially into bucket.
func Download(ctx context.Context, repo repository.Repository, bucket *blob.Bucket, plan *catalog.Plan, opts Options) (*Result, error) {
	files := plan.Files()
	res := &Result{Total: plan.Total()}

	reporter := progress.NewReporter(progress.Options{
		Description: opts.Description,
		TotalSize:   res.Total,
		TotalFiles:  len(files),
		Output:      opts.Output,
		Source:      opts.Source,
	})
	if !opts.Quiet {
		reporter.Start()
		defer reporter.Stop()
	}

	for _, e := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		reporter.FileStarted(e.Name)
		keys, err := fetchEntry(ctx, repo, bucket, e, !opts.NoChecksum)
		res.Written = append(res.Written, keys...)
		if err != nil {
			reporter.FileFailed()
			return res, err
		}

		reporter.FileCompleted(e.Size)
		res.Fetched = append(res.Fetched, e.Name)
		res.Bytes = reporter.Completed()
	}

	return res, nil
}

// fetchEntry copies one catalogue entry into bucket and returns the keys written.
func fetchEntry(ctx context.Context, repo repository.Repository, bucket *blob.Bucket, e catalog.Entry, verify bool) ([]string, error) {
	rc, err := repo.Open(ctx, e.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrRepository, e.Name, err)
	}

	keys, err := copyEntry(ctx, bucket, e, rc, verify)
	// Some servers report an aborted transfer only when the response is
	// closed.
	if cerr := closeSource(rc, e.Name); err == nil {
		err = cerr
	}
	return keys, err
}

func copyEntry(ctx context.Context, bucket *blob.Bucket, e catalog.Entry, src io.Reader, verify bool) ([]string, error) {
	var r io.Reader = &sourceReader{r: src}
	if verify && e.Checksum != "" {
		r = newVerifyingReader(r, e.Name, e.Checksum)
	}

	if e.IsContainer() {
		keys, err := extract(ctx, bucket, r)
		if err != nil {
			return keys, classify(err)
		}
		// The archive may carry padding after the gzip stream; drain it so
		// the checksum covers the whole file.
		if _, err := io.Copy(io.Discard, r); err != nil {
			return keys, classify(err)
		}
		return keys, nil
	}

	if _, err := store.Put(ctx, bucket, e.Name, r); err != nil {
		return nil, classify(err)
	}
	return []string{e.Name}, nil
}

func closeSource(rc io.Closer, name string) error {
	if err := rc.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrRepository, name, err)
	}
	return nil
}

// classify leaves source, checksum and archive errors alone and marks
// everything else as a storage error.
func classify(err error) error {
	var csErr *ChecksumError
	switch {
	case errors.As(err, &csErr),
		errors.Is(err, ErrRepository),
		errors.Is(err, ErrArchive),
		isContextError(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// sourceReader tags read errors from the repository.
type sourceReader struct {
	r io.Reader
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && !isContextError(err) {
		err = fmt.Errorf("%w: read: %w", ErrRepository, err)
	}
	return n, err
}
