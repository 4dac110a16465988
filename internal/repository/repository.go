// Package repository opens a dataset repository by its address.
//
// Supported schemes are ftp, http and https:
//
//	repo, err := repository.Dial(ctx, "ftp://ftp.imp.fu-berlin.de/pub/cmb-data/", repository.DefaultOptions())
//	defer repo.Close()
//	rc, err := repo.Open(ctx, catalog.FileName)
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/ligustah/mdfetch/internal/ftp"
	mdhttp "github.com/ligustah/mdfetch/internal/http"
)

// ErrUnsupportedScheme is returned for addresses that are not ftp or http(s).
var ErrUnsupportedScheme = errors.New("repository: unsupported scheme")

// Repository serves files relative to its root.
type Repository interface {
	// Open returns the content of name. The caller must close it before
	// opening the next file.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	Close() error
}

// Options configures the repository connection.
type Options struct {
	Username string
	Password string

	// Timeout bounds connection setup. For HTTP it also bounds the wait
	// for response headers; transfers are bounded only by the context.
	Timeout time.Duration

	// Debug receives the FTP control dialogue when set.
	Debug io.Writer
}

// DefaultOptions returns options for anonymous access.
func DefaultOptions() Options {
	return Options{Timeout: 30 * time.Second}
}

// Dial connects to the repository at address.
func Dial(ctx context.Context, address string, opts Options) (Repository, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("parse repository address: %w", err)
	}

	switch u.Scheme {
	case "ftp":
		fo := ftp.DefaultOptions()
		if opts.Username != "" {
			fo.Username, fo.Password = opts.Username, opts.Password
		}
		if opts.Timeout > 0 {
			fo.Timeout = opts.Timeout
		}
		fo.DebugOutput = opts.Debug
		c, err := ftp.Dial(ctx, address, fo)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "http", "https":
		ho := mdhttp.DefaultOptions()
		ho.Username, ho.Password = opts.Username, opts.Password
		ho.ConnectTimeout = opts.Timeout
		c, err := mdhttp.NewClient(address, ho)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
