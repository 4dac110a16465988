package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/ligustah/mdfetch/internal/catalog"
	"github.com/ligustah/mdfetch/internal/config"
	"github.com/ligustah/mdfetch/internal/downloader"
	"github.com/ligustah/mdfetch/internal/repository"
)

// patternList collects a repeatable -pattern flag.
type patternList []string

func (p *patternList) String() string {
	return strings.Join(*p, ",")
}

func (p *patternList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// commonFlags are shared by every command.
type commonFlags struct {
	config     *string
	repository *string
	timeout    *time.Duration
	debug      *bool
	patterns   patternList
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	f := &commonFlags{
		config:     fs.String("config", "", "YAML configuration file (default $MDFETCH_CONFIG)"),
		repository: fs.String("repository", "", "Repository URL (default "+config.DefaultRepository+")"),
		timeout:    fs.Duration("timeout", 0, "Connection timeout (default 30s)"),
		debug:      fs.Bool("debug", false, "Print the FTP control dialogue to stderr"),
	}
	fs.Var(&f.patterns, "pattern", "Glob pattern to select files; repeatable")
	return f
}

// load builds the configuration from defaults, the config file, .env, the
// environment and finally the flags in override.
func (f *commonFlags) load(override config.Config) (config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	path := *f.config
	if path == "" {
		path = os.Getenv("MDFETCH_CONFIG")
	}
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return config.Config{}, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	override.Repository = *f.repository
	override.Timeout = *f.timeout
	override.Patterns = f.patterns
	cfg = cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// dialer returns a downloader.DialFunc for cfg.
func (f *commonFlags) dialer(cfg config.Config) downloader.DialFunc {
	opts := repository.DefaultOptions()
	opts.Username = cfg.Username
	opts.Password = cfg.Password
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	if *f.debug {
		opts.Debug = os.Stderr
	}

	return func(ctx context.Context) (repository.Repository, error) {
		return repository.Dial(ctx, cfg.Repository, opts)
	}
}

// parseFlags parses args and reports the exit code to use when parsing
// should stop the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess, false
		}
		return ExitInvalidArgs, false
	}
	return 0, true
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			// A second interrupt terminates immediately.
			signal.Stop(sigCh)
			fmt.Fprintln(os.Stderr, "\n[mdfetch] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
)

func printError(w io.Writer, err error) {
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var csErr *downloader.ChecksumError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitGeneralError
	case errors.As(err, &csErr):
		return ExitChecksumMismatch
	case errors.Is(err, downloader.ErrStorage):
		return ExitStorageError
	case errors.Is(err, downloader.ErrRepository):
		return ExitRepositoryError
	case errors.Is(err, downloader.ErrCatalog):
		return ExitCatalogError
	case errors.Is(err, downloader.ErrArchive):
		return ExitArchiveError
	default:
		return ExitGeneralError
	}
}

// redact hides any password in a repository URL.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Redacted()
}

// fetchCatalog dials the configured repository and reads its catalogue.
func (f *commonFlags) fetchCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, error) {
	repo, err := f.dialer(cfg)(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", downloader.ErrRepository, err)
	}
	defer repo.Close()

	return downloader.LoadCatalog(ctx, repo)
}
