package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Common errors.
var (
	ErrNotFound     = errors.New("http: resource not found")
	ErrForbidden    = errors.New("http: access forbidden")
	ErrUnauthorized = errors.New("http: unauthorized")
	ErrServerError  = errors.New("http: server error")
)

// Options configures the HTTP client.
type Options struct {
	// Timeout for individual requests, including reading the body.
	// Default: 0 (no timeout; datasets can be large)
	Timeout time.Duration

	// ConnectTimeout bounds connection setup and the wait for response
	// headers, leaving the body unbounded.
	// Default: 0 (no timeout)
	ConnectTimeout time.Duration

	// Username and Password are sent as basic auth when Username is set.
	// Userinfo in the base URL is used otherwise.
	Username string
	Password string

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent: "mdfetch",
	}
}

// Client fetches repository files relative to a base URL.
type Client struct {
	client *http.Client
	base   *url.URL
	opts   Options
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("http: unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ConnectTimeout > 0 {
		transport.DialContext = (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext
		transport.TLSHandshakeTimeout = opts.ConnectTimeout
		transport.ResponseHeaderTimeout = opts.ConnectTimeout
	}

	return &Client{
		client: &http.Client{Timeout: opts.Timeout, Transport: transport},
		base:   u,
		opts:   opts,
	}, nil
}

// Open fetches name relative to the base URL.
func (c *Client) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	ref := &url.URL{Path: strings.TrimPrefix(name, "/")}
	return c.Get(ctx, c.base.ResolveReference(ref).String())
}

// Get performs a simple GET request.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	if c.opts.Username != "" {
		req.SetBasicAuth(c.opts.Username, c.opts.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	if err := checkStatusCode(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	return resp.Body, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}
