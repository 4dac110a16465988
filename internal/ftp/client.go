package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

// DefaultPort is used when the repository URL names no port.
const DefaultPort = "21"

// ErrNotFTP is returned when the repository URL is not an ftp:// URL.
var ErrNotFTP = errors.New("ftp: not an ftp url")

// Options configures the FTP client.
type Options struct {
	// Username and Password are used unless the URL carries userinfo.
	// Default: anonymous
	Username string
	Password string

	// Timeout bounds connection setup.
	// Default: 30s
	Timeout time.Duration

	// DebugOutput receives the raw control-connection dialogue when set.
	DebugOutput io.Writer
}

// DefaultOptions returns options for anonymous access.
func DefaultOptions() Options {
	return Options{
		Username: "anonymous",
		Password: "anonymous",
		Timeout:  30 * time.Second,
	}
}

// Client is a logged-in connection to a repository root.
type Client struct {
	conn *ftp.ServerConn
	root string
}

// Dial connects and logs in to the repository at rawURL.
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse repository url: %w", err)
	}
	if u.Scheme != "ftp" {
		return nil, fmt.Errorf("%w: %s", ErrNotFTP, rawURL)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), DefaultPort)
	}

	user, pass := opts.Username, opts.Password
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	if user == "" {
		user, pass = "anonymous", "anonymous"
	}

	dialOpts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(opts.Timeout))
	}
	if opts.DebugOutput != nil {
		dialOpts = append(dialOpts, ftp.DialWithDebugOutput(opts.DebugOutput))
	}

	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if err := conn.Login(user, pass); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("login to %s as %s: %w", addr, user, err)
	}

	root := u.Path
	if root == "" {
		root = "/"
	}

	return &Client{conn: conn, root: root}, nil
}

// Open starts retrieving name from the repository root. Cancelling ctx
// aborts the transfer; the response must still be closed.
func (c *Client) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := path.Join(c.root, name)
	resp, err := c.conn.Retr(p)
	if err != nil {
		return nil, fmt.Errorf("retr %s: %w", p, err)
	}

	stop := context.AfterFunc(ctx, func() {
		resp.SetDeadline(time.Now())
	})
	return &response{Response: resp, ctx: ctx, stop: stop}, nil
}

// response is a data transfer bound to the context that started it.
type response struct {
	*ftp.Response
	ctx  context.Context
	stop func() bool
}

func (r *response) Read(p []byte) (int, error) {
	n, err := r.Response.Read(p)
	if err != nil && err != io.EOF && r.ctx.Err() != nil {
		err = r.ctx.Err()
	}
	return n, err
}

// Close ends the transfer. An aborted transfer is reported here, as the
// data stream itself ends with a clean EOF.
func (r *response) Close() error {
	r.stop()
	return r.Response.Close()
}

// Root returns the repository root directory on the server.
func (c *Client) Root() string {
	return c.root
}

// Close logs out and closes the control connection.
func (c *Client) Close() error {
	return c.conn.Quit()
}
