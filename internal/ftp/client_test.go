package ftp

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer speaks just enough FTP for login and passive RETR.
type fakeServer struct {
	ln    net.Listener
	files map[string][]byte

	// aborted files end with 451 after their data is sent.
	aborted map[string]bool
	// stalled files keep the data connection open after their data until
	// the client closes it.
	stalled map[string]bool

	mu       sync.Mutex
	commands []string
	users    []string
}

type serverOption func(*fakeServer)

func abortAfterData(name string) serverOption {
	return func(s *fakeServer) { s.aborted[name] = true }
}

func stallAfterData(name string) serverOption {
	return func(s *fakeServer) { s.stalled[name] = true }
}

func startFakeServer(t *testing.T, files map[string][]byte, opts ...serverOption) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{
		ln:      ln,
		files:   files,
		aborted: make(map[string]bool),
		stalled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeServer) URL(root string) string {
	return "ftp://" + s.ln.Addr().String() + root
}

func (s *fakeServer) record(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, line)
}

func (s *fakeServer) retrieved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.commands {
		if strings.HasPrefix(c, "RETR ") {
			out = append(out, strings.TrimPrefix(c, "RETR "))
		}
	}
	return out
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewConn(conn)
	tp.PrintfLine("220 fake ready")

	var data net.Listener
	defer func() {
		if data != nil {
			data.Close()
		}
	}()

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		s.record(line)
		cmd, arg, _ := strings.Cut(line, " ")

		switch strings.ToUpper(cmd) {
		case "USER":
			s.mu.Lock()
			s.users = append(s.users, arg)
			s.mu.Unlock()
			tp.PrintfLine("331 password required")
		case "PASS":
			tp.PrintfLine("230 logged in")
		case "TYPE":
			tp.PrintfLine("200 type set")
		case "EPSV":
			data, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				tp.PrintfLine("425 cannot open data connection")
				continue
			}
			port := data.Addr().(*net.TCPAddr).Port
			tp.PrintfLine("229 Entering Extended Passive Mode (|||%d|)", port)
		case "RETR":
			content, ok := s.files[arg]
			if !ok || data == nil {
				if data != nil {
					data.Close()
					data = nil
				}
				tp.PrintfLine("550 %s: no such file", arg)
				continue
			}
			dc, err := data.Accept()
			data.Close()
			data = nil
			if err != nil {
				tp.PrintfLine("425 cannot open data connection")
				continue
			}
			tp.PrintfLine("150 opening data connection")
			dc.Write(content)
			switch {
			case s.stalled[arg]:
				dc.SetReadDeadline(time.Now().Add(10 * time.Second))
				io.Copy(io.Discard, dc)
				dc.Close()
				tp.PrintfLine("426 connection closed; transfer aborted")
			case s.aborted[arg]:
				dc.Close()
				tp.PrintfLine("451 transfer aborted")
			default:
				dc.Close()
				tp.PrintfLine("226 transfer complete")
			}
		case "QUIT":
			tp.PrintfLine("221 bye")
			return
		default:
			tp.PrintfLine("502 %s not implemented", cmd)
		}
	}
}

func TestDialAndOpen(t *testing.T) {
	server := startFakeServer(t, map[string][]byte{
		"/pub/cmb-data/alanine-dipeptide.npz": []byte("alanine"),
		"/pub/cmb-data/pentapeptide.pdb":      []byte("pentapeptide"),
	})

	ctx := context.Background()
	client, err := Dial(ctx, server.URL("/pub/cmb-data/"), DefaultOptions())
	require.NoError(t, err)
	defer client.Close()

	require.Equal(t, "/pub/cmb-data/", client.Root())

	for _, tt := range []struct{ name, body string }{
		{"alanine-dipeptide.npz", "alanine"},
		{"pentapeptide.pdb", "pentapeptide"},
	} {
		rc, err := client.Open(ctx, tt.name)
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		require.Equal(t, tt.body, string(body))
	}

	require.Equal(t, []string{
		"/pub/cmb-data/alanine-dipeptide.npz",
		"/pub/cmb-data/pentapeptide.pdb",
	}, server.retrieved())

	server.mu.Lock()
	require.Equal(t, []string{"anonymous"}, server.users)
	server.mu.Unlock()
}

func TestDialUsesURLCredentials(t *testing.T) {
	server := startFakeServer(t, nil)

	u := strings.Replace(server.URL("/"), "ftp://", "ftp://alice:secret@", 1)
	client, err := Dial(context.Background(), u, DefaultOptions())
	require.NoError(t, err)
	defer client.Close()

	server.mu.Lock()
	defer server.mu.Unlock()
	require.Equal(t, []string{"alice"}, server.users)
}

func TestOpenMissingFile(t *testing.T) {
	server := startFakeServer(t, nil)

	client, err := Dial(context.Background(), server.URL("/pub/"), DefaultOptions())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Open(context.Background(), "missing.npz")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.npz")
}

func TestOpenCancelledContext(t *testing.T) {
	server := startFakeServer(t, nil)

	client, err := Dial(context.Background(), server.URL("/"), DefaultOptions())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Open(ctx, "a.npz")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCloseReportsAbortedTransfer(t *testing.T) {
	server := startFakeServer(t, map[string][]byte{
		"/pub/alanine.npz": []byte("trunc"),
	}, abortAfterData("/pub/alanine.npz"))

	ctx := context.Background()
	client, err := Dial(ctx, server.URL("/pub/"), DefaultOptions())
	require.NoError(t, err)
	defer client.Close()

	rc, err := client.Open(ctx, "alanine.npz")
	require.NoError(t, err)

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "trunc", string(body))

	err = rc.Close()
	require.Error(t, err)
	require.Contains(t, err.Error(), "451")
}

func TestOpenAbortsOnCancel(t *testing.T) {
	server := startFakeServer(t, map[string][]byte{
		"/pub/alanine.npz": []byte("partial"),
	}, stallAfterData("/pub/alanine.npz"))

	client, err := Dial(context.Background(), server.URL("/pub/"), DefaultOptions())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc, err := client.Open(ctx, "alanine.npz")
	require.NoError(t, err)

	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	_, err = io.ReadAll(rc)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 5*time.Second)

	rc.Close()
}

func TestDialRejectsNonFTP(t *testing.T) {
	_, err := Dial(context.Background(), "https://example.org/pub/", DefaultOptions())
	require.ErrorIs(t, err, ErrNotFTP)
}

func TestDialUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), fmt.Sprintf("ftp://%s/", addr), DefaultOptions())
	require.Error(t, err)
}
