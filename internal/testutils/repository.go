// Package testutils provides shared test fixtures: a dataset repository
// served over HTTP and, for integration tests, a Minio container.
package testutils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ligustah/mdfetch/internal/catalog"
)

// RepoFile is a file published by a test repository.
type RepoFile struct {
	Name string
	Data []byte

	// Files marks the entry as a container and lists its members.
	Files []string

	// Size overrides the catalogue size; zero means len(Data).
	Size int64

	// Checksum overrides the catalogue checksum; empty means the SHA-256
	// of Data.
	Checksum string
}

// Repository is a test repository served over HTTP.
type Repository struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

// URL returns the repository root with a trailing slash.
func (r *Repository) URL() string {
	return r.Server.URL + "/"
}

// Requests returns the request paths served so far, in order.
func (r *Repository) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

type catalogueEntry struct {
	Size     int64    `yaml:"size"`
	Checksum string   `yaml:"checksum,omitempty"`
	Files    []string `yaml:"files,omitempty"`
}

// Catalogue renders the catalogue document describing files.
func Catalogue(t *testing.T, files []RepoFile) []byte {
	t.Helper()

	doc := struct {
		Index      map[string]catalogueEntry `yaml:"index,omitempty"`
		Containers map[string]catalogueEntry `yaml:"containers,omitempty"`
	}{
		Index:      make(map[string]catalogueEntry),
		Containers: make(map[string]catalogueEntry),
	}

	for _, f := range files {
		e := catalogueEntry{Size: f.Size, Checksum: f.Checksum, Files: f.Files}
		if e.Size == 0 {
			e.Size = int64(len(f.Data))
		}
		if e.Checksum == "" {
			sum := sha256.Sum256(f.Data)
			e.Checksum = hex.EncodeToString(sum[:])
		}
		if len(f.Files) > 0 {
			doc.Containers[f.Name] = e
		} else {
			doc.Index[f.Name] = e
		}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal catalogue: %v", err)
	}
	return out
}

// StartRepository serves files and their catalogue over HTTP. The server is
// closed when the test ends.
func StartRepository(t *testing.T, files []RepoFile) *Repository {
	t.Helper()

	content := map[string][]byte{
		"/" + catalog.FileName: Catalogue(t, files),
	}
	for _, f := range files {
		content["/"+f.Name] = f.Data
	}

	repo := &Repository{}
	repo.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		repo.mu.Lock()
		repo.requests = append(repo.requests, r.URL.Path)
		repo.mu.Unlock()

		data, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	t.Cleanup(repo.Close)

	return repo
}

// CompareReaderToData compares reader output with expected data in chunks.
func CompareReaderToData(t *testing.T, reader io.Reader, expected []byte) {
	t.Helper()

	buf := make([]byte, 64*1024)
	offset := 0

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if offset+n > len(expected) {
				t.Fatalf("read more data than expected: offset=%d, n=%d, expected len=%d",
					offset, n, len(expected))
			}
			if !bytes.Equal(buf[:n], expected[offset:offset+n]) {
				t.Fatalf("data mismatch at offset %d", offset)
			}
			offset += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read error at offset %d: %v", offset, err)
		}
	}

	if offset != len(expected) {
		t.Fatalf("incomplete read: got %d bytes, want %d", offset, len(expected))
	}
}
