package catalog

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the catalogue document at the repository root.
const FileName = "mdshare-catalogue.yaml"

// ErrInvalidCatalog is returned when the catalogue document is malformed.
var ErrInvalidCatalog = errors.New("catalog: invalid catalogue")

// Entry describes one downloadable file.
type Entry struct {
	Name     string
	Size     int64
	Checksum string

	// Files lists the members of a container archive. Empty for plain files.
	Files []string
}

// IsContainer reports whether the entry is a tar.gz bundle of other files.
func (e Entry) IsContainer() bool {
	return len(e.Files) > 0
}

// Catalog is the immutable set of files a repository offers.
type Catalog struct {
	entries map[string]Entry
	names   []string
}

type yamlEntry struct {
	Size     int64    `yaml:"size"`
	Checksum string   `yaml:"checksum"`
	Files    []string `yaml:"files"`
}

type yamlCatalog struct {
	Index      map[string]yamlEntry `yaml:"index"`
	Containers map[string]yamlEntry `yaml:"containers"`
}

// Parse reads a catalogue document.
func Parse(r io.Reader) (*Catalog, error) {
	var yc yamlCatalog
	if err := yaml.NewDecoder(r).Decode(&yc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	entries := make([]Entry, 0, len(yc.Index)+len(yc.Containers))
	for name, ye := range yc.Index {
		entries = append(entries, Entry{Name: name, Size: ye.Size, Checksum: ye.Checksum})
	}
	for name, ye := range yc.Containers {
		if len(ye.Files) == 0 {
			return nil, fmt.Errorf("%w: container %s lists no files", ErrInvalidCatalog, name)
		}
		if _, dup := yc.Index[name]; dup {
			return nil, fmt.Errorf("%w: %s is both a file and a container", ErrInvalidCatalog, name)
		}
		entries = append(entries, Entry{Name: name, Size: ye.Size, Checksum: ye.Checksum, Files: ye.Files})
	}

	for _, e := range entries {
		if e.Size < 0 {
			return nil, fmt.Errorf("%w: %s has negative size %d", ErrInvalidCatalog, e.Name, e.Size)
		}
	}

	return New(entries), nil
}

// New builds a catalogue from entries. Later entries replace earlier ones
// with the same name.
func New(entries []Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.Name] = e
	}
	c.names = make([]string, 0, len(c.entries))
	for name := range c.entries {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Names returns all entry names in lexical order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Lookup returns the entry with the given name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Size returns the catalogue size of name, or zero if it is unknown.
func (c *Catalog) Size(name string) int64 {
	return c.entries[name].Size
}

// Search returns the names matching the glob pattern, in lexical order.
func (c *Catalog) Search(pattern string) ([]string, error) {
	// path.Match only reports a bad pattern once it reaches the bad part.
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("catalog: pattern %q: %w", pattern, err)
	}

	var matches []string
	for _, name := range c.names {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("catalog: pattern %q: %w", pattern, err)
		}
		if ok {
			matches = append(matches, name)
		}
	}
	return matches, nil
}
