package downloader

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"strings"
)

// verifyingReader hashes everything read through it and replaces the final
// io.EOF with a *ChecksumError when the digest does not match.
type verifyingReader struct {
	r        io.Reader
	h        hash.Hash
	name     string
	expected string
	err      error
}

func newVerifyingReader(r io.Reader, name, expected string) *verifyingReader {
	return &verifyingReader{
		r:        r,
		h:        sha256.New(),
		name:     name,
		expected: strings.ToLower(expected),
	}
}

func (v *verifyingReader) Read(p []byte) (int, error) {
	if v.err != nil {
		return 0, v.err
	}

	n, err := v.r.Read(p)
	v.h.Write(p[:n])
	if err == io.EOF {
		actual := hex.EncodeToString(v.h.Sum(nil))
		if actual != v.expected {
			err = &ChecksumError{Name: v.name, Expected: v.expected, Actual: actual}
		}
		v.err = err
		// Withhold the last bytes so a mismatch cannot be mistaken for a
		// complete short read.
		if err != io.EOF {
			return 0, err
		}
	}
	return n, err
}
