// Package wsrfs provides the filesystem abstraction used by the file-backed
// weak-source-of-randomness provider.
//
// The only production implementation is [Real], a thin passthrough to [os].
// Tests substitute a fake that can return short reads and injected errors
// without touching the real filesystem.
package wsrfs

import (
	"io"
	"os"
)

// File is an open file descriptor. It is satisfied by [os.File].
type File interface {
	io.Reader
	io.Closer
}

// FS opens files for the file-backed WSR provider. It exists so tests can
// substitute a fake that returns short reads and injected errors.
type FS interface {
	// Open opens path for reading. See [os.Open].
	Open(path string) (File, error)
}

// Real implements [FS] using the real filesystem.
type Real struct{}

// NewReal returns a [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// Open is a passthrough wrapper for [os.Open].
func (r *Real) Open(path string) (File, error) {
	return os.Open(path) //nolint:gosec // path is caller-supplied WSR_PATH, not attacker input
}

var _ FS = (*Real)(nil)
var _ File = (*os.File)(nil)
