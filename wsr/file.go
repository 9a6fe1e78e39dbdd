package wsr

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/corvid-systems/entropic/status"
	"github.com/corvid-systems/entropic/internal/wsrfs"
)

// File is a WSR provider backed by a path (typically a device node, but
// tested against a plain file). The path is opened lazily, on first Fill,
// per spec.md §4.1 ("a readable path (validated on first read, not at
// build)").
type File struct {
	path string
	fs   wsrfs.FS

	mu   sync.Mutex
	file wsrfs.File
}

// NewFile returns a [Provider] that reads from path using fsys. Pass
// [wsrfs.NewReal] in production; tests pass a [wsrfs.Fake].
func NewFile(path string, fsys wsrfs.FS) *File {
	return &File{path: path, fs: fsys}
}

// Fill satisfies [Provider]. A short read loops until buf is full or the
// underlying read returns 0 bytes with no error, or a hard error; either of
// those maps to ErrWSRReadFailed (spec.md §4.3: "EOF on a regular file is
// ReadFailed").
func (f *File) Fill(ctx context.Context, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		file, err := f.fs.Open(f.path)
		if err != nil {
			return fmt.Errorf("%w: %w", status.ErrWSROpenFailed, err)
		}

		f.file = file
	}

	filled := 0

	for filled < len(buf) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", status.ErrWSRReadFailed, err)
		}

		n, err := f.file.Read(buf[filled:])
		filled += n

		if err != nil {
			if err == io.EOF && filled == len(buf) { //nolint:errorlint // io.EOF is a sentinel by contract
				return nil
			}

			return fmt.Errorf("%w: %w", status.ErrWSRReadFailed, err)
		}

		if n == 0 {
			return fmt.Errorf("%w: zero-byte read with no error", status.ErrWSRReadFailed)
		}
	}

	return nil
}

// Close releases the underlying file descriptor, if one was opened.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil

	return err
}
