package wsrfs

import (
	"errors"
	"io"
)

// ErrFakeOpenFailed is returned by [Fake.Open] when OpenErr is set.
var ErrFakeOpenFailed = errors.New("wsrfs: fake open failed")

// Fake is an [FS] double for exercising the WSR file provider's retry and
// error paths without real I/O.
//
// ChunkSize, when non-zero, caps every Read to that many bytes regardless of
// the caller's buffer size, simulating the short reads a real device or pipe
// can produce. ReadErrAfter, when non-zero, makes every read that starts once
// that many cumulative bytes have been delivered fail with ReadErr (or io.EOF
// if ReadErr is nil); a read that starts below that count is not cut short.
type Fake struct {
	Data         []byte
	OpenErr      error
	ChunkSize    int
	ReadErrAfter int
	ReadErr      error
}

// Open returns a fresh [*fakeFile] reading from f.Data, or f.OpenErr.
func (f *Fake) Open(_ string) (File, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}

	return &fakeFile{fake: f, remaining: f.Data}, nil
}

type fakeFile struct {
	fake      *Fake
	remaining []byte
	delivered int
	closed    bool
}

func (ff *fakeFile) Read(p []byte) (int, error) {
	if ff.closed {
		return 0, errors.New("wsrfs: read on closed fake file")
	}

	if ff.fake.ReadErrAfter != 0 && ff.delivered >= ff.fake.ReadErrAfter {
		if ff.fake.ReadErr != nil {
			return 0, ff.fake.ReadErr
		}

		return 0, io.EOF
	}

	if len(ff.remaining) == 0 {
		return 0, io.EOF
	}

	n := len(p)
	if ff.fake.ChunkSize > 0 && ff.fake.ChunkSize < n {
		n = ff.fake.ChunkSize
	}

	if n > len(ff.remaining) {
		n = len(ff.remaining)
	}

	copy(p, ff.remaining[:n])
	ff.remaining = ff.remaining[n:]
	ff.delivered += n

	return n, nil
}

func (ff *fakeFile) Close() error {
	ff.closed = true

	return nil
}

var _ FS = (*Fake)(nil)
