package wsr

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/sys/cpu"

	"github.com/corvid-systems/entropic/status"
)

// maxRetries bounds the number of times [RdSeed.Fill] will retry a failed
// underlying read before giving up, per spec.md §4.3 ("retries internally
// up to an implementation-chosen bound, documented order of 10").
const maxRetries = 10

// RdSeed fills buffers from the host's hardware random-number instruction.
//
// Actually issuing RDSEED requires either cgo or a Go assembly stub; neither
// is available to a portable pure-Go package, so read defaults to
// [crypto/rand.Read], which on every platform this module targets is itself
// backed by the kernel's CSPRNG (which in turn is seeded from RDSEED/RDRAND
// where the kernel has it). read is a field, not a hardcoded call, so a
// platform integration can swap in a real RDSEED-backed reader, and tests
// can inject failures.
type RdSeed struct {
	// read performs one attempt at filling buf. Defaults to crypto/rand.Read.
	read func(buf []byte) (int, error)

	// available, when set, overrides the CPU feature probe. Left nil in
	// production so [cpu.X86.HasRDSEED] decides.
	available *bool
}

// NewRdSeed returns a [Provider] whose reads go through [crypto/rand.Read]
// (see [RdSeed]). hasHardwareSupport probes [golang.org/x/sys/cpu] on each
// call rather than caching the answer at construction; in practice cpu
// features are fixed for the process lifetime.
func NewRdSeed() *RdSeed {
	return &RdSeed{read: rand.Read}
}

func (r *RdSeed) hasHardwareSupport() bool {
	if r.available != nil {
		return *r.available
	}

	return cpu.X86.HasRDSEED
}

// Fill satisfies [Provider]. It reads through r.read whether or not the CPU
// reports RDSEED support: Fill does not consult hasHardwareSupport, and it
// does not report to callers or log sinks which path supplied the bytes.
func (r *RdSeed) Fill(ctx context.Context, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	read := r.read
	if read == nil {
		read = rand.Read
	}

	filled := 0

	var lastErr error

	for attempt := 0; attempt < maxRetries && filled < len(buf); attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", status.ErrWSRReadFailed, err)
		}

		n, err := read(buf[filled:])
		if n > 0 {
			filled += n
		}

		if err != nil {
			lastErr = err

			if err == io.EOF { //nolint:errorlint // io.EOF is a sentinel by contract
				break
			}

			continue
		}
	}

	if filled < len(buf) {
		if lastErr != nil {
			return fmt.Errorf("%w: %w", status.ErrWSRReadFailed, lastErr)
		}

		return fmt.Errorf("%w: exhausted %d retries", status.ErrWSRReadFailed, maxRetries)
	}

	return nil
}
