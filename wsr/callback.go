package wsr

import (
	"context"
	"fmt"

	"github.com/corvid-systems/entropic/status"
)

// CallbackFunc is a caller-supplied WSR source. It must fill buf completely
// and return 0 on success, or a non-zero status code (conventionally in the
// [status.FloorWSRCallback] family) on failure. userData is passed through
// unmodified on every call, mirroring the C ABI's void* user_data parameter.
//
// The callback must be safe to call concurrently from any number of
// goroutines: the core does not serialize calls to it (spec.md §4.3).
type CallbackFunc func(buf []byte, userData any) int

// Callback adapts a [CallbackFunc] to [Provider].
type Callback struct {
	fn       CallbackFunc
	userData any
}

// NewCallback returns a [Provider] that forwards Fill to fn.
func NewCallback(fn CallbackFunc, userData any) *Callback {
	return &Callback{fn: fn, userData: userData}
}

// Fill satisfies [Provider]. A non-zero return from the callback is
// surfaced as a [status.CallbackError] carrying that exact code, so it
// reaches status.Of verbatim instead of collapsing onto one fixed sentinel
// (status still reports errors.Is(err, status.ErrWSRCallbackFailed) as true
// for any of them).
func (c *Callback) Fill(ctx context.Context, buf []byte) error {
	if c.fn == nil {
		return fmt.Errorf("%w: callback function is nil", status.ErrCallbackPtrNotSupplied)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", status.ErrWSRReadFailed, err)
	}

	code := c.fn(buf, c.userData)
	if code != 0 {
		return &status.CallbackError{Code: status.Code(code)}
	}

	return nil
}
