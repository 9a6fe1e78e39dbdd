package facade

import (
	"context"
	"fmt"
	"sync"

	"github.com/corvid-systems/entropic/cache"
	"github.com/corvid-systems/entropic/seed"
	"github.com/corvid-systems/entropic/status"
)

// state is Context's own place in the Building→Ready→Destroyed lifecycle
// (spec.md §3). "Building" has no Context representation: a Context value
// only ever comes into existence once Builder.Build has already validated
// and constructed everything, so it starts life Ready.
type state int

const (
	stateReady state = iota
	stateDestroyed
)

// Context is the long-lived handle get_randomness operates on. All of its
// fields are owned exclusively by it (spec.md §3, "Ownership summary").
type Context struct {
	mu    sync.Mutex
	state state

	seed    *seed.Seed
	cache   cache.Cache
	license []byte

	lastErrMu sync.Mutex
	lastErr   error
}

// GetRandomness returns exactly n bytes, or fails having delivered none of
// them (spec.md §4.4). It recovers any panic escaping the cache/extractor
// stack exactly once, mapping it to OnboardStdException/
// OnboardUnknownException (spec.md §4.6.1), and records the outcome in the
// per-Context last-error slot (see DESIGN.md for why this is per-Context
// rather than per-OS-thread).
func (c *Context) GetRandomness(ctx context.Context, n int) (out []byte, err error) {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()

	if s == stateDestroyed {
		err = status.ErrContextDestroyed
		c.setLastErr(err)

		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = onboardError(r)
		}

		c.setLastErr(err)
	}()

	out, err = c.cache.GetRandomness(ctx, n)
	if err != nil {
		if degraded := c.cache.Degraded(); degraded != nil {
			err = fmt.Errorf("%w: %w", status.ErrContextDegraded, err)
		}

		return nil, err
	}

	return out, nil
}

// Destroy transitions the Context to Destroyed, stopping and joining any
// cache worker goroutines and zeroizing the seed. It is idempotent
// (spec.md §8, "Destroy is idempotent and serializing").
func (c *Context) Destroy() (err error) {
	c.mu.Lock()
	if c.state == stateDestroyed {
		c.mu.Unlock()

		return nil
	}

	c.state = stateDestroyed
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = onboardError(r)
		}

		c.setLastErr(err)
	}()

	if c.seed != nil {
		c.seed.Zeroize()
	}

	err = c.cache.Close()

	return err
}

// LicenseData returns the opaque LICENSE_DATA payload, if one was
// supplied at build time (spec.md §4.8: carried end-to-end, never
// interpreted by the core).
func (c *Context) LicenseData() []byte {
	return c.license
}

// LastErrorCode and LastErrorDescription report the outcome recorded by the
// most recent GetRandomness or Destroy call on this Context: meaningful only
// immediately after a failing call on this same Context (spec.md §4.5).
// cabi's handle-less get_error_code / get_error_description exports read
// cabi's own process-wide slot, not this one.
func (c *Context) LastErrorCode() status.Code {
	c.lastErrMu.Lock()
	defer c.lastErrMu.Unlock()

	return status.Of(c.lastErr)
}

func (c *Context) LastErrorDescription() string {
	c.lastErrMu.Lock()
	defer c.lastErrMu.Unlock()

	if c.lastErr == nil {
		return ""
	}

	return c.lastErr.Error()
}

func (c *Context) setLastErr(err error) {
	c.lastErrMu.Lock()
	defer c.lastErrMu.Unlock()

	c.lastErr = err
}

// onboardError maps a recovered panic value to the Exception taxonomy
// (spec.md §7): a panic carrying an error is OnboardStdException, anything
// else is OnboardUnknownException.
func onboardError(r any) error {
	if e, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", status.ErrOnboardStdException, e)
	}

	return fmt.Errorf("%w: %v", status.ErrOnboardUnknownException, r)
}
