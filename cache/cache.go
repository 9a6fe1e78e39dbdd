// Package cache implements the caching/refill layer in front of an
// extractor.Driver: spec.md §4.4 describes four policies (None, SyncCache,
// AsyncCache, MultiThread) that trade background-worker complexity for
// throughput under a shared watermark contract - refill_at < prefill <= size.
package cache

import (
	"context"
	"fmt"

	"github.com/corvid-systems/entropic/extractor"
	"github.com/corvid-systems/entropic/status"
)

// Policy selects one of the four caching disciplines spec.md §4.4 names.
type Policy int

const (
	// PolicyNone pulls directly from the driver on every call; no
	// background state, no watermarks.
	PolicyNone Policy = iota
	// PolicySync keeps a ring buffer and refills it inline, on the
	// calling goroutine, at the start of a get that finds it at or below
	// refill_at or holding fewer bytes than requested.
	PolicySync
	// PolicyAsync keeps a ring buffer refilled by one background worker.
	PolicyAsync
	// PolicyMultiThread keeps a ring buffer refilled by a pool of
	// background workers running Extract concurrently.
	PolicyMultiThread
)

// String renders the policy the way config files and log lines name it.
func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicySync:
		return "sync_cache"
	case PolicyAsync:
		return "async_cache"
	case PolicyMultiThread:
		return "multi_thread"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Config parameterizes the watermark contract. Size, Prefill and RefillAt
// are in bytes; they are meaningless for PolicyNone. ThreadCount only
// applies to PolicyMultiThread; zero means "use runtime.GOMAXPROCS(0)".
type Config struct {
	Policy      Policy
	Size        int
	Prefill     int
	RefillAt    int
	ThreadCount int
}

// Validate checks the watermark contract spec.md §4.4 states: refill_at <
// prefill <= size. PolicyNone ignores these fields entirely.
func (c Config) Validate() error {
	if c.Policy == PolicyNone {
		return nil
	}

	if c.Size <= 0 {
		return fmt.Errorf("%w: cache size must be positive, got %d", status.ErrWatermarkInvalid, c.Size)
	}

	if c.Prefill <= 0 || c.Prefill > c.Size {
		return fmt.Errorf("%w: prefill %d must satisfy 0 < prefill <= size %d",
			status.ErrWatermarkInvalid, c.Prefill, c.Size)
	}

	if c.RefillAt < 0 || c.RefillAt >= c.Prefill {
		return fmt.Errorf("%w: refill_at %d must satisfy 0 <= refill_at < prefill %d",
			status.ErrWatermarkInvalid, c.RefillAt, c.Prefill)
	}

	if c.Policy == PolicyMultiThread && c.ThreadCount < 0 {
		return fmt.Errorf("%w: thread count must not be negative, got %d", status.ErrWatermarkInvalid, c.ThreadCount)
	}

	return nil
}

// Cache is the common surface all four policies present to the façade
// layer: get exactly n bytes, or fail having delivered none of them
// (spec.md §4.4, "get_randomness either returns exactly n bytes or fails
// having delivered none of them").
type Cache interface {
	GetRandomness(ctx context.Context, n int) ([]byte, error)
	Close() error

	// Degraded reports the underlying driver's latched failure, if any,
	// regardless of whether this particular call is the one that last
	// observed it - the façade layer uses this to tell "the context just
	// now entered the degraded state" apart from a plain one-off error.
	Degraded() error
}

// New builds the Cache implementing cfg.Policy against driver. It does not
// start background work eagerly beyond what each policy's constructor
// requires (Async and MultiThread start their worker goroutines here).
func New(driver *extractor.Driver, cfg Config) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Policy {
	case PolicyNone:
		return newNone(driver), nil
	case PolicySync:
		return newSyncCache(driver, cfg), nil
	case PolicyAsync:
		return newThreadedCache(driver, cfg, 1), nil
	case PolicyMultiThread:
		threads := cfg.ThreadCount
		if threads == 0 {
			threads = defaultThreadCount()
		}

		return newThreadedCache(driver, cfg, threads), nil
	default:
		return nil, fmt.Errorf("%w: cache policy %d", status.ErrUnsupportedOption, int(cfg.Policy))
	}
}
