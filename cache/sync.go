package cache

import (
	"context"
	"sync"

	"github.com/corvid-systems/entropic/extractor"
	"github.com/corvid-systems/entropic/status"
)

// syncCache implements PolicySync: a ring buffer refilled inline, on the
// calling goroutine, at the start of any get that finds it drained to or
// below refill_at or holding fewer than n bytes (spec.md §4.4: "(policy 2)
// ... will refill on the next get"). There is no
// background worker, so GetRandomness itself pays for any refill it
// triggers.
type syncCache struct {
	driver    *extractor.Driver
	ring      *ring
	prefill   int
	refillAt  int
	blockSize int

	mu sync.Mutex
}

func newSyncCache(driver *extractor.Driver, cfg Config) *syncCache {
	return &syncCache{
		driver:    driver,
		ring:      newRing(cfg.Size),
		prefill:   cfg.Prefill,
		refillAt:  cfg.RefillAt,
		blockSize: driver.OutputBlockBytes(),
	}
}

func (c *syncCache) GetRandomness(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}

	if n > c.ring.capacity() {
		return c.pullDirect(ctx, n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refillLocked(ctx, n); err != nil {
		return nil, err
	}

	if c.ring.available() < n {
		return nil, status.ErrCacheUnderrun
	}

	return c.ring.read(n), nil
}

// refillLocked tops the ring up to prefill whenever it has drained to or
// below refill_at, or whenever it simply does not yet hold n bytes (cold
// start). Callers hold c.mu.
func (c *syncCache) refillLocked(ctx context.Context, n int) error {
	needsRefill := c.ring.available() < n || c.ring.available() <= c.refillAt
	if !needsRefill {
		return nil
	}

	for c.ring.available() < n || c.ring.available() < c.prefill {
		if c.ring.free() < c.blockSize {
			break
		}

		block, err := c.driver.NextBlock(ctx)
		if err != nil {
			return err
		}

		if !c.ring.write(block) {
			break
		}
	}

	return nil
}

// pullDirect handles a request larger than the ring's capacity: such a
// request can never be satisfied purely from cached bytes, so it bypasses
// the ring and pulls fresh blocks directly, the same way PolicyNone does.
func (c *syncCache) pullDirect(ctx context.Context, n int) ([]byte, error) {
	out := make([]byte, 0, n)

	for len(out) < n {
		block, err := c.driver.NextBlock(ctx)
		if err != nil {
			return nil, err
		}

		remaining := n - len(out)
		if remaining < len(block) {
			out = append(out, block[:remaining]...)
		} else {
			out = append(out, block...)
		}
	}

	return out, nil
}

func (c *syncCache) Close() error { return nil }

func (c *syncCache) Degraded() error { return c.driver.Degraded() }
