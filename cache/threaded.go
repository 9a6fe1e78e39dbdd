package cache

import (
	"context"
	"sync"

	"github.com/corvid-systems/entropic/extractor"
	"github.com/corvid-systems/entropic/status"
)

// threadedCache backs both PolicyAsync (workers=1) and PolicyMultiThread
// (workers=N): a ring buffer kept full by a pool of background goroutines,
// each independently calling driver.NextBlock and writing the result in.
// extractor.Driver serializes the WSR-pull/health-test step internally and
// runs Extract unlocked (extractor.go), so N workers genuinely parallelize
// the CPU-bound half of the pipeline - this is what lets MultiThread beat a
// single-worker cache on throughput (spec.md §8, testable scenario 4).
//
// One sync.Cond, backed by the same mutex that guards the ring, stands in
// for the "not empty" / "not full" pair: every waiter re-checks its own
// predicate after waking, which is the idiomatic Go answer to needing two
// conditions over one piece of shared state.
type threadedCache struct {
	driver   *extractor.Driver
	ring     *ring
	prefill  int
	refillAt int

	mu       sync.Mutex
	cond     *sync.Cond
	err      error
	stopping bool
	wg       sync.WaitGroup
}

func newThreadedCache(driver *extractor.Driver, cfg Config, workers int) *threadedCache {
	c := &threadedCache{
		driver:   driver,
		ring:     newRing(cfg.Size),
		prefill:  cfg.Prefill,
		refillAt: cfg.RefillAt,
	}
	c.cond = sync.NewCond(&c.mu)

	for i := 0; i < workers; i++ {
		c.wg.Add(1)

		go c.refillWorker()
	}

	return c
}

// refillWorker is the Idle/Refilling state machine spec.md §4.4 describes:
// Idle while available() > refillAt, Refilling (pulling one block at a
// time) until available() reaches prefill again.
func (c *threadedCache) refillWorker() {
	defer c.wg.Done()

	for {
		// Idle: wait until drained to the low watermark.
		c.mu.Lock()

		for !c.stopping && c.err == nil && c.ring.available() > c.refillAt {
			c.cond.Wait()
		}

		if c.stopping || c.err != nil {
			c.mu.Unlock()

			return
		}

		c.mu.Unlock()

		// Refilling: keep pulling blocks until available() climbs back to
		// the high watermark, not merely past refillAt - the two
		// watermarks are deliberately distinct thresholds (spec.md §4.4).
		for {
			c.mu.Lock()

			if c.stopping || c.err != nil {
				c.mu.Unlock()

				return
			}

			if c.ring.available() >= c.prefill {
				c.mu.Unlock()

				break
			}

			c.mu.Unlock()

			block, err := c.driver.NextBlock(context.Background())

			c.mu.Lock()

			if err != nil {
				if c.err == nil {
					c.err = err
				}

				c.cond.Broadcast()
				c.mu.Unlock()

				return
			}

			if !c.ring.write(block) {
				// Another worker topped off the ring first (or the
				// remaining space can't fit a whole block); drop this
				// block and re-check rather than block forever holding it.
				c.mu.Unlock()

				continue
			}

			c.cond.Broadcast()
			c.mu.Unlock()
		}
	}
}

func (c *threadedCache) GetRandomness(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}

	if n > c.ring.capacity() {
		return c.pullDirect(ctx, n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for c.ring.available() < n {
		if c.err != nil {
			return nil, c.err
		}

		if c.stopping {
			return nil, status.ErrContextDestroyed
		}

		c.cond.Wait()
	}

	out := c.ring.read(n)
	c.cond.Broadcast() // wake workers that are waiting on "not full"

	return out, nil
}

// pullDirect handles a request larger than the ring's capacity, bypassing
// the cache entirely - see syncCache.pullDirect for the rationale.
func (c *threadedCache) pullDirect(ctx context.Context, n int) ([]byte, error) {
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

// Close stops all refill workers and waits for them to exit. It is
// idempotent: a second call observes stopping already set and returns
// immediately once the (already-finished) workers are joined.
func (c *threadedCache) Close() error {
	c.mu.Lock()
	c.stopping = true
	c.cond.Broadcast()
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	zeroize(c.ring)

	return nil
}

func (c *threadedCache) Degraded() error { return c.driver.Degraded() }

// zeroize clears any bytes still held in the ring so a destroyed cache does
// not leave extractor output sitting in memory (spec.md §7, seed/output
// zeroization expectations extended to cached-but-undelivered blocks).
func zeroize(r *ring) {
	for i := range r.buf {
		r.buf[i] = 0
	}

	r.head, r.tail, r.count = 0, 0, 0
}
