package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvid-systems/entropic/extractor"
	"github.com/corvid-systems/entropic/seed"
)

type internalPassthroughVerifier struct{}

func (internalPassthroughVerifier) Verify([]byte, []byte) error { return nil }

// internalCountingProvider mirrors cache_test.go's countingProvider: each
// block is a distinct, incrementing byte value so refills are visibly making
// progress rather than rewriting the same bytes.
type internalCountingProvider struct{ n byte }

func (p *internalCountingProvider) Fill(_ context.Context, buf []byte) error {
	for i := range buf {
		buf[i] = p.n
	}

	p.n++

	return nil
}

func newInternalTestDriver(t *testing.T) *extractor.Driver {
	t.Helper()

	s, err := seed.New(seed.EvaluationContent(), seed.EvaluationSignature(), internalPassthroughVerifier{})
	require.NoError(t, err)

	return extractor.New(s, &internalCountingProvider{}, extractor.Reference, extractor.ReferenceParams, false)
}

// waitForAvailable polls the ring's internal count directly (this file lives
// in package cache, not cache_test, precisely so it can reach behind
// threadedCache's exported surface) until it reaches atLeast or the deadline
// passes.
func waitForAvailable(t *testing.T, c *threadedCache, atLeast int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		c.mu.Lock()
		avail := c.ring.available()
		c.mu.Unlock()

		if avail >= atLeast {
			return
		}

		time.Sleep(time.Millisecond)
	}

	t.Fatalf("available() never reached %d", atLeast)
}

// TestRefillWorker_RecoversAllTheWayToPrefill drains the ring down to exactly
// RefillAt and checks the worker keeps pulling blocks past that point, all
// the way to Prefill, rather than stopping the moment available() climbs
// back above RefillAt.
func TestRefillWorker_RecoversAllTheWayToPrefill(t *testing.T) {
	blockSize := extractor.ReferenceParams.OutputBlockBytes
	cfg := Config{
		Policy:   PolicyAsync,
		Size:     blockSize * 8,
		Prefill:  blockSize * 6,
		RefillAt: blockSize * 2,
	}

	c := newThreadedCache(newInternalTestDriver(t), cfg, 1)
	defer c.Close()

	// Starts empty, well below RefillAt, so the worker must already climb
	// all the way to Prefill before going idle.
	waitForAvailable(t, c, cfg.Prefill)

	// Drain down to exactly the low watermark.
	out, err := c.GetRandomness(context.Background(), cfg.Prefill-cfg.RefillAt)
	require.NoError(t, err)
	require.Len(t, out, cfg.Prefill-cfg.RefillAt)

	c.mu.Lock()
	avail := c.ring.available()
	c.mu.Unlock()
	require.Equal(t, cfg.RefillAt, avail)

	// The worker must refill past RefillAt+blockSize and all the way to
	// Prefill, not re-idle after pulling a single block.
	waitForAvailable(t, c, cfg.Prefill)
}
