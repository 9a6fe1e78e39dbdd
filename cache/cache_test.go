package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-systems/entropic/cache"
	"github.com/corvid-systems/entropic/extractor"
	"github.com/corvid-systems/entropic/seed"
	"github.com/corvid-systems/entropic/status"
)

type passthroughVerifier struct{}

func (passthroughVerifier) Verify([]byte, []byte) error { return nil }

func validSeed(t *testing.T) *seed.Seed {
	t.Helper()

	s, err := seed.New(seed.EvaluationContent(), seed.EvaluationSignature(), passthroughVerifier{})
	require.NoError(t, err)

	return s
}

// countingProvider fills every requested buffer with an incrementing byte,
// so successive driver blocks are distinct and the exact byte stream a
// cache delivers can be checked against what a plain driver would produce.
type countingProvider struct {
	mu sync.Mutex
	n  byte
}

func (c *countingProvider) Fill(_ context.Context, buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range buf {
		buf[i] = c.n
	}

	c.n++

	return nil
}

func newDriver(t *testing.T) *extractor.Driver {
	t.Helper()

	return extractor.New(validSeed(t), &countingProvider{}, extractor.Reference, extractor.ReferenceParams, false)
}

func mustNew(t *testing.T, driver *extractor.Driver, cfg cache.Config) cache.Cache {
	t.Helper()

	c, err := cache.New(driver, cfg)
	require.NoError(t, err)

	return c
}

func TestNone_GetRandomnessReturnsExactLength(t *testing.T) {
	c := mustNew(t, newDriver(t), cache.Config{Policy: cache.PolicyNone})

	out, err := c.GetRandomness(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, out, 100)
}

func TestNone_ZeroLengthRequestReturnsEmpty(t *testing.T) {
	c := mustNew(t, newDriver(t), cache.Config{Policy: cache.PolicyNone})

	out, err := c.GetRandomness(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, out)
}

func syncConfig() cache.Config {
	blockSize := extractor.ReferenceParams.OutputBlockBytes

	return cache.Config{
		Policy:   cache.PolicySync,
		Size:     blockSize * 8,
		Prefill:  blockSize * 6,
		RefillAt: blockSize * 2,
	}
}

func TestSync_GetRandomnessReturnsExactLength(t *testing.T) {
	c := mustNew(t, newDriver(t), syncConfig())
	defer c.Close()

	out, err := c.GetRandomness(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, out, 40)
}

func TestSync_SuccessiveGetsNeverRepeatBytes(t *testing.T) {
	c := mustNew(t, newDriver(t), syncConfig())
	defer c.Close()

	seen := make(map[string]bool)

	for i := 0; i < 40; i++ {
		out, err := c.GetRandomness(context.Background(), 17)
		require.NoError(t, err)
		require.False(t, seen[string(out)])
		seen[string(out)] = true
	}
}

func TestSync_RequestLargerThanCapacityBypassesRing(t *testing.T) {
	cfg := syncConfig()
	c := mustNew(t, newDriver(t), cfg)
	defer c.Close()

	out, err := c.GetRandomness(context.Background(), cfg.Size*2)
	require.NoError(t, err)
	require.Len(t, out, cfg.Size*2)
}

func TestSync_ConfigRejectsInvertedWatermarks(t *testing.T) {
	cfg := syncConfig()
	cfg.RefillAt = cfg.Prefill // refill_at must be strictly less than prefill

	_, err := cache.New(newDriver(t), cfg)
	require.ErrorIs(t, err, status.ErrWatermarkInvalid)
}

func TestSync_ConfigRejectsPrefillAboveSize(t *testing.T) {
	cfg := syncConfig()
	cfg.Prefill = cfg.Size + 1

	_, err := cache.New(newDriver(t), cfg)
	require.ErrorIs(t, err, status.ErrWatermarkInvalid)
}

func asyncConfig() cache.Config {
	blockSize := extractor.ReferenceParams.OutputBlockBytes

	return cache.Config{
		Policy:   cache.PolicyAsync,
		Size:     blockSize * 8,
		Prefill:  blockSize * 6,
		RefillAt: blockSize * 2,
	}
}

func TestAsync_GetRandomnessReturnsExactLength(t *testing.T) {
	c, err := cache.New(newDriver(t), asyncConfig())
	require.NoError(t, err)
	defer c.Close()

	out, getErr := c.GetRandomness(context.Background(), 50)
	require.NoError(t, getErr)
	require.Len(t, out, 50)
}

func TestAsync_ManySmallGetsAcrossRefills(t *testing.T) {
	c, err := cache.New(newDriver(t), asyncConfig())
	require.NoError(t, err)
	defer c.Close()

	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		out, getErr := c.GetRandomness(context.Background(), 9)
		require.NoError(t, getErr)
		require.Len(t, out, 9)
		require.False(t, seen[string(out)])
		seen[string(out)] = true
	}
}

func TestAsync_CloseIsIdempotent(t *testing.T) {
	c, err := cache.New(newDriver(t), asyncConfig())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func multiThreadConfig(threads int) cache.Config {
	blockSize := extractor.ReferenceParams.OutputBlockBytes

	return cache.Config{
		Policy:      cache.PolicyMultiThread,
		Size:        blockSize * 32,
		Prefill:     blockSize * 24,
		RefillAt:    blockSize * 8,
		ThreadCount: threads,
	}
}

func TestMultiThread_ConcurrentGetsAllSucceedWithoutOverlap(t *testing.T) {
	c, err := cache.New(newDriver(t), multiThreadConfig(4))
	require.NoError(t, err)
	defer c.Close()

	const (
		goroutines = 8
		getsEach   = 20
		chunk      = 11
	)

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < getsEach; i++ {
				out, getErr := c.GetRandomness(context.Background(), chunk)
				require.NoError(t, getErr)
				require.Len(t, out, chunk)

				mu.Lock()
				require.False(t, seen[string(out)])
				seen[string(out)] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
}

func TestMultiThread_ZeroThreadCountUsesAvailableParallelism(t *testing.T) {
	cfg := multiThreadConfig(0)

	c, err := cache.New(newDriver(t), cfg)
	require.NoError(t, err)
	defer c.Close()

	out, getErr := c.GetRandomness(context.Background(), 5)
	require.NoError(t, getErr)
	require.Len(t, out, 5)
}

func TestMultiThread_ConfigRejectsNegativeThreadCount(t *testing.T) {
	cfg := multiThreadConfig(-1)

	_, err := cache.New(newDriver(t), cfg)
	require.ErrorIs(t, err, status.ErrWatermarkInvalid)
}

// stuckWSR always yields the same byte, tripping the repetition-count
// health test so the driver latches into the degraded state.
type stuckWSR struct{}

func (stuckWSR) Fill(_ context.Context, buf []byte) error {
	for i := range buf {
		buf[i] = 0xAA
	}

	return nil
}

func TestAsync_DegradedDriverPropagatesToWaitingGetters(t *testing.T) {
	d := extractor.New(validSeed(t), stuckWSR{}, extractor.Reference, extractor.ReferenceParams, true)
	c, err := cache.New(d, asyncConfig())
	require.NoError(t, err)
	defer c.Close()

	_, getErr := c.GetRandomness(context.Background(), asyncConfig().Size)
	require.ErrorIs(t, getErr, status.ErrHealthTestFailed)
}

type failingWSR struct{ err error }

func (f failingWSR) Fill(context.Context, []byte) error { return f.err }

func TestSync_DriverFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	d := extractor.New(validSeed(t), failingWSR{err: boom}, extractor.Reference, extractor.ReferenceParams, false)

	c, err := cache.New(d, syncConfig())
	require.NoError(t, err)
	defer c.Close()

	_, getErr := c.GetRandomness(context.Background(), 10)
	require.ErrorIs(t, getErr, status.ErrWSRReadFailed)
}

func TestPolicy_StringsAreStable(t *testing.T) {
	require.Equal(t, "none", cache.PolicyNone.String())
	require.Equal(t, "sync_cache", cache.PolicySync.String())
	require.Equal(t, "async_cache", cache.PolicyAsync.String())
	require.Equal(t, "multi_thread", cache.PolicyMultiThread.String())
}
