// Package extractor drives the (seed, wsr_block) → output_block primitive
// in fixed-size blocks, feeding the WSR stream through online health tests
// along the way.
//
// The primitive itself, Extract, is an external collaborator (spec.md §1):
// this package specifies how it is driven - block sizes, ordering,
// determinism, health-test gating - not its internal math.
package extractor

import (
	"context"
	"fmt"
	"sync"

	"github.com/corvid-systems/entropic/seed"
	"github.com/corvid-systems/entropic/status"
	"github.com/corvid-systems/entropic/wsr"
)

// ExtractFunc maps (seed content, wsr block) to an output block. Two calls
// with identical arguments must return byte-identical output (spec.md §3:
// "outputs of different invocations with identical (seed, wsr_block) inputs
// are byte-identical").
type ExtractFunc func(seedContent, wsrBlock []byte) ([]byte, error)

// Params fixes the block sizes the primitive declares.
type Params struct {
	WSRBlockBytes    int
	OutputBlockBytes int
}

// Driver pulls WSR bytes, runs them through health tests, and invokes
// Extract to produce output blocks one at a time. A Driver is safe for
// concurrent use: NextBlock serializes internally, which is what lets the
// MultiThread cache policy run several worker goroutines against one Driver
// (spec.md §4.4).
type Driver struct {
	seed    *seed.Seed
	wsr     wsr.Provider
	extract ExtractFunc
	params  Params
	health  *HealthSuite

	mu           sync.Mutex
	startupDone  bool
	degraded     error
}

// New returns a Driver. healthTestsEnabled controls both the startup and
// continuous online tests (spec.md §6, HEALTH_TESTS_OUTPUT).
func New(sd *seed.Seed, provider wsr.Provider, extract ExtractFunc, params Params, healthTestsEnabled bool) *Driver {
	return &Driver{
		seed:    sd,
		wsr:     provider,
		extract: extract,
		params:  params,
		health:  NewHealthSuite(healthTestsEnabled),
	}
}

// NextBlock produces exactly one output_block_bytes block, following the
// per-block protocol in spec.md §4.2:
//  1. request wsr_block_bytes from the WSR provider;
//  2. if health tests are enabled, feed those bytes through the health
//     suite - a failure aborts the request and does not emit a block;
//  3. invoke Extract(seed, wsr_block);
//  4. return the output block.
//
// Once a health-test failure has latched, every subsequent call returns the
// same error without touching the WSR provider again (spec.md §4.2, §7).
//
// Steps 1-2 (shared WSR provider + health-test state) are serialized by an
// internal mutex; step 3 (Extract, CPU-bound) runs outside that lock, so
// concurrent callers - the MultiThread cache's worker goroutines - gain
// real parallelism on the expensive part instead of serializing on it.
func (d *Driver) NextBlock(ctx context.Context) ([]byte, error) {
	wsrBlock, err := d.nextValidatedWSRBlock(ctx)
	if err != nil {
		return nil, err
	}

	output, err := d.extract(d.seed.Content(), wsrBlock)
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", status.ErrExtractorFailed, err)
		d.latch(wrapped)

		return nil, wrapped
	}

	if len(output) != d.params.OutputBlockBytes {
		wrapped := fmt.Errorf("%w: extract returned %d bytes, want %d",
			status.ErrExtractorFailed, len(output), d.params.OutputBlockBytes)
		d.latch(wrapped)

		return nil, wrapped
	}

	return output, nil
}

func (d *Driver) latch(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.degraded == nil {
		d.degraded = err
	}
}

// nextValidatedWSRBlock pulls one wsr_block_bytes block (running the
// startup test first, exactly once) and feeds it through the continuous
// health test, all under d.mu.
func (d *Driver) nextValidatedWSRBlock(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.degraded != nil {
		return nil, d.degraded
	}

	if !d.startupDone {
		if err := d.runStartupTestLocked(ctx); err != nil {
			d.degraded = err

			return nil, err
		}

		d.startupDone = true
	}

	wsrBlock := make([]byte, d.params.WSRBlockBytes)
	if err := d.wsr.Fill(ctx, wsrBlock); err != nil {
		wrapped := fmt.Errorf("%w: %w", status.ErrWSRReadFailed, err)
		d.degraded = wrapped

		return nil, wrapped
	}

	if err := d.health.Feed(wsrBlock); err != nil {
		d.degraded = err

		return nil, err
	}

	return wsrBlock, nil
}

// runStartupTestLocked consumes and validates StartupPrefixBytes of WSR
// output before any block is emitted (spec.md §4.2). Callers hold d.mu.
func (d *Driver) runStartupTestLocked(ctx context.Context) error {
	if !d.health.enabled {
		return nil
	}

	prefix := make([]byte, StartupPrefixBytes)
	if err := d.wsr.Fill(ctx, prefix); err != nil {
		return fmt.Errorf("%w: startup prefix: %w", status.ErrWSRReadFailed, err)
	}

	return d.health.Feed(prefix)
}

// Degraded reports the latched failure, if the driver has entered the
// degraded state (spec.md glossary: "Degraded state").
func (d *Driver) Degraded() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.degraded
}

// OutputBlockBytes reports the fixed size of the blocks NextBlock produces,
// so callers (the cache policies) can size their buffers in whole blocks.
func (d *Driver) OutputBlockBytes() int {
	return d.params.OutputBlockBytes
}
