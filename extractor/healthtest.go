package extractor

import (
	"fmt"

	"github.com/corvid-systems/entropic/status"
)

// StartupPrefixBytes is the size of the fixed prefix the startup health
// test consumes and validates before the driver emits its first block
// (spec.md §4.2). It is independent of the extractor's wsr_block_bytes.
const StartupPrefixBytes = 4096

// repetitionCutoff and proportionCutoff are the health tests' cutoffs. Both
// online tests here are simplified restatements of the two canonical
// NIST SP 800-90B tests (Repetition Count Test and Adaptive Proportion
// Test): spec.md §4.2 calls these "industry-standard online tests... the
// which-algorithm is a primitive detail", so cutoffs are chosen to be
// obviously conservative for a byte-oriented stream rather than derived
// from an assumed per-sample min-entropy bound.
const (
	repetitionCutoff  = 64
	proportionWindow  = 1024
	proportionCutoff  = proportionWindow / 2
)

// HealthSuite runs the two online health tests over a WSR byte stream: a
// repetition-count test (catches a source stuck at a constant value) and an
// adaptive-proportion test (catches a source biased toward one value over a
// window). A failure is sticky - once [HealthSuite.Failed] reports an error, [HealthSuite.Feed]
// keeps returning the same error without re-examining new bytes.
type HealthSuite struct {
	enabled bool

	lastByte     byte
	haveLast     bool
	repeatCount  int

	windowFirst byte
	windowCount int
	windowSize  int

	failed error
}

// NewHealthSuite returns a suite that is a no-op when enabled is false,
// matching HEALTH_TESTS_OUTPUT=false (spec.md §6).
func NewHealthSuite(enabled bool) *HealthSuite {
	return &HealthSuite{enabled: enabled}
}

// Failed reports the latched health-test failure, if any.
func (h *HealthSuite) Failed() error {
	return h.failed
}

// Feed runs both online tests over block. Once a failure has latched, Feed
// returns it immediately without consuming block (spec.md §4.2: "A failure
// is sticky... all subsequent get_randomness calls fail until the context
// is destroyed").
func (h *HealthSuite) Feed(block []byte) error {
	if !h.enabled {
		return nil
	}

	if h.failed != nil {
		return h.failed
	}

	for _, b := range block {
		if err := h.feedByte(b); err != nil {
			h.failed = err

			return err
		}
	}

	return nil
}

func (h *HealthSuite) feedByte(b byte) error {
	if !h.haveLast {
		h.haveLast = true
		h.lastByte = b
		h.repeatCount = 1
	} else if b == h.lastByte {
		h.repeatCount++
		if h.repeatCount >= repetitionCutoff {
			return fmt.Errorf("%w: repetition count test: byte 0x%02x repeated %d times",
				status.ErrHealthTestFailed, b, h.repeatCount)
		}
	} else {
		h.lastByte = b
		h.repeatCount = 1
	}

	if h.windowSize == 0 {
		h.windowFirst = b
		h.windowCount = 1
		h.windowSize = 1

		return nil
	}

	if b == h.windowFirst {
		h.windowCount++
	}

	h.windowSize++

	if h.windowSize >= proportionWindow {
		count := h.windowCount
		h.windowSize = 0
		h.windowCount = 0

		if count >= proportionCutoff {
			return fmt.Errorf("%w: adaptive proportion test: byte 0x%02x seen %d/%d times",
				status.ErrHealthTestFailed, h.windowFirst, count, proportionWindow)
		}
	}

	return nil
}
