package cache

import (
	"context"

	"github.com/corvid-systems/entropic/extractor"
)

// noneCache implements PolicyNone: every GetRandomness pulls as many blocks
// as needed directly from the driver and trims the last one to size. There
// is no persistent state to close.
type noneCache struct {
	driver *extractor.Driver
}

func newNone(driver *extractor.Driver) *noneCache {
	return &noneCache{driver: driver}
}

func (c *noneCache) GetRandomness(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}

	out := make([]byte, 0, n)
	blockSize := c.driver.OutputBlockBytes()

	for len(out) < n {
		block, err := c.driver.NextBlock(ctx)
		if err != nil {
			return nil, err
		}

		remaining := n - len(out)
		if remaining < blockSize {
			out = append(out, block[:remaining]...)
		} else {
			out = append(out, block...)
		}
	}

	return out, nil
}

func (c *noneCache) Close() error { return nil }

func (c *noneCache) Degraded() error { return c.driver.Degraded() }
