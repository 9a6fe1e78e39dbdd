package cabi

import (
	"sync"

	"github.com/corvid-systems/entropic/facade"
	"github.com/corvid-systems/entropic/status"
)

// Handles are opaque int64 identifiers handed to C callers in place of a
// Go pointer - cgo forbids storing Go pointers in C memory, so every
// *facade.Context / *facade.Builder the C side holds a reference to lives
// in one of these registries instead, keyed by a monotonically
// increasing handle.
var (
	contextsMu  sync.Mutex
	contexts    = make(map[int64]*facade.Context)
	nextContext int64 = 1

	buildersMu  sync.Mutex
	builders    = make(map[int64]*facade.Builder)
	nextBuilder int64 = 1
)

func registerContext(ctx *facade.Context) int64 {
	contextsMu.Lock()
	defer contextsMu.Unlock()

	h := nextContext
	nextContext++
	contexts[h] = ctx

	return h
}

func lookupContext(h int64) *facade.Context {
	contextsMu.Lock()
	defer contextsMu.Unlock()

	return contexts[h]
}

func unregisterContext(h int64) {
	contextsMu.Lock()
	defer contextsMu.Unlock()

	delete(contexts, h)
}

func registerBuilder(b *facade.Builder) int64 {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	h := nextBuilder
	nextBuilder++
	builders[h] = b

	return h
}

func lookupBuilder(h int64) *facade.Builder {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	return builders[h]
}

func unregisterBuilder(h int64) {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	delete(builders, h)
}

// lastErrMu/lastErr is the module-global last-error slot backing
// get_error_code/get_error_description, which - unlike every other
// exported function - take no handle argument at all (spec.md §6). See
// DESIGN.md for why this lives here, at the cabi boundary, rather than as
// process-wide state inside facade.Context.
var (
	lastErrMu sync.Mutex
	lastErr   error
)

func setLastErr(err error) {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()

	lastErr = err
}

func currentErrCode() status.Code {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()

	return status.Of(lastErr)
}

func currentErrDescription() string {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()

	if lastErr == nil {
		return ""
	}

	return lastErr.Error()
}
