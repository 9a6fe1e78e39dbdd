// Package facade implements the Go-idiomatic entry point spec.md §4.5
// describes: Builder (the programmatic option-builder) and Context (the
// Building→Ready→Destroyed handle get_randomness operates on). cabi is a
// thin cgo adapter over this package, not a parallel implementation
// (spec.md §6).
package facade

import (
	"errors"
	"sync"

	"github.com/corvid-systems/entropic/option"
)

// ErrBuilderAlreadyBuilt is returned by a second call to Build on the same
// Builder. The documented "Builder → Context transfer: model as
// consumption" (spec.md §9) means a Builder produces at most one Context.
var ErrBuilderAlreadyBuilt = errors.New("facade: builder already consumed by a previous Build call")

// Builder accumulates options and produces a Context. Per spec.md §4.1,
// setopt calls after a successful Build are documented no-ops rather than
// errors - this is the "builder freeze" testable property (spec.md §8).
type Builder struct {
	mu    sync.Mutex
	set   *option.Set
	built bool
}

// NewBuilder returns an empty Builder, equivalent to spec.md's
// new_builder().
func NewBuilder() *Builder {
	return &Builder{set: option.NewSet()}
}

// SetInt sets an integer or enum-valued option. A no-op once the Builder
// has been consumed by Build.
func (b *Builder) SetInt(id option.ID, v int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil
	}

	return b.set.SetInt(id, v)
}

// SetStr sets a string-valued option. A no-op once consumed.
func (b *Builder) SetStr(id option.ID, v string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil
	}

	return b.set.SetStr(id, v)
}

// SetBytes sets a bytes-valued option, deep-copying v. A no-op once
// consumed.
func (b *Builder) SetBytes(id option.ID, v []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil
	}

	return b.set.SetBytes(id, v)
}

// SetWSRCallback registers the callback to use when WSR_TYPE=Callback. A
// no-op once consumed.
func (b *Builder) SetWSRCallback(fn option.WSRCallbackFunc, userData any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return
	}

	b.set.SetWSRCallback(fn, userData)
}

// Build validates the accumulated options and, on success, returns a
// Ready Context. Subsequent calls to any setopt method on this Builder are
// no-ops; a second call to Build itself returns ErrBuilderAlreadyBuilt.
func (b *Builder) Build() (*Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil, ErrBuilderAlreadyBuilt
	}

	ctx, err := newContextFromSet(b.set)
	if err != nil {
		return nil, err
	}

	b.built = true

	return ctx, nil
}
