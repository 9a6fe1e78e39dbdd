// Package wsr provides the weak-source-of-randomness abstraction the
// extractor drives: a single capability, Fill, implemented by three
// variants (hardware instruction, file/device, and caller-supplied
// callback). None of the three variants' actual entropy quality is this
// package's concern - spec.md §1 treats WSR providers as external
// collaborators; this package specifies and drives the interface they
// implement.
package wsr

import "context"

// Provider fills buf with weak-source-of-randomness bytes, or fails with one
// of the sentinel errors in package status (ErrWSR*). A short, non-error
// fill is never reported as success: implementations loop internally until
// buf is full or a hard error occurs.
type Provider interface {
	Fill(ctx context.Context, buf []byte) error
}
