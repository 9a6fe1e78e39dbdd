// Package status defines the stable numeric error surface shared by every
// layer of the entropy-amplification engine, and the sentinel errors that
// map onto it.
//
// Internal packages return (or wrap, via fmt.Errorf's %w) the sentinels
// declared here rather than inventing their own. The façade and the cabi
// layer translate a returned error to a [Code] with [Of] at the one point
// where a numeric status actually has to cross an API boundary; nothing in
// between should be switching on these codes directly.
package status

import (
	"errors"
	"fmt"
)

// Code is a dense, stable numeric status identifier. Zero is success.
type Code int

// Code floors. Existing integrations depend on these exact values.
const (
	// Floor reserves 13800 for this module's own error kinds.
	floorCore = 13800

	// Floor reserves 41000 for errors surfaced verbatim from a WSR callback.
	FloorWSRCallback = 41000
)

// OK is the zero status: success.
const OK Code = 0

// Core status codes, in taxonomy order (Parameter, Seed, Config, Runtime,
// Exception; see the sentinel declarations below for what each one means).
const (
	CodeConfigFilenameNotSupplied Code = floorCore + iota
	CodeNodePathNotSupplied
	CodeContextNotSupplied
	CodeDestBufferNotSupplied
	CodeBytesReturnedPtrNotSupplied
	CodeCallbackPtrNotSupplied
	CodeMsgBufferNotSupplied
	CodeValuePtrNotSupplied

	CodeFailedToAssignSeedSignature
	CodeFailedToAssignSeedContent
	CodeFailedToAssignLicenseContent
	CodeSeedSignatureInvalid

	CodeUnsupportedOption
	CodeWatermarkInvalid
	CodeCacheSizeInvalid
	CodeThreadCountInvalid
	CodeMissingRequiredOption

	CodeWSRReadFailed
	CodeWSROpenFailed
	CodeWSROutOfMemory
	CodeWSRNullBuffer
	CodeWSRInvalidSize
	CodeWSRNotInitialized
	CodeWSRUnspecified
	CodeWSRCallbackFailed
	CodeHealthTestFailed
	CodeExtractorFailed
	CodeCacheUnderrun
	CodeContextDestroyed
	_ // reserved: formerly CodeContextNotReady, never returned by any state this module has
	CodeContextDegraded

	CodeOnboardStdException
	CodeOnboardUnknownException
	CodeVsnprintfError
)

// Sentinel errors. Every package in this module returns or wraps one of
// these at the point an operation fails; they are the single source of
// truth for the §7 error taxonomy.
var (
	// --- Parameter ---
	ErrConfigFilenameNotSupplied     = errors.New("config filename not supplied")
	ErrNodePathNotSupplied           = errors.New("node path not supplied")
	ErrContextNotSupplied            = errors.New("context not supplied")
	ErrDestBufferNotSupplied         = errors.New("destination buffer not supplied")
	ErrBytesReturnedPtrNotSupplied   = errors.New("bytes-returned pointer not supplied")
	ErrCallbackPtrNotSupplied        = errors.New("callback pointer not supplied")
	ErrMsgBufferNotSupplied          = errors.New("message buffer not supplied")
	ErrValuePtrNotSupplied           = errors.New("value pointer not supplied")

	// --- Seed ---
	ErrFailedToAssignSeedSignature   = errors.New("failed to assign seed signature")
	ErrFailedToAssignSeedContent     = errors.New("failed to assign seed content")
	ErrFailedToAssignLicenseContent  = errors.New("failed to assign license content")
	ErrSeedSignatureInvalid          = errors.New("seed signature invalid")

	// --- Config ---
	ErrUnsupportedOption             = errors.New("unsupported option")
	ErrWatermarkInvalid              = errors.New("cache watermark configuration invalid")
	ErrCacheSizeInvalid              = errors.New("cache size invalid")
	ErrThreadCountInvalid            = errors.New("thread count invalid")
	ErrMissingRequiredOption         = errors.New("missing required option")

	// --- Runtime ---
	ErrWSRReadFailed                 = errors.New("wsr read failed")
	ErrWSROpenFailed                 = errors.New("wsr open failed")
	ErrWSROutOfMemory                = errors.New("wsr out of memory")
	ErrWSRNullBuffer                 = errors.New("wsr null buffer")
	ErrWSRInvalidSize                = errors.New("wsr invalid size")
	ErrWSRNotInitialized             = errors.New("wsr not initialized")
	ErrWSRUnspecified                = errors.New("wsr unspecified error")
	ErrWSRCallbackFailed             = errors.New("wsr callback failed")
	ErrHealthTestFailed              = errors.New("health test failed")
	ErrExtractorFailed               = errors.New("extractor failed")
	ErrCacheUnderrun                 = errors.New("cache underrun")
	ErrContextDestroyed              = errors.New("context destroyed")
	ErrContextDegraded               = errors.New("context degraded")

	// --- Exception ---
	ErrOnboardStdException          = errors.New("internal exception")
	ErrOnboardUnknownException      = errors.New("internal unknown exception")
	ErrVsnprintfError               = errors.New("formatting error")
)

// table maps each sentinel to its stable code, in the same order they were
// declared above. Kept as a slice of pairs (not a map keyed by the sentinel's
// text) so lookups go through errors.Is, which respects wrapping.
var table = []struct {
	err  error
	code Code
}{
	{ErrConfigFilenameNotSupplied, CodeConfigFilenameNotSupplied},
	{ErrNodePathNotSupplied, CodeNodePathNotSupplied},
	{ErrContextNotSupplied, CodeContextNotSupplied},
	{ErrDestBufferNotSupplied, CodeDestBufferNotSupplied},
	{ErrBytesReturnedPtrNotSupplied, CodeBytesReturnedPtrNotSupplied},
	{ErrCallbackPtrNotSupplied, CodeCallbackPtrNotSupplied},
	{ErrMsgBufferNotSupplied, CodeMsgBufferNotSupplied},
	{ErrValuePtrNotSupplied, CodeValuePtrNotSupplied},

	{ErrFailedToAssignSeedSignature, CodeFailedToAssignSeedSignature},
	{ErrFailedToAssignSeedContent, CodeFailedToAssignSeedContent},
	{ErrFailedToAssignLicenseContent, CodeFailedToAssignLicenseContent},
	{ErrSeedSignatureInvalid, CodeSeedSignatureInvalid},

	{ErrUnsupportedOption, CodeUnsupportedOption},
	{ErrWatermarkInvalid, CodeWatermarkInvalid},
	{ErrCacheSizeInvalid, CodeCacheSizeInvalid},
	{ErrThreadCountInvalid, CodeThreadCountInvalid},
	{ErrMissingRequiredOption, CodeMissingRequiredOption},

	{ErrWSRReadFailed, CodeWSRReadFailed},
	{ErrWSROpenFailed, CodeWSROpenFailed},
	{ErrWSROutOfMemory, CodeWSROutOfMemory},
	{ErrWSRNullBuffer, CodeWSRNullBuffer},
	{ErrWSRInvalidSize, CodeWSRInvalidSize},
	{ErrWSRNotInitialized, CodeWSRNotInitialized},
	{ErrWSRUnspecified, CodeWSRUnspecified},
	{ErrWSRCallbackFailed, CodeWSRCallbackFailed},
	{ErrHealthTestFailed, CodeHealthTestFailed},
	{ErrExtractorFailed, CodeExtractorFailed},
	{ErrCacheUnderrun, CodeCacheUnderrun},
	{ErrContextDestroyed, CodeContextDestroyed},
	{ErrContextDegraded, CodeContextDegraded},

	{ErrOnboardStdException, CodeOnboardStdException},
	{ErrOnboardUnknownException, CodeOnboardUnknownException},
	{ErrVsnprintfError, CodeVsnprintfError},
}

// CallbackError carries a WSR callback's own raw numeric code through to
// [Of] verbatim, rather than collapsing every callback failure onto the
// single CodeWSRCallbackFailed sentinel. Code is conventionally in the
// [FloorWSRCallback] family, but Of trusts whatever the callback returned.
type CallbackError struct {
	Code Code
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("wsr callback returned code %d", int(e.Code))
}

// Is reports ErrWSRCallbackFailed as a match, so existing callers checking
// errors.Is(err, ErrWSRCallbackFailed) keep working regardless of which
// specific code the callback returned.
func (e *CallbackError) Is(target error) bool {
	return target == ErrWSRCallbackFailed
}

// Of returns the stable status code for err, walking its wrap chain with
// [errors.Is]. A nil error maps to [OK]. A [*CallbackError] surfaces its own
// Code directly, ahead of the table walk, since it represents a whole family
// of codes rather than one fixed sentinel. An error that doesn't wrap one of
// this package's sentinels maps to [CodeOnboardUnknownException] - it
// crossed a boundary it shouldn't have without being classified first.
func Of(err error) Code {
	if err == nil {
		return OK
	}

	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		return cbErr.Code
	}

	for _, row := range table {
		if errors.Is(err, row.err) {
			return row.code
		}
	}

	return CodeOnboardUnknownException
}

// String renders a human-readable label for c, independent of any
// particular error's dynamic message.
func (c Code) String() string {
	if c == OK {
		return "ok"
	}

	for _, row := range table {
		if Of(row.err) == c {
			return row.err.Error()
		}
	}

	if c >= FloorWSRCallback {
		return "wsr callback error"
	}

	return "unknown status"
}
