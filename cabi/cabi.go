// Package cabi implements the C-callable surface spec.md §6 names
// (init_from_config_file, setopt_*, get_randomness, destroy, the logging
// and error-description exports) as a thin cgo adapter over the facade
// package (spec.md §6: "cabi is a thin adapter over it, not a parallel
// implementation"). It owns handle registries and C-type marshaling only;
// every actual decision lives in facade, option, configfile, or logging.
package cabi

/*
#include <stddef.h>
#include <stdlib.h>
#include <stdarg.h>
#include <stdio.h>

typedef int (*entropic_wsr_callback)(unsigned char *buf, size_t buf_len, void *user_data);
typedef void (*entropic_log_callback3)(int level, const char *message, size_t length);
typedef void (*entropic_log_callback4)(int level, int code, const char *message, size_t length);

static int entropic_call_wsr_callback(entropic_wsr_callback fn, unsigned char *buf, size_t buf_len, void *user_data) {
	return fn(buf, buf_len, user_data);
}

static void entropic_call_log_callback3(entropic_log_callback3 fn, int level, const char *message, size_t length) {
	fn(level, message, length);
}

static void entropic_call_log_callback4(entropic_log_callback4 fn, int level, int code, const char *message, size_t length) {
	fn(level, code, message, length);
}

extern void entropicLogMessageImpl(int level, char *message);

static void entropic_log_message(int level, const char *fmt, ...) {
	char buf[1024];
	va_list args;
	va_start(args, fmt);
	vsnprintf(buf, sizeof(buf), fmt, args);
	va_end(args);
	entropicLogMessageImpl(level, buf);
}
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/corvid-systems/entropic/configfile"
	"github.com/corvid-systems/entropic/facade"
	"github.com/corvid-systems/entropic/logging"
	"github.com/corvid-systems/entropic/option"
	"github.com/corvid-systems/entropic/status"
)

// --- Initialization ---

//export entropic_setopt_init
func entropic_setopt_init() C.longlong {
	return C.longlong(registerBuilder(facade.NewBuilder()))
}

//export entropic_setopt_cleanup
func entropic_setopt_cleanup(builder C.longlong) {
	unregisterBuilder(int64(builder))
}

//export entropic_setopt_int
func entropic_setopt_int(builder C.longlong, opt C.int, value C.longlong) C.int {
	b := lookupBuilder(int64(builder))
	if b == nil {
		return fail(status.ErrContextNotSupplied)
	}

	return fail(b.SetInt(option.ID(opt), int64(value)))
}

//export entropic_setopt_str
func entropic_setopt_str(builder C.longlong, opt C.int, value *C.char) C.int {
	b := lookupBuilder(int64(builder))
	if b == nil {
		return fail(status.ErrContextNotSupplied)
	}

	if value == nil {
		return fail(status.ErrValuePtrNotSupplied)
	}

	return fail(b.SetStr(option.ID(opt), C.GoString(value)))
}

//export entropic_setopt_bytes
func entropic_setopt_bytes(builder C.longlong, opt C.int, value *C.uchar, length C.size_t) C.int {
	b := lookupBuilder(int64(builder))
	if b == nil {
		return fail(status.ErrContextNotSupplied)
	}

	if value == nil {
		return fail(status.ErrValuePtrNotSupplied)
	}

	buf := C.GoBytes(unsafe.Pointer(value), C.int(length))

	return fail(b.SetBytes(option.ID(opt), buf))
}

//export entropic_setopt_wsr_callback
func entropic_setopt_wsr_callback(builder C.longlong, fn C.entropic_wsr_callback, userData unsafe.Pointer) C.int {
	b := lookupBuilder(int64(builder))
	if b == nil {
		return fail(status.ErrContextNotSupplied)
	}

	if fn == nil {
		return fail(status.ErrCallbackPtrNotSupplied)
	}

	b.SetWSRCallback(func(buf []byte, _ any) int {
		if len(buf) == 0 {
			return 0
		}

		return int(C.entropic_call_wsr_callback(fn, (*C.uchar)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)), userData))
	}, nil)

	return fail(nil)
}

//export entropic_init_from_config_struct
func entropic_init_from_config_struct(builder C.longlong) C.longlong {
	b := lookupBuilder(int64(builder))
	if b == nil {
		setLastErr(status.ErrContextNotSupplied)

		return 0
	}

	ctx, err := b.Build()
	setLastErr(err)

	if err != nil {
		return 0
	}

	return C.longlong(registerContext(ctx))
}

//export entropic_init_from_config_file
func entropic_init_from_config_file(path *C.char, nodePath *C.char) C.longlong {
	if path == nil {
		setLastErr(status.ErrConfigFilenameNotSupplied)

		return 0
	}

	np := ""
	if nodePath != nil {
		np = C.GoString(nodePath)
	}

	set, err := configfile.Load(C.GoString(path), np)
	if err != nil {
		setLastErr(err)

		return 0
	}

	ctx, err := facade.BuildFromSet(set)
	setLastErr(err)

	if err != nil {
		return 0
	}

	return C.longlong(registerContext(ctx))
}

// --- Use ---

//export entropic_get_randomness
func entropic_get_randomness(handle C.longlong, buf *C.uchar, bufLen C.size_t, outLen *C.size_t) C.int {
	ctx := lookupContext(int64(handle))
	if ctx == nil {
		return fail(status.ErrContextNotSupplied)
	}

	if buf == nil {
		if outLen != nil {
			*outLen = 0
		}

		return fail(status.ErrDestBufferNotSupplied)
	}

	if outLen == nil {
		return fail(status.ErrBytesReturnedPtrNotSupplied)
	}

	out, err := ctx.GetRandomness(context.Background(), int(bufLen))
	if err != nil {
		*outLen = 0

		return fail(err)
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(bufLen))
	copy(dst, out)
	*outLen = C.size_t(len(out))

	return fail(nil)
}

// --- Lifecycle ---

//export entropic_destroy
func entropic_destroy(handle C.longlong) {
	h := int64(handle)

	ctx := lookupContext(h)
	if ctx == nil {
		return
	}

	setLastErr(ctx.Destroy())
	unregisterContext(h)
}

// --- Diagnostics ---

//export entropic_set_logging_callback3
func entropic_set_logging_callback3(fn C.entropic_log_callback3) {
	if fn == nil {
		logging.Clear()

		return
	}

	logging.SetCallback(func(level logging.Level, _ status.Code, message string) {
		cMsg := C.CString(message)
		defer C.free(unsafe.Pointer(cMsg))

		C.entropic_call_log_callback3(fn, C.int(level), cMsg, C.size_t(len(message)))
	})
}

//export entropic_set_logging_callback4
func entropic_set_logging_callback4(fn C.entropic_log_callback4) {
	if fn == nil {
		logging.Clear()

		return
	}

	logging.SetCallback(func(level logging.Level, code status.Code, message string) {
		cMsg := C.CString(message)
		defer C.free(unsafe.Pointer(cMsg))

		C.entropic_call_log_callback4(fn, C.int(level), C.int(code), cMsg, C.size_t(len(message)))
	})
}

//export entropic_clear_logging_callback
func entropic_clear_logging_callback() {
	logging.Clear()
}

//export entropicLogMessageImpl
func entropicLogMessageImpl(level C.int, message *C.char) {
	logging.Emit(logging.Level(level), status.OK, C.GoString(message))
}

//export entropic_get_error_code
func entropic_get_error_code() C.int {
	return C.int(currentErrCode())
}

//export entropic_get_error_description
func entropic_get_error_description() *C.char {
	return C.CString(currentErrDescription())
}

//export entropic_free_string
func entropic_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// fail records err (nil included) in the last-error slot and returns its
// translated status code - the one-line idiom every setopt_*/get_randomness
// export uses instead of repeating setLastErr+status.Of at each call site.
func fail(err error) C.int {
	setLastErr(err)

	return C.int(status.Of(err))
}
