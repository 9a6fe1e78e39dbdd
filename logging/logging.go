// Package logging implements the process-wide logging callback bridge:
// one registered sink, concurrent registration and emission guarded by a
// single sync.RWMutex, with emitters as "readers" of the callback
// pointer and SetCallback/Clear as the "writer".
package logging

import (
	"sync"

	"github.com/corvid-systems/entropic/status"
)

// Level mirrors the LOGGING_LEVEL option's enum (spec.md §6).
type Level int

const (
	LevelNone Level = iota
	LevelCritical
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelCritical:
		return "critical"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Callback is the Go sink signature: level, the numeric status code
// associated with the message (status.OK for a plain log line), and the
// message text, whose length the string carries. It is the Go-side
// counterpart of the 4-argument C signature (level, code, message, length);
// cabi adapts it to the legacy 3-arg C sink by dropping the code.
type Callback func(level Level, code status.Code, message string)

var (
	mu   sync.RWMutex
	sink Callback
)

// SetCallback registers sink as the process-wide logging callback,
// replacing any previously registered one. A nil sink is equivalent to
// Clear.
func SetCallback(cb Callback) {
	mu.Lock()
	defer mu.Unlock()

	sink = cb
}

// Clear removes the registered callback; subsequent Emit calls are no-ops.
func Clear() {
	mu.Lock()
	defer mu.Unlock()

	sink = nil
}

// Emit delivers one log line to the registered sink, if any. It never
// returns an error and never affects the outcome of the data-plane call
// that triggered it (spec.md §7: "Logging errors never alter the
// success/failure of a data call").
func Emit(level Level, code status.Code, message string) {
	mu.RLock()
	cb := sink
	mu.RUnlock()

	if cb == nil {
		return
	}

	cb(level, code, message)
}
