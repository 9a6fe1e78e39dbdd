// Package option defines the recognized option table from spec.md §6 - the
// stable numeric IDs, their value kinds, and the enums each ID's integer
// value is drawn from - plus Set, the typed option store both the
// programmatic Builder and the declarative configfile loader populate
// before a Context is built from it.
package option

import (
	"bytes"
	"fmt"

	"github.com/corvid-systems/entropic/status"
)

// ID is a recognized option identifier (spec.md §6, "Recognized options").
type ID int

const (
	LoggingFilename ID = iota
	LoggingLevel
	LoggingMode
	CacheType
	CacheSize
	CachePrefill
	CacheRefillAt
	WSRType
	WSRPath
	HealthTestsOutput
	SeedSignature
	SeedContent
	CacheThreadCount
	LicenseData
)

// Kind is the value type an ID accepts.
type Kind int

const (
	KindInt Kind = iota
	KindStr
	KindBytes
)

var kindOf = map[ID]Kind{
	LoggingFilename:   KindStr,
	LoggingLevel:      KindInt,
	LoggingMode:       KindInt,
	CacheType:         KindInt,
	CacheSize:         KindInt,
	CachePrefill:      KindInt,
	CacheRefillAt:     KindInt,
	WSRType:           KindInt,
	WSRPath:           KindStr,
	HealthTestsOutput: KindInt,
	SeedSignature:     KindBytes,
	SeedContent:       KindBytes,
	CacheThreadCount:  KindInt,
	LicenseData:       KindBytes,
}

// Name renders the stable, external option name - the same spelling used
// in the recognized-options table and in config documents.
func (id ID) Name() string {
	switch id {
	case LoggingFilename:
		return "LOGGING_FILENAME"
	case LoggingLevel:
		return "LOGGING_LEVEL"
	case LoggingMode:
		return "LOGGING_MODE"
	case CacheType:
		return "CACHE_TYPE"
	case CacheSize:
		return "CACHE_SIZE"
	case CachePrefill:
		return "CACHE_PREFILL"
	case CacheRefillAt:
		return "CACHE_REFILL_AT"
	case WSRType:
		return "WSR_TYPE"
	case WSRPath:
		return "WSR_PATH"
	case HealthTestsOutput:
		return "HEALTH_TESTS_OUTPUT"
	case SeedSignature:
		return "SEED_SIGNATURE"
	case SeedContent:
		return "SEED_CONTENT"
	case CacheThreadCount:
		return "CACHE_THREAD_COUNT"
	case LicenseData:
		return "LICENSE_DATA"
	default:
		return fmt.Sprintf("option(%d)", int(id))
	}
}

// ByName resolves the external option name back to its ID. Used by
// configfile, whose documents name options the way the table in spec.md
// §6 does.
func ByName(name string) (ID, bool) {
	for id := LoggingFilename; id <= LicenseData; id++ {
		if id.Name() == name {
			return id, true
		}
	}

	return 0, false
}

// CacheTypeValue is the CACHE_TYPE enum (spec.md §6: None/Caching/
// SyncCaching/MultiThread - "Caching" is the async-single-worker
// discipline, "SyncCaching" the inline-refill discipline).
type CacheTypeValue int64

const (
	CacheTypeNone CacheTypeValue = iota
	CacheTypeCaching
	CacheTypeSyncCaching
	CacheTypeMultiThread
)

// WSRTypeValue is the WSR_TYPE enum.
type WSRTypeValue int64

const (
	WSRTypeRDSEED WSRTypeValue = iota
	WSRTypeFile
	WSRTypeCallback
)

// LoggingModeValue is the LOGGING_MODE enum.
type LoggingModeValue int64

const (
	LoggingModeStdout LoggingModeValue = iota
	LoggingModeStderr
	LoggingModeSyslog
	LoggingModeDailyFile
	LoggingModeFile
	LoggingModeInherit
	LoggingModeWinEventLog
)

// WSRCallbackFunc matches wsr.CallbackFunc's shape without importing the
// wsr package, so option has no dependency on the providers it only stores
// a reference for.
type WSRCallbackFunc func(buf []byte, userData any) int

// Set is a typed option store. It is the shared currency between Builder
// (programmatic) and configfile (declarative): both populate a Set, and
// facade.BuildFromSet (which Builder.Build shares) consumes one, regardless
// of which front door produced it
// (spec.md §4.6.2, the "config round-trip" testable property).
type Set struct {
	ints  map[ID]int64
	strs  map[ID]string
	byts  map[ID][]byte

	wsrCallback    WSRCallbackFunc
	wsrUserData    any
	hasWSRCallback bool
}

// NewSet returns an empty option set.
func NewSet() *Set {
	return &Set{
		ints: make(map[ID]int64),
		strs: make(map[ID]string),
		byts: make(map[ID][]byte),
	}
}

func (s *Set) SetInt(id ID, v int64) error {
	if kindOf[id] != KindInt {
		return fmt.Errorf("%w: %s is not an integer option", status.ErrUnsupportedOption, id.Name())
	}

	s.ints[id] = v

	return nil
}

func (s *Set) SetStr(id ID, v string) error {
	if kindOf[id] != KindStr {
		return fmt.Errorf("%w: %s is not a string option", status.ErrUnsupportedOption, id.Name())
	}

	s.strs[id] = v

	return nil
}

// SetBytes deep-copies v, matching spec.md §4.1's "set_bytes ... (deep
// copy)".
func (s *Set) SetBytes(id ID, v []byte) error {
	if kindOf[id] != KindBytes {
		return fmt.Errorf("%w: %s is not a bytes option", status.ErrUnsupportedOption, id.Name())
	}

	cp := make([]byte, len(v))
	copy(cp, v)
	s.byts[id] = cp

	return nil
}

// SetWSRCallback records the callback and user data to use when
// WSR_TYPE=Callback.
func (s *Set) SetWSRCallback(fn WSRCallbackFunc, userData any) {
	s.wsrCallback = fn
	s.wsrUserData = userData
	s.hasWSRCallback = true
}

func (s *Set) Int(id ID) (int64, bool) {
	v, ok := s.ints[id]

	return v, ok
}

// IntOr returns the stored value or a default if unset.
func (s *Set) IntOr(id ID, def int64) int64 {
	if v, ok := s.ints[id]; ok {
		return v
	}

	return def
}

func (s *Set) Str(id ID) (string, bool) {
	v, ok := s.strs[id]

	return v, ok
}

func (s *Set) Bytes(id ID) ([]byte, bool) {
	v, ok := s.byts[id]

	return v, ok
}

func (s *Set) WSRCallback() (WSRCallbackFunc, any, bool) {
	return s.wsrCallback, s.wsrUserData, s.hasWSRCallback
}

// Clone deep-copies the set, so tests can snapshot one Set and keep
// mutating the original without disturbing the snapshot (exercised with
// go-cmp in option_test.go).
func (s *Set) Clone() *Set {
	out := NewSet()

	for id, v := range s.ints {
		out.ints[id] = v
	}

	for id, v := range s.strs {
		out.strs[id] = v
	}

	for id, v := range s.byts {
		cp := make([]byte, len(v))
		copy(cp, v)
		out.byts[id] = cp
	}

	out.wsrCallback = s.wsrCallback
	out.wsrUserData = s.wsrUserData
	out.hasWSRCallback = s.hasWSRCallback

	return out
}

// Equal lets go-cmp.Diff compare two Sets without reaching into their
// unexported maps (go-cmp honors an Equal(T) bool method when present).
// Function-valued fields (the WSR callback) compare only by "is one set",
// since func values are never comparable for equality.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.ints) != len(other.ints) || len(s.strs) != len(other.strs) || len(s.byts) != len(other.byts) {
		return false
	}

	for id, v := range s.ints {
		if ov, ok := other.ints[id]; !ok || ov != v {
			return false
		}
	}

	for id, v := range s.strs {
		if ov, ok := other.strs[id]; !ok || ov != v {
			return false
		}
	}

	for id, v := range s.byts {
		ov, ok := other.byts[id]
		if !ok || !bytes.Equal(ov, v) {
			return false
		}
	}

	return s.hasWSRCallback == other.hasWSRCallback
}
