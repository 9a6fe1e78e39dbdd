// Package configfile implements the declarative config-document front
// door ("Config file layout"): a JSONC document is standardized to JSON
// (hujson.Standardize, then encoding/json), a node_path selects a
// subtree, and that subtree's leaves map 1:1 onto the same option.Set the
// programmatic Builder populates - so both front doors converge on one
// validated option set before a Context is built.
package configfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/corvid-systems/entropic/option"
	"github.com/corvid-systems/entropic/status"
)

var (
	// ErrNodePathNotFound means the requested node_path has no matching
	// subtree in the document - distinct from status.ErrNodePathNotSupplied,
	// which is the C-ABI "caller passed a null node_path pointer" case.
	ErrNodePathNotFound = errors.New("configfile: node_path not found in document")
	// ErrNotAnObject means a resolved node_path names a leaf value, not a
	// subtree of options.
	ErrNotAnObject = errors.New("configfile: node_path does not resolve to an object")
)

// Load reads path, standardizes its JSONC content to JSON, resolves
// nodePath within the parsed document, and maps the resulting subtree's
// leaves onto a fresh option.Set. An empty nodePath or "/" denotes the
// document root.
func Load(path, nodePath string) (*option.Set, error) {
	if path == "" {
		return nil, status.ErrConfigFilenameNotSupplied
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled by design
	if err != nil {
		return nil, fmt.Errorf("configfile: reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("configfile: invalid JSONC in %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(standardized, &doc); err != nil {
		return nil, fmt.Errorf("configfile: invalid JSON in %s: %w", path, err)
	}

	node, err := resolveNodePath(doc, nodePath)
	if err != nil {
		return nil, err
	}

	return toOptionSet(node)
}

// resolveNodePath walks a "/"-separated path of object keys. An empty or
// "/" path denotes the root document itself.
func resolveNodePath(doc map[string]any, nodePath string) (map[string]any, error) {
	trimmed := strings.Trim(nodePath, "/")
	if trimmed == "" {
		return doc, nil
	}

	current := doc

	for _, segment := range strings.Split(trimmed, "/") {
		next, ok := current[segment]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNodePathNotFound, nodePath)
		}

		obj, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotAnObject, nodePath)
		}

		current = obj
	}

	return current, nil
}

// toOptionSet maps a subtree's leaves onto the option table by name: a
// string becomes the enum value it spells or the integer it parses as, else
// []byte (seed and license options) or a string; JSON numbers and booleans
// become int64.
func toOptionSet(node map[string]any) (*option.Set, error) {
	set := option.NewSet()

	for name, value := range node {
		id, ok := option.ByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", status.ErrUnsupportedOption, name)
		}

		if err := assign(set, id, value); err != nil {
			return nil, fmt.Errorf("configfile: option %q: %w", name, err)
		}
	}

	return set, nil
}

func assign(set *option.Set, id option.ID, value any) error {
	switch v := value.(type) {
	case string:
		if enumVal, ok := enumValue(id, v); ok {
			return set.SetInt(id, enumVal)
		}

		if id == option.SeedSignature || id == option.SeedContent || id == option.LicenseData {
			return set.SetBytes(id, []byte(v))
		}

		return set.SetStr(id, v)
	case float64: // encoding/json decodes all JSON numbers into float64
		return set.SetInt(id, int64(v))
	case bool:
		if v {
			return set.SetInt(id, 1)
		}

		return set.SetInt(id, 0)
	default:
		return fmt.Errorf("%w: unsupported JSON value type %T", status.ErrUnsupportedOption, value)
	}
}

// enumValue converts the string spelling of an enum option's value
// (e.g. CACHE_TYPE: "MultiThread") to its numeric form, the way the
// builder's set_int expects it.
func enumValue(id option.ID, s string) (int64, bool) {
	switch id {
	case option.CacheType:
		switch s {
		case "None":
			return int64(option.CacheTypeNone), true
		case "Caching":
			return int64(option.CacheTypeCaching), true
		case "SyncCaching":
			return int64(option.CacheTypeSyncCaching), true
		case "MultiThread":
			return int64(option.CacheTypeMultiThread), true
		}
	case option.WSRType:
		switch s {
		case "RDSEED":
			return int64(option.WSRTypeRDSEED), true
		case "File":
			return int64(option.WSRTypeFile), true
		case "Callback":
			return int64(option.WSRTypeCallback), true
		}
	case option.LoggingLevel:
		levels := []string{"None", "Critical", "Error", "Warning", "Info", "Debug", "Trace"}
		for i, name := range levels {
			if name == s {
				return int64(i), true
			}
		}
	case option.LoggingMode:
		modes := []string{"Stdout", "Stderr", "Syslog", "DailyFile", "File", "Inherit", "WinEventLog"}
		for i, name := range modes {
			if name == s {
				return int64(i), true
			}
		}
	case option.HealthTestsOutput:
		switch s {
		case "true":
			return 1, true
		case "false":
			return 0, true
		}
	}

	// Not a known enum spelling; if it still parses as a bare integer
	// string, accept that too (tolerant of hand-written config files).
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	return 0, false
}

// Save renders set back out as a JSON document under nodePath and writes
// it atomically, so a concurrent reader never observes a half-written
// file.
func Save(path, nodePath string, set *option.Set) error {
	leaves := make(map[string]any)

	for _, id := range []option.ID{
		option.LoggingFilename, option.LoggingLevel, option.LoggingMode,
		option.CacheType, option.CacheSize, option.CachePrefill, option.CacheRefillAt,
		option.WSRType, option.WSRPath, option.HealthTestsOutput,
		option.SeedSignature, option.SeedContent, option.CacheThreadCount, option.LicenseData,
	} {
		if v, ok := set.Int(id); ok {
			leaves[id.Name()] = v
		}

		if v, ok := set.Str(id); ok {
			leaves[id.Name()] = v
		}

		if v, ok := set.Bytes(id); ok {
			leaves[id.Name()] = string(v)
		}
	}

	doc := leaves
	if trimmed := strings.Trim(nodePath, "/"); trimmed != "" {
		for _, segment := range reverseSplit(trimmed) {
			doc = map[string]any{segment: doc}
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("configfile: marshaling %s: %w", path, err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("configfile: writing %s: %w", path, err)
	}

	return nil
}

func reverseSplit(s string) []string {
	parts := strings.Split(s, "/")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return parts
}
