package state

import (
	"fmt"
	"strings"
)

// Record is one vehicle's full state snapshot as returned by the fleet
// source: arbitrary depth, string keys, heterogeneous leaf types.
type Record map[string]any

// ErrNotAMap is returned by Set when an intermediate path segment already
// holds a non-map leaf value.
var ErrNotAMap = fmt.Errorf("intermediate path segment is not a map")

// Get resolves a dot-separated key path inside the record and returns the
// raw leaf value. The second return is false when the record is nil, any
// intermediate segment is missing, or an intermediate value is not a map.
// A missing path is absence, never an error, and no type coercion is done.
func Get(rec Record, path string) (any, bool) {
	if rec == nil || path == "" {
		return nil, false
	}
	var cur any = map[string]any(rec)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// GetString resolves the path and asserts the leaf to a string. Non-string
// leaves are treated as absent.
func GetString(rec Record, path string) (string, bool) {
	v, ok := Get(rec, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFloat resolves the path to a numeric leaf. JSON decoding yields
// float64, but records built in tests may carry native ints.
func GetFloat(rec Record, path string) (float64, bool) {
	v, ok := Get(rec, path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Set writes value at the dot-separated path, creating missing intermediate
// maps along the way. The record is mutated in place. When an intermediate
// segment already holds a non-map leaf, Set returns ErrNotAMap and leaves
// the record untouched rather than overwriting the leaf.
func Set(rec Record, path string, value any) error {
	if rec == nil {
		return fmt.Errorf("set %q: nil record", path)
	}
	if path == "" {
		return fmt.Errorf("set: empty path")
	}
	keys := strings.Split(path, ".")
	cur := map[string]any(rec)
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key]
		if !ok || next == nil {
			child := map[string]any{}
			cur[key] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("set %q: segment %q: %w", path, key, ErrNotAMap)
		}
		cur = child
	}
	cur[keys[len(keys)-1]] = value
	return nil
}
