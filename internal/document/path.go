package document

import "strings"

// Array-field-op modes accepted on tags/tips leaves.
const (
	arrayOpAppend       = "append"
	arrayOpPrepend      = "prepend"
	arrayOpReplace      = "replace"
	arrayOpUniqueAppend = "unique_append"
)

// arrayFieldLeaves are the dotted-path leaf segments where an
// {mode, values} object is interpreted as an array operation instead of a
// verbatim value.
var arrayFieldLeaves = map[string]struct{}{
	"tags": {},
	"tips": {},
}

// getPath resolves a dotted path against a nested map. Returns false when any
// segment is missing or not an object.
func getPath(m map[string]any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	var cur any = m
	for _, seg := range segs {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath sets value at a dotted path, creating intermediate maps as needed.
// An existing non-map intermediate is overwritten with a fresh map.
func setPath(m map[string]any, path string, value any) {
	segs := strings.Split(path, ".")
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

// pathLeaf returns the final segment of a dotted path.
func pathLeaf(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// arrayFieldOp extracts an array-op payload from a value destined for an
// array-field leaf. Returns false when the value is not op-shaped.
func arrayFieldOp(leaf string, value any) (mode string, values []string, ok bool) {
	if _, isArrayLeaf := arrayFieldLeaves[leaf]; !isArrayLeaf {
		return "", nil, false
	}
	m, isMap := value.(map[string]any)
	if !isMap {
		return "", nil, false
	}
	mode, _ = m["mode"].(string)
	switch mode {
	case arrayOpAppend, arrayOpPrepend, arrayOpReplace, arrayOpUniqueAppend:
	default:
		return "", nil, false
	}
	return mode, stringValues(m["values"]), true
}

// applyArrayOp combines the current array value with op values. Only
// non-empty strings survive; unique_append drops values already present.
func applyArrayOp(current any, mode string, values []string) []any {
	existing := stringValues(current)
	var combined []string
	switch mode {
	case arrayOpReplace:
		combined = values
	case arrayOpPrepend:
		combined = append(append([]string{}, values...), existing...)
	case arrayOpUniqueAppend:
		seen := make(map[string]struct{}, len(existing))
		combined = append([]string{}, existing...)
		for _, s := range existing {
			seen[s] = struct{}{}
		}
		for _, s := range values {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			combined = append(combined, s)
		}
	default: // append
		combined = append(append([]string{}, existing...), values...)
	}
	out := make([]any, 0, len(combined))
	for _, s := range combined {
		out = append(out, s)
	}
	return out
}

func stringValues(v any) []string {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
