// Package types provides type definitions for structured data used throughout the persona-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Item is a single content item from a content document: a highlight card, a
// section card, or a recommended read. Items are free-form JSON objects; the
// engine reads a handful of well-known fields and passes the rest through
// untouched.
type Item map[string]any

// ID returns the item's id field, or "" if missing or not a string.
func (it Item) ID() string {
	return stringField(it, "id")
}

// Kind returns the item's kind field, or "" if missing or not a string.
func (it Item) Kind() string {
	return stringField(it, "kind")
}

// Priority returns the item's declared priority, or 0 if missing.
// JSON numbers decode as float64; both int and float64 are accepted.
func (it Item) Priority() int {
	switch v := it["priority"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Tags returns the item's declared tag list. Non-string entries and empty
// strings are dropped.
func (it Item) Tags() []string {
	return StringList(it["tags"])
}

// Clone returns a deep copy of the item. Mutating the copy never affects the
// original, which the mutation pipeline relies on.
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	return Item(cloneMap(it))
}

// CloneItems deep-copies a list of items.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// ItemsFromAny converts a decoded JSON list into []Item, skipping entries that
// are not objects.
func ItemsFromAny(v any) []Item {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Item, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, Item(m))
		}
	}
	return out
}

// StringList coerces a decoded JSON value into a list of non-empty strings.
// Accepts a single string, []string, or []any of strings.
func StringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case Item:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// CloneValue deep-copies an arbitrary decoded JSON value.
func CloneValue(v any) any {
	return cloneValue(v)
}
