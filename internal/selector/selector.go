// Package selector resolves declarative item selectors against a content list
// into the concrete index set a rule applies to.
package selector

import "github.com/jonathan/persona-engine/internal/types"

// Resolve maps a selector onto the indexes of list it selects. A nil selector
// selects every index. Shapes are tried in priority order: index/indexes,
// id/ids, kind, where. Anything unrecognized resolves to the empty set:
// fail-closed, a malformed selector must never mean "all".
func Resolve(list []types.Item, sel map[string]any) []int {
	if sel == nil {
		return allIndexes(len(list))
	}

	if all, ok := sel["all"].(bool); ok && all {
		return allIndexes(len(list))
	}

	if idxs, ok := indexList(sel); ok {
		out := make([]int, 0, len(idxs))
		for _, i := range idxs {
			if i >= 0 && i < len(list) {
				out = append(out, i)
			}
		}
		return out
	}

	if ids := idList(sel); ids != nil {
		want := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			want[id] = struct{}{}
		}
		out := []int{}
		for i, it := range list {
			if _, ok := want[it.ID()]; ok {
				out = append(out, i)
			}
		}
		return out
	}

	if kind, ok := sel["kind"].(string); ok && kind != "" {
		out := []int{}
		for i, it := range list {
			if it.Kind() == kind {
				out = append(out, i)
			}
		}
		return out
	}

	if where, ok := sel["where"].(map[string]any); ok {
		return resolveWhere(list, where)
	}

	return []int{}
}

// NormalizeMatch converts the shorthand match.item shapes used by override
// rules (a single id string, a list of id strings, {id: ...}, {kind: ...})
// into the canonical selector map. A missing item value (nil) stays nil,
// meaning "all indexes".
func NormalizeMatch(v any) (map[string]any, bool) {
	switch item := v.(type) {
	case nil:
		return nil, true
	case string:
		if item == "" {
			return map[string]any{}, false
		}
		return map[string]any{"ids": []any{item}}, true
	case []any:
		ids := types.StringList(item)
		if len(ids) == 0 {
			return map[string]any{}, false
		}
		anyIDs := make([]any, len(ids))
		for i, id := range ids {
			anyIDs[i] = id
		}
		return map[string]any{"ids": anyIDs}, true
	case map[string]any:
		return item, true
	}
	return map[string]any{}, false
}

func resolveWhere(list []types.Item, where map[string]any) []int {
	field, _ := where["field"].(string)
	if field == "" {
		return []int{}
	}
	eq, present := where["eq"]
	if !present {
		return []int{}
	}
	out := []int{}
	for i, it := range list {
		if valueEqual(it[field], eq) {
			out = append(out, i)
		}
	}
	return out
}

// valueEqual compares decoded JSON scalars. Numbers compare by float value so
// an authored 5 matches a decoded 5.0.
func valueEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func indexList(sel map[string]any) ([]int, bool) {
	raw, ok := sel["index"]
	if !ok {
		raw, ok = sel["indexes"]
	}
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case int:
		return []int{v}, true
	case float64:
		return []int{int(v)}, true
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			if f, ok := toFloat(e); ok {
				out = append(out, int(f))
			}
		}
		return out, true
	}
	return nil, true // recognized key, unusable value: empty result
}

func idList(sel map[string]any) []string {
	if raw, ok := sel["id"]; ok {
		return types.StringList(raw)
	}
	if raw, ok := sel["ids"]; ok {
		return types.StringList(raw)
	}
	return nil
}

func allIndexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
