package document

import (
	"sort"

	"github.com/jonathan/persona-engine/internal/types"
)

// applyReplaceFields applies a dotted-path field map to a fresh copy of item.
// Paths are applied in sorted order: JSON objects lose author order on
// decode, and sorted application keeps runs reproducible. Values resolve
// through the template layer; array-op payloads on tags/tips leaves combine
// with the current array instead of replacing it.
func applyReplaceFields(item types.Item, fields map[string]any, ctx *types.Context) types.Item {
	if len(fields) == 0 {
		return item
	}
	out := item.Clone()

	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		value, skip := resolveValue(fields[path], ctx)
		if skip {
			continue
		}
		if mode, values, isOp := arrayFieldOp(pathLeaf(path), value); isOp {
			current, _ := getPath(out, path)
			setPath(out, path, applyArrayOp(current, mode, values))
			continue
		}
		setPath(out, path, types.CloneValue(value))
	}
	return out
}

// ruleItems normalizes the rule's insertion payload (items, item, or replace)
// into a list of items. A single object where a list is expected is wrapped.
// The rule's own replace_fields and patch are applied to each item, which
// lets a rule stamp default field values onto everything it inserts. Returns
// nil when the rule carries no usable payload.
func ruleItems(rule *types.Rule, ctx *types.Context) []types.Item {
	raw := rule.Items
	if raw == nil {
		raw = rule.Item
	}
	if raw == nil {
		raw = rule.Replace
	}
	if raw == nil {
		return nil
	}

	var items []types.Item
	switch v := raw.(type) {
	case map[string]any:
		items = []types.Item{types.Item(v).Clone()}
	case []any:
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				items = append(items, types.Item(m).Clone())
			}
		}
	default:
		return nil
	}

	for i, it := range items {
		it = applyReplaceFields(it, rule.ReplaceFields, ctx)
		if len(rule.Patch) > 0 {
			it = types.Item(DeepMerge(it, rule.Patch))
		}
		items[i] = it
	}
	return items
}
