package document

import (
	"go.uber.org/zap"

	"github.com/jonathan/persona-engine/internal/types"
)

// Mutator applies override rules to content lists. It never mutates an input
// list: every mode returns a new slice, and any touched item is a copy.
type Mutator struct {
	log *zap.Logger
}

// NewMutator returns a Mutator logging through log. A nil logger is replaced
// with a no-op logger so library callers stay silent by default.
func NewMutator(log *zap.Logger) *Mutator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mutator{log: log}
}

// ApplyRule applies a single rule to list at the given matched indexes and
// returns the resulting list. Malformed payloads degrade to a no-op copy.
func (m *Mutator) ApplyRule(list []types.Item, matched []int, rule *types.Rule, ctx *types.Context) []types.Item {
	if rule == nil {
		return copyList(list)
	}

	switch rule.NormalizedMode() {
	case types.ModePatch:
		return m.applyPatch(list, matched, rule, ctx)
	case types.ModeReplace:
		return m.applyReplace(list, matched, rule, ctx)
	case types.ModeRemove:
		return applyRemove(list, matched)
	case types.ModeAppend:
		return m.applyInsert(list, rule, ctx, false)
	case types.ModePrepend:
		return m.applyInsert(list, rule, ctx, true)
	case types.ModeUpsert:
		if len(matched) > 0 {
			return m.applyPatch(list, matched, rule, ctx)
		}
		return m.applyInsert(list, rule, ctx, false)
	case types.ModeFilter:
		// Filter rules belong to the selection pipeline. Reaching the
		// mutator means a misconfigured document; make it visible.
		m.log.Warn("filter rule reached document mutator, ignoring",
			zap.String("rule_id", rule.ID),
			zap.String("target", rule.Target))
		return copyList(list)
	default:
		m.log.Warn("rule has unknown mode, ignoring",
			zap.String("rule_id", rule.ID),
			zap.String("mode", rule.Mode))
		return copyList(list)
	}
}

func (m *Mutator) applyPatch(list []types.Item, matched []int, rule *types.Rule, ctx *types.Context) []types.Item {
	out := copyList(list)
	if len(matched) == 0 {
		return out
	}
	for _, i := range matched {
		if i < 0 || i >= len(out) {
			continue
		}
		item := applyReplaceFields(out[i], rule.ReplaceFields, ctx)
		if len(rule.Patch) > 0 {
			item = types.Item(DeepMerge(item, rule.Patch))
		}
		out[i] = item
	}
	return out
}

func (m *Mutator) applyReplace(list []types.Item, matched []int, rule *types.Rule, ctx *types.Context) []types.Item {
	if len(matched) == 0 {
		return copyList(list)
	}
	replacement := ruleItems(rule, ctx)

	drop := make(map[int]struct{}, len(matched))
	lowest := matched[0]
	for _, i := range matched {
		drop[i] = struct{}{}
		if i < lowest {
			lowest = i
		}
	}

	// Insert once, where the first matched item used to sit.
	insertAt := 0
	out := make([]types.Item, 0, len(list)+len(replacement))
	for i, it := range list {
		if _, gone := drop[i]; gone {
			continue
		}
		if i < lowest {
			insertAt++
		}
		out = append(out, it)
	}
	if insertAt > len(out) || lowest >= len(list) {
		insertAt = len(out)
	}
	out = append(out[:insertAt], append(append([]types.Item{}, replacement...), out[insertAt:]...)...)
	return out
}

func applyRemove(list []types.Item, matched []int) []types.Item {
	drop := make(map[int]struct{}, len(matched))
	for _, i := range matched {
		drop[i] = struct{}{}
	}
	out := make([]types.Item, 0, len(list))
	for i, it := range list {
		if _, gone := drop[i]; gone {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (m *Mutator) applyInsert(list []types.Item, rule *types.Rule, ctx *types.Context, prepend bool) []types.Item {
	items := ruleItems(rule, ctx)
	if len(items) == 0 {
		m.log.Warn("insert rule has no items payload, ignoring",
			zap.String("rule_id", rule.ID),
			zap.String("mode", rule.NormalizedMode()))
		return copyList(list)
	}
	if prepend {
		return append(items, list...)
	}
	out := copyList(list)
	return append(out, items...)
}

func copyList(list []types.Item) []types.Item {
	out := make([]types.Item, len(list))
	copy(out, list)
	return out
}
