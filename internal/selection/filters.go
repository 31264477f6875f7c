package selection

import (
	"github.com/jonathan/persona-engine/internal/gate"
	"github.com/jonathan/persona-engine/internal/selector"
	"github.com/jonathan/persona-engine/internal/types"
)

// applyFilters consumes filter rules (effect.action keep|drop) against a
// candidate list. Drop rules remove the items they match; if any keep rule is
// active, the survivors are restricted to the union of keep-rule matches.
// A filter rule is active only when its tag gate passes against the user tags.
// Non-filter rules are ignored here.
func applyFilters(items []types.Item, rules []*types.Rule, userTags types.TagSet) []types.Item {
	if len(rules) == 0 {
		return items
	}

	dropped := make(map[int]struct{})
	kept := make(map[int]struct{})
	haveKeep := false

	for _, rule := range rules {
		if rule == nil || rule.NormalizedMode() != types.ModeFilter {
			continue
		}
		action := rule.FilterAction()
		if action != types.ActionKeep && action != types.ActionDrop {
			continue
		}
		if ok, _, _ := gate.DetailForMatch(rule.Match, userTags); !ok {
			continue
		}
		if ok, _, _ := gate.DetailForMatch(rule.When, userTags); !ok {
			continue
		}

		sel, ok := selector.NormalizeMatch(matchItem(rule))
		if !ok {
			continue
		}
		matched := selector.Resolve(items, sel)

		switch action {
		case types.ActionDrop:
			for _, i := range matched {
				dropped[i] = struct{}{}
			}
		case types.ActionKeep:
			haveKeep = true
			for _, i := range matched {
				kept[i] = struct{}{}
			}
		}
	}

	out := make([]types.Item, 0, len(items))
	for i, it := range items {
		if _, gone := dropped[i]; gone {
			continue
		}
		if haveKeep {
			if _, ok := kept[i]; !ok {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func matchItem(rule *types.Rule) any {
	if rule.Match == nil {
		return nil
	}
	return rule.Match["item"]
}
