package gate

import "github.com/jonathan/persona-engine/internal/types"

// Structural match keys understood by MatchesContext. Everything else in a
// match block (apart from "item", which is the item selector) is ignored.
var structuralKeys = map[string]func(m map[string]any, ctx *types.Context) bool{
	"type_code":  func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["type_code"], ctx.TypeCode) },
	"type_codes": func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["type_codes"], ctx.TypeCode) },
	"section":    func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["section"], ctx.SectionKey) },
	"section_key": func(m map[string]any, ctx *types.Context) bool {
		return memberOrEqual(m["section_key"], ctx.SectionKey)
	},
	"sections": func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["sections"], ctx.SectionKey) },
	"locale":   func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["locale"], ctx.Locale) },
	"locales":  func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["locales"], ctx.Locale) },
	"region":   func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["region"], ctx.Region) },
	"regions":  func(m map[string]any, ctx *types.Context) bool { return memberOrEqual(m["regions"], ctx.Region) },
	"scale_code": func(m map[string]any, ctx *types.Context) bool {
		return memberOrEqual(m["scale_code"], ctx.ScaleCode)
	},
	"scale_codes": func(m map[string]any, ctx *types.Context) bool {
		return memberOrEqual(m["scale_codes"], ctx.ScaleCode)
	},
	"content_package_dir": func(m map[string]any, ctx *types.Context) bool {
		return memberOrEqual(m["content_package_dir"], ctx.ContentPackageDir)
	},
}

// MatchesContext decides whole-rule applicability for non-filter rules.
// A nil or empty match block matches everything. Structural fields
// (type_code, sections, locale, ...) are equality-or-membership checks
// against the context; any_tags/all_tags and the forbid/require_all/
// require_any/min_match fragment gate against the context tag set. All
// present fields are AND-combined.
func MatchesContext(match map[string]any, ctx *types.Context) bool {
	if len(match) == 0 {
		return true
	}
	if ctx == nil {
		ctx = &types.Context{}
	}

	for key, check := range structuralKeys {
		if _, present := match[key]; present && !check(match, ctx) {
			return false
		}
	}

	g := gateFromMatch(match)
	if g.IsZero() {
		return true
	}
	ok, _, _ := Evaluate(g, ctx.TagSet(), contextHit(g, ctx.TagSet()))
	return ok
}

// DetailForMatch runs the tag portion of a match block against a tag set and
// returns the full evaluation outcome. Used to feed explain traces for rules
// regardless of whether they applied.
func DetailForMatch(match map[string]any, tags types.TagSet) (bool, string, types.GateDetail) {
	g := gateFromMatch(match)
	return Evaluate(g, tags, contextHit(g, tags))
}

// RuleApplies combines the rule's when gate (over context tags) with its
// match block's context conditions.
func RuleApplies(rule *types.Rule, ctx *types.Context) bool {
	if rule == nil {
		return false
	}
	if len(rule.When) > 0 {
		g := types.ParseGate(rule.When)
		tags := ctx.TagSet()
		if ok, _, _ := Evaluate(g, tags, contextHit(g, tags)); !ok {
			return false
		}
	}
	return MatchesContext(rule.Match, ctx)
}

// gateFromMatch reads the tag conditions out of a match block. any_tags and
// all_tags are the document-patch spellings of require_any and require_all
// and are unioned with them.
func gateFromMatch(match map[string]any) types.Gate {
	g := types.ParseGate(match)
	g.RequireAny = unionTags(g.RequireAny, types.StringList(match["any_tags"]))
	g.RequireAll = unionTags(g.RequireAll, types.StringList(match["all_tags"]))
	return g
}

// contextHit is the min_match signal for context gates: the number of
// require_any tags present in the tag set.
func contextHit(g types.Gate, tags types.TagSet) int {
	return len(tags.Intersect(g.RequireAny))
}

// memberOrEqual matches a context value against a scalar or list condition.
func memberOrEqual(cond any, value string) bool {
	switch c := cond.(type) {
	case string:
		return c == value
	case []any, []string:
		for _, s := range types.StringList(c) {
			if s == value {
				return true
			}
		}
		return false
	case nil:
		return true
	}
	return false
}
