// Package gate evaluates tag-gating conditions: which items and rules apply
// to a given tag set, and why the ones that don't were rejected.
package gate

import "github.com/jonathan/persona-engine/internal/types"

// Evaluate runs a gate against a tag set. hit is a caller-supplied signal,
// the count of the candidate's own tags matched by the user, consumed only by
// the min_match check; ranking callers compute it, document-patch callers pass 0.
//
// The returned detail always carries all five categories, whichever branch
// decided the outcome.
func Evaluate(g types.Gate, tags types.TagSet, hit int) (bool, string, types.GateDetail) {
	detail := types.GateDetail{
		HitRequireAll:  []string{},
		MissRequireAll: []string{},
		HitRequireAny:  []string{},
		HitForbid:      []string{},
		NeedMinMatch:   effectiveMinMatch(g),
	}

	detail.HitForbid = tags.Intersect(g.Forbid)
	if len(detail.HitForbid) > 0 {
		return false, types.ReasonForbidHit, detail
	}

	for _, t := range g.RequireAll {
		if tags.Has(t) {
			detail.HitRequireAll = append(detail.HitRequireAll, t)
		} else {
			detail.MissRequireAll = append(detail.MissRequireAll, t)
		}
	}
	if len(detail.MissRequireAll) > 0 {
		return false, types.ReasonRequireAllMissing, detail
	}

	if len(g.RequireAny) > 0 {
		detail.HitRequireAny = tags.Intersect(g.RequireAny)
		if len(detail.HitRequireAny) < 1 {
			return false, types.ReasonRequireAnyMiss, detail
		}
	}

	if hit < detail.NeedMinMatch {
		return false, types.ReasonMinMatchFail, detail
	}

	return true, types.ReasonOK, detail
}

// effectiveMinMatch applies the default: a non-empty require_any with an unset
// min_match means "at least one".
func effectiveMinMatch(g types.Gate) int {
	if g.MinMatch > 0 {
		return g.MinMatch
	}
	if len(g.RequireAny) > 0 {
		return 1
	}
	return 0
}

// MergeRules combines a bucket-wide default gate with an item's own fragment.
// Tag lists are unioned (deduplicated, empty strings dropped); min_match takes
// the larger of the two.
func MergeRules(global, item types.Gate) types.Gate {
	merged := types.Gate{
		Forbid:     unionTags(global.Forbid, item.Forbid),
		RequireAll: unionTags(global.RequireAll, item.RequireAll),
		RequireAny: unionTags(global.RequireAny, item.RequireAny),
		MinMatch:   global.MinMatch,
	}
	if item.MinMatch > merged.MinMatch {
		merged.MinMatch = item.MinMatch
	}
	return merged
}

func unionTags(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, t := range a {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range b {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
