package selection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-engine/internal/explain"
	"github.com/jonathan/persona-engine/internal/ranking"
	"github.com/jonathan/persona-engine/internal/types"
)

func ids(items []types.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID()
	}
	return out
}

// Scenario: quota limits by_type to one item, backfill pulls from fallback
// until the minItems floor is met.
func TestSelect_QuotaAndBackfill(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"by_type": {
			{"id": "itemA", "priority": float64(10)},
			{"id": "itemB", "priority": float64(5)},
		},
		"fallback": {
			{"id": "itemC"},
			{"id": "itemD"},
		},
	}
	opts := Options{
		FillOrder: []string{"by_type", "fallback"},
		Quota:     map[string]any{"by_type": float64(1)},
		MaxItems:  3,
		MinItems:  3,
	}

	out := p.Select(buckets, types.NewTagSet(), opts)

	assert.Equal(t, []string{"itemA", "itemC", "itemD"}, ids(out))
}

func TestSelect_MaxItemsBoundsOutput(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"main": {
			{"id": "a", "priority": float64(3)},
			{"id": "b", "priority": float64(2)},
			{"id": "c", "priority": float64(1)},
		},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"main"},
		MaxItems:  2,
	})

	assert.Equal(t, []string{"a", "b"}, ids(out))
}

func TestSelect_QuotaRemainingSpellings(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"main": {{"id": "a"}, {"id": "b"}, {"id": "c"}},
	}

	for _, spelling := range []string{QuotaRemaining, QuotaStar, QuotaAll} {
		out := p.Select(buckets, types.NewTagSet(), Options{
			FillOrder: []string{"main"},
			Quota:     map[string]any{"main": spelling},
			MaxItems:  10,
		})
		assert.Len(t, out, 3, "quota %q means all remaining", spelling)
	}
}

func TestSelect_HardDedupeAcrossBuckets(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"first":  {{"id": "dup", "priority": float64(1)}},
		"second": {{"id": "dup", "priority": float64(9)}, {"id": "other"}},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"first", "second"},
		MaxItems:  5,
	})

	// Fill order wins: the first bucket's copy is kept.
	assert.Equal(t, []string{"dup", "other"}, ids(out))
	assert.Equal(t, float64(1), out[0]["priority"])
}

// Two candidates differing only in a non-whitelisted query parameter collapse
// to one dedupe key; the first by fill order survives.
func TestSelect_SoftDedupeByNormalizedURL(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"main": {
			{"id": "read-1", "priority": float64(5), "canonical_url": "https://EX.com/a/b/?id=9&utm=x"},
			{"id": "read-2", "priority": float64(4), "canonical_url": "https://ex.com/a/b?id=9"},
		},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"main"},
		MaxItems:  5,
		Dedupe:    DedupePolicy{SoftBy: []string{"canonical_url"}},
	})

	assert.Equal(t, []string{"read-1"}, ids(out))
}

func TestSelect_SkipsEmptyIDs(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"main": {{"id": ""}, {"kind": "no-id"}, {"id": "real"}},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"main"},
		MaxItems:  5,
	})

	assert.Equal(t, []string{"real"}, ids(out))
}

func TestSelect_GateFiltersAndExplains(t *testing.T) {
	rec := explain.NewRecorder(nil, explain.WithCapture(true))
	p := NewPipeline(nil, rec)
	buckets := map[string][]types.Item{
		"main": {
			{"id": "pass", "tags": []any{"axis:EI:E"}},
			{"id": "blocked", "rules": map[string]any{"forbid": []any{"axis:EI:E"}}},
		},
	}

	out := p.Select(buckets, types.NewTagSet("axis:EI:E"), Options{
		FillOrder: []string{"main"},
		MaxItems:  5,
		Eval:      ranking.Options{Ctx: "reads:ESTJ-A", Seed: "s"},
	})

	assert.Equal(t, []string{"pass"}, ids(out))

	payload, ok := rec.Trace("reads:ESTJ-A")
	require.True(t, ok)
	assert.Equal(t, "reads", payload.Target)
	require.Len(t, payload.Selected, 1)
	assert.Equal(t, "pass", payload.Selected[0].ID)
	assert.Equal(t, 1, payload.Selected[0].Hit)
	require.Len(t, payload.Rejected, 1)
	assert.Equal(t, "blocked", payload.Rejected[0].ID)
	assert.Equal(t, types.ReasonForbidHit, payload.Rejected[0].Reason)
	require.NotNil(t, payload.Rejected[0].Detail)
}

func TestSelect_PriorityDescFinalSort(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"first":  {{"id": "low", "priority": float64(1)}},
		"second": {{"id": "high", "priority": float64(9)}},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"first", "second"},
		MaxItems:  5,
		Sort:      SortPriorityDesc,
	})

	// The final sort reorders across bucket boundaries.
	assert.Equal(t, []string{"high", "low"}, ids(out))
}

func TestSelect_OutputCarriesDiagnostics(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{"main": {{"id": "a", "priority": float64(3)}}}

	out := p.Select(buckets, types.NewTagSet(), Options{FillOrder: []string{"main"}, MaxItems: 1})

	require.Len(t, out, 1)
	re, ok := out[0]["_re"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, re["score"])
}

func TestSelect_Deterministic(t *testing.T) {
	buckets := map[string][]types.Item{
		"main": {
			{"id": "a", "priority": float64(2)},
			{"id": "b", "priority": float64(2)},
			{"id": "c", "priority": float64(2)},
			{"id": "d", "priority": float64(2)},
		},
	}
	opts := Options{
		FillOrder: []string{"main"},
		MaxItems:  3,
		Eval:      ranking.Options{Seed: "fixed-seed"},
	}

	p := NewPipeline(nil, nil)
	first, err := json.Marshal(p.Select(buckets, types.NewTagSet(), opts))
	require.NoError(t, err)
	second, err := json.Marshal(p.Select(buckets, types.NewTagSet(), opts))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "identical inputs yield byte-identical output")
}

func TestSelect_FilterRules(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"main": {
			{"id": "a", "kind": "strength"},
			{"id": "b", "kind": "weakness"},
		},
	}
	dropWeakness := &types.Rule{
		ID:     "drop-weak",
		Mode:   types.ModeFilter,
		Match:  map[string]any{"item": map[string]any{"kind": "weakness"}},
		Effect: &types.Effect{Action: types.ActionDrop},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"main"},
		MaxItems:  5,
		Filters:   []*types.Rule{dropWeakness},
	})

	assert.Equal(t, []string{"a"}, ids(out))
}

func TestSelect_FilterKeepWhitelist(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{
		"main": {
			{"id": "a", "kind": "strength"},
			{"id": "b", "kind": "weakness"},
			{"id": "c", "kind": "strength"},
		},
	}
	keepStrength := &types.Rule{
		ID:     "keep-strong",
		Mode:   types.ModeFilter,
		Match:  map[string]any{"item": map[string]any{"kind": "strength"}},
		Effect: &types.Effect{Action: types.ActionKeep},
	}

	out := p.Select(buckets, types.NewTagSet(), Options{
		FillOrder: []string{"main"},
		MaxItems:  5,
		Filters:   []*types.Rule{keepStrength},
	})

	assert.Equal(t, []string{"a", "c"}, ids(out))
}

func TestSelect_GatedFilterRuleInactive(t *testing.T) {
	p := NewPipeline(nil, nil)
	buckets := map[string][]types.Item{"main": {{"id": "a"}}}
	gated := &types.Rule{
		ID:     "drop-for-premium",
		Mode:   types.ModeFilter,
		When:   map[string]any{"require_all": []any{"plan:premium"}},
		Effect: &types.Effect{Action: types.ActionDrop},
	}

	out := p.Select(buckets, types.NewTagSet("plan:free"), Options{
		FillOrder: []string{"main"},
		MaxItems:  5,
		Filters:   []*types.Rule{gated},
	})

	assert.Equal(t, []string{"a"}, ids(out), "rule gate failed, filter not applied")
}
