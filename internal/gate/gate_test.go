package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/persona-engine/internal/types"
)

func TestEvaluate_Pass(t *testing.T) {
	g := types.Gate{RequireAll: []string{"axis:EI:E"}, Forbid: []string{"risk:high"}}
	tags := types.NewTagSet("axis:EI:E", "type:ESTJ-A")

	ok, reason, detail := Evaluate(g, tags, 0)

	assert.True(t, ok)
	assert.Equal(t, types.ReasonOK, reason)
	assert.Equal(t, []string{"axis:EI:E"}, detail.HitRequireAll)
	assert.Empty(t, detail.MissRequireAll)
	assert.Empty(t, detail.HitForbid)
}

func TestEvaluate_ForbidHit(t *testing.T) {
	g := types.Gate{RequireAll: []string{"axis:EI:E"}, Forbid: []string{"risk:high"}}
	tags := types.NewTagSet("axis:EI:I", "risk:high")

	ok, reason, detail := Evaluate(g, tags, 0)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonForbidHit, reason)
	assert.Equal(t, []string{"risk:high"}, detail.HitForbid)
}

func TestEvaluate_RequireAllMissing(t *testing.T) {
	g := types.Gate{RequireAll: []string{"axis:EI:E", "axis:TF:T"}}
	tags := types.NewTagSet("axis:EI:E")

	ok, reason, detail := Evaluate(g, tags, 0)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonRequireAllMissing, reason)
	assert.Equal(t, []string{"axis:EI:E"}, detail.HitRequireAll)
	assert.Equal(t, []string{"axis:TF:T"}, detail.MissRequireAll)
}

func TestEvaluate_RequireAnyMiss(t *testing.T) {
	g := types.Gate{RequireAny: []string{"role:NT", "role:NF"}}
	tags := types.NewTagSet("role:SJ")

	ok, reason, detail := Evaluate(g, tags, 0)

	assert.False(t, ok)
	assert.Equal(t, types.ReasonRequireAnyMiss, reason)
	assert.Empty(t, detail.HitRequireAny)
	assert.Equal(t, 1, detail.NeedMinMatch, "unset min_match defaults to 1 when require_any is present")
}

func TestEvaluate_MinMatchFail(t *testing.T) {
	g := types.Gate{MinMatch: 2}
	tags := types.NewTagSet("a", "b")

	ok, reason, _ := Evaluate(g, tags, 1)
	assert.False(t, ok)
	assert.Equal(t, types.ReasonMinMatchFail, reason)

	ok, reason, _ = Evaluate(g, tags, 2)
	assert.True(t, ok)
	assert.Equal(t, types.ReasonOK, reason)
}

// Every branch must return a detail with all five categories present, so
// explain rendering never special-cases the failure path.
func TestEvaluate_DetailTotality(t *testing.T) {
	cases := []struct {
		name string
		gate types.Gate
		tags types.TagSet
		hit  int
	}{
		{"forbid", types.Gate{Forbid: []string{"x"}}, types.NewTagSet("x"), 0},
		{"require_all", types.Gate{RequireAll: []string{"x"}}, types.NewTagSet(), 0},
		{"require_any", types.Gate{RequireAny: []string{"x"}}, types.NewTagSet(), 0},
		{"min_match", types.Gate{MinMatch: 3}, types.NewTagSet(), 0},
		{"pass", types.Gate{}, types.NewTagSet(), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, detail := Evaluate(tc.gate, tc.tags, tc.hit)
			assert.NotNil(t, detail.HitRequireAll)
			assert.NotNil(t, detail.MissRequireAll)
			assert.NotNil(t, detail.HitRequireAny)
			assert.NotNil(t, detail.HitForbid)
			assert.GreaterOrEqual(t, detail.NeedMinMatch, 0)
		})
	}
}

func TestMergeRules(t *testing.T) {
	global := types.Gate{
		Forbid:     []string{"risk:high"},
		RequireAny: []string{"role:NT", ""},
		MinMatch:   1,
	}
	item := types.Gate{
		Forbid:     []string{"risk:high", "risk:medium"},
		RequireAll: []string{"axis:EI:E"},
		MinMatch:   2,
	}

	merged := MergeRules(global, item)

	assert.Equal(t, []string{"risk:high", "risk:medium"}, merged.Forbid)
	assert.Equal(t, []string{"axis:EI:E"}, merged.RequireAll)
	assert.Equal(t, []string{"role:NT"}, merged.RequireAny, "empty strings dropped")
	assert.Equal(t, 2, merged.MinMatch, "min_match takes the max")
}

func TestMergeRules_Empty(t *testing.T) {
	merged := MergeRules(types.Gate{}, types.Gate{})
	assert.True(t, merged.IsZero())
}
