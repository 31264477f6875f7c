package ranking

import (
	"sort"

	"github.com/jonathan/persona-engine/internal/types"
)

// Evaluated pairs a candidate with its evaluation outcome.
type Evaluated struct {
	Item   types.Item
	Result Result
}

// RankBucket evaluates every candidate in a bucket and returns the survivors
// in final order plus the rejects in input order. Survivors sort by score
// descending, then shuffle key ascending, then id ascending, so the output is
// fully determined by the seed and the input set.
func RankBucket(items []types.Item, userTags types.TagSet, opts Options) (ranked, rejected []Evaluated) {
	for _, item := range items {
		if item == nil {
			continue
		}
		res := Evaluate(item, userTags, opts)
		ev := Evaluated{Item: item, Result: res}
		if res.OK {
			ranked = append(ranked, ev)
		} else {
			rejected = append(rejected, ev)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Result.Score != b.Result.Score {
			return a.Result.Score > b.Result.Score
		}
		if a.Result.Shuffle != b.Result.Shuffle {
			return a.Result.Shuffle < b.Result.Shuffle
		}
		return a.Item.ID() < b.Item.ID()
	})
	return ranked, rejected
}

// Decorate returns a copy of the item carrying the internal _re diagnostic
// block. Renderers strip _re before anything client-facing is serialized.
func Decorate(item types.Item, res Result) types.Item {
	out := item.Clone()
	out["_re"] = map[string]any{
		"hit":       res.Hit,
		"priority":  res.Priority,
		"min_match": res.MinMatch,
		"score":     res.Score,
		"shuffle":   res.Shuffle,
	}
	return out
}
