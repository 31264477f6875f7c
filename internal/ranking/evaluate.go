// Package ranking evaluates candidate items against a user tag set and
// produces the deterministic ordering the selection pipeline fills from.
package ranking

import (
	"hash/crc32"

	"github.com/jonathan/persona-engine/internal/gate"
	"github.com/jonathan/persona-engine/internal/types"
)

// Options carries the evaluation inputs shared by every candidate in a bucket.
type Options struct {
	// Ctx is the logical context name, used only for explain traces.
	Ctx string
	// Seed drives the stable shuffle tie-break. Same seed, same order.
	Seed string
	// Bucket names the candidate bucket being evaluated.
	Bucket string
	// GlobalRules is the bucket-wide default gate merged into each item's
	// own rules fragment.
	GlobalRules types.Gate
}

// Result is the full outcome of evaluating one candidate.
type Result struct {
	OK       bool
	Reason   string
	Detail   types.GateDetail
	Hit      int
	Priority int
	MinMatch int
	Score    int
	Shuffle  uint32
}

// Evaluate gates one candidate against the user tag set and, if it passes,
// computes its score and shuffle key. hit counts the item's own declared tags
// that the user also carries; it feeds the merged gate's min_match check and
// is reported either way.
func Evaluate(item types.Item, userTags types.TagSet, opts Options) Result {
	merged := gate.MergeRules(opts.GlobalRules, types.ParseGate(item["rules"]))

	hit := len(userTags.Intersect(item.Tags()))
	ok, reason, detail := gate.Evaluate(merged, userTags, hit)

	res := Result{
		OK:       ok,
		Reason:   reason,
		Detail:   detail,
		Hit:      hit,
		Priority: item.Priority(),
		MinMatch: detail.NeedMinMatch,
	}
	if !ok {
		return res
	}

	res.Score = res.Priority
	res.Shuffle = StableShuffleKey(opts.Seed, item.ID())
	return res
}

// StableShuffleKey derives a reproducible pseudo-random tie-break value from
// the seed and item id: the low 31 bits of crc32(seed + "|" + id). Identical
// inputs always produce identical keys, so "randomized" ordering survives
// re-runs and horizontal scaling.
func StableShuffleKey(seed, id string) uint32 {
	return crc32.ChecksumIEEE([]byte(seed+"|"+id)) & 0x7fffffff
}

// Entry converts an evaluation outcome into an explain trace entry.
func Entry(item types.Item, res Result) types.ExplainEntry {
	detail := res.Detail
	return types.ExplainEntry{
		ID:       item.ID(),
		Reason:   res.Reason,
		Detail:   &detail,
		Hit:      res.Hit,
		Priority: res.Priority,
		MinMatch: res.MinMatch,
		Score:    res.Score,
		Shuffle:  res.Shuffle,
	}
}
