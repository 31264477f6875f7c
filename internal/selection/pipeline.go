package selection

import (
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/persona-engine/internal/explain"
	"github.com/jonathan/persona-engine/internal/ranking"
	"github.com/jonathan/persona-engine/internal/types"
)

// Quota spellings that mean "whatever is left".
const (
	QuotaRemaining = "remaining"
	QuotaStar      = "*"
	QuotaAll       = "all"
)

// SortPriorityDesc re-sorts the final output by priority descending,
// across bucket boundaries. Presentation-level, applied after selection.
const SortPriorityDesc = "priority_desc"

// DefaultFallbackBucket backfills the minItems floor.
const DefaultFallbackBucket = "fallback"

// Options configures one pipeline run.
type Options struct {
	// FillOrder lists the buckets to draw from, in order.
	FillOrder []string
	// Quota caps each bucket's contribution: a number, or
	// "remaining"/"*"/"all" for no per-bucket cap. Missing means no cap.
	Quota map[string]any
	// MaxItems bounds the output length.
	MaxItems int
	// MinItems is the floor backfilled from the fallback bucket.
	MinItems int
	// Dedupe is the duplicate-rejection policy.
	Dedupe DedupePolicy
	// Sort optionally re-orders the final output (SortPriorityDesc).
	Sort string
	// FallbackBucket overrides the backfill source bucket name.
	FallbackBucket string
	// Filters are filter rules (effect.action keep|drop) applied to every
	// bucket before ranking.
	Filters []*types.Rule
	// Eval carries the shared evaluation inputs (seed, global rules, ctx).
	Eval ranking.Options
}

// Pipeline ranks candidate buckets and fills an output list.
type Pipeline struct {
	log *zap.Logger
	rec *explain.Recorder
}

// NewPipeline builds a Pipeline. Either argument may be nil.
func NewPipeline(log *zap.Logger, rec *explain.Recorder) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{log: log, rec: rec}
}

// Select produces the final ordered item list from the candidate buckets.
// Output length never exceeds MaxItems; it reaches min(MinItems, MaxItems)
// whenever the fallback bucket holds enough unique candidates. Items in the
// output carry the _re diagnostic block.
func (p *Pipeline) Select(buckets map[string][]types.Item, userTags types.TagSet, opts Options) []types.Item {
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = len(flatten(buckets))
	}

	fallbackName := opts.FallbackBucket
	if fallbackName == "" {
		fallbackName = DefaultFallbackBucket
	}

	ranked := make(map[string][]ranking.Evaluated, len(buckets))
	var rejectedSample []types.ExplainEntry
	rankBucket := func(name string) []ranking.Evaluated {
		if r, done := ranked[name]; done {
			return r
		}
		bucketOpts := opts.Eval
		bucketOpts.Bucket = name
		candidates := applyFilters(buckets[name], opts.Filters, userTags)
		r, rejected := ranking.RankBucket(candidates, userTags, bucketOpts)
		for _, ev := range rejected {
			if len(rejectedSample) >= explain.MaxRejectedSample {
				break
			}
			rejectedSample = append(rejectedSample, ranking.Entry(ev.Item, ev.Result))
		}
		ranked[name] = r
		return r
	}

	seen := make(seenSet)
	policy := opts.Dedupe.withDefaults()
	out := make([]types.Item, 0, maxItems)
	var selected []types.ExplainEntry

	take := func(ev ranking.Evaluated) bool {
		item := ev.Item
		if item == nil || item.ID() == "" {
			return false
		}
		keys := policy.keys(item)
		if seen.collides(keys) {
			return false
		}
		seen.add(keys)
		out = append(out, ranking.Decorate(item, ev.Result))
		selected = append(selected, ranking.Entry(item, ev.Result))
		return true
	}

	for _, name := range opts.FillOrder {
		if len(out) >= maxItems {
			break
		}
		limit := quotaFor(opts.Quota, name, maxItems-len(out))
		if limit > maxItems-len(out) {
			limit = maxItems - len(out)
		}
		taken := 0
		for _, ev := range rankBucket(name) {
			if taken >= limit {
				break
			}
			if take(ev) {
				taken++
			}
		}
	}

	// Backfill: the minItems floor pulls from the fallback bucket without a
	// quota, still bounded by maxItems and the dedupe policy.
	floor := opts.MinItems
	if floor > maxItems {
		floor = maxItems
	}
	if len(out) < floor {
		for _, ev := range rankBucket(fallbackName) {
			if len(out) >= floor {
				break
			}
			take(ev)
		}
	}

	if opts.Sort == SortPriorityDesc {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority() > out[j].Priority()
		})
	}

	if p.rec != nil {
		p.rec.Record(opts.Eval.Ctx, userTags.Sorted(), selected, rejectedSample)
	}

	return out
}

// quotaFor resolves a bucket's cap. Numbers are used as-is; the "remaining"
// spellings and a missing entry both mean everything left.
func quotaFor(quota map[string]any, bucket string, remaining int) int {
	raw, ok := quota[bucket]
	if !ok {
		return remaining
	}
	switch v := raw.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		switch v {
		case QuotaRemaining, QuotaStar, QuotaAll:
			return remaining
		}
	}
	return remaining
}

func flatten(buckets map[string][]types.Item) []types.Item {
	var out []types.Item
	for _, items := range buckets {
		out = append(out, items...)
	}
	return out
}
