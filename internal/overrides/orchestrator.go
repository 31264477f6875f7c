// Package overrides applies ordered override documents to a target content
// list: rule-by-rule context gating, selector resolution, and mutation, with
// explain accumulation.
package overrides

import (
	"go.uber.org/zap"

	"github.com/jonathan/persona-engine/internal/document"
	"github.com/jonathan/persona-engine/internal/explain"
	"github.com/jonathan/persona-engine/internal/gate"
	"github.com/jonathan/persona-engine/internal/selector"
	"github.com/jonathan/persona-engine/internal/types"
)

// Orchestrator walks override documents in caller order and applies each
// applicable rule to the cumulative list state.
type Orchestrator struct {
	log     *zap.Logger
	mutator *document.Mutator
	rec     *explain.Recorder
}

// NewOrchestrator builds an Orchestrator. Logger and recorder may be nil.
func NewOrchestrator(log *zap.Logger, rec *explain.Recorder) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		log:     log,
		mutator: document.NewMutator(log),
		rec:     rec,
	}
}

// Apply runs every rule of every document, in order, against list and returns
// the mutated list. Document order is the caller's contract (manifest bucket
// order); it is never inferred here. Each rule sees the list as mutated by
// all rules before it. Rules for a different target, filter rules, and rules
// whose context gate fails are skipped; filter rules additionally log a
// warning since they never belong in an override path.
func (o *Orchestrator) Apply(docs []*types.OverrideDocument, target string, list []types.Item, ctx *types.Context) []types.Item {
	out := make([]types.Item, len(list))
	copy(out, list)

	merged := types.ConcatDocuments(docs...)

	var selected, rejected []types.ExplainEntry
	ctxTags := ctx.TagSet()

	for _, rule := range merged.Rules {
		if rule.Target != "" && rule.Target != target {
			continue
		}
		if rule.NormalizedMode() == types.ModeFilter {
			o.log.Warn("filter rule in override document, skipping",
				zap.String("rule_id", rule.ID),
				zap.String("target", target),
				zap.Any("src", rule.Src))
			continue
		}

		ok, reason, detail := ruleDetail(rule, ctxTags)
		entry := types.ExplainEntry{ID: rule.ID, Reason: reason, Detail: &detail}
		if !gate.RuleApplies(rule, ctx) {
			if !ok {
				rejected = append(rejected, entry)
			}
			continue
		}
		selected = append(selected, entry)

		sel, valid := selector.NormalizeMatch(matchItem(rule))
		if !valid {
			o.log.Warn("rule has unrecognized item selector, skipping",
				zap.String("rule_id", rule.ID))
			continue
		}
		matched := selector.Resolve(out, sel)
		out = o.mutator.ApplyRule(out, matched, rule, ctx)
	}

	if target == types.TargetCards {
		out = NormalizeCards(out)
	}

	if o.rec != nil {
		ctxName := target
		if ctx != nil && ctx.TypeCode != "" {
			ctxName = target + ":" + ctx.TypeCode
		}
		o.rec.Record(ctxName, ctxTags.Sorted(), selected, rejected)
	}

	return out
}

// ruleDetail evaluates the tag portion of the rule's gates for explain
// purposes, independent of whether the rule ultimately applied.
func ruleDetail(rule *types.Rule, tags types.TagSet) (bool, string, types.GateDetail) {
	if len(rule.When) > 0 {
		return gate.DetailForMatch(rule.When, tags)
	}
	return gate.DetailForMatch(rule.Match, tags)
}

func matchItem(rule *types.Rule) any {
	if rule.Match == nil {
		return nil
	}
	return rule.Match["item"]
}
