package types

// Rule mutation modes.
const (
	ModePatch   = "patch"
	ModeReplace = "replace"
	ModeRemove  = "remove"
	ModeAppend  = "append"
	ModePrepend = "prepend"
	ModeUpsert  = "upsert"
	ModeFilter  = "filter"
)

// Rule targets.
const (
	TargetCards      = "cards"
	TargetHighlights = "highlights"
	TargetReads      = "reads"
)

// Filter effect actions.
const (
	ActionKeep = "keep"
	ActionDrop = "drop"
)

// Rule is a single override or filter rule from an override document.
// Payload fields are kept loosely typed: documents are authored JSON and the
// engine degrades malformed shapes to no-ops rather than failing the run.
type Rule struct {
	ID     string `json:"id"`
	Target string `json:"target,omitempty"`
	Mode   string `json:"mode,omitempty"`
	// Action is a legacy alias: a rule carrying action but no mode is a
	// filter rule.
	Action string `json:"action,omitempty"`

	// Match combines the context filter (type_code, sections, any_tags, ...)
	// with the item selector under its "item" key.
	Match map[string]any `json:"match,omitempty"`
	// When is a whole-rule on/off gate evaluated against the context tags.
	When map[string]any `json:"when,omitempty"`

	Patch         map[string]any `json:"patch,omitempty"`
	ReplaceFields map[string]any `json:"replace_fields,omitempty"`
	Items         any            `json:"items,omitempty"`
	Item          any            `json:"item,omitempty"`
	Replace       any            `json:"replace,omitempty"`
	Effect        *Effect        `json:"effect,omitempty"`

	// Src records where the rule came from once documents are concatenated.
	Src *Provenance `json:"-"`
}

// Effect is the payload of a filter rule.
type Effect struct {
	Action string `json:"action"`
}

// Provenance identifies the source of a rule or document after concatenation.
type Provenance struct {
	Source string `json:"source"`
	Bucket string `json:"bucket,omitempty"`
	Index  int    `json:"index"`
}

// NormalizedMode returns the rule's effective mode: the declared mode, or
// "filter" when only an action (top-level or effect) is present.
func (r *Rule) NormalizedMode() string {
	if r.Mode != "" {
		return r.Mode
	}
	if r.Action != "" || r.Effect != nil {
		return ModeFilter
	}
	return ""
}

// FilterAction returns the filter action for a filter rule, preferring the
// effect payload over the legacy top-level field.
func (r *Rule) FilterAction() string {
	if r.Effect != nil && r.Effect.Action != "" {
		return r.Effect.Action
	}
	return r.Action
}

// OverrideDocument is an ordered list of rules plus provenance. Multiple
// documents concatenate additively before application; rule order inside and
// across documents is preserved.
type OverrideDocument struct {
	Schema   string        `json:"schema,omitempty"`
	Rules    []*Rule       `json:"rules"`
	SrcChain []*Provenance `json:"-"`
}

// ConcatDocuments merges documents in order into one logical document,
// stamping each rule with its source provenance. Duplicate rule ids across
// documents are a caller error caught by offline validation, not here.
func ConcatDocuments(docs ...*OverrideDocument) *OverrideDocument {
	merged := &OverrideDocument{}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		merged.SrcChain = append(merged.SrcChain, doc.SrcChain...)
		for i, rule := range doc.Rules {
			if rule == nil {
				continue
			}
			if rule.Src == nil {
				src := &Provenance{Index: i}
				if len(doc.SrcChain) > 0 {
					src.Source = doc.SrcChain[0].Source
					src.Bucket = doc.SrcChain[0].Bucket
				}
				rule.Src = src
			}
			merged.Rules = append(merged.Rules, rule)
		}
	}
	return merged
}
