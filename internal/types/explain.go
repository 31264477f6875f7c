package types

import "strings"

// ExplainEntry is one selected or rejected item in an explain trace.
type ExplainEntry struct {
	ID       string      `json:"id"`
	Reason   string      `json:"reason,omitempty"`
	Detail   *GateDetail `json:"detail,omitempty"`
	Hit      int         `json:"hit"`
	Priority int         `json:"priority"`
	MinMatch int         `json:"min_match"`
	Score    int         `json:"score"`
	Shuffle  uint32      `json:"shuffle,omitempty"`
}

// ExplainPayload is the structured trace delivered to collectors and logs for
// one logical context (e.g. "reads:ESTJ-A").
type ExplainPayload struct {
	Target      string         `json:"target"`
	Ctx         string         `json:"ctx"`
	ContextTags []string       `json:"context_tags"`
	Selected    []ExplainEntry `json:"selected"`
	Rejected    []ExplainEntry `json:"rejected"`
}

// Collector receives explain payloads. Collectors are best-effort: a panic is
// caught and logged by the recorder, never propagated.
type Collector func(ctx string, payload ExplainPayload)

// TargetFromCtx derives the target name from a logical context name by taking
// the substring before the first colon ("reads:ESTJ-A" -> "reads").
func TargetFromCtx(ctx string) string {
	if i := strings.Index(ctx, ":"); i >= 0 {
		return ctx[:i]
	}
	return ctx
}
