package types

// Gate is the boolean tag-gating condition attached to rules and items.
// Evaluation semantics live in internal/gate.
type Gate struct {
	Forbid     []string `json:"forbid,omitempty"`
	RequireAll []string `json:"require_all,omitempty"`
	RequireAny []string `json:"require_any,omitempty"`
	MinMatch   int      `json:"min_match,omitempty"`
}

// IsZero reports whether the gate has no conditions at all.
func (g Gate) IsZero() bool {
	return len(g.Forbid) == 0 && len(g.RequireAll) == 0 && len(g.RequireAny) == 0 && g.MinMatch == 0
}

// ParseGate reads a gate fragment out of a decoded JSON object. Unknown keys
// are ignored; a nil or non-object value yields an empty gate.
func ParseGate(v any) Gate {
	m, ok := v.(map[string]any)
	if !ok {
		return Gate{}
	}
	g := Gate{
		Forbid:     StringList(m["forbid"]),
		RequireAll: StringList(m["require_all"]),
		RequireAny: StringList(m["require_any"]),
	}
	switch mm := m["min_match"].(type) {
	case int:
		g.MinMatch = mm
	case float64:
		g.MinMatch = int(mm)
	}
	return g
}

// Gate rejection reasons, surfaced through explain traces.
const (
	ReasonOK                = "ok"
	ReasonForbidHit         = "forbid_hit"
	ReasonRequireAllMissing = "require_all_missing"
	ReasonRequireAnyMiss    = "require_any_miss"
	ReasonMinMatchFail      = "min_match_fail"
)

// GateDetail enumerates which tags hit or missed in each gate category. All
// five fields are populated on every evaluation, pass or fail, so rejection
// reports always render uniformly.
type GateDetail struct {
	HitRequireAll  []string `json:"hit_require_all"`
	MissRequireAll []string `json:"miss_require_all"`
	HitRequireAny  []string `json:"hit_require_any"`
	NeedMinMatch   int      `json:"need_min_match"`
	HitForbid      []string `json:"hit_forbid"`
}
