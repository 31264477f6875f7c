package types

// Context carries the per-request evaluation context: who the report is for,
// which section is being rendered, and the deterministic seed for tie-breaks.
// The engine reads only the fields documented here; Ctx is a free-form bag
// whose values are reachable from replace_fields templates as {{ctx.<path>}}.
type Context struct {
	Ctx  map[string]any `json:"ctx,omitempty"`
	Tags []string       `json:"tags,omitempty"`

	TypeCode          string `json:"type_code,omitempty"`
	SectionKey        string `json:"section_key,omitempty"`
	Target            string `json:"target,omitempty"`
	Locale            string `json:"locale,omitempty"`
	Region            string `json:"region,omitempty"`
	ScaleCode         string `json:"scale_code,omitempty"`
	ContentPackageDir string `json:"content_package_dir,omitempty"`

	Seed   string `json:"seed,omitempty"`
	Bucket string `json:"bucket,omitempty"`

	// GlobalRules is the bucket-wide default gate merged into each item's own
	// rules fragment during ranking.
	GlobalRules Gate `json:"global_rules,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

// TagSet returns the context tags as a set.
func (c *Context) TagSet() TagSet {
	if c == nil {
		return NewTagSet()
	}
	return NewTagSet(c.Tags...)
}

// CtxValue resolves a dotted path against the Ctx bag. The second return is
// false when any path segment is missing or not an object.
func (c *Context) CtxValue(path []string) (any, bool) {
	if c == nil || c.Ctx == nil || len(path) == 0 {
		return nil, false
	}
	var cur any = c.Ctx
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
