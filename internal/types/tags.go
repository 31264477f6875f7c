package types

import "sort"

// TagSet is a deduplicated, order-irrelevant set of tag labels. Tags are
// opaque strings; producers conventionally namespace them with colons
// ("axis:EI:E", "type:ESTJ-A") but the engine never interprets the structure.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from tag labels, dropping empty strings.
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// Has reports whether the tag is present.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order. Used wherever tag sets surface in
// explain output, so repeated runs render identically.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members of tags that are present in the set, in the
// order given.
func (s TagSet) Intersect(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
