// Package selection fills content slots from ranked candidate buckets under
// quotas, floors, and deduplication.
package selection

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/persona-engine/internal/types"
)

// DedupePolicy controls which candidates count as duplicates. HardBy fields
// compare exactly; SoftBy fields compare under normalization (URLs collapse
// tracking-parameter variants to one key).
type DedupePolicy struct {
	HardBy    []string
	SoftBy    []string
	URLParams []string
}

var urlSoftFields = map[string]struct{}{
	"canonical_url": {},
	"url":           {},
}

// withDefaults fills the conventional policy: hard dedupe on id, keep only
// the id query parameter when normalizing URLs.
func (p DedupePolicy) withDefaults() DedupePolicy {
	if len(p.HardBy) == 0 {
		p.HardBy = []string{"id"}
	}
	if len(p.URLParams) == 0 {
		p.URLParams = []string{"id"}
	}
	return p
}

// seenSet tracks dedupe keys already admitted to the output.
type seenSet map[string]struct{}

// keys returns every dedupe key the item produces under the policy. Empty
// field values produce no key, so items without a canonical_url never collide
// with each other.
func (p DedupePolicy) keys(item types.Item) []string {
	out := make([]string, 0, len(p.HardBy)+len(p.SoftBy))
	for _, field := range p.HardBy {
		if v, ok := item[field].(string); ok && v != "" {
			out = append(out, "hard:"+field+":"+v)
		}
	}
	for _, field := range p.SoftBy {
		v, ok := item[field].(string)
		if !ok || v == "" {
			continue
		}
		if _, isURL := urlSoftFields[field]; isURL {
			v = NormalizeURLKey(v, p.URLParams)
		}
		out = append(out, "soft:"+field+":"+v)
	}
	return out
}

// collides reports whether any of the item's keys were already seen.
func (s seenSet) collides(keys []string) bool {
	for _, k := range keys {
		if _, dup := s[k]; dup {
			return true
		}
	}
	return false
}

func (s seenSet) add(keys []string) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

// NormalizeURLKey reduces a URL to its dedupe key: lowercased host, path with
// any trailing slash stripped, and only whitelisted query parameters retained,
// sorted by key. The scheme is dropped. Unparseable input falls back to the
// trimmed raw string so broken URLs still dedupe against themselves.
func NormalizeURLKey(raw string, keepParams []string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimSuffix(u.Path, "/")

	keep := make(map[string]struct{}, len(keepParams))
	for _, k := range keepParams {
		keep[k] = struct{}{}
	}

	query := u.Query()
	params := make([]string, 0, len(query))
	for k := range query {
		if _, ok := keep[k]; ok {
			params = append(params, k)
		}
	}
	sort.Strings(params)

	var sb strings.Builder
	sb.WriteString(host)
	sb.WriteString(path)
	for i, k := range params {
		if i == 0 {
			sb.WriteString("?")
		} else {
			sb.WriteString("&")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(query.Get(k))
	}
	return sb.String()
}
