package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/persona-engine/internal/types"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// resolveValue resolves a replace_fields value against the context. Template
// strings expand {{type_code}}, {{section_key}}, {{content_package_dir}},
// {{target}} and {{ctx.<dot.path>}}; unresolved placeholders stay verbatim.
// skip is true when the resolved value is null, which callers treat as "leave
// the field alone" rather than writing a null.
func resolveValue(v any, ctx *types.Context) (resolved any, skip bool) {
	s, isString := v.(string)
	if !isString || !strings.Contains(s, "{{") {
		return v, v == nil
	}

	// A value that is exactly one placeholder resolves to the raw context
	// value, preserving its type (lists, numbers, nested objects).
	if m := placeholderRe.FindStringSubmatch(s); m != nil && m[0] == strings.TrimSpace(s) {
		val, known := lookupVar(m[1], ctx)
		if !known {
			return s, false
		}
		return val, val == nil
	}

	expanded := placeholderRe.ReplaceAllStringFunc(s, func(ph string) string {
		name := placeholderRe.FindStringSubmatch(ph)[1]
		val, known := lookupVar(name, ctx)
		if !known || val == nil {
			return ph
		}
		return fmt.Sprintf("%v", val)
	})
	return expanded, false
}

// lookupVar resolves a placeholder name. The fixed variable set covers the
// context's structural fields; everything under "ctx." resolves against the
// free-form context bag.
func lookupVar(name string, ctx *types.Context) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	switch name {
	case "type_code":
		return ctx.TypeCode, true
	case "section_key":
		return ctx.SectionKey, true
	case "content_package_dir":
		return ctx.ContentPackageDir, true
	case "target":
		return ctx.Target, true
	}
	if rest, ok := strings.CutPrefix(name, "ctx."); ok {
		if val, found := ctx.CtxValue(strings.Split(rest, ".")); found {
			return val, true
		}
	}
	return nil, false
}
