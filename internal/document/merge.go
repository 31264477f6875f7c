// Package document applies override rules to content item lists: deep merges,
// dotted-path field replacement, and the seven mutation modes.
package document

import "github.com/jonathan/persona-engine/internal/types"

// DeepMerge merges patch into base and returns a new map; neither input is
// mutated. Merge semantics, which authored content depends on exactly:
//
//   - a null patch value is skipped, it never clears a base field
//   - two maps merge recursively
//   - two lists replace wholesale, never element-wise
//   - any other type mismatch replaces the base value
func DeepMerge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = types.CloneValue(v)
	}
	for k, v := range patch {
		if v == nil {
			continue
		}
		if bm, baseIsMap := out[k].(map[string]any); baseIsMap {
			if pm, patchIsMap := v.(map[string]any); patchIsMap {
				out[k] = DeepMerge(bm, pm)
				continue
			}
		}
		out[k] = types.CloneValue(v)
	}
	return out
}
