package contentpack

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/persona-engine/internal/schemas"
)

// ValidatePack checks a whole pack directory offline: the manifest against
// its schema, every referenced override document, and every referenced
// selection document. Documents validate concurrently. The result maps each
// checked file (relative to the pack directory) to its outcome, nil meaning
// the file passed; all failures are collected rather than stopping at the
// first.
func ValidatePack(dir string) (map[string]error, error) {
	manifestPath, err := FindManifest(dir)
	if err != nil {
		return nil, err
	}

	manifestSchema := schemas.ResolveSchemaPath(schemas.ManifestSchema)
	overrideSchema := schemas.ResolveSchemaPath(schemas.OverrideDocumentSchema)
	selectionSchema := schemas.ResolveSchemaPath(schemas.SelectionDocumentSchema)
	if manifestSchema == "" || overrideSchema == "" || selectionSchema == "" {
		return nil, fmt.Errorf("schema files not found; run from the repository root")
	}

	var mu sync.Mutex
	results := make(map[string]error)
	report := func(file string, err error) {
		mu.Lock()
		results[file] = err
		mu.Unlock()
	}

	manifestRel := filepath.Base(manifestPath)
	report(manifestRel, validateManifestFile(manifestSchema, manifestPath))

	m, err := LoadManifest(manifestPath)
	if err != nil {
		// The manifest drives everything else; without it there is nothing
		// more to check.
		if results[manifestRel] == nil {
			report(manifestRel, err)
		}
		return results, nil
	}

	var g errgroup.Group
	for _, bucket := range m.BucketOrder {
		for _, rel := range m.Overrides[bucket] {
			rel := rel
			g.Go(func() error {
				report(rel, schemas.ValidateFile(overrideSchema, filepath.Join(dir, rel)))
				return nil
			})
		}
	}
	for _, rel := range m.Selection {
		rel := rel
		g.Go(func() error {
			report(rel, schemas.ValidateFile(selectionSchema, filepath.Join(dir, rel)))
			return nil
		})
	}
	_ = g.Wait()

	if results[manifestRel] == nil {
		report(manifestRel, checkDuplicateRuleIDs(dir, m))
	}

	return results, nil
}

// validateManifestFile validates a manifest against the manifest schema,
// decoding YAML manifests to a generic value first.
func validateManifestFile(schemaPath, manifestPath string) error {
	switch filepath.Ext(manifestPath) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to parse manifest YAML: %w", err)
		}
		return schemas.ValidateValue(schemaPath, v)
	default:
		return schemas.ValidateFile(schemaPath, manifestPath)
	}
}

// checkDuplicateRuleIDs enforces the cross-document contract that rule ids
// are unique within a pack. The runtime engine does not re-check this.
func checkDuplicateRuleIDs(dir string, m *Manifest) error {
	seen := make(map[string]string)
	for _, bucket := range m.BucketOrder {
		for _, rel := range m.Overrides[bucket] {
			doc, err := LoadOverrideDocument(filepath.Join(dir, rel))
			if err != nil {
				continue // already reported by schema validation
			}
			for _, rule := range doc.Rules {
				if rule == nil || rule.ID == "" {
					continue
				}
				if prev, dup := seen[rule.ID]; dup {
					return fmt.Errorf("duplicate rule id %q in %s (first seen in %s)", rule.ID, rel, prev)
				}
				seen[rule.ID] = rel
			}
		}
	}
	return nil
}
