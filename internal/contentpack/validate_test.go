package contentpack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePack_AllValid(t *testing.T) {
	dir := makePack(t)

	results, err := ValidatePack(dir)
	require.NoError(t, err)
	require.Len(t, results, 4) // manifest + 2 override docs + 1 selection doc

	for file, ferr := range results {
		assert.NoError(t, ferr, "file %s should validate", file)
	}
}

func TestValidatePack_ReportsBrokenDocument(t *testing.T) {
	dir := makePack(t)
	// Rule without an id violates the override document schema.
	writePackFile(t, dir, "overrides/persona.json", `{"rules": [{"mode": "remove"}]}`)

	results, err := ValidatePack(dir)
	require.NoError(t, err)

	assert.Error(t, results["overrides/persona.json"])
	assert.NoError(t, results["overrides/base.json"])
	assert.NoError(t, results["selection/reads.json"])
}

func TestValidatePack_ReportsDuplicateRuleIDs(t *testing.T) {
	dir := makePack(t)
	writePackFile(t, dir, "overrides/persona.json", `{
		"rules": [{"id": "base-title", "target": "cards", "mode": "remove"}]
	}`)

	results, err := ValidatePack(dir)
	require.NoError(t, err)

	merr := results["manifest.json"]
	require.Error(t, merr)
	assert.Contains(t, merr.Error(), "duplicate rule id")
}

func TestValidatePack_NoManifest(t *testing.T) {
	_, err := ValidatePack(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no manifest")
}

func TestValidatePack_UnparseableManifestStops(t *testing.T) {
	dir := t.TempDir()
	writePackFile(t, dir, "manifest.json", `{"package": 7}`)

	results, err := ValidatePack(dir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[filepath.Base(filepath.Join(dir, "manifest.json"))])
}
