package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-engine/internal/types"
)

func writePackFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testPack(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writePackFile(t, dir, "manifest.json", `{
		"package": "core",
		"version": "2.1.0",
		"bucket_order": ["base", "persona"],
		"overrides": {
			"base": ["overrides/base.json"],
			"persona": ["overrides/persona.json"]
		},
		"selection": {"reads": "selection/reads.json"}
	}`)
	writePackFile(t, dir, "overrides/base.json", `{
		"rules": [
			{"id": "rename", "target": "cards", "mode": "patch",
			 "match": {"item": "c1"}, "patch": {"title": "Strengths for {{type_code}}"}}
		]
	}`)
	writePackFile(t, dir, "overrides/persona.json", `{
		"rules": [
			{"id": "drop-c2", "target": "cards", "mode": "remove",
			 "match": {"item": "c2"},
			 "when": {"require_any": ["minimal"]}}
		]
	}`)
	writePackFile(t, dir, "selection/reads.json", `{
		"items": {
			"by_type": [
				{"id": "r1", "priority": 9, "tags": ["driven"]},
				{"id": "r2", "priority": 5}
			],
			"fallback": [
				{"id": "r3", "priority": 1}
			]
		},
		"fill_order": ["by_type"],
		"quota": {"by_type": 1},
		"max_items": 3,
		"min_items": 2
	}`)
	return dir
}

func cardList() []types.Item {
	return []types.Item{
		{"id": "c1", "kind": "card", "title": "Strengths"},
		{"id": "c2", "kind": "card", "title": "Risks"},
	}
}

func TestRun_AppliesOverridesAndSelects(t *testing.T) {
	dir := testPack(t)

	res, err := Run(context.Background(), RunOptions{
		PackDir:  dir,
		Target:   "cards",
		Content:  cardList(),
		UserTags: []string{"minimal", "driven"},
		TypeCode: "ENTJ",
	})
	require.NoError(t, err)

	// The patch rule rewrote the title with the template expanded, and the
	// gated remove rule dropped c2.
	require.Len(t, res.Items, 1)
	assert.Equal(t, "c1", res.Items[0].ID())
	assert.Equal(t, "Strengths for ENTJ", res.Items[0]["title"])

	assert.NotEmpty(t, res.Seed)
	assert.NotEmpty(t, res.RunID)
	// cards has no selection document mapped.
	assert.Nil(t, res.Selected)
}

func TestRun_SelectionTarget(t *testing.T) {
	dir := testPack(t)

	res, err := Run(context.Background(), RunOptions{
		PackDir:  dir,
		Target:   "reads",
		UserTags: []string{"driven"},
		TypeCode: "ENTJ",
	})
	require.NoError(t, err)

	// quota 1 from by_type, backfill to min_items from fallback.
	require.Len(t, res.Selected, 2)
	assert.Equal(t, "r1", res.Selected[0].ID())
	assert.Equal(t, "r3", res.Selected[1].ID())
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	dir := testPack(t)
	opts := RunOptions{
		PackDir:  dir,
		Target:   "reads",
		UserTags: []string{"driven"},
		TypeCode: "INFP",
	}

	first, err := Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, first.Seed, second.Seed)
	require.Equal(t, len(first.Selected), len(second.Selected))
	for i := range first.Selected {
		assert.Equal(t, first.Selected[i].ID(), second.Selected[i].ID())
	}
}

func TestRun_SeedOverride(t *testing.T) {
	dir := testPack(t)

	res, err := Run(context.Background(), RunOptions{
		PackDir: dir,
		Target:  "cards",
		Content: cardList(),
		Seed:    "pinned",
	})
	require.NoError(t, err)
	assert.Equal(t, "pinned", res.Seed)
}

func TestRun_CapturesTraces(t *testing.T) {
	dir := testPack(t)

	var collected []string
	res, err := Run(context.Background(), RunOptions{
		PackDir:  dir,
		Target:   "reads",
		UserTags: []string{"driven"},
		TypeCode: "ENTJ",
		Collector: func(ctx string, payload types.ExplainPayload) {
			collected = append(collected, ctx)
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.TraceKeys)
	assert.NotEmpty(t, collected)
	for _, key := range res.TraceKeys {
		_, ok := res.Traces[key]
		assert.True(t, ok)
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	dir := testPack(t)

	var stepNames []string
	_, err := Run(context.Background(), RunOptions{
		PackDir: dir,
		Target:  "cards",
		Content: cardList(),
		OnProgress: func(ev ProgressEvent) {
			stepNames = append(stepNames, ev.Step)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"load_manifest", "load_overrides", "build_context",
		"apply_overrides", "record_explain",
	}, stepNames)
}

func TestRun_MissingPack(t *testing.T) {
	_, err := Run(context.Background(), RunOptions{PackDir: t.TempDir(), Target: "cards"})
	require.Error(t, err)
}

func TestRun_CancelledContext(t *testing.T) {
	dir := testPack(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, RunOptions{PackDir: dir, Target: "cards"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_LimitOverrides(t *testing.T) {
	dir := testPack(t)

	res, err := Run(context.Background(), RunOptions{
		PackDir:  dir,
		Target:   "reads",
		UserTags: []string{"driven"},
		MaxItems: 1,
		MinItems: 1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Selected, 1)
}
