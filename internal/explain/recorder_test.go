package explain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-engine/internal/types"
)

func entries(n int, prefix string) []types.ExplainEntry {
	out := make([]types.ExplainEntry, n)
	for i := range out {
		out[i] = types.ExplainEntry{ID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func TestRecord_CollectorReceivesPayload(t *testing.T) {
	var gotCtx string
	var got types.ExplainPayload
	rec := NewRecorder(nil, WithCollector(func(ctx string, payload types.ExplainPayload) {
		gotCtx = ctx
		got = payload
	}))

	rec.Record("reads:ESTJ-A", []string{"axis:EI:E"}, entries(2, "sel"), entries(1, "rej"))

	assert.Equal(t, "reads:ESTJ-A", gotCtx)
	assert.Equal(t, "reads", got.Target, "target is the ctx prefix before the colon")
	assert.Equal(t, []string{"axis:EI:E"}, got.ContextTags)
	assert.Len(t, got.Selected, 2)
	assert.Len(t, got.Rejected, 1)
}

func TestRecord_RejectedSampleBounded(t *testing.T) {
	rec := NewRecorder(nil, WithCapture(true))

	rec.Record("cards:x", nil, nil, entries(20, "rej"))

	payload, ok := rec.Trace("cards:x")
	require.True(t, ok)
	assert.Len(t, payload.Rejected, MaxRejectedSample)
	assert.Equal(t, "rej-0", payload.Rejected[0].ID, "sample keeps the earliest rejects")
}

func TestRecord_PanickingCollectorIsContained(t *testing.T) {
	rec := NewRecorder(nil,
		WithCollector(func(string, types.ExplainPayload) { panic("boom") }),
		WithCapture(true))

	assert.NotPanics(t, func() {
		rec.Record("cards:x", nil, entries(1, "sel"), nil)
	})

	// Capture still happened despite the collector failure.
	_, ok := rec.Trace("cards:x")
	assert.True(t, ok)
}

func TestRecord_NilSlicesNormalized(t *testing.T) {
	rec := NewRecorder(nil, WithCapture(true))

	rec.Record("highlights:y", nil, nil, nil)

	payload, ok := rec.Trace("highlights:y")
	require.True(t, ok)
	assert.NotNil(t, payload.Selected)
	assert.NotNil(t, payload.Rejected)
	assert.NotNil(t, payload.ContextTags)
	assert.Equal(t, "highlights", payload.Target)
}

func TestTraces_SortedKeys(t *testing.T) {
	rec := NewRecorder(nil, WithCapture(true))
	rec.Record("b:1", nil, nil, nil)
	rec.Record("a:1", nil, nil, nil)

	keys, all := rec.Traces()

	assert.Equal(t, []string{"a:1", "b:1"}, keys)
	assert.Len(t, all, 2)
}

func TestTargetFromCtx_NoColon(t *testing.T) {
	rec := NewRecorder(nil, WithCapture(true))
	rec.Record("cards", nil, nil, nil)

	payload, _ := rec.Trace("cards")
	assert.Equal(t, "cards", payload.Target)
}
