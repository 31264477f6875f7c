package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadItemList_BareArray(t *testing.T) {
	path := writeTemp(t, "content.json", `[{"id": "c1"}, {"id": "c2", "kind": "card"}]`)

	items, err := loadItemList(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c1", items[0].ID())
	assert.Equal(t, "card", items[1].Kind())
}

func TestLoadItemList_WrappedObject(t *testing.T) {
	path := writeTemp(t, "content.json", `{"items": [{"id": "c1"}]}`)

	items, err := loadItemList(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestLoadItemList_Malformed(t *testing.T) {
	path := writeTemp(t, "content.json", `not json`)

	_, err := loadItemList(path)
	assert.Error(t, err)
}

func TestWriteJSONOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeJSONOutput(path, map[string]any{"id": "x"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "x"`)
}

func TestParseCtxBag(t *testing.T) {
	bag, err := parseCtxBag(`{"report": {"year": 2026}}`)
	require.NoError(t, err)
	assert.NotNil(t, bag["report"])

	bag, err = parseCtxBag("")
	require.NoError(t, err)
	assert.Nil(t, bag)

	_, err = parseCtxBag("{")
	assert.Error(t, err)
}
