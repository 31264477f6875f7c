package contentpack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonathan/persona-engine/internal/ranking"
	"github.com/jonathan/persona-engine/internal/selection"
	"github.com/jonathan/persona-engine/internal/types"
)

// LoadOverrideDocument reads a single override document and stamps it with
// file provenance so explain traces can name where each rule came from.
func LoadOverrideDocument(path string) (*types.OverrideDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override document %s: %w", path, err)
	}

	var doc types.OverrideDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse override document %s: %w", path, err)
	}
	doc.SrcChain = []*types.Provenance{{Source: filepath.Base(path)}}
	return &doc, nil
}

// OverrideDocuments loads every override document the manifest references,
// walking buckets in manifest order and files in listed order. The resulting
// slice is the exact application order the orchestrator consumes.
func (m *Manifest) OverrideDocuments(dir string) ([]*types.OverrideDocument, error) {
	var docs []*types.OverrideDocument
	for _, bucket := range m.BucketOrder {
		for _, rel := range m.Overrides[bucket] {
			doc, err := LoadOverrideDocument(filepath.Join(dir, rel))
			if err != nil {
				return nil, fmt.Errorf("bucket %s: %w", bucket, err)
			}
			for _, src := range doc.SrcChain {
				src.Bucket = bucket
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// DedupeSpec is the dedupe block of a selection document.
type DedupeSpec struct {
	HardBy    []string `json:"hard_by,omitempty"`
	SoftBy    []string `json:"soft_by,omitempty"`
	URLParams []string `json:"url_params,omitempty"`
}

// SelectionDocument declares the candidate buckets and fill policy for one
// target's selection run.
type SelectionDocument struct {
	Schema    string                  `json:"schema,omitempty"`
	Items     map[string][]types.Item `json:"items"`
	Rules     map[string]any          `json:"rules,omitempty"`
	Filters   []*types.Rule           `json:"filters,omitempty"`
	FillOrder []string                `json:"fill_order,omitempty"`
	Quota     map[string]any          `json:"quota,omitempty"`
	MaxItems  int                     `json:"max_items,omitempty"`
	MinItems  int                     `json:"min_items,omitempty"`
	Sort      string                  `json:"sort,omitempty"`
	Dedupe    DedupeSpec              `json:"dedupe,omitempty"`

	Source string `json:"-"`
}

// LoadSelectionDocument reads a selection document from disk.
func LoadSelectionDocument(path string) (*SelectionDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection document %s: %w", path, err)
	}

	var doc SelectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse selection document %s: %w", path, err)
	}
	doc.Source = filepath.Base(path)
	return &doc, nil
}

// SelectionDocumentFor resolves and loads the selection document the manifest
// maps to a target.
func (m *Manifest) SelectionDocumentFor(dir, target string) (*SelectionDocument, error) {
	rel, ok := m.Selection[target]
	if !ok {
		return nil, fmt.Errorf("manifest has no selection document for target %s", target)
	}
	return LoadSelectionDocument(filepath.Join(dir, rel))
}

// Options translates the document's fill policy into pipeline options. The
// eval block (seed, context, global rules) comes from the caller because it is
// request state, not pack state.
func (d *SelectionDocument) Options(eval ranking.Options) selection.Options {
	if len(d.Rules) > 0 {
		eval.GlobalRules = types.ParseGate(d.Rules)
	}

	fillOrder := d.FillOrder
	if len(fillOrder) == 0 {
		fillOrder = sortedBucketNames(d.Items)
	}

	return selection.Options{
		FillOrder: fillOrder,
		Quota:     d.Quota,
		MaxItems:  d.MaxItems,
		MinItems:  d.MinItems,
		Sort:      d.Sort,
		Filters:   d.Filters,
		Dedupe: selection.DedupePolicy{
			HardBy:    d.Dedupe.HardBy,
			SoftBy:    d.Dedupe.SoftBy,
			URLParams: d.Dedupe.URLParams,
		},
		Eval: eval,
	}
}

func sortedBucketNames(buckets map[string][]types.Item) []string {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	// Deterministic default when the document omits fill_order.
	sort.Strings(names)
	return names
}
