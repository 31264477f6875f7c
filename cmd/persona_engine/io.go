package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/persona-engine/internal/types"
)

// loadItemList reads a JSON content list: either a bare array of items or an
// object with an "items" array.
func loadItemList(path string) ([]types.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var direct []types.Item
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Items []types.Item `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	return wrapped.Items, nil
}

// writeJSONOutput marshals v with indentation to the given path, or to stdout
// when path is empty.
func writeJSONOutput(path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if path == "" {
		_, err = fmt.Fprintf(os.Stdout, "%s\n", jsonBytes)
		return err
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// parseCtxBag decodes the free-form --ctx JSON object, empty meaning none.
func parseCtxBag(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var bag map[string]any
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return nil, fmt.Errorf("failed to parse --ctx JSON: %w", err)
	}
	return bag, nil
}
