// Package contentpack loads content-pack directories: the manifest that
// declares bucket order, the override documents it references, and the
// selection documents for each target.
package contentpack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest declares a content pack's identity and, critically, the order in
// which override-document buckets apply. Bucket order is a hard external
// contract consumed verbatim by the orchestrator, never inferred.
type Manifest struct {
	SchemaVersion string `json:"schema_version,omitempty" yaml:"schema_version"`
	Package       string `json:"package" yaml:"package" validate:"required"`
	Version       string `json:"version" yaml:"version" validate:"required"`
	BucketOrder   []string `json:"bucket_order" yaml:"bucket_order" validate:"required,min=1,dive,required"`

	// Overrides maps a bucket name to the override-document files in it,
	// relative to the pack directory.
	Overrides map[string][]string `json:"overrides,omitempty" yaml:"overrides"`
	// Selection maps a target name to its selection-document file.
	Selection map[string]string `json:"selection,omitempty" yaml:"selection"`
}

var manifestValidate = validator.New()

// LoadManifest reads and validates a manifest file. JSON and YAML are both
// accepted, keyed on the file extension.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest YAML %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest JSON %s: %w", path, err)
		}
	}

	if err := manifestValidate.Struct(&m); err != nil {
		return nil, fmt.Errorf("manifest %s is invalid: %w", path, err)
	}
	return &m, nil
}

// FindManifest locates the manifest file inside a pack directory, trying the
// conventional names in order.
func FindManifest(dir string) (string, error) {
	for _, name := range []string{"manifest.json", "manifest.yaml", "manifest.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no manifest found in %s", dir)
}
