// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags.
type Config struct {
	// Paths
	PackDir  string `json:"pack_dir,omitempty"`  // Content pack directory
	TagsFile string `json:"tags_file,omitempty"` // Path to a JSON file with the user tag list

	// Request context
	TypeCode   string `json:"type_code,omitempty"`   // Personality type code (e.g. ENTJ)
	SectionKey string `json:"section_key,omitempty"` // Report section key
	Locale     string `json:"locale,omitempty"`      // BCP-47 locale tag
	Region     string `json:"region,omitempty"`      // Region code
	ScaleCode  string `json:"scale_code,omitempty"`  // Assessment scale code
	Seed       string `json:"seed,omitempty"`        // Selection seed override; derived from the pack when empty

	// Limits
	MaxItems int `json:"max_items,omitempty"` // Output cap for selection runs
	MinItems int `json:"min_items,omitempty"` // Backfill floor for selection runs

	// Behavior
	Debug   bool `json:"debug,omitempty"`   // Capture and print explain traces
	Verbose bool `json:"verbose,omitempty"` // Print detailed progress information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MaxItems < 0 {
		return fmt.Errorf("config error: 'max_items' must be non-negative")
	}
	if c.MinItems < 0 {
		return fmt.Errorf("config error: 'min_items' must be non-negative")
	}
	if c.MaxItems > 0 && c.MinItems > c.MaxItems {
		return fmt.Errorf("config error: 'min_items' cannot exceed 'max_items'")
	}

	if c.PackDir != "" {
		if info, err := os.Stat(c.PackDir); os.IsNotExist(err) || (err == nil && !info.IsDir()) {
			return fmt.Errorf("config error: pack directory not found: %s", c.PackDir)
		}
	}

	if c.TagsFile != "" {
		if _, err := os.Stat(c.TagsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: tags file not found: %s", c.TagsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.PackDir == "" {
		result.PackDir = defaults.PackDir
	}
	if result.TagsFile == "" {
		result.TagsFile = defaults.TagsFile
	}
	if result.TypeCode == "" {
		result.TypeCode = defaults.TypeCode
	}
	if result.SectionKey == "" {
		result.SectionKey = defaults.SectionKey
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.Region == "" {
		result.Region = defaults.Region
	}
	if result.ScaleCode == "" {
		result.ScaleCode = defaults.ScaleCode
	}
	if result.Seed == "" {
		result.Seed = defaults.Seed
	}

	// Int fields: use default if zero
	if result.MaxItems == 0 {
		result.MaxItems = defaults.MaxItems
	}
	if result.MinItems == 0 {
		result.MinItems = defaults.MinItems
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LoadUserTags reads a user tag list from a JSON file: either a bare array of
// strings or an object with a "tags" array.
func LoadUserTags(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags file %s: %w", path, err)
	}

	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse tags file %s: %w", path, err)
	}
	return wrapped.Tags, nil
}
