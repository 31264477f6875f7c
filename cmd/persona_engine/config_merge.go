package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-engine/internal/config"
)

// mergedConfig combines flag values with an optional config file. Flags win
// wherever they were set; the file fills the gaps.
func mergedConfig(cmd *cobra.Command, configPath string, flagCfg config.Config) (config.Config, error) {
	cfg := flagCfg
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = flagCfg.MergeWithDefaults(*loaded)

		// Bools are never merged, so honor a config-file true unless the
		// flag was given explicitly.
		if !cmd.Flags().Changed("debug") && loaded.Debug {
			cfg.Debug = true
		}
		if !cmd.Flags().Changed("verbose") && loaded.Verbose {
			cfg.Verbose = true
		}
		if cfg.Verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
