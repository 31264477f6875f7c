package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-engine/internal/config"
	"github.com/jonathan/persona-engine/internal/observability"
	"github.com/jonathan/persona-engine/internal/pipeline"
)

var selectItemsCmd = &cobra.Command{
	Use:   "select-items",
	Short: "Run bucket selection for a target from a content pack",
	Long: `Loads the selection document the pack maps to the target, ranks every
candidate bucket against the user tag set, and fills the output list by
quota, dedupe policy, and backfill floor. Results are deterministic for a
given pack version, type code, and tag set.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runSelectItems,
}

var (
	siConfigPath string
	siPackDir    string
	siOutputFile string
	siTarget     string
	siTagsFile   string
	siTags       []string
	siTypeCode   string
	siSection    string
	siLocale     string
	siRegion     string
	siScaleCode  string
	siSeed       string
	siMaxItems   int
	siMinItems   int
	siDebug      bool
	siVerbose    bool
)

func init() {
	selectItemsCmd.Flags().StringVar(&siConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	selectItemsCmd.Flags().StringVarP(&siPackDir, "pack", "p", "", "Content pack directory")
	selectItemsCmd.Flags().StringVarP(&siOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	selectItemsCmd.Flags().StringVarP(&siTarget, "target", "t", "reads", "Target selection list (e.g. reads)")
	selectItemsCmd.Flags().StringVar(&siTagsFile, "tags-file", "", "Path to a JSON file with the user tag list")
	selectItemsCmd.Flags().StringSliceVar(&siTags, "tag", nil, "User tag (repeatable, appended to --tags-file)")
	selectItemsCmd.Flags().StringVar(&siTypeCode, "type-code", "", "Personality type code (e.g. ENTJ)")
	selectItemsCmd.Flags().StringVar(&siSection, "section", "", "Report section key")
	selectItemsCmd.Flags().StringVar(&siLocale, "locale", "", "BCP-47 locale tag")
	selectItemsCmd.Flags().StringVar(&siRegion, "region", "", "Region code")
	selectItemsCmd.Flags().StringVar(&siScaleCode, "scale-code", "", "Assessment scale code")
	selectItemsCmd.Flags().StringVar(&siSeed, "seed", "", "Selection seed override (default: derived from the pack)")
	selectItemsCmd.Flags().IntVar(&siMaxItems, "max-items", 0, "Output cap (overrides the selection document)")
	selectItemsCmd.Flags().IntVar(&siMinItems, "min-items", 0, "Backfill floor (overrides the selection document)")
	selectItemsCmd.Flags().BoolVar(&siDebug, "debug", false, "Capture and print explain traces")
	selectItemsCmd.Flags().BoolVarP(&siVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(selectItemsCmd)
}

func runSelectItems(cmd *cobra.Command, _ []string) error {
	cfg, err := mergedConfig(cmd, siConfigPath, config.Config{
		PackDir:    siPackDir,
		TagsFile:   siTagsFile,
		TypeCode:   siTypeCode,
		SectionKey: siSection,
		Locale:     siLocale,
		Region:     siRegion,
		ScaleCode:  siScaleCode,
		Seed:       siSeed,
		MaxItems:   siMaxItems,
		MinItems:   siMinItems,
		Debug:      siDebug,
		Verbose:    siVerbose,
	})
	if err != nil {
		return err
	}
	if cfg.PackDir == "" {
		return fmt.Errorf("pack directory is required (use --pack or the config file)")
	}

	userTags := siTags
	if cfg.TagsFile != "" {
		fileTags, err := config.LoadUserTags(cfg.TagsFile)
		if err != nil {
			return err
		}
		userTags = append(fileTags, userTags...)
	}

	log, err := observability.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	result, err := pipeline.Run(context.Background(), pipeline.RunOptions{
		PackDir:    cfg.PackDir,
		Target:     siTarget,
		UserTags:   userTags,
		TypeCode:   cfg.TypeCode,
		SectionKey: cfg.SectionKey,
		Locale:     cfg.Locale,
		Region:     cfg.Region,
		ScaleCode:  cfg.ScaleCode,
		Seed:       cfg.Seed,
		MaxItems:   cfg.MaxItems,
		MinItems:   cfg.MinItems,
		Debug:      cfg.Debug,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("selection run failed: %w", err)
	}
	if result.Selected == nil {
		return fmt.Errorf("pack maps no selection document to target %s", siTarget)
	}

	if err := writeJSONOutput(siOutputFile, result.Selected); err != nil {
		return err
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintItems(siTarget, result.Selected)
	}
	if cfg.Debug {
		printer := observability.NewPrinter(os.Stderr)
		for _, key := range result.TraceKeys {
			printer.PrintExplainTrace(result.Traces[key])
		}
	}

	if siOutputFile != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Successfully selected %d items (seed: %s)\n", len(result.Selected), result.Seed)
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", siOutputFile)
	}

	return nil
}
