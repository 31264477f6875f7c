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

var applyOverridesCmd = &cobra.Command{
	Use:   "apply-overrides",
	Short: "Apply a content pack's override documents to a content list",
	Long: `Loads a content pack, concatenates its override documents in manifest
bucket order, and applies every applicable rule to the input content list for
the chosen target. The mutated list is written as JSON.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runApplyOverrides,
}

var (
	aoConfigPath string
	aoPackDir    string
	aoInputFile  string
	aoOutputFile string
	aoTarget     string
	aoTagsFile   string
	aoTags       []string
	aoTypeCode   string
	aoSection    string
	aoLocale     string
	aoRegion     string
	aoScaleCode  string
	aoSeed       string
	aoCtxJSON    string
	aoDebug      bool
	aoVerbose    bool
)

func init() {
	applyOverridesCmd.Flags().StringVar(&aoConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	applyOverridesCmd.Flags().StringVarP(&aoPackDir, "pack", "p", "", "Content pack directory")
	applyOverridesCmd.Flags().StringVarP(&aoInputFile, "in", "i", "", "Path to input content list JSON file")
	applyOverridesCmd.Flags().StringVarP(&aoOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	applyOverridesCmd.Flags().StringVarP(&aoTarget, "target", "t", "cards", "Target content list (cards|highlights|reads)")
	applyOverridesCmd.Flags().StringVar(&aoTagsFile, "tags-file", "", "Path to a JSON file with the user tag list")
	applyOverridesCmd.Flags().StringSliceVar(&aoTags, "tag", nil, "User tag (repeatable, appended to --tags-file)")
	applyOverridesCmd.Flags().StringVar(&aoTypeCode, "type-code", "", "Personality type code (e.g. ENTJ)")
	applyOverridesCmd.Flags().StringVar(&aoSection, "section", "", "Report section key")
	applyOverridesCmd.Flags().StringVar(&aoLocale, "locale", "", "BCP-47 locale tag")
	applyOverridesCmd.Flags().StringVar(&aoRegion, "region", "", "Region code")
	applyOverridesCmd.Flags().StringVar(&aoScaleCode, "scale-code", "", "Assessment scale code")
	applyOverridesCmd.Flags().StringVar(&aoSeed, "seed", "", "Selection seed override (default: derived from the pack)")
	applyOverridesCmd.Flags().StringVar(&aoCtxJSON, "ctx", "", "Free-form context bag as a JSON object")
	applyOverridesCmd.Flags().BoolVar(&aoDebug, "debug", false, "Capture and print explain traces")
	applyOverridesCmd.Flags().BoolVarP(&aoVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = applyOverridesCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(applyOverridesCmd)
}

func runApplyOverrides(cmd *cobra.Command, _ []string) error {
	cfg, err := mergedConfig(cmd, aoConfigPath, config.Config{
		PackDir:    aoPackDir,
		TagsFile:   aoTagsFile,
		TypeCode:   aoTypeCode,
		SectionKey: aoSection,
		Locale:     aoLocale,
		Region:     aoRegion,
		ScaleCode:  aoScaleCode,
		Seed:       aoSeed,
		Debug:      aoDebug,
		Verbose:    aoVerbose,
	})
	if err != nil {
		return err
	}
	if cfg.PackDir == "" {
		return fmt.Errorf("pack directory is required (use --pack or the config file)")
	}

	content, err := loadItemList(aoInputFile)
	if err != nil {
		return err
	}

	userTags := aoTags
	if cfg.TagsFile != "" {
		fileTags, err := config.LoadUserTags(cfg.TagsFile)
		if err != nil {
			return err
		}
		userTags = append(fileTags, userTags...)
	}

	ctxBag, err := parseCtxBag(aoCtxJSON)
	if err != nil {
		return err
	}

	log, err := observability.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	result, err := pipeline.Run(context.Background(), pipeline.RunOptions{
		PackDir:    cfg.PackDir,
		Target:     aoTarget,
		Content:    content,
		UserTags:   userTags,
		TypeCode:   cfg.TypeCode,
		SectionKey: cfg.SectionKey,
		Locale:     cfg.Locale,
		Region:     cfg.Region,
		ScaleCode:  cfg.ScaleCode,
		CtxBag:     ctxBag,
		Seed:       cfg.Seed,
		Debug:      cfg.Debug,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("override run failed: %w", err)
	}

	if err := writeJSONOutput(aoOutputFile, result.Items); err != nil {
		return err
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintItems(aoTarget, result.Items)
	}
	if cfg.Debug {
		printer := observability.NewPrinter(os.Stderr)
		for _, key := range result.TraceKeys {
			printer.PrintExplainTrace(result.Traces[key])
		}
	}

	if aoOutputFile != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Successfully applied overrides to %d items\n", len(result.Items))
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", aoOutputFile)
	}

	return nil
}
