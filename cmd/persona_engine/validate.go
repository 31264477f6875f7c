package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-engine/internal/contentpack"
	"github.com/jonathan/persona-engine/internal/observability"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a content pack against the document schemas",
	Long:  "Validates the manifest, every referenced override document, and every referenced selection document in a content pack. All failures are reported; the command exits non-zero if any document is invalid.",
	RunE:  runValidate,
}

var (
	validatePackDir string
	validateQuiet   bool
)

func init() {
	validateCmd.Flags().StringVarP(&validatePackDir, "pack", "p", "", "Content pack directory")
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "Only print failures")

	_ = validateCmd.MarkFlagRequired("pack")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	results, err := contentpack.ValidatePack(validatePackDir)
	if err != nil {
		return fmt.Errorf("pack validation failed: %w", err)
	}

	failures := 0
	files := make([]string, 0, len(results))
	for file := range results {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		if ferr := results[file]; ferr != nil {
			failures++
			_, _ = fmt.Fprintf(os.Stderr, "FAIL %s\n  %v\n", file, ferr)
		} else if !validateQuiet {
			_, _ = fmt.Fprintf(os.Stdout, "ok   %s\n", file)
		}
	}

	if !validateQuiet {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintValidationSummary(results)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed validation", failures, len(results))
	}
	return nil
}
