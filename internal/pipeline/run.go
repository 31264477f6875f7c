// Package pipeline provides the high-level orchestration for a
// personalization run: load the content pack, apply the override documents to
// the target list, then run bucket selection if the pack defines it.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/persona-engine/internal/contentpack"
	"github.com/jonathan/persona-engine/internal/explain"
	"github.com/jonathan/persona-engine/internal/overrides"
	"github.com/jonathan/persona-engine/internal/pipeline/steps"
	"github.com/jonathan/persona-engine/internal/ranking"
	"github.com/jonathan/persona-engine/internal/selection"
	"github.com/jonathan/persona-engine/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	PackDir string
	Target  string
	// Content is the base content list for the target; overrides apply to it.
	// May be empty when only selection output is wanted.
	Content []types.Item

	UserTags   []string
	TypeCode   string
	SectionKey string
	Locale     string
	Region     string
	ScaleCode  string
	CtxBag     map[string]any

	// Seed overrides the pack-derived selection seed.
	Seed string
	// MaxItems/MinItems override the selection document's limits when > 0.
	MaxItems int
	MinItems int

	Debug      bool
	Collector  types.Collector
	OnProgress ProgressCallback
	Logger     *zap.Logger
}

// RunResult holds everything one pipeline run produced.
type RunResult struct {
	// Items is the target content list after override application.
	Items []types.Item
	// Selected is the selection pipeline output, nil when the pack maps no
	// selection document to the target.
	Selected []types.Item
	// Seed is the seed the run actually used.
	Seed  string
	RunID string
	// TraceKeys and Traces are the captured explain payloads, keyed by
	// logical context name.
	TraceKeys []string
	Traces    map[string]types.ExplainPayload
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}

// Run executes one full personalization run for a single target.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	rec := explain.NewRecorder(log,
		explain.WithCollector(opts.Collector),
		explain.WithDebug(opts.Debug),
		explain.WithCapture(true))
	tracker := steps.NewTracker()

	runStep := func(name, category, message string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tracker.Begin(name); err != nil {
			return fmt.Errorf("step %s: %w", name, err)
		}
		if err := fn(); err != nil {
			return err
		}
		tracker.Complete(name)
		emitProgress(&opts, rec.RunID(), name, category, message, nil)
		return nil
	}

	var (
		manifest *contentpack.Manifest
		docs     []*types.OverrideDocument
		evalCtx  *types.Context
		result   = &RunResult{RunID: rec.RunID()}
	)

	err := runStep(steps.StepLoadManifest, steps.CategoryPack, "loaded manifest", func() error {
		path, err := contentpack.FindManifest(opts.PackDir)
		if err != nil {
			return err
		}
		manifest, err = contentpack.LoadManifest(path)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = runStep(steps.StepLoadOverrides, steps.CategoryPack,
		fmt.Sprintf("loaded override documents for %d buckets", len(manifest.BucketOrder)), func() error {
			var err error
			docs, err = manifest.OverrideDocuments(opts.PackDir)
			return err
		})
	if err != nil {
		return nil, err
	}

	err = runStep(steps.StepBuildContext, steps.CategoryPack, "built evaluation context", func() error {
		seed := opts.Seed
		if seed == "" {
			seed = manifest.SeedFor(opts.TypeCode)
		}
		result.Seed = seed
		evalCtx = &types.Context{
			Ctx:               opts.CtxBag,
			Tags:              opts.UserTags,
			TypeCode:          opts.TypeCode,
			SectionKey:        opts.SectionKey,
			Target:            opts.Target,
			Locale:            opts.Locale,
			Region:            opts.Region,
			ScaleCode:         opts.ScaleCode,
			ContentPackageDir: opts.PackDir,
			Seed:              seed,
			Debug:             opts.Debug,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runStep(steps.StepApplyOverrides, steps.CategoryOverrides,
		fmt.Sprintf("applied overrides to %d items", len(opts.Content)), func() error {
			orch := overrides.NewOrchestrator(log, rec)
			result.Items = orch.Apply(docs, opts.Target, opts.Content, evalCtx)
			return nil
		})
	if err != nil {
		return nil, err
	}

	if _, hasSelection := manifest.Selection[opts.Target]; hasSelection {
		var selDoc *contentpack.SelectionDocument
		err = runStep(steps.StepLoadSelection, steps.CategorySelection, "loaded selection document", func() error {
			var err error
			selDoc, err = manifest.SelectionDocumentFor(opts.PackDir, opts.Target)
			return err
		})
		if err != nil {
			return nil, err
		}

		err = runStep(steps.StepSelectItems, steps.CategorySelection, "selected items", func() error {
			selOpts := selDoc.Options(ranking.Options{
				Ctx:  opts.Target + ":" + opts.TypeCode,
				Seed: result.Seed,
			})
			if opts.MaxItems > 0 {
				selOpts.MaxItems = opts.MaxItems
			}
			if opts.MinItems > 0 {
				selOpts.MinItems = opts.MinItems
			}
			pipe := selection.NewPipeline(log, rec)
			result.Selected = pipe.Select(selDoc.Items, types.NewTagSet(opts.UserTags...), selOpts)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = runStep(steps.StepRecordExplain, steps.CategoryExplain, "captured explain traces", func() error {
		result.TraceKeys, result.Traces = rec.Traces()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
