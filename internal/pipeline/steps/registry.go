// Package steps provides step definitions, dependency validation, and
// progress tracking for the personalization engine pipeline.
package steps

import (
	"fmt"
	"sort"
	"sync"
)

// Step categories, surfaced in progress events.
const (
	CategoryPack      = "pack"
	CategoryOverrides = "overrides"
	CategorySelection = "selection"
	CategoryExplain   = "explain"
)

// Pipeline step names.
const (
	StepLoadManifest   = "load_manifest"
	StepLoadOverrides  = "load_overrides"
	StepBuildContext   = "build_context"
	StepApplyOverrides = "apply_overrides"
	StepLoadSelection  = "load_selection"
	StepSelectItems    = "select_items"
	StepRecordExplain  = "record_explain"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepLoadManifest: {
		Name:         StepLoadManifest,
		Category:     CategoryPack,
		Dependencies: []string{},
	},
	StepLoadOverrides: {
		Name:         StepLoadOverrides,
		Category:     CategoryPack,
		Dependencies: []string{StepLoadManifest},
	},
	StepBuildContext: {
		Name:         StepBuildContext,
		Category:     CategoryPack,
		Dependencies: []string{StepLoadManifest},
	},
	StepApplyOverrides: {
		Name:         StepApplyOverrides,
		Category:     CategoryOverrides,
		Dependencies: []string{StepLoadOverrides, StepBuildContext},
	},
	StepLoadSelection: {
		Name:         StepLoadSelection,
		Category:     CategorySelection,
		Dependencies: []string{StepLoadManifest},
	},
	StepSelectItems: {
		Name:         StepSelectItems,
		Category:     CategorySelection,
		Dependencies: []string{StepLoadSelection, StepBuildContext},
	},
	StepRecordExplain: {
		Name:         StepRecordExplain,
		Category:     CategoryExplain,
		Dependencies: []string{},
		Optional:     []string{StepApplyOverrides, StepSelectItems},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// Tracker records which steps have completed during one run and validates
// ordering against the registry.
type Tracker struct {
	mu   sync.Mutex
	done map[string]bool
}

// NewTracker builds an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{done: make(map[string]bool)}
}

// Begin checks that stepName's required dependencies have completed.
func (t *Tracker) Begin(stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var missing []string
	for _, dep := range def.Dependencies {
		if !t.done[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

// Complete marks a step finished.
func (t *Tracker) Complete(stepName string) {
	t.mu.Lock()
	t.done[stepName] = true
	t.mu.Unlock()
}

// Completed reports whether a step has finished.
func (t *Tracker) Completed(stepName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done[stepName]
}

// Available returns steps whose dependencies are met and that have not run,
// sorted by name.
func (t *Tracker) Available() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var available []string
	for stepName, def := range StepRegistry {
		if t.done[stepName] {
			continue
		}
		met := true
		for _, dep := range def.Dependencies {
			if !t.done[dep] {
				met = false
				break
			}
		}
		if met {
			available = append(available, stepName)
		}
	}
	sort.Strings(available)
	return available
}
