// Package observability provides logger construction and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/persona-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintExplainTrace outputs a human-readable summary of one explain payload.
func (p *Printer) PrintExplainTrace(payload types.ExplainPayload) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Target:  %s\n", payload.Target))
	sb.WriteString(fmt.Sprintf("Context: %s\n", payload.Ctx))
	if len(payload.ContextTags) > 0 {
		tags := strings.Join(payload.ContextTags, ", ")
		if len(tags) > 45 {
			tags = tags[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Tags:    %s\n", tags))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Selected (%d):\n", len(payload.Selected)))
	count := min(len(payload.Selected), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := payload.Selected[i]
		sb.WriteString(fmt.Sprintf("  • %s  score=%d hit=%d\n", e.ID, e.Score, e.Hit))
	}
	if len(payload.Selected) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(payload.Selected)-maxItemsToShow))
	}

	if len(payload.Rejected) > 0 {
		sb.WriteString("\nRejected sample:\n")
		count = min(len(payload.Rejected), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := payload.Rejected[i]
			sb.WriteString(fmt.Sprintf("  ✗ %s  %s\n", e.ID, e.Reason))
		}
		if len(payload.Rejected) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(payload.Rejected)-maxItemsToShow))
		}
	}

	p.printBox("EXPLAIN "+payload.Ctx, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintItems outputs the final item list for a target.
func (p *Printer) PrintItems(target string, items []types.Item) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d items:\n\n", len(items)))

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		sb.WriteString(fmt.Sprintf("#%d  %s", i+1, item.ID()))
		if kind := item.Kind(); kind != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", kind))
		}
		sb.WriteString("\n")
		if tags := item.Tags(); len(tags) > 0 {
			joined := strings.Join(tags, ", ")
			if len(joined) > 40 {
				joined = joined[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Tags: %s\n", joined))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more items", len(items)-maxItemsToShow))
	}

	p.printBox(strings.ToUpper(target)+" OUTPUT", sb.String())
}

// PrintValidationSummary outputs the per-file outcome of a pack validation run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationSummary(results map[string]error) {
	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
		}
	}
	if failures == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ %d DOCUMENTS VALID", len(results)))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d of %d documents failed:\n\n", failures, len(results)))
	for path, err := range results {
		if err == nil {
			continue
		}
		msg := err.Error()
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		if len(msg) > 45 {
			msg = msg[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n  %s\n", path, msg))
	}

	p.printBox("VALIDATION FAILURES", strings.TrimSuffix(sb.String(), "\n"))
}
