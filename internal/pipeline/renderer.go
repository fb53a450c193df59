package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/claimlens/claimlens/internal/model"
)

// Renderer writes reports as JSON, Markdown, and a stdout summary
type Renderer struct {
	fs            afero.Fs
	includeFooter bool
}

// NewRenderer creates a renderer over the given filesystem
func NewRenderer(fs afero.Fs, includeFooter bool) *Renderer {
	return &Renderer{fs: fs, includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := afero.WriteFile(r.fs, path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable Markdown report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var sb strings.Builder

	sb.WriteString("# Claimlens Report\n\n")
	sb.WriteString(fmt.Sprintf("- **Project**: %s\n", report.Project))
	sb.WriteString(fmt.Sprintf("- **Generated**: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	sb.WriteString(fmt.Sprintf("- **Consistency Score**: %.2f\n\n", report.Summary.ConsistencyScore))

	sb.WriteString("## Overview\n\n")
	sb.WriteString(fmt.Sprintf("| Claims | Evidence | Matched | Conflicts | Critical |\n"))
	sb.WriteString(fmt.Sprintf("|--------|----------|---------|-----------|----------|\n"))
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d |\n\n",
		report.Metadata.ClaimsAnalyzed,
		report.Metadata.ImplementationsAnalyzed,
		report.Metadata.MatchingPairsFound,
		report.Summary.Total,
		report.Summary.CriticalConflicts))

	if len(report.Conflicts) == 0 {
		sb.WriteString("No conflicts detected: documentation and implementation agree.\n")
	} else {
		sb.WriteString("## Conflicts\n\n")
		for _, severity := range []model.ConflictSeverity{
			model.SeverityCritical, model.SeverityHigh, model.SeverityMedium, model.SeverityLow,
		} {
			r.renderSeverityGroup(&sb, report.Conflicts, severity)
		}
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("\n## Skipped Files\n\n")
		for _, w := range report.Warnings {
			if w.File != "" {
				sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", w.File, w.Stage, w.Reason))
			} else {
				sb.WriteString(fmt.Sprintf("- (%s): %s\n", w.Stage, w.Reason))
			}
		}
	}

	if r.includeFooter {
		sb.WriteString("\n---\n\n")
		sb.WriteString("Generated by [claimlens](https://github.com/claimlens/claimlens). ")
		sb.WriteString("Claimlens reports documentation/implementation agreement, not code quality.\n")
	}

	if err := afero.WriteFile(r.fs, path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) renderSeverityGroup(sb *strings.Builder, conflicts []model.Conflict, severity model.ConflictSeverity) {
	var group []model.Conflict
	for _, c := range conflicts {
		if c.Severity == severity {
			group = append(group, c)
		}
	}
	if len(group) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("### %s (%d)\n\n", strings.ToUpper(string(severity)), len(group)))
	for _, c := range group {
		sb.WriteString(fmt.Sprintf("- **%s** (confidence %.2f, %s)\n", c.Type, c.Confidence, c.Strategy))
		if c.Claim != nil {
			sb.WriteString(fmt.Sprintf("  - Claim: %q at `%s:%d`\n",
				c.Claim.Description, c.Claim.Location.File, c.Claim.Location.Line))
		}
		if c.Evidence != nil {
			sb.WriteString(fmt.Sprintf("  - Evidence: %s (%s) in %s\n",
				c.Evidence.Description, c.Evidence.Level, formatFiles(c.Evidence.Files)))
		}
		sb.WriteString(fmt.Sprintf("  - Action: %s\n", c.RecommendedAction))
	}
	sb.WriteString("\n")
}

// RenderLLMMarkdown writes pre-rendered LLM markdown to its own file,
// kept separate from the main report on purpose
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	if err := afero.WriteFile(r.fs, path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a terminal summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Claimlens: %s\n", report.Project)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Consistency Score:  %.2f\n", report.Summary.ConsistencyScore)
	fmt.Printf("  Claims:             %d (%d unmatched)\n",
		report.Metadata.ClaimsAnalyzed, report.Metadata.UnmatchedClaims)
	fmt.Printf("  Evidence:           %d (%d unmatched)\n",
		report.Metadata.ImplementationsAnalyzed, report.Metadata.UnmatchedImplementations)
	fmt.Printf("  Conflicts:          %d (%d critical, %d flagged)\n",
		report.Summary.Total, report.Summary.CriticalConflicts, report.Summary.Flagged)
	if len(report.Warnings) > 0 {
		fmt.Printf("  Skipped files:      %d\n", len(report.Warnings))
	}
	fmt.Printf("  Analysis time:      %dms\n", report.Metadata.AnalysisTimeMS)
	fmt.Println("═══════════════════════════════════════════════════════════")
}

func formatFiles(files []string) string {
	if len(files) == 0 {
		return "(manifest only)"
	}
	if len(files) <= 3 {
		return "`" + strings.Join(files, "`, `") + "`"
	}
	return fmt.Sprintf("`%s` and %d more", files[0], len(files)-1)
}
