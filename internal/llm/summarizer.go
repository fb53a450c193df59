package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/worker"
)

// Summarizer orchestrates optional LLM summarization of a report.
// The summary NEVER affects conflicts or scores: it is generated after
// resolution, from the finished report, and a failure degrades to
// warnings instead of failing the audit.
type Summarizer struct {
	provider Provider
	config   Config
	limiter  *worker.Limiter
}

// NewSummarizer creates a summarizer from configuration. An empty
// provider name yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Summarizer{
		provider: provider,
		config:   config,
		limiter:  worker.NewLimiter(rps, 1),
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider's name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces the optional LLM summary for a finished
// report. Disabled -> (nil, nil). Unavailable provider or generation
// failure -> a summary object carrying warnings; the audit itself
// never fails because of the LLM.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.provider.Name()); err != nil {
			return nil, err
		}
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:          false,
			Provider:         s.provider.Name(),
			StrictReferences: s.config.StrictReferences,
			Warnings: []string{
				fmt.Sprintf("LLM provider %s is not available; summary skipped", s.provider.Name()),
			},
		}, nil
	}

	allowed := allowedFiles(report)

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:       report,
		AllowedFiles: allowed,
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	})
	if err != nil {
		return &model.LLMSummary{
			Enabled:          true,
			Provider:         s.provider.Name(),
			Model:            s.config.Model,
			StrictReferences: s.config.StrictReferences,
			Warnings: []string{
				fmt.Sprintf("LLM summary generation failed: %v", err),
			},
		}, nil
	}

	return &model.LLMSummary{
		Enabled:          true,
		Provider:         s.provider.Name(),
		Model:            resp.Model,
		StrictReferences: s.config.StrictReferences,
		SummaryMD:        resp.Summary,
		Warnings: []string{
			fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
			fmt.Sprintf("Verified %d file citations against the allowlist", len(resp.CitedFiles)),
		},
	}, nil
}

// allowedFiles collects every file path the report mentions: claim
// locations and evidence files, deduplicated and sorted
func allowedFiles(report model.Report) []string {
	seen := make(map[string]bool)
	for _, c := range report.Claims {
		if c.Location.File != "" {
			seen[c.Location.File] = true
		}
	}
	for _, ev := range report.Evidence {
		for _, f := range ev.Files {
			if f != "" {
				seen[f] = true
			}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// RenderSeparateMarkdown renders the LLM summary as a standalone
// markdown section, clearly marked as generated content. Returns ""
// when the summary is nil or disabled.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("# LLM Summary\n\n")
	sb.WriteString("> **GENERATED CONTENT** - all conflicts and scores above were determined independently of this summary.\n\n")
	sb.WriteString(fmt.Sprintf("- Provider: %s\n", summary.Provider))
	sb.WriteString(fmt.Sprintf("- Model: %s\n", summary.Model))
	sb.WriteString(fmt.Sprintf("- Strict Reference Mode: %t\n\n", summary.StrictReferences))

	if summary.SummaryMD == "" {
		sb.WriteString("No summary generated.\n")
	} else {
		sb.WriteString(summary.SummaryMD)
		sb.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		sb.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return sb.String()
}
