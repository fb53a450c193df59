package llm

import (
	"context"
	"fmt"

	"github.com/claimlens/claimlens/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the report with strict reference mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the claimlens audit report to summarize
	Report model.Report

	// AllowedFiles is the STRICT allowlist of file paths the LLM can cite.
	// This prevents hallucination - the LLM cannot reference any file not in this list.
	AllowedFiles []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// CitedFiles are the file paths the LLM actually cited (for verification)
	CitedFiles []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictReferences enforces the file-path allowlist (should always be true)
	StrictReferences bool

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerSecond caps the outbound call rate
	RequestsPerSecond float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Model:             "",
		Timeout:           30,
		StrictReferences:  true, // CRITICAL: Always enforce
		MaxTokens:         1000,
		RequestsPerSecond: 1,
	}
}

// BuildPrompt constructs the default prompt for summarization with strict reference mode
func BuildPrompt(report model.Report, allowedFiles []string) string {
	prompt := fmt.Sprintf(`You are summarizing a claimlens report. claimlens cross-validates a project's documentation claims against its implementation - it NEVER judges code quality, only documentation/implementation agreement.

CRITICAL RULES:
1. You MUST ONLY reference file paths from this allowed list, in backticks:
%s

2. DO NOT infer, speculate, or reference files beyond this list.
3. If the report has no conflicts, say so explicitly.
4. Focus on DOCUMENTATION ACCURACY, not code quality. Use phrases like:
   - "The docs claim X but the code shows..."
   - "X is implemented but undocumented..."
   - "Documentation and implementation agree on..."
5. Never recommend code changes - only describe the discrepancies.

Report Summary:
- Project: %s
- Consistency Score: %.2f
- Claims Analyzed: %d
- Evidence Records: %d
- Conflicts: %d (%d critical, %d flagged for review)

Top Conflicts:
`, joinFiles(allowedFiles), report.Project, report.Summary.ConsistencyScore,
		len(report.Claims), len(report.Evidence),
		report.Summary.Total, report.Summary.CriticalConflicts, report.Summary.Flagged)

	// Add top 3 conflicts
	for i, conflict := range report.Conflicts {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- [%s/%s] %s\n", conflict.Severity, conflict.Type, conflictSubject(conflict))
	}

	prompt += "\nProvide a 3-4 sentence summary focusing on where documentation and implementation disagree."

	return prompt
}

// conflictSubject picks a short human label for a conflict
func conflictSubject(c model.Conflict) string {
	if c.Claim != nil {
		return c.Claim.Description
	}
	if c.Evidence != nil {
		return c.Evidence.Description
	}
	return "(empty conflict)"
}

func joinFiles(files []string) string {
	if len(files) == 0 {
		return "(No files available)"
	}
	result := ""
	for i, f := range files {
		if i >= 20 { // Limit to first 20 to avoid token bloat
			result += fmt.Sprintf("\n... and %d more files", len(files)-20)
			break
		}
		result += fmt.Sprintf("\n- %s", f)
	}
	return result
}
