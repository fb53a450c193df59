package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	auditTimeout time.Duration
	workers      int
	noCache      bool
	noFooter     bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit <path>",
	Short: "Audit a project directory and report documentation conflicts",
	Long: `Audit analyzes a single project directory to:
- Extract typed claims from README and documentation files
- Mine implementation evidence from source files and dependency manifests
- Match claims against evidence and grade the discrepancies
- Generate transparent, explainable conflict reports

Example:
  claimlens audit .
  claimlens audit ~/src/myproject --json report.json --md report.md
  claimlens audit . --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	// Output flags
	auditCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	auditCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Run flags
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 2*time.Minute, "overall audit timeout (increase for very large trees)")
	auditCmd.Flags().IntVar(&workers, "concurrency", 0, "number of scan workers (0 = all cores)")
	auditCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache (force a fresh audit)")
	auditCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	auditCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	auditCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	auditCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAudit(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Auditing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", auditTimeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("configure pipeline: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Scanning project files...\n")
	}

	report, err := p.AuditPath(ctx, path)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d claims\n", report.Metadata.ClaimsAnalyzed)
		fmt.Fprintf(os.Stderr, "✓ Mined %d evidence records\n", report.Metadata.ImplementationsAnalyzed)
		fmt.Fprintf(os.Stderr, "✓ Consistency score: %.2f\n", report.Summary.ConsistencyScore)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildConfig assembles the run configuration from defaults and flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = workers
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.StrictReferences = true // Always enforce

		// Get credentials from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}
