package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/claimlens/claimlens/internal/analyze"
	"github.com/claimlens/claimlens/internal/cache"
	"github.com/claimlens/claimlens/internal/discover"
	"github.com/claimlens/claimlens/internal/extract"
	"github.com/claimlens/claimlens/internal/llm"
	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/resolve"
)

// Pipeline orchestrates the complete audit: discover, extract claims,
// analyze reality, resolve conflicts, render.
type Pipeline struct {
	config         *model.Config
	fs             afero.Fs
	discoverer     *discover.Discoverer
	claimExtractor *extract.ClaimExtractor
	analyzer       *analyze.RealityAnalyzer
	resolver       *resolve.Resolver
	renderer       *Renderer
	summarizer     *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	cache          cache.Cache     // nil when caching is disabled
	fingerprint    string
}

// NewPipeline creates a pipeline over the OS filesystem
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	return NewPipelineWithFs(cfg, afero.NewOsFs())
}

// NewPipelineWithFs creates a pipeline over the given filesystem.
// Tests use an in-memory filesystem through this constructor.
// A malformed pattern table is a fatal configuration error.
func NewPipelineWithFs(cfg *model.Config, fs afero.Fs) (*Pipeline, error) {
	workers := cfg.Concurrency.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	claimExtractor, err := extract.NewClaimExtractor(cfg.Extractor, workers)
	if err != nil {
		return nil, err
	}

	analyzer, err := analyze.NewRealityAnalyzer(cfg.Analyzer, workers)
	if err != nil {
		return nil, err
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("initialize LLM provider: %w", err)
		}
		summarizer = s
	}

	var resultCache cache.Cache
	if cfg.Cache.Enabled {
		resultCache = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}

	return &Pipeline{
		config:         cfg,
		fs:             fs,
		discoverer:     discover.NewDiscoverer(fs, cfg.Discovery),
		claimExtractor: claimExtractor,
		analyzer:       analyzer,
		resolver:       resolve.NewResolver(cfg.Resolver),
		renderer:       NewRenderer(fs, cfg.Output.IncludeFooter),
		summarizer:     summarizer,
		cache:          resultCache,
		fingerprint:    configFingerprint(cfg),
	}, nil
}

// AuditPath audits a single project directory and returns the report.
// The core result (claims, evidence, conflicts, score) is cached per
// path and config fingerprint; the LLM pass runs after resolution on
// every call and never affects the cached core.
func (p *Pipeline) AuditPath(ctx context.Context, path string) (*model.Report, error) {
	absPath := path
	if a, err := filepath.Abs(path); err == nil {
		absPath = a
	}

	key := cache.Key(absPath, p.fingerprint)

	report, err := p.cachedReport(key)
	if err != nil || report == nil {
		report, err = p.audit(ctx, path, absPath)
		if err != nil {
			return nil, err
		}
		p.storeReport(key, report)
	}

	// LLM summary runs AFTER resolution and caching; it can never
	// change conflicts or scores
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		llmSummary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			report.Warnings = append(report.Warnings, model.Warning{
				Stage:  "llm",
				Reason: fmt.Sprintf("summary generation failed: %v", err),
			})
		} else if llmSummary != nil {
			report.LLM = llmSummary
		}
	}

	return report, nil
}

// audit runs the three pipeline stages and assembles the report
func (p *Pipeline) audit(ctx context.Context, path, absPath string) (*model.Report, error) {
	start := time.Now()

	files, err := p.discoverer.Discover(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	claims := p.claimExtractor.Extract(ctx, files.Documents)
	evidence, analyzeWarnings := p.analyzer.Analyze(ctx, files.Sources, files.Manifests)
	result := p.resolver.Resolve(claims, evidence)

	warnings := append([]model.Warning{}, files.Warnings...)
	warnings = append(warnings, analyzeWarnings...)

	return &model.Report{
		Project:     absPath,
		GeneratedAt: time.Now().UTC(),
		Claims:      claims,
		Evidence:    evidence,
		Conflicts:   result.Conflicts,
		Summary:     result.Summary,
		Metadata: model.Metadata{
			ClaimsAnalyzed:           len(claims),
			ImplementationsAnalyzed:  len(evidence),
			AnalysisTimeMS:           time.Since(start).Milliseconds(),
			MatchingPairsFound:       result.MatchingPairs,
			UnmatchedClaims:          result.UnmatchedClaims,
			UnmatchedImplementations: result.UnmatchedEvidence,
			DocumentsScanned:         len(files.Documents),
			SourceFilesScanned:       len(files.Sources),
			ManifestsScanned:         len(files.Manifests),
			FilesSkipped:             len(files.Warnings),
		},
		Warnings: warnings,
	}, nil
}

func (p *Pipeline) cachedReport(key string) (*model.Report, error) {
	if p.cache == nil {
		return nil, nil
	}
	data, found := p.cache.Get(key)
	if !found {
		return nil, nil
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		// Corrupt entry: drop it and recompute
		_ = p.cache.Delete(key)
		return nil, nil
	}
	return &report, nil
}

func (p *Pipeline) storeReport(key string, report *model.Report) {
	if p.cache == nil {
		return
	}
	if data, err := json.Marshal(report); err == nil {
		_ = p.cache.Set(key, data, p.config.Cache.TTL)
	}
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Render LLM summary to a separate file if present
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmMdPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		llmMarkdown := llm.RenderSeparateMarkdown(report.LLM)
		if err := p.renderer.RenderLLMMarkdown(llmMarkdown, llmMdPath); err != nil {
			fmt.Printf("Warning: Failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM Summary: %s\n", llmMdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}

// configFingerprint hashes the configuration into the cache key, so a
// config change never serves a stale report
func configFingerprint(cfg *model.Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "unfingerprinted"
	}
	return cache.Key(string(data))
}
