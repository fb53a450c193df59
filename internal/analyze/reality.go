package analyze

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/worker"
)

// RealityAnalyzer mines implementation evidence from source files and
// dependency manifests. Pattern tables are compiled once at
// construction and read-only for the run's lifetime.
type RealityAnalyzer struct {
	cfg      model.AnalyzerConfig
	workers  int
	patterns map[model.RealityType][]compiledPattern
	depNames []string // sorted keys of the dependency table
}

type compiledPattern struct {
	id string
	re *regexp.Regexp
}

// NewRealityAnalyzer compiles the configured pattern tables. A
// malformed pattern is a fatal configuration error.
func NewRealityAnalyzer(cfg model.AnalyzerConfig, workers int) (*RealityAnalyzer, error) {
	patterns := make(map[model.RealityType][]compiledPattern, len(cfg.Patterns))
	for _, rt := range model.RealityTypes() {
		for _, p := range cfg.Patterns[rt] {
			re, err := regexp.Compile(p.Expr)
			if err != nil {
				return nil, fmt.Errorf("config: compile reality pattern %q (%s): %w", p.Expr, p.ID, err)
			}
			patterns[rt] = append(patterns[rt], compiledPattern{id: p.ID, re: re})
		}
	}

	depNames := make([]string, 0, len(cfg.Dependencies))
	for name := range cfg.Dependencies {
		depNames = append(depNames, name)
	}
	sort.Strings(depNames)

	return &RealityAnalyzer{
		cfg:      cfg,
		workers:  workers,
		patterns: patterns,
		depNames: depNames,
	}, nil
}

// Analyze runs the two scan passes and the merge pass. Files are
// scanned in parallel on a bounded pool; results are sorted into
// canonical (file, type) order before the sequential merge pass, so
// the aggregate is the same regardless of discovery order.
func (a *RealityAnalyzer) Analyze(ctx context.Context, files []model.SourceFile, manifests []model.Manifest) ([]model.Evidence, []model.Warning) {
	if len(files) == 0 && len(manifests) == 0 {
		return []model.Evidence{}, nil
	}

	pool := worker.NewPool[[]model.Evidence](ctx, a.workers)
	pool.Start()

	for _, f := range files {
		file := f
		pool.Submit(func(ctx context.Context) []model.Evidence {
			return a.scanFile(file)
		})
	}

	var evidence []model.Evidence
	for _, batch := range pool.Wait() {
		evidence = append(evidence, batch...)
	}

	sortEvidence(evidence)

	// Manifest scan is cheap and order matters; keep it sequential
	var warnings []model.Warning
	for _, m := range manifests {
		manifestEvidence, warn := a.scanManifest(m)
		evidence = append(evidence, manifestEvidence...)
		warnings = append(warnings, warn...)
	}

	evidence = a.merge(evidence)

	if evidence == nil {
		evidence = []model.Evidence{}
	}
	return evidence, warnings
}

// scanFile collects matches per reality type across all lines of one
// file, then scores each type that matched.
func (a *RealityAnalyzer) scanFile(file model.SourceFile) []model.Evidence {
	lines := strings.Split(file.Content, "\n")

	var evidence []model.Evidence
	for _, rt := range model.RealityTypes() {
		patternIDs := map[string]bool{}
		var matchedLines []int
		var snippets []string

		for i, line := range lines {
			for _, p := range a.patterns[rt] {
				if p.re.MatchString(line) {
					patternIDs[p.id] = true
					matchedLines = append(matchedLines, i+1)
					snippets = append(snippets, truncate(strings.TrimSpace(line), 160))
				}
			}
		}

		if len(matchedLines) == 0 {
			continue
		}

		confidence := a.scoreEvidence(rt, file.Path, patternIDs, snippets)

		ids := make([]string, 0, len(patternIDs))
		for id := range patternIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		evidence = append(evidence, model.Evidence{
			Type:        rt,
			Description: realityDescription(rt),
			Files:       []string{file.Path},
			Lines:       matchedLines,
			Confidence:  confidence,
			Level:       a.level(confidence),
			Snippets:    snippets,
			PatternIDs:  ids,
		})
	}

	return evidence
}

// scoreEvidence computes confidence = base + weight × distinct
// patterns + long-snippet bonus + context bonus − short-snippet
// penalty, clamped to [0,1]
func (a *RealityAnalyzer) scoreEvidence(rt model.RealityType, path string, patternIDs map[string]bool, snippets []string) float64 {
	confidence := a.cfg.BaseConfidence + a.cfg.PatternWeight*float64(len(patternIDs))

	total := 0
	short := false
	for _, s := range snippets {
		total += len(s)
		if len(s) < a.cfg.ShortSnippetLen {
			short = true
		}
	}
	if len(snippets) > 0 && total/len(snippets) > a.cfg.LongSnippetLen {
		confidence += a.cfg.LongSnippetBonus
	}
	if short {
		confidence -= a.cfg.ShortSnippetPenalty
	}

	confidence += a.contextBonus(rt, path)

	return clamp01(confidence)
}

// contextBonus rewards type-specific path signals
func (a *RealityAnalyzer) contextBonus(rt model.RealityType, path string) float64 {
	lower := strings.ToLower(path)
	base := filepath.Base(path)

	switch rt {
	case model.RealityTesting:
		if strings.Contains(lower, "test") {
			return a.cfg.TestPathBonus
		}
	case model.RealityDeployment:
		for _, name := range a.cfg.BuildDescriptors {
			if base == name {
				return a.cfg.BuildDescriptorBonus
			}
		}
	case model.RealityAPIEndpoints:
		if strings.Contains(lower, "handler") || strings.Contains(lower, "route") {
			return a.cfg.HandlerPathBonus
		}
	}

	return 0
}

// level maps confidence to an implementation level via the configured
// cutoffs
func (a *RealityAnalyzer) level(confidence float64) model.ImplementationLevel {
	switch {
	case confidence >= a.cfg.CompleteThreshold:
		return model.LevelComplete
	case confidence >= a.cfg.PartialThreshold:
		return model.LevelPartial
	case confidence >= a.cfg.SkeletonThreshold:
		return model.LevelSkeleton
	default:
		return model.LevelPlaceholder
	}
}

// realityDescription gives each type a stable human description, so
// evidence for the same concern merges across files
func realityDescription(rt model.RealityType) string {
	switch rt {
	case model.RealityAuthentication:
		return "authentication implementation"
	case model.RealityAPIEndpoints:
		return "API endpoints implementation"
	case model.RealityDatabase:
		return "database integration implementation"
	case model.RealitySecurity:
		return "security controls implementation"
	case model.RealityIntegration:
		return "external integration implementation"
	case model.RealityPerformance:
		return "performance optimization implementation"
	case model.RealityTesting:
		return "test suite implementation"
	case model.RealityDeployment:
		return "deployment configuration implementation"
	default:
		return string(rt) + " implementation"
	}
}

// sortEvidence orders evidence canonically: first file, then type rank
func sortEvidence(evidence []model.Evidence) {
	typeRank := make(map[model.RealityType]int, 8)
	for i, rt := range model.RealityTypes() {
		typeRank[rt] = i
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		a, b := evidence[i], evidence[j]
		af, bf := "", ""
		if len(a.Files) > 0 {
			af = a.Files[0]
		}
		if len(b.Files) > 0 {
			bf = b.Files[0]
		}
		if af != bf {
			return af < bf
		}
		return typeRank[a.Type] < typeRank[b.Type]
	})
}

// truncate cuts s to at most n bytes, backing up to a rune boundary
// so snippets stay valid UTF-8
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
