package extract

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/util"
	"github.com/claimlens/claimlens/internal/worker"
)

// ClaimExtractor mines typed claims from documentation text. Pattern
// tables are compiled once at construction and read-only afterwards,
// so concurrent scans need no locking.
type ClaimExtractor struct {
	cfg      model.ExtractorConfig
	workers  int
	patterns map[model.ClaimType][]*regexp.Regexp
	keywords []string // sorted keys of KeywordWeights, for deterministic scoring
}

// NewClaimExtractor compiles the configured pattern tables. A
// malformed pattern is a fatal configuration error, raised here
// before any scanning begins.
func NewClaimExtractor(cfg model.ExtractorConfig, workers int) (*ClaimExtractor, error) {
	patterns := make(map[model.ClaimType][]*regexp.Regexp, len(cfg.Patterns))
	for _, ct := range model.ClaimTypes() {
		for _, expr := range cfg.Patterns[ct] {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("config: compile claim pattern %q for type %s: %w", expr, ct, err)
			}
			patterns[ct] = append(patterns[ct], re)
		}
	}

	keywords := make([]string, 0, len(cfg.KeywordWeights))
	for kw := range cfg.KeywordWeights {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	return &ClaimExtractor{
		cfg:      cfg,
		workers:  workers,
		patterns: patterns,
		keywords: keywords,
	}, nil
}

// Extract mines claims from every document. Documents are scanned in
// parallel on a bounded pool, then results are sorted into canonical
// (file, line) order before post-processing, so repeated runs produce
// identical output.
func (e *ClaimExtractor) Extract(ctx context.Context, docs []model.Document) []model.Claim {
	if len(docs) == 0 {
		return []model.Claim{}
	}

	pool := worker.NewPool[[]model.Claim](ctx, e.workers)
	pool.Start()

	for _, doc := range docs {
		d := doc
		pool.Submit(func(ctx context.Context) []model.Claim {
			return e.extractDocument(d)
		})
	}

	var claims []model.Claim
	for _, batch := range pool.Wait() {
		claims = append(claims, batch...)
	}

	sortClaims(claims)

	claims = e.filterByThreshold(claims)
	claims = e.dedupe(claims)

	if claims == nil {
		claims = []model.Claim{}
	}
	return claims
}

// extractDocument scans a single document line by line. One claim is
// created per matched (type, pattern) per line.
func (e *ClaimExtractor) extractDocument(doc model.Document) []model.Claim {
	lines := documentLines(doc.Path, doc.Content)

	var claims []model.Claim
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		for _, ct := range model.ClaimTypes() {
			for _, re := range e.patterns[ct] {
				m := re.FindStringSubmatch(trimmed)
				if m == nil {
					continue
				}

				desc := trimmed
				if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
					desc = strings.TrimSpace(m[1])
				}

				confidence, keywords := e.scoreClaim(ct, desc)

				window := contextWindow(lines, i, e.cfg.ContextWindow)
				claims = append(claims, model.Claim{
					Type:        ct,
					Description: desc,
					Location:    model.SourceLocation{File: doc.Path, Line: i + 1},
					Confidence:  confidence,
					Priority:    claimPriority(ct, desc, window),
					Keywords:    keywords,
					Context:     window,
					RawLines:    []string{trimmed},
				})
			}
		}
	}

	return claims
}

// scoreClaim computes confidence = base(type) + Σ(keyword_weight ×
// factor) − length penalties, clamped to [0,1]
func (e *ClaimExtractor) scoreClaim(ct model.ClaimType, desc string) (float64, []string) {
	confidence := e.cfg.BaseConfidence[ct]

	lower := strings.ToLower(desc)
	var found []string
	for _, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			confidence += e.cfg.KeywordWeights[kw] * e.cfg.KeywordFactor
			found = append(found, kw)
		}
	}

	if len(desc) < e.cfg.ShortDescLen {
		confidence -= e.cfg.ShortDescPenalty
	} else if len(desc) > e.cfg.LongDescLen {
		confidence -= e.cfg.LongDescPenalty
	}

	return clamp01(confidence), found
}

// claimPriority applies the fixed priority rule table. Priorities are
// never guessed ad hoc.
func claimPriority(ct model.ClaimType, desc, window string) model.ClaimPriority {
	switch ct {
	case model.ClaimTypeSecurity:
		return model.PriorityCritical
	case model.ClaimTypeAPI:
		if mentionsAuth(desc) || mentionsAuth(window) {
			return model.PriorityCritical
		}
		return model.PriorityHigh
	case model.ClaimTypeIntegration, model.ClaimTypePerformance:
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}

func mentionsAuth(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "auth") || strings.Contains(lower, "oauth") ||
		strings.Contains(lower, "jwt") || strings.Contains(lower, "login")
}

// contextWindow joins the n lines before and after line i (inclusive)
func contextWindow(lines []string, i, n int) string {
	start := i - n
	if start < 0 {
		start = 0
	}
	end := i + n + 1
	if end > len(lines) {
		end = len(lines)
	}

	var parts []string
	for _, line := range lines[start:end] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}

// filterByThreshold drops claims below the configured confidence
func (e *ClaimExtractor) filterByThreshold(claims []model.Claim) []model.Claim {
	var kept []model.Claim
	for _, c := range claims {
		if c.Confidence >= e.cfg.ConfidenceThreshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// dedupe collapses near-duplicate claims within a type by word-set
// similarity, keeping the higher-confidence claim. Ties keep the
// earlier claim, so input order decides.
func (e *ClaimExtractor) dedupe(claims []model.Claim) []model.Claim {
	var unique []model.Claim

	for _, c := range claims {
		duplicate := false
		for i := range unique {
			if unique[i].Type != c.Type {
				continue
			}
			if util.JaccardWordSimilarity(unique[i].Description, c.Description) > e.cfg.DedupeSimilarity {
				if c.Confidence > unique[i].Confidence {
					unique[i] = c
				}
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, c)
		}
	}

	return unique
}

// sortClaims orders claims canonically: file, then line, then type,
// then description
func sortClaims(claims []model.Claim) {
	typeRank := make(map[model.ClaimType]int, 8)
	for i, ct := range model.ClaimTypes() {
		typeRank[ct] = i
	}

	sort.SliceStable(claims, func(i, j int) bool {
		a, b := claims[i], claims[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if typeRank[a.Type] != typeRank[b.Type] {
			return typeRank[a.Type] < typeRank[b.Type]
		}
		return a.Description < b.Description
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
