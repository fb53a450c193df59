// Package resolve matches documentation claims against implementation
// evidence and grades the discrepancies. The resolver is a total
// function over validated in-memory inputs: it allocates, it never
// fails, and given the same input order it always produces the same
// conflicts and the same consistency score.
package resolve

import (
	"math"

	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/util"
)

// Resolver reconciles claims with evidence using the configured
// type-mapping table, severity formula, and strategy preferences.
type Resolver struct {
	cfg model.ResolverConfig
}

// Result carries the conflicts plus the matching counters the
// pipeline surfaces as report metadata.
type Result struct {
	Conflicts         []model.Conflict
	Summary           model.ResolutionSummary
	MatchingPairs     int
	UnmatchedClaims   int
	UnmatchedEvidence int
}

func NewResolver(cfg model.ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve runs the full sequence: greedy matching, mismatch check,
// unmatched sweeps, severity scoring, strategy assignment, summary.
// Matching and sweeps run over input order; no stage here is
// parallelized because first-match-wins tie-breaking depends on a
// fixed ordering.
func (r *Resolver) Resolve(claims []model.Claim, evidence []model.Evidence) *Result {
	result := &Result{Conflicts: []model.Conflict{}}

	// Greedy injective matching: first unconsumed evidence wins,
	// each side consumed at most once
	evidenceUsed := make([]bool, len(evidence))
	matched := make(map[int]int, len(claims)) // claim index -> evidence index

	for ci := range claims {
		for ei := range evidence {
			if evidenceUsed[ei] {
				continue
			}
			if r.matches(claims[ci], evidence[ei]) {
				matched[ci] = ei
				evidenceUsed[ei] = true
				result.MatchingPairs++
				break
			}
		}
	}

	// Matched pairs whose level disagrees with what the claim implies
	for ci := range claims {
		ei, ok := matched[ci]
		if !ok {
			continue
		}
		expected := r.expectedLevel(claims[ci])
		if evidence[ei].Level == expected {
			continue
		}

		claim := claims[ci]
		ev := evidence[ei]
		conflict := model.Conflict{
			Type:       mismatchType(claim.Type),
			Claim:      &claim,
			Evidence:   &ev,
			Confidence: (claim.Confidence + ev.Confidence) / 2,
		}
		conflict.Severity = r.severity(claim.Priority, conflict.Confidence, ev.Level)
		result.Conflicts = append(result.Conflicts, conflict)
	}

	// Unmatched claims: documentation asserts something nothing in the
	// code backs up. Low-priority, low-confidence claims are noise.
	for ci := range claims {
		if _, ok := matched[ci]; ok {
			continue
		}
		result.UnmatchedClaims++

		claim := claims[ci]
		if claim.Priority == model.PriorityLow && claim.Confidence < r.cfg.HighConfidence {
			continue
		}

		conflict := model.Conflict{
			Type:       model.ConflictClaimedNotImplemented,
			Claim:      &claim,
			Confidence: claim.Confidence,
		}
		conflict.Severity = r.severity(claim.Priority, claim.Confidence, model.LevelPlaceholder)
		result.Conflicts = append(result.Conflicts, conflict)
	}

	// Unmatched evidence: the code does something the docs never
	// mention. Only substantive implementations are worth reporting.
	for ei := range evidence {
		if evidenceUsed[ei] {
			continue
		}
		result.UnmatchedEvidence++

		ev := evidence[ei]
		var severity model.ConflictSeverity
		switch ev.Level {
		case model.LevelComplete:
			severity = model.SeverityMedium
		case model.LevelPartial:
			severity = model.SeverityLow
		default:
			continue
		}

		result.Conflicts = append(result.Conflicts, model.Conflict{
			Type:       model.ConflictImplementedNotClaimed,
			Evidence:   &ev,
			Confidence: ev.Confidence,
			Severity:   severity,
		})
	}

	// Strategy pass: each conflict's strategy is written exactly once
	for i := range result.Conflicts {
		strategy := r.strategy(result.Conflicts[i])
		result.Conflicts[i].Strategy = strategy
		result.Conflicts[i].RecommendedAction = recommendedAction(strategy)
	}

	result.Summary = r.summarize(result.Conflicts)
	return result
}

// matches reports whether a claim and evidence pair up: either the
// type-mapping table connects them or their descriptions are similar
// enough on their own.
func (r *Resolver) matches(claim model.Claim, ev model.Evidence) bool {
	for _, rt := range r.cfg.TypeMap[claim.Type] {
		if ev.Type == rt {
			return true
		}
	}
	return util.JaccardWordSimilarity(claim.Description, ev.Description) > r.cfg.MatchSimilarity
}

// expectedLevel derives the implementation level a claim implies.
// High-confidence important claims and security/API claims promise a
// complete implementation; everything else promises at least partial.
func (r *Resolver) expectedLevel(claim model.Claim) model.ImplementationLevel {
	if claim.Confidence > r.cfg.HighConfidence &&
		(claim.Priority == model.PriorityCritical || claim.Priority == model.PriorityHigh) {
		return model.LevelComplete
	}
	switch claim.Type {
	case model.ClaimTypeSecurity, model.ClaimTypeAPI:
		return model.LevelComplete
	}
	return model.LevelPartial
}

// mismatchType specializes the conflict type by the claim's domain so
// downstream strategy preferences can key off it
func mismatchType(ct model.ClaimType) model.ConflictType {
	switch ct {
	case model.ClaimTypeSecurity:
		return model.ConflictSecurityMismatch
	case model.ClaimTypePerformance:
		return model.ConflictPerformanceMismatch
	case model.ClaimTypeTechnology:
		return model.ConflictTechnologyMismatch
	default:
		return model.ConflictImplementationMismatch
	}
}

// severity computes the continuous score and buckets it:
// score = priority weight + confidence x weight + implementation gap
func (r *Resolver) severity(priority model.ClaimPriority, confidence float64, level model.ImplementationLevel) model.ConflictSeverity {
	score := r.cfg.PriorityWeights[priority] +
		confidence*r.cfg.ConfidenceWeight +
		r.cfg.GapWeights[level]

	switch {
	case score >= r.cfg.CriticalThreshold:
		return model.SeverityCritical
	case score >= r.cfg.HighThreshold:
		return model.SeverityHigh
	case score >= r.cfg.MediumThreshold:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// strategy applies the preference table. The critical-severity flag is
// checked last and takes precedence over everything else.
func (r *Resolver) strategy(c model.Conflict) model.ResolutionStrategy {
	strategy := r.cfg.DefaultStrategy

	switch c.Type {
	case model.ConflictSecurityMismatch:
		if r.cfg.PreferCodeForSecurity {
			strategy = model.StrategyPreferCode
		}
	case model.ConflictPerformanceMismatch:
		if r.cfg.PreferCodeForPerformance {
			strategy = model.StrategyPreferCode
		}
	case model.ConflictTechnologyMismatch:
		if r.cfg.AlwaysMergeTechnology {
			strategy = model.StrategyMerge
		}
	case model.ConflictClaimedNotImplemented:
		if c.Confidence > r.cfg.HighConfidence {
			strategy = model.StrategyFlagAsInconsistent
		} else {
			strategy = model.StrategyPreferCode
		}
	case model.ConflictImplementedNotClaimed:
		strategy = model.StrategyMerge
	}

	if c.Severity == model.SeverityCritical && r.cfg.FlagCritical {
		strategy = model.StrategyFlagAsInconsistent
	}

	return strategy
}

// recommendedAction maps the final strategy to one of four fixed
// action templates
func recommendedAction(s model.ResolutionStrategy) string {
	switch s {
	case model.StrategyPreferCode:
		return "Update the documentation to match the implemented behavior"
	case model.StrategyPreferDocumentation:
		return "Update the implementation to match the documented behavior"
	case model.StrategyMerge:
		return "Reconcile documentation and implementation; each side carries detail the other lacks"
	case model.StrategyFlagAsInconsistent:
		return "Manual review required: documentation and implementation disagree on a critical point"
	default:
		return "Review the discrepancy"
	}
}

// summarize aggregates counts and the consistency score. An empty
// conflict list scores a perfect 1.0.
func (r *Resolver) summarize(conflicts []model.Conflict) model.ResolutionSummary {
	summary := model.ResolutionSummary{
		Total:      len(conflicts),
		ByType:     map[model.ConflictType]int{},
		BySeverity: map[model.ConflictSeverity]int{},
	}

	for _, c := range conflicts {
		summary.ByType[c.Type]++
		summary.BySeverity[c.Severity]++
		if c.Severity == model.SeverityCritical {
			summary.CriticalConflicts++
		}
		if c.Strategy == model.StrategyFlagAsInconsistent {
			summary.Flagged++
		} else {
			summary.Resolved++
		}
	}

	penalty := r.cfg.TotalPenalty*float64(summary.Total) +
		r.cfg.CriticalPenalty*float64(summary.CriticalConflicts)
	summary.ConsistencyScore = math.Max(0, math.Min(1, 1-penalty))

	return summary
}
