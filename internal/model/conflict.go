package model

// Conflict represents a detected discrepancy between a documentation
// claim and implementation evidence, or the absence of one side.
// At least one of Claim/Evidence is always populated.
type Conflict struct {
	Type              ConflictType       `json:"type"`
	Severity          ConflictSeverity   `json:"severity"`
	Claim             *Claim             `json:"claim,omitempty"`
	Evidence          *Evidence          `json:"evidence,omitempty"`
	Confidence        float64            `json:"confidence"` // 0.0-1.0
	Strategy          ResolutionStrategy `json:"resolution_strategy"`
	RecommendedAction string             `json:"recommended_action"`
}

// ConflictType classifies the discrepancy
type ConflictType string

const (
	ConflictClaimedNotImplemented  ConflictType = "claimed_but_not_implemented"
	ConflictImplementedNotClaimed  ConflictType = "implemented_but_not_claimed"
	ConflictImplementationMismatch ConflictType = "implementation_mismatch"
	ConflictTechnologyMismatch     ConflictType = "technology_mismatch"
	ConflictSecurityMismatch       ConflictType = "security_mismatch"
	ConflictPerformanceMismatch    ConflictType = "performance_mismatch"
)

// ConflictSeverity grades how urgent a conflict is
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "critical"
	SeverityHigh     ConflictSeverity = "high"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityLow      ConflictSeverity = "low"
)

// ResolutionStrategy is the policy used to reconcile a conflict
type ResolutionStrategy string

const (
	StrategyPreferCode          ResolutionStrategy = "prefer_code"
	StrategyPreferDocumentation ResolutionStrategy = "prefer_documentation"
	StrategyMerge               ResolutionStrategy = "merge"
	StrategyFlagAsInconsistent  ResolutionStrategy = "flag_as_inconsistent"
)

// ResolutionSummary aggregates the resolver output.
// Invariants: the severity counts sum to Total, and Resolved+Flagged == Total.
type ResolutionSummary struct {
	Total             int                      `json:"total"`
	ByType            map[ConflictType]int     `json:"conflicts_by_type"`
	BySeverity        map[ConflictSeverity]int `json:"conflicts_by_severity"`
	CriticalConflicts int                      `json:"critical_conflicts"`
	Resolved          int                      `json:"resolved"` // strategy != flag_as_inconsistent
	Flagged           int                      `json:"flagged"`  // strategy == flag_as_inconsistent
	ConsistencyScore  float64                  `json:"consistency_score"` // 0.0-1.0
}
