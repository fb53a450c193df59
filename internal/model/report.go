package model

import "time"

// Report is the complete cross-validation result for one project
type Report struct {
	Project     string    `json:"project"`      // Project root that was audited
	GeneratedAt time.Time `json:"generated_at"` // When the audit ran

	Claims   []Claim    `json:"claims"`
	Evidence []Evidence `json:"evidence"`

	Conflicts []Conflict        `json:"conflicts"`
	Summary   ResolutionSummary `json:"resolution_summary"`

	Metadata Metadata  `json:"metadata"`
	Warnings []Warning `json:"warnings,omitempty"` // Every recovered skip, enumerated

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM summary (never affects conflicts or scores)
}

// Metadata carries run statistics for downstream consumers
type Metadata struct {
	ClaimsAnalyzed           int   `json:"claims_analyzed"`
	ImplementationsAnalyzed  int   `json:"implementations_analyzed"`
	AnalysisTimeMS           int64 `json:"analysis_time_ms"`
	MatchingPairsFound       int   `json:"matching_pairs_found"`
	UnmatchedClaims          int   `json:"unmatched_claims"`
	UnmatchedImplementations int   `json:"unmatched_implementations"`
	DocumentsScanned         int   `json:"documents_scanned"`
	SourceFilesScanned       int   `json:"source_files_scanned"`
	ManifestsScanned         int   `json:"manifests_scanned"`
	FilesSkipped             int   `json:"files_skipped"`
}

// Warning records a recovered failure. Core packages return warnings
// instead of printing, so behavior is observable by tests.
type Warning struct {
	Stage  string `json:"stage"`          // "discover", "extract", "analyze"
	File   string `json:"file,omitempty"` // The file that was skipped
	Reason string `json:"reason"`
}

// LLMSummary contains the optional LLM-generated conflict summary.
// CRITICAL: this never affects conflict detection or scoring and is
// clearly separated in the report.
type LLMSummary struct {
	Enabled          bool     `json:"enabled"`
	Provider         string   `json:"provider,omitempty"`
	Model            string   `json:"model,omitempty"`
	StrictReferences bool     `json:"strict_references"`    // Whether file-reference enforcement was enabled
	SummaryMD        string   `json:"summary_md,omitempty"` // Markdown summary
	Warnings         []string `json:"warnings,omitempty"`
}
