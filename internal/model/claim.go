package model

// Claim represents a typed assertion mined from project documentation
type Claim struct {
	Type        ClaimType      `json:"type"`                // What kind of thing is being claimed
	Description string         `json:"description"`         // The claim text (capture group or trimmed line)
	Location    SourceLocation `json:"location"`            // Where the claim was found
	Confidence  float64        `json:"confidence"`          // 0.0-1.0
	Priority    ClaimPriority  `json:"priority"`            // From the fixed priority rule table
	Keywords    []string       `json:"keywords,omitempty"`  // Weighted keywords present in the description
	Context     string         `json:"context,omitempty"`   // Surrounding lines joined
	RawLines    []string       `json:"raw_lines,omitempty"` // Raw matched lines
}

// SourceLocation pinpoints where a record was extracted from
type SourceLocation struct {
	File string `json:"file"`
	Line int    `json:"line"` // 1-based
}

// ClaimType categorizes the nature of a documentation claim
type ClaimType string

const (
	ClaimTypeFeature     ClaimType = "feature"     // Claims about a shipped feature
	ClaimTypeCapability  ClaimType = "capability"  // Claims about what the software can do
	ClaimTypeIntegration ClaimType = "integration" // Claims about external system integration
	ClaimTypeTechnology  ClaimType = "technology"  // Claims about the underlying stack
	ClaimTypePerformance ClaimType = "performance" // Claims about speed, scale, or efficiency
	ClaimTypeSecurity    ClaimType = "security"    // Claims about security properties
	ClaimTypeDeployment  ClaimType = "deployment"  // Claims about how it ships or runs
	ClaimTypeAPI         ClaimType = "api"         // Claims about exposed APIs
)

// ClaimTypes returns all claim types in canonical scan order.
// Scan loops must iterate this slice, never a map, so repeated runs
// produce identical output.
func ClaimTypes() []ClaimType {
	return []ClaimType{
		ClaimTypeFeature,
		ClaimTypeCapability,
		ClaimTypeIntegration,
		ClaimTypeTechnology,
		ClaimTypePerformance,
		ClaimTypeSecurity,
		ClaimTypeDeployment,
		ClaimTypeAPI,
	}
}

// ClaimPriority grades how important a claim is to verify
type ClaimPriority string

const (
	PriorityCritical ClaimPriority = "critical"
	PriorityHigh     ClaimPriority = "high"
	PriorityMedium   ClaimPriority = "medium"
	PriorityLow      ClaimPriority = "low"
)
