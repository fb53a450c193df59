package model

// Evidence represents implementation reality mined from source code
// or dependency manifests
type Evidence struct {
	Type         RealityType         `json:"type"`
	Description  string              `json:"description"`
	Files        []string            `json:"files"`                  // Source files contributing to this record
	Lines        []int               `json:"lines,omitempty"`        // Matched line numbers (1-based)
	Confidence   float64             `json:"confidence"`             // 0.0-1.0
	Level        ImplementationLevel `json:"level"`                  // How fully implemented
	Snippets     []string            `json:"snippets,omitempty"`     // Raw matched code lines
	Dependencies []string            `json:"dependencies,omitempty"` // Manifest dependencies that contributed
	PatternIDs   []string            `json:"pattern_ids,omitempty"`  // IDs of the patterns that matched
}

// RealityType classifies the kind of implementation signal
type RealityType string

const (
	RealityAuthentication RealityType = "authentication"
	RealityAPIEndpoints   RealityType = "api_endpoints"
	RealityDatabase       RealityType = "database_integration"
	RealitySecurity       RealityType = "security"
	RealityIntegration    RealityType = "integration"
	RealityPerformance    RealityType = "performance_optimized"
	RealityTesting        RealityType = "testing"
	RealityDeployment     RealityType = "deployment_ready"
)

// RealityTypes returns all reality types in canonical scan order
func RealityTypes() []RealityType {
	return []RealityType{
		RealityAuthentication,
		RealityAPIEndpoints,
		RealityDatabase,
		RealitySecurity,
		RealityIntegration,
		RealityPerformance,
		RealityTesting,
		RealityDeployment,
	}
}

// ImplementationLevel is an ordinal grade of implementation completeness
type ImplementationLevel int

const (
	LevelPlaceholder ImplementationLevel = 0 // Stub or placeholder only
	LevelSkeleton    ImplementationLevel = 1 // Structure without substance
	LevelPartial     ImplementationLevel = 2 // Works but incomplete
	LevelComplete    ImplementationLevel = 3 // Fully implemented
)

func (l ImplementationLevel) String() string {
	switch l {
	case LevelComplete:
		return "complete"
	case LevelPartial:
		return "partial"
	case LevelSkeleton:
		return "skeleton"
	default:
		return "placeholder"
	}
}
