package extract

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/claimlens/claimlens/internal/model"
)

func newTestExtractor(t *testing.T) *ClaimExtractor {
	t.Helper()
	cfg := model.DefaultConfig()
	e, err := NewClaimExtractor(cfg.Extractor, 2)
	if err != nil {
		t.Fatalf("Expected no error constructing extractor, got %v", err)
	}
	return e
}

func TestClaimExtractor_BasicExtraction(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{{
		Path: "README.md",
		Content: `# Demo

Supports user registration and profile management.

All traffic is encrypted with AES-256.

Just a regular sentence without any assertions here.
`,
	}}

	claims := e.Extract(context.Background(), docs)
	if len(claims) < 2 {
		t.Fatalf("Expected at least 2 claims, got %d", len(claims))
	}

	var foundFeature, foundSecurity bool
	for _, c := range claims {
		if c.Type == model.ClaimTypeFeature && c.Description == "user registration and profile management." {
			foundFeature = true
			if c.Location.File != "README.md" || c.Location.Line != 3 {
				t.Errorf("Expected feature claim at README.md:3, got %s:%d", c.Location.File, c.Location.Line)
			}
			if c.Priority != model.PriorityMedium {
				t.Errorf("Expected medium priority for feature claim, got %s", c.Priority)
			}
		}
		if c.Type == model.ClaimTypeSecurity {
			foundSecurity = true
			if c.Priority != model.PriorityCritical {
				t.Errorf("Expected critical priority for security claim, got %s", c.Priority)
			}
		}
	}

	if !foundFeature {
		t.Error("Expected a feature claim with the capture-group description")
	}
	if !foundSecurity {
		t.Error("Expected a security claim for the encryption line")
	}
}

func TestClaimExtractor_ConfidenceBoundsAndKeywords(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{{
		Path:    "README.md",
		Content: "Supports redis cache and postgres database for api workloads.\n",
	}}

	claims := e.Extract(context.Background(), docs)
	if len(claims) == 0 {
		t.Fatal("Expected at least one claim")
	}

	for _, c := range claims {
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("Confidence out of bounds: %f", c.Confidence)
		}
	}

	// The feature claim should record its weighted keywords
	var feature *model.Claim
	for i := range claims {
		if claims[i].Type == model.ClaimTypeFeature {
			feature = &claims[i]
		}
	}
	if feature == nil {
		t.Fatal("Expected a feature claim")
	}
	if len(feature.Keywords) < 3 {
		t.Errorf("Expected redis/cache/postgres/database/api keywords recorded, got %v", feature.Keywords)
	}
}

func TestClaimExtractor_PriorityRules(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{
		{Path: "a.md", Content: "Exposes REST API endpoints with OAuth authentication.\n"},
		{Path: "b.md", Content: "Exposes REST API endpoints for resources\n"},
		{Path: "c.md", Content: "Integrates with Stripe for billing.\n"},
	}

	claims := e.Extract(context.Background(), docs)

	checked := map[string]bool{}
	for _, c := range claims {
		switch {
		case c.Location.File == "a.md" && c.Type == model.ClaimTypeAPI:
			if c.Priority != model.PriorityCritical {
				t.Errorf("Expected critical priority for API claim mentioning auth, got %s", c.Priority)
			}
			checked["a"] = true
		case c.Location.File == "b.md" && c.Type == model.ClaimTypeAPI:
			if c.Priority != model.PriorityHigh {
				t.Errorf("Expected high priority for plain API claim, got %s", c.Priority)
			}
			checked["b"] = true
		case c.Location.File == "c.md" && c.Type == model.ClaimTypeIntegration:
			if c.Priority != model.PriorityHigh {
				t.Errorf("Expected high priority for integration claim, got %s", c.Priority)
			}
			checked["c"] = true
		}
	}

	for _, k := range []string{"a", "b", "c"} {
		if !checked[k] {
			t.Errorf("Expected a claim from document %s.md", k)
		}
	}
}

func TestClaimExtractor_ThresholdFiltering(t *testing.T) {
	cfg := model.DefaultConfig().Extractor
	cfg.ConfidenceThreshold = 0.99

	e, err := NewClaimExtractor(cfg, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	docs := []model.Document{{Path: "README.md", Content: "Supports something ordinary.\n"}}
	claims := e.Extract(context.Background(), docs)

	if len(claims) != 0 {
		t.Errorf("Expected all claims below threshold to be dropped, got %d", len(claims))
	}
}

func TestClaimExtractor_DedupeKeepsHigherConfidence(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{{
		Path: "README.md",
		Content: "Supports database storage layer for models.\n" +
			"\n" +
			"Provides fast database storage layer for models.\n",
	}}

	claims := e.Extract(context.Background(), docs)

	var features []model.Claim
	for _, c := range claims {
		if c.Type == model.ClaimTypeFeature {
			features = append(features, c)
		}
	}

	if len(features) != 1 {
		t.Fatalf("Expected near-duplicates to collapse to 1 feature claim, got %d", len(features))
	}
	// The second variant carries the extra "fast" keyword, so it wins
	if features[0].Description != "fast database storage layer for models." {
		t.Errorf("Expected higher-confidence duplicate to be kept, got %q", features[0].Description)
	}
}

func TestClaimExtractor_ContextWindow(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{{
		Path:    "README.md",
		Content: "line before\nSupports widgets everywhere.\nline after\nfar away line\n",
	}}

	claims := e.Extract(context.Background(), docs)
	if len(claims) == 0 {
		t.Fatal("Expected at least one claim")
	}

	c := claims[0]
	if c.Context == "" {
		t.Fatal("Expected a context window")
	}
	if want := "line before"; !contains(c.Context, want) {
		t.Errorf("Expected context to contain %q, got %q", want, c.Context)
	}
	if want := "line after"; !contains(c.Context, want) {
		t.Errorf("Expected context to contain %q, got %q", want, c.Context)
	}
}

func TestClaimExtractor_HTMLDocument(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{{
		Path: "docs/index.html",
		Content: `<html>
<head><script>var x = "Supports script injection nonsense";</script></head>
<body><p>Supports HTML documentation parsing.</p></body>
</html>`,
	}}

	claims := e.Extract(context.Background(), docs)

	if len(claims) != 1 {
		t.Fatalf("Expected exactly 1 claim from visible text, got %d", len(claims))
	}
	if claims[0].Description != "HTML documentation parsing." {
		t.Errorf("Unexpected description: %q", claims[0].Description)
	}
}

func TestClaimExtractor_SkipsFencedCode(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{{
		Path: "README.md",
		Content: "# Usage\n" +
			"```go\n" +
			"// Supports nothing, this is a code sample\n" +
			"```\n" +
			"Supports markdown claim extraction.\n",
	}}

	claims := e.Extract(context.Background(), docs)

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim (code fence skipped), got %d", len(claims))
	}
	if claims[0].Location.Line != 5 {
		t.Errorf("Expected claim at line 5, got %d", claims[0].Location.Line)
	}
}

func TestClaimExtractor_MalformedPatternIsFatal(t *testing.T) {
	cfg := model.DefaultConfig().Extractor
	cfg.Patterns = map[model.ClaimType][]string{
		model.ClaimTypeFeature: {`(unbalanced`},
	}

	if _, err := NewClaimExtractor(cfg, 1); err == nil {
		t.Error("Expected fatal configuration error for malformed pattern")
	}
}

func TestClaimExtractor_EmptyInput(t *testing.T) {
	e := newTestExtractor(t)

	claims := e.Extract(context.Background(), nil)
	if claims == nil || len(claims) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", claims)
	}
}

func TestClaimExtractor_Deterministic(t *testing.T) {
	e := newTestExtractor(t)

	docs := []model.Document{
		{Path: "README.md", Content: "Supports widgets.\nIntegrates with Stripe.\nExposes REST API endpoints.\n"},
		{Path: "docs/arch.md", Content: "Built with Go and Redis.\nOAuth authentication for every route.\n"},
	}

	first := e.Extract(context.Background(), docs)
	second := e.Extract(context.Background(), docs)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical claim lists across repeated runs")
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}

// Extraction must survive document counts far beyond the worker
// queue capacity without stalling.
func TestClaimExtractor_ManyDocuments(t *testing.T) {
	e := newTestExtractor(t)

	const count = 120
	docs := make([]model.Document, 0, count)
	for i := 0; i < count; i++ {
		docs = append(docs, model.Document{
			Path:    fmt.Sprintf("docs/doc%03d.md", i),
			Content: fmt.Sprintf("Supports data export for tenant%03d accounts.\n", i),
		})
	}

	claims := e.Extract(context.Background(), docs)
	if len(claims) != count {
		t.Fatalf("Expected %d claims, got %d", count, len(claims))
	}

	for i := 1; i < len(claims); i++ {
		if claims[i-1].Location.File > claims[i].Location.File {
			t.Fatalf("Expected canonical file order, got %s before %s",
				claims[i-1].Location.File, claims[i].Location.File)
		}
	}
}
