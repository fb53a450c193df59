package analyze

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/claimlens/claimlens/internal/model"
)

func newTestAnalyzer(t *testing.T) *RealityAnalyzer {
	t.Helper()
	cfg := model.DefaultConfig()
	a, err := NewRealityAnalyzer(cfg.Analyzer, 2)
	if err != nil {
		t.Fatalf("Expected no error constructing analyzer, got %v", err)
	}
	return a
}

func TestRealityAnalyzer_LineScan(t *testing.T) {
	a := newTestAnalyzer(t)

	files := []model.SourceFile{{
		Path: "internal/user/user_test.go",
		Content: "package user\n\n" +
			"func TestUserLogin(t *testing.T) {\n" +
			"\tassertEqual(t, got, want)\n" +
			"}\n",
	}}

	evidence, warnings := a.Analyze(context.Background(), files, nil)
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}

	var got *model.Evidence
	for i := range evidence {
		if evidence[i].Type == model.RealityTesting {
			got = &evidence[i]
		}
	}
	if got == nil {
		t.Fatal("Expected testing evidence")
	}

	// Two distinct patterns plus the test-path bonus:
	// 0.3 + 0.1*2 + 0.3 = 0.8 -> complete
	if got.Confidence != 0.8 {
		t.Errorf("Expected confidence 0.8, got %f", got.Confidence)
	}
	if got.Level != model.LevelComplete {
		t.Errorf("Expected complete level, got %s", got.Level)
	}
	if len(got.PatternIDs) != 2 {
		t.Errorf("Expected 2 distinct pattern ids, got %v", got.PatternIDs)
	}
	if len(got.Lines) != 2 {
		t.Errorf("Expected 2 matched lines, got %v", got.Lines)
	}
}

func TestRealityAnalyzer_BuildDescriptorBonus(t *testing.T) {
	a := newTestAnalyzer(t)

	files := []model.SourceFile{{
		Path:    "Dockerfile",
		Content: "FROM golang:1.25\nEXPOSE 8080\n",
	}}

	evidence, _ := a.Analyze(context.Background(), files, nil)

	var deploy *model.Evidence
	for i := range evidence {
		if evidence[i].Type == model.RealityDeployment {
			deploy = &evidence[i]
		}
	}
	if deploy == nil {
		t.Fatal("Expected deployment evidence for Dockerfile")
	}
	// 0.3 + 0.1*1 + 0.4 (descriptor bonus) = 0.8 -> complete
	if deploy.Confidence != 0.8 {
		t.Errorf("Expected confidence 0.8, got %f", deploy.Confidence)
	}
	if deploy.Level != model.LevelComplete {
		t.Errorf("Expected complete level, got %s", deploy.Level)
	}
}

func TestRealityAnalyzer_ManifestRedis(t *testing.T) {
	a := newTestAnalyzer(t)

	manifests := []model.Manifest{{
		Path:    "requirements.txt",
		Kind:    model.ManifestRequirements,
		Content: "redis==4.5.0\n",
	}}

	evidence, warnings := a.Analyze(context.Background(), nil, manifests)
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}

	if len(evidence) != 1 {
		t.Fatalf("Expected exactly 1 evidence record, got %d", len(evidence))
	}

	ev := evidence[0]
	if ev.Type != model.RealityPerformance {
		t.Errorf("Expected performance_optimized, got %s", ev.Type)
	}
	if ev.Confidence != 0.7 {
		t.Errorf("Expected fixed confidence 0.7, got %f", ev.Confidence)
	}
	if ev.Level != model.LevelPartial {
		t.Errorf("Expected partial level, got %s", ev.Level)
	}
	if len(ev.Lines) != 0 {
		t.Errorf("Expected no source lines for manifest evidence, got %v", ev.Lines)
	}
	if len(ev.Dependencies) != 1 || ev.Dependencies[0] != "redis" {
		t.Errorf("Expected redis dependency, got %v", ev.Dependencies)
	}
}

func TestRealityAnalyzer_GoModDependencies(t *testing.T) {
	a := newTestAnalyzer(t)

	manifests := []model.Manifest{{
		Path: "go.mod",
		Kind: model.ManifestGoMod,
		Content: `module demo

go 1.25

require (
	github.com/gin-gonic/gin v1.11.0
	github.com/redis/go-redis/v9 v9.0.0
)

require github.com/stretchr/testify v1.11.1
`,
	}}

	evidence, warnings := a.Analyze(context.Background(), nil, manifests)
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}

	types := map[model.RealityType]bool{}
	for _, ev := range evidence {
		types[ev.Type] = true
	}

	for _, want := range []model.RealityType{model.RealityAPIEndpoints, model.RealityPerformance, model.RealityTesting} {
		if !types[want] {
			t.Errorf("Expected %s evidence from go.mod, got %v", want, evidence)
		}
	}
}

func TestRealityAnalyzer_DependencyTokenMatching(t *testing.T) {
	a := newTestAnalyzer(t)

	// "vite-plugin-x" must not match the "gin" table entry
	if _, ok := a.matchDependency("vite-plugin-x"); ok {
		t.Error("Expected no match for vite-plugin-x")
	}
	if rt, ok := a.matchDependency("github.com/redis/go-redis/v9"); !ok || rt != model.RealityPerformance {
		t.Errorf("Expected redis to match performance_optimized, got %s %v", rt, ok)
	}
	if rt, ok := a.matchDependency("jsonwebtoken"); !ok || rt != model.RealityAuthentication {
		t.Errorf("Expected jsonwebtoken to match authentication, got %s %v", rt, ok)
	}
}

func TestRealityAnalyzer_MalformedManifestRecovered(t *testing.T) {
	a := newTestAnalyzer(t)

	manifests := []model.Manifest{
		{Path: "package.json", Kind: model.ManifestPackageJSON, Content: "{not json"},
		{Path: "requirements.txt", Kind: model.ManifestRequirements, Content: "redis==4.5.0\n"},
	}

	evidence, warnings := a.Analyze(context.Background(), nil, manifests)

	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning for the malformed manifest, got %d", len(warnings))
	}
	if warnings[0].File != "package.json" {
		t.Errorf("Expected warning for package.json, got %+v", warnings[0])
	}

	// The good manifest still contributes
	if len(evidence) != 1 {
		t.Errorf("Expected evidence from the valid manifest, got %d records", len(evidence))
	}
}

func TestRealityAnalyzer_CargoToml(t *testing.T) {
	a := newTestAnalyzer(t)

	manifests := []model.Manifest{{
		Path: "Cargo.toml",
		Kind: model.ManifestCargoToml,
		Content: `[package]
name = "demo"

[dependencies]
redis = "0.23"
serde = { version = "1.0", features = ["derive"] }
`,
	}}

	evidence, warnings := a.Analyze(context.Background(), nil, manifests)
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}
	if len(evidence) != 1 {
		t.Fatalf("Expected 1 evidence record (redis only), got %d", len(evidence))
	}
	if evidence[0].Type != model.RealityPerformance {
		t.Errorf("Expected performance_optimized, got %s", evidence[0].Type)
	}
}

func TestRealityAnalyzer_MergesAcrossFiles(t *testing.T) {
	a := newTestAnalyzer(t)

	files := []model.SourceFile{
		{Path: "auth/jwt.go", Content: "token := jwt.Sign(userClaims)\n"},
		{Path: "auth/middleware.go", Content: "func AuthMiddleware(next http.Handler) http.Handler {\n"},
	}

	evidence, _ := a.Analyze(context.Background(), files, nil)

	var auth []model.Evidence
	for _, ev := range evidence {
		if ev.Type == model.RealityAuthentication {
			auth = append(auth, ev)
		}
	}

	if len(auth) != 1 {
		t.Fatalf("Expected authentication evidence to merge into 1 record, got %d", len(auth))
	}
	if len(auth[0].Files) != 2 {
		t.Errorf("Expected both files in the merged record, got %v", auth[0].Files)
	}
	if !reflect.DeepEqual(auth[0].PatternIDs, []string{"auth.jwt", "auth.middleware"}) {
		t.Errorf("Expected unioned sorted pattern ids, got %v", auth[0].PatternIDs)
	}
}

func TestMerge_Associative(t *testing.T) {
	a := newTestAnalyzer(t)

	ev := func(file string, line int, conf float64, level model.ImplementationLevel) model.Evidence {
		return model.Evidence{
			Type:        model.RealityDatabase,
			Description: "database integration implementation",
			Files:       []string{file},
			Lines:       []int{line},
			Confidence:  conf,
			Level:       level,
			PatternIDs:  []string{"db.sql"},
		}
	}

	A := ev("a.go", 1, 0.5, model.LevelPartial)
	B := ev("b.go", 2, 0.9, model.LevelComplete)
	C := ev("c.go", 3, 0.4, model.LevelSkeleton)

	onePass := a.merge([]model.Evidence{A, B, C})

	twoPass := a.merge([]model.Evidence{A, B})
	twoPass = a.merge(append(twoPass, C))

	if !reflect.DeepEqual(onePass, twoPass) {
		t.Errorf("Expected merge to be associative:\none pass: %+v\ntwo pass: %+v", onePass, twoPass)
	}

	if len(onePass) != 1 {
		t.Fatalf("Expected a single merged record, got %d", len(onePass))
	}
	if onePass[0].Confidence != 0.9 {
		t.Errorf("Expected max confidence 0.9, got %f", onePass[0].Confidence)
	}
	if onePass[0].Level != model.LevelComplete {
		t.Errorf("Expected highest level complete, got %s", onePass[0].Level)
	}
	if !reflect.DeepEqual(onePass[0].Files, []string{"a.go", "b.go", "c.go"}) {
		t.Errorf("Expected sorted unioned files, got %v", onePass[0].Files)
	}
}

func TestRealityAnalyzer_EmptyInput(t *testing.T) {
	a := newTestAnalyzer(t)

	evidence, warnings := a.Analyze(context.Background(), nil, nil)
	if evidence == nil || len(evidence) != 0 {
		t.Errorf("Expected empty non-nil evidence, got %v", evidence)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
}

func TestRealityAnalyzer_Deterministic(t *testing.T) {
	a := newTestAnalyzer(t)

	files := []model.SourceFile{
		{Path: "api/routes.go", Content: "r.GET(\"/users\", listUsers)\nr.POST(\"/users\", createUser)\n"},
		{Path: "db/store.go", Content: "rows, err := db.Query(\"SELECT id FROM users\")\n"},
		{Path: "auth/jwt.go", Content: "token := jwt.Sign(userClaims)\n"},
	}
	manifests := []model.Manifest{
		{Path: "go.mod", Kind: model.ManifestGoMod, Content: "module demo\n\nrequire github.com/gin-gonic/gin v1.11.0\n"},
	}

	first, _ := a.Analyze(context.Background(), files, manifests)
	second, _ := a.Analyze(context.Background(), files, manifests)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical evidence lists across repeated runs")
	}
}

func TestRealityAnalyzer_MalformedPatternIsFatal(t *testing.T) {
	cfg := model.DefaultConfig().Analyzer
	cfg.Patterns = map[model.RealityType][]model.Pattern{
		model.RealityTesting: {{ID: "bad", Expr: `(unbalanced`}},
	}

	if _, err := NewRealityAnalyzer(cfg, 1); err == nil {
		t.Error("Expected fatal configuration error for malformed pattern")
	}
}

// Analysis must survive source counts far beyond the worker queue
// capacity without stalling. All files carry the same testing signal,
// so the merge pass folds them into a single record.
func TestRealityAnalyzer_ManySourceFiles(t *testing.T) {
	a := newTestAnalyzer(t)

	const count = 120
	files := make([]model.SourceFile, 0, count)
	for i := 0; i < count; i++ {
		files = append(files, model.SourceFile{
			Path:    fmt.Sprintf("pkg/export/export_%03d_test.go", i),
			Content: "func TestExport(t *testing.T) {}\n",
		})
	}

	evidence, warnings := a.Analyze(context.Background(), files, nil)
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}
	if len(evidence) != 1 {
		t.Fatalf("Expected one merged testing record, got %d", len(evidence))
	}

	ev := evidence[0]
	if ev.Type != model.RealityTesting {
		t.Errorf("Expected testing evidence, got %s", ev.Type)
	}
	if len(ev.Files) != count {
		t.Errorf("Expected %d contributing files, got %d", count, len(ev.Files))
	}
	if !sort.StringsAreSorted(ev.Files) {
		t.Error("Expected merged file list to be sorted")
	}
}

func TestTruncate_KeepsValidUTF8(t *testing.T) {
	long := strings.Repeat("ü", 120) // 240 bytes, no boundary at 161

	got := truncate(long, 161)
	if !utf8.ValidString(got) {
		t.Errorf("Expected truncation on a rune boundary, got invalid UTF-8: %q", got)
	}
	if len(got) != 160 {
		t.Errorf("Expected 160 bytes after boundary adjustment, got %d", len(got))
	}

	if got := truncate("plain ascii", 160); got != "plain ascii" {
		t.Errorf("Expected short strings unchanged, got %q", got)
	}
}
