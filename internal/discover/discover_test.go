package discover

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/claimlens/claimlens/internal/model"
)

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/proj/README.md":             "# Demo\nSupports REST API endpoints.",
		"/proj/docs/guide.html":       "<html><body>Guide</body></html>",
		"/proj/notes.txt":             "loose notes, not documentation",
		"/proj/main.go":               "package main",
		"/proj/api/handler.go":        "package api",
		"/proj/Dockerfile":            "FROM golang:1.25",
		"/proj/go.mod":                "module demo\n\nrequire github.com/redis/go-redis/v9 v9.0.0",
		"/proj/package.json":          `{"dependencies":{"express":"^4.0.0"}}`,
		"/proj/node_modules/x/y.js":   "ignored",
		"/proj/vendor/dep/dep.go":     "ignored",
		"/proj/assets/logo.png":       "binary-ish",
		"/proj/internal/notes.md":     "stray markdown counts as documentation",
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return fs
}

func TestDiscoverer_Classification(t *testing.T) {
	fs := testFs(t)
	d := NewDiscoverer(fs, model.DefaultConfig().Discovery)

	result, err := d.Discover(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	wantDocs := []string{"README.md", "docs/guide.html", "internal/notes.md"}
	if len(result.Documents) != len(wantDocs) {
		t.Fatalf("Expected %d documents, got %d: %+v", len(wantDocs), len(result.Documents), result.Documents)
	}
	for i, want := range wantDocs {
		if result.Documents[i].Path != want {
			t.Errorf("Expected document %d to be %s, got %s", i, want, result.Documents[i].Path)
		}
	}

	wantManifests := []string{"go.mod", "package.json"}
	if len(result.Manifests) != len(wantManifests) {
		t.Fatalf("Expected %d manifests, got %d", len(wantManifests), len(result.Manifests))
	}
	if result.Manifests[0].Kind != model.ManifestGoMod {
		t.Errorf("Expected go.mod kind, got %s", result.Manifests[0].Kind)
	}

	// Dockerfile counts as source; node_modules/vendor are skipped
	var sources []string
	for _, s := range result.Sources {
		sources = append(sources, s.Path)
	}
	for _, want := range []string{"Dockerfile", "api/handler.go", "main.go"} {
		found := false
		for _, s := range sources {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected source %s, got %v", want, sources)
		}
	}
	for _, s := range sources {
		if strings.HasPrefix(s, "node_modules/") || strings.HasPrefix(s, "vendor/") {
			t.Errorf("Expected skip dir to be pruned, found %s", s)
		}
	}
}

func TestDiscoverer_SizeCapSkipsWithWarning(t *testing.T) {
	fs := afero.NewMemMapFs()
	big := strings.Repeat("x", 2048)
	_ = afero.WriteFile(fs, "/proj/README.md", []byte(big), 0644)
	_ = afero.WriteFile(fs, "/proj/main.go", []byte("package main"), 0644)

	cfg := model.DefaultConfig().Discovery
	cfg.MaxFileBytes = 1024
	d := NewDiscoverer(fs, cfg)

	result, err := d.Discover(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Documents) != 0 {
		t.Errorf("Expected oversized document to be skipped, got %d docs", len(result.Documents))
	}
	if len(result.Sources) != 1 {
		t.Errorf("Expected remaining source to survive the skip, got %d", len(result.Sources))
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Expected exactly one warning, got %d", len(result.Warnings))
	}
	if result.Warnings[0].Stage != "discover" || result.Warnings[0].File != "README.md" {
		t.Errorf("Expected size-cap warning for README.md, got %+v", result.Warnings[0])
	}
}

func TestDiscoverer_MissingRoot(t *testing.T) {
	d := NewDiscoverer(afero.NewMemMapFs(), model.DefaultConfig().Discovery)

	if _, err := d.Discover(context.Background(), "/nope"); err == nil {
		t.Error("Expected error for missing project root")
	}
}

func TestDiscoverer_DeterministicOrder(t *testing.T) {
	fs := testFs(t)
	d := NewDiscoverer(fs, model.DefaultConfig().Discovery)

	first, err := d.Discover(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := d.Discover(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(first.Sources) != len(second.Sources) {
		t.Fatal("Expected identical source counts across runs")
	}
	for i := range first.Sources {
		if first.Sources[i].Path != second.Sources[i].Path {
			t.Errorf("Expected stable ordering, position %d differs: %s vs %s",
				i, first.Sources[i].Path, second.Sources[i].Path)
		}
	}
}
