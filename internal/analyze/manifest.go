package analyze

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/claimlens/claimlens/internal/model"
)

// scanManifest turns recognized dependency names into evidence. Each
// recognized dependency yields one Evidence at the fixed manifest
// confidence, level Partial, no source lines. A malformed manifest
// contributes nothing and is recorded as a warning, never fatal.
func (a *RealityAnalyzer) scanManifest(m model.Manifest) ([]model.Evidence, []model.Warning) {
	deps, err := parseManifest(m)
	if err != nil {
		return nil, []model.Warning{{
			Stage:  "analyze",
			File:   m.Path,
			Reason: fmt.Sprintf("malformed manifest: %v", err),
		}}
	}

	sort.Strings(deps)

	var evidence []model.Evidence
	for _, dep := range deps {
		rt, ok := a.matchDependency(dep)
		if !ok {
			continue
		}

		evidence = append(evidence, model.Evidence{
			Type:         rt,
			Description:  fmt.Sprintf("%s (declared dependency: %s)", realityDescription(rt), dep),
			Files:        []string{m.Path},
			Confidence:   a.cfg.ManifestConfidence,
			Level:        model.LevelPartial,
			Dependencies: []string{dep},
		})
	}

	return evidence, nil
}

// matchDependency looks a dependency name up in the configured table.
// Names match on the whole name, any path segment, or any -_. token,
// so "github.com/redis/go-redis/v9" recognizes "redis" without
// "plugin" recognizing "gin".
func (a *RealityAnalyzer) matchDependency(name string) (model.RealityType, bool) {
	lower := strings.ToLower(name)

	tokens := map[string]bool{lower: true}
	for _, seg := range strings.Split(lower, "/") {
		tokens[seg] = true
		for _, tok := range strings.FieldsFunc(seg, func(r rune) bool {
			return r == '-' || r == '_' || r == '.' || r == '@'
		}) {
			tokens[tok] = true
		}
	}

	for _, key := range a.depNames {
		if tokens[key] {
			return a.cfg.Dependencies[key], true
		}
	}

	return "", false
}

// parseManifest extracts dependency names from a manifest by kind
func parseManifest(m model.Manifest) ([]string, error) {
	switch m.Kind {
	case model.ManifestGoMod:
		return parseGoMod(m.Content), nil
	case model.ManifestPackageJSON:
		return parsePackageJSON(m.Content)
	case model.ManifestRequirements:
		return parseRequirements(m.Content), nil
	case model.ManifestCargoToml:
		return parseCargoToml(m.Content)
	default:
		return nil, fmt.Errorf("unknown manifest kind: %s", m.Kind)
	}
}

// parseGoMod extracts module paths from require directives. go.mod is
// line-oriented enough that full module parsing is not needed here.
func parseGoMod(content string) []string {
	var deps []string
	inBlock := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "require (") {
			inBlock = true
			continue
		}
		if inBlock && line == ")" {
			inBlock = false
			continue
		}

		var fields []string
		if inBlock {
			fields = strings.Fields(line)
		} else if strings.HasPrefix(line, "require ") {
			fields = strings.Fields(strings.TrimPrefix(line, "require "))
		}

		if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
			deps = append(deps, fields[0])
		}
	}

	return deps
}

func parsePackageJSON(content string) ([]string, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil, err
	}

	var deps []string
	for name := range pkg.Dependencies {
		deps = append(deps, name)
	}
	for name := range pkg.DevDependencies {
		deps = append(deps, name)
	}
	return deps, nil
}

func parseRequirements(content string) []string {
	var deps []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// Strip version constraints and extras
		name := line
		for _, sep := range []string{"==", ">=", "<=", "~=", ">", "<", "[", ";", " "} {
			if idx := strings.Index(name, sep); idx >= 0 {
				name = name[:idx]
			}
		}
		if name != "" {
			deps = append(deps, name)
		}
	}
	return deps
}

func parseCargoToml(content string) ([]string, error) {
	var manifest struct {
		Dependencies    map[string]interface{} `toml:"dependencies"`
		DevDependencies map[string]interface{} `toml:"dev-dependencies"`
	}
	if err := toml.Unmarshal([]byte(content), &manifest); err != nil {
		return nil, err
	}

	var deps []string
	for name := range manifest.Dependencies {
		deps = append(deps, name)
	}
	for name := range manifest.DevDependencies {
		deps = append(deps, name)
	}
	return deps, nil
}
