package analyze

import (
	"sort"

	"github.com/claimlens/claimlens/internal/model"
	"github.com/claimlens/claimlens/internal/util"
)

// merge collapses near-duplicate evidence in a single pass: records
// of the same type whose descriptions exceed the similarity cutoff
// are folded together. Input order is stable, so repeated runs
// converge to the same aggregate.
func (a *RealityAnalyzer) merge(evidence []model.Evidence) []model.Evidence {
	var merged []model.Evidence

	for _, ev := range evidence {
		folded := false
		for i := range merged {
			if merged[i].Type != ev.Type {
				continue
			}
			if util.JaccardWordSimilarity(merged[i].Description, ev.Description) > a.cfg.MergeSimilarity {
				merged[i] = mergeTwo(merged[i], ev)
				folded = true
				break
			}
		}
		if !folded {
			merged = append(merged, ev)
		}
	}

	return merged
}

// mergeTwo unions two records of the same type. The first record's
// description is kept (stable order), fields are union-deduplicated
// and sorted for determinism, confidence is the max, and the level is
// the higher-ranked of the two.
func mergeTwo(a, b model.Evidence) model.Evidence {
	out := a

	out.Files = unionStrings(a.Files, b.Files)
	out.Lines = unionInts(a.Lines, b.Lines)
	out.Snippets = unionStrings(a.Snippets, b.Snippets)
	out.Dependencies = unionStrings(a.Dependencies, b.Dependencies)
	out.PatternIDs = unionStrings(a.PatternIDs, b.PatternIDs)

	if b.Confidence > out.Confidence {
		out.Confidence = b.Confidence
	}
	if b.Level > out.Level {
		out.Level = b.Level
	}

	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		seen[s] = true
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func unionInts(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	for _, n := range a {
		seen[n] = true
	}
	for _, n := range b {
		seen[n] = true
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
