package util

import "strings"

// JaccardWordSimilarity computes the Jaccard similarity of the word
// sets of two strings: |intersection| / |union|. Comparison is
// case-insensitive and ignores common punctuation. Two empty strings
// are identical (1.0); one empty string is disjoint (0.0).
func JaccardWordSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'`*")
		if w != "" {
			set[w] = true
		}
	}
	return set
}
