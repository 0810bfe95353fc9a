package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// ContainsFold reports whether substr is within s, ignoring case.
// An empty substr is contained in everything.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ClosestMatch returns the candidate most similar to name (jaro-winkler over
// normalized names), an empty string is returned if nothing reaches minSimilarity.
func ClosestMatch(name string, candidates []string, minSimilarity float64) string {
	normalized := NormalizeName(name)
	if normalized == "" {
		return ""
	}

	var best string
	var bestSimilarity float64
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = c
		}
	}
	if bestSimilarity < minSimilarity {
		return ""
	}
	return best
}
