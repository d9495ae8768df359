// Package cli provides a lightweight CLI framework with colored help,
// subcommand dispatch, and "did you mean?" suggestions.
package cli

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns the best matching candidate for input, or "" if none of
// candidates fuzzy-matches closely enough. Closeness is fuzzy.RankFind's
// match distance against the threshold max(2, len(input)/3).
func Suggest(input string, candidates []string) string {
	if input == "" {
		return ""
	}

	ranks, found := fuzzy.RankFind(input, candidates)
	if !found || len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)

	threshold := max(2, len(input)/3)
	best := ranks[0]
	if best.Distance > threshold {
		return ""
	}
	return best.Target
}
