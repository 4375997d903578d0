package title

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// MatchThreshold is the minimum TokenSortRatio score for two titles to be
// considered the same entity by fuzzy matching.
const MatchThreshold = 80

// Scorer computes a similarity score between two strings on a 0-100 scale.
// It is the seam that lets the matching algorithm be swapped in tests.
type Scorer func(a, b string) int

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio scores two strings 0-100, insensitive to token order:
// the whitespace tokens of each side are sorted before a Levenshtein-based
// similarity is computed.
func TokenSortRatio(a, b string) int {
	sa, sb := sortTokens(a), sortTokens(b)
	if sa == sb {
		if sa == "" {
			return 0
		}
		return 100
	}
	if sa == "" || sb == "" {
		return 0
	}

	sim, err := edlib.StringsSimilarity(sa, sb, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return int(math.Round(float64(sim) * 100))
}
