// Package similarity provides the fuzzy string-matching primitive used by
// the reference-comparison metrics.
package similarity

import (
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// normalize case-folds and trims a string before comparison.
func normalize(s string) string {
	return fold.String(strings.TrimSpace(s))
}

// Ratio returns a similarity score in [0,1] between two strings,
// symmetric up to normalization (case-fold + trim) of both inputs.
// It is 1.0 exactly when the normalized strings are identical (two empty
// strings included) and decreases with edit distance, using a
// character-level longest-common-subsequence ratio:
//
//	ratio = 2*LCS(a,b) / (len(a)+len(b))
func Ratio(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra := []rune(a)
	rb := []rune(b)
	lcs := lcsLength(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// MaxRatio returns the highest Ratio between s and any of the references.
// Returns 0.0 for an empty reference set.
func MaxRatio(s string, refs []string) float64 {
	best := 0.0
	for _, ref := range refs {
		if r := Ratio(s, ref); r > best {
			best = r
		}
	}
	return best
}

// lcsLength computes the longest-common-subsequence length using a
// two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
