// Package fuzzy scores string similarity on a 0-100 scale. Ratio compares
// whole strings by indel distance; PartialRatio finds the best-aligned
// window of the longer string, so a substring match scores 100.
package fuzzy

import (
	"strings"

	"github.com/xrash/smetrics"
)

// Ratio is 100 * (1 - indel / (len(a)+len(b))), where indel counts the
// insertions and deletions needed to turn a into b. Empty input scores 0.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	// A substitution costs as much as a deletion plus an insertion.
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return clamp(100 * (1 - float64(dist)/float64(len(a)+len(b))))
}

// PartialRatio slides the shorter string across the longer one, including
// windows that hang off either end, and returns the best Ratio. It is
// symmetric and returns 0 when either string is empty.
func PartialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	if strings.Contains(b, a) {
		return 100
	}
	best := windowBest(a, b)
	if len(a) == len(b) {
		best = max(best, windowBest(b, a))
	}
	return best
}

func windowBest(short, long string) float64 {
	m, n := len(short), len(long)
	var best float64
	for k := 1; k < m; k++ {
		best = max(best, Ratio(short, long[:k]), Ratio(short, long[n-k:]))
	}
	for start := 0; start+m <= n; start++ {
		best = max(best, Ratio(short, long[start:start+m]))
		if best == 100 {
			break
		}
	}
	return best
}

// Best returns the highest PartialRatio of needle against any candidate.
func Best(needle string, candidates ...string) float64 {
	var best float64
	for _, c := range candidates {
		best = max(best, PartialRatio(needle, c))
	}
	return best
}

func clamp(v float64) float64 {
	return min(100, max(0, v))
}
