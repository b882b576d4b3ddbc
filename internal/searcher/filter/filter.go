// Package filter decides whether a paper satisfies a parsed FilterSet.
// Year bounds are hard constraints; author, journal and topics are matched
// fuzzily against a similarity threshold.
package filter

import (
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/fuzzy"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/parser"
)

// DefaultThreshold is the minimum partial-ratio (0-100) for a fuzzy match.
const DefaultThreshold = 70

type Evaluator struct {
	threshold float64
}

// New returns an Evaluator; a non-positive threshold selects DefaultThreshold.
func New(threshold float64) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Evaluator{threshold: threshold}
}

// Passes reports whether the normalized record satisfies every active filter.
func (e *Evaluator) Passes(rec corpus.Normalized, fs parser.FilterSet) bool {
	return e.passesYear(rec, fs) &&
		e.passesAuthor(rec, fs) &&
		e.passesJournal(rec, fs) &&
		e.passesTopics(rec, fs)
}

// Candidates returns the indexes of records in store that pass fs, in
// corpus order.
func (e *Evaluator) Candidates(store *corpus.Store, fs parser.FilterSet) []int {
	out := make([]int, 0, store.Len())
	for i := 0; i < store.Len(); i++ {
		if fs.IsEmpty() || e.Passes(store.NormalizedAt(i), fs) {
			out = append(out, i)
		}
	}
	return out
}

func (e *Evaluator) passesYear(rec corpus.Normalized, fs parser.FilterSet) bool {
	if !fs.HasYearBound() {
		return true
	}
	year, err := strconv.Atoi(rec.Year)
	if err != nil {
		return false
	}
	if fs.YearMin != nil && year < *fs.YearMin {
		return false
	}
	if fs.YearMax != nil && year > *fs.YearMax {
		return false
	}
	return true
}

func (e *Evaluator) passesAuthor(rec corpus.Normalized, fs parser.FilterSet) bool {
	if fs.Author == "" {
		return true
	}
	return fuzzy.Best(strings.ToLower(fs.Author), rec.FirstAuthor, rec.CoAuthors) >= e.threshold
}

func (e *Evaluator) passesJournal(rec corpus.Normalized, fs parser.FilterSet) bool {
	if fs.Journal == "" {
		return true
	}
	return fuzzy.PartialRatio(strings.ToLower(fs.Journal), rec.Journal) >= e.threshold
}

func (e *Evaluator) passesTopics(rec corpus.Normalized, fs parser.FilterSet) bool {
	if len(fs.Topics) == 0 {
		return true
	}
	text := rec.SearchText()
	for _, t := range fs.Topics {
		if strings.Contains(text, strings.ToLower(t)) {
			return true
		}
	}
	for _, t := range fs.Topics {
		if fuzzy.PartialRatio(strings.ToLower(t), text) >= e.threshold {
			return true
		}
	}
	return false
}
