// Package lexical builds TF-IDF vectors over unigrams and bigrams of the
// paper corpus and scores queries against them by cosine similarity.
//
// An Index is immutable after Build. Row i always corresponds to document
// i of the slice it was built from; a corpus change requires a new Build.
package lexical

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/tokenizer"
)

// Options controls vocabulary construction.
type Options struct {
	// MaxFeatures caps the vocabulary; zero or negative means unlimited.
	MaxFeatures int
	// NGramMax is the largest n-gram size, at least 1.
	NGramMax int
}

// Vector is a sparse, L2-normalized term-weight vector with columns in
// ascending order.
type Vector struct {
	cols    []int
	weights []float64
}

// IsZero reports whether v has no non-zero weights.
func (v Vector) IsZero() bool { return len(v.cols) == 0 }

// Index maps vocabulary terms to columns and holds one vector per document.
type Index struct {
	opts  Options
	vocab map[string]int
	idf   []float64
	rows  []Vector
}

// Build tokenizes docs and computes smoothed TF-IDF weights
// (idf = ln((1+n)/(1+df)) + 1). When the vocabulary exceeds MaxFeatures,
// the most frequent terms across the corpus are kept, ties broken by term.
func Build(docs []string, opts Options) *Index {
	if opts.NGramMax < 1 {
		opts.NGramMax = 1
	}
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		tf := make(map[string]int)
		for _, term := range tokenizer.Terms(doc, opts.NGramMax) {
			tf[term]++
		}
		for term, c := range tf {
			df[term]++
			total[term] += c
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if opts.MaxFeatures > 0 && len(terms) > opts.MaxFeatures {
		sort.Slice(terms, func(a, b int) bool {
			if total[terms[a]] != total[terms[b]] {
				return total[terms[a]] > total[terms[b]]
			}
			return terms[a] < terms[b]
		})
		terms = terms[:opts.MaxFeatures]
	}
	sort.Strings(terms)

	idx := &Index{
		opts:  opts,
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
		rows:  make([]Vector, len(docs)),
	}
	n := float64(len(docs))
	for col, term := range terms {
		idx.vocab[term] = col
		idx.idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	for i, tf := range counts {
		idx.rows[i] = idx.weigh(tf)
	}
	return idx
}

// weigh turns raw term counts into a normalized vector over the vocabulary.
// Terms outside the vocabulary are ignored.
func (idx *Index) weigh(tf map[string]int) Vector {
	type entry struct {
		col   int
		count int
	}
	entries := make([]entry, 0, len(tf))
	for term, c := range tf {
		if col, ok := idx.vocab[term]; ok {
			entries = append(entries, entry{col: col, count: c})
		}
	}
	if len(entries) == 0 {
		return Vector{}
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].col < entries[b].col })

	v := Vector{cols: make([]int, len(entries)), weights: make([]float64, len(entries))}
	var norm float64
	for k, e := range entries {
		w := float64(e.count) * idx.idf[e.col]
		v.cols[k] = e.col
		v.weights[k] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for k := range v.weights {
		v.weights[k] /= norm
	}
	return v
}

// Len is the number of indexed documents.
func (idx *Index) Len() int { return len(idx.rows) }

// VocabularySize is the number of retained terms.
func (idx *Index) VocabularySize() int { return len(idx.vocab) }

// QueryVector weighs text against the fixed vocabulary.
func (idx *Index) QueryVector(text string) Vector {
	tf := make(map[string]int)
	for _, term := range tokenizer.Terms(text, idx.opts.NGramMax) {
		tf[term]++
	}
	return idx.weigh(tf)
}

// SimilarityVector returns the cosine similarity in [0,1] between q and
// document i, or 0 when either vector is empty or i is out of range.
func (idx *Index) SimilarityVector(q Vector, i int) float64 {
	if i < 0 || i >= len(idx.rows) || q.IsZero() {
		return 0
	}
	row := idx.rows[i]
	var dot float64
	a, b := 0, 0
	for a < len(q.cols) && b < len(row.cols) {
		switch {
		case q.cols[a] == row.cols[b]:
			dot += q.weights[a] * row.weights[b]
			a++
			b++
		case q.cols[a] < row.cols[b]:
			a++
		default:
			b++
		}
	}
	return math.Max(0, math.Min(1, dot))
}

// Similarity is SimilarityVector(QueryVector(text), i).
func (idx *Index) Similarity(text string, i int) float64 {
	return idx.SimilarityVector(idx.QueryVector(text), i)
}
