package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docs = []string{
	"IoT Sensing Networks | IEEE Access | Alice Rao | iot sensors",
	"Blockchain Ledgers | Springer | Bob Shah | blockchain",
	"A Survey of AI | Nature | Alice Rao | ai machine learning",
	"",
}

func TestSimilarityRanksMatchingDocument(t *testing.T) {
	idx := Build(docs, Options{NGramMax: 2})
	require.Equal(t, 4, idx.Len())

	q := idx.QueryVector("blockchain ledgers")
	best := idx.SimilarityVector(q, 1)
	assert.Greater(t, best, 0.5)
	assert.Equal(t, 0.0, idx.SimilarityVector(q, 0))
	assert.Equal(t, 0.0, idx.SimilarityVector(q, 3))
	assert.Equal(t, 0.0, idx.SimilarityVector(q, 99))
	assert.Equal(t, 0.0, idx.Similarity("the of and", 1))
}

func TestSelfSimilarityIsOne(t *testing.T) {
	idx := Build(docs, Options{NGramMax: 2})
	assert.InDelta(t, 1.0, idx.Similarity(docs[2], 2), 1e-9)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(docs, Options{NGramMax: 2, MaxFeatures: 50000})
	b := Build(docs, Options{NGramMax: 2, MaxFeatures: 50000})
	for i := range docs {
		assert.Equal(t, a.Similarity("alice rao machine learning", i), b.Similarity("alice rao machine learning", i))
	}
	assert.Equal(t, a.rows, b.rows)
}

func TestMaxFeaturesKeepsMostFrequent(t *testing.T) {
	idx := Build([]string{"alpha beta", "alpha gamma", "alpha beta delta"}, Options{NGramMax: 1, MaxFeatures: 2})
	assert.Equal(t, 2, idx.VocabularySize())
	assert.Contains(t, idx.vocab, "alpha")
	assert.Contains(t, idx.vocab, "beta")
	assert.Equal(t, 0, idx.vocab["alpha"])
	assert.Equal(t, 1, idx.vocab["beta"])
}

func TestIDFSmoothing(t *testing.T) {
	idx := Build([]string{"alpha beta", "alpha"}, Options{NGramMax: 1})
	assert.InDelta(t, 1.0, idx.idf[idx.vocab["alpha"]], 1e-12)
	assert.InDelta(t, 1.4054651081081644, idx.idf[idx.vocab["beta"]], 1e-12)
}

func TestEmptyCorpus(t *testing.T) {
	idx := Build(nil, Options{})
	assert.Equal(t, 0, idx.Len())
	assert.True(t, idx.QueryVector("anything").IsZero())
}
