package filter

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/parser"
	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func rec(p corpus.Paper) corpus.Normalized { return corpus.Normalize(p) }

func TestYearFilter(t *testing.T) {
	e := New(0)
	undated := rec(corpus.Paper{Title: "Untitled"})
	dated := rec(corpus.Paper{Year: "2019"})

	assert.True(t, e.Passes(undated, parser.FilterSet{}))
	assert.False(t, e.Passes(undated, parser.FilterSet{ExactYear: intp(2019), YearMin: intp(2019), YearMax: intp(2019)}))
	assert.True(t, e.Passes(dated, parser.FilterSet{YearMin: intp(2019), YearMax: intp(2019)}))
	assert.False(t, e.Passes(dated, parser.FilterSet{YearMin: intp(2020)}))
	assert.False(t, e.Passes(dated, parser.FilterSet{YearMax: intp(2018)}))
	assert.True(t, e.Passes(dated, parser.FilterSet{YearMin: intp(2010), YearMax: intp(2019)}))
}

func TestAuthorFilterUsesCoAuthors(t *testing.T) {
	e := New(70)
	r := rec(corpus.Paper{FirstAuthor: "Alice Rao", CoAuthors: "Ben Li, Chen Wu"})
	assert.True(t, e.Passes(r, parser.FilterSet{Author: "Alice Rao"}))
	assert.True(t, e.Passes(r, parser.FilterSet{Author: "Alise Rao"}))
	assert.True(t, e.Passes(r, parser.FilterSet{Author: "Chen Wu"}))
	assert.False(t, e.Passes(r, parser.FilterSet{Author: "Bob Shah"}))
}

func TestJournalFilter(t *testing.T) {
	e := New(70)
	r := rec(corpus.Paper{Journal: "IEEE Access"})
	assert.True(t, e.Passes(r, parser.FilterSet{Journal: "ieee"}))
	assert.True(t, e.Passes(r, parser.FilterSet{Journal: "ieee acess"}))
	assert.False(t, e.Passes(r, parser.FilterSet{Journal: "springer"}))
}

func TestTopicFilter(t *testing.T) {
	e := New(70)
	r := rec(corpus.Paper{Title: "Ledgers at Scale", Keywords: []string{"Blockchain"}})
	assert.True(t, e.Passes(r, parser.FilterSet{Topics: []string{"quantum", "blockchain"}}))
	assert.True(t, e.Passes(r, parser.FilterSet{Topics: []string{"blokchain"}}))
	assert.False(t, e.Passes(r, parser.FilterSet{Topics: []string{"healthcare"}}))
}

func TestCandidates(t *testing.T) {
	store := corpus.NewStore([]corpus.Paper{
		{FirstAuthor: "Alice Rao", Year: "2019"},
		{FirstAuthor: "Bob Shah", Year: "2022"},
		{FirstAuthor: "Alice Rao", Year: "2021"},
	}, 0)
	e := New(70)
	assert.Equal(t, []int{0, 1, 2}, e.Candidates(store, parser.FilterSet{}))
	assert.Equal(t, []int{2}, e.Candidates(store, parser.FilterSet{Author: "Alice Rao", YearMin: intp(2020)}))
	assert.Empty(t, e.Candidates(store, parser.FilterSet{Author: "Zed Quinn"}))
}
