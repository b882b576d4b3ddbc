package ranker

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paper = corpus.Normalize(corpus.Paper{
	FirstAuthor: "Alice Rao",
	Title:       "Blockchain for IoT Security",
	Journal:     "IEEE Access",
	Keywords:    []string{"blockchain", "iot"},
})

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New("bm25")
	assert.Error(t, err)
}

func TestWeightedPolicy(t *testing.T) {
	s, err := New(config.PolicyWeighted)
	require.NoError(t, err)
	assert.True(t, s.DropsZero())

	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"lexical only", Input{Record: paper, Lexical: 0.5}, 0.3},
		{"author", Input{Record: paper, Filters: parser.FilterSet{Author: "Alice Rao"}}, 0.2},
		{"journal", Input{Record: paper, Filters: parser.FilterSet{Journal: "ieee access"}}, 0.15},
		{"one topic", Input{Record: paper, Filters: parser.FilterSet{Topics: []string{"iot"}}}, 0.02},
		{"topic bonus capped", Input{Record: paper, Filters: parser.FilterSet{Topics: []string{"iot", "blockchain", "security"}}}, 0.05},
		{"no signal", Input{Record: paper}, 0},
		{"everything", Input{Record: paper, Lexical: 1, Filters: parser.FilterSet{
			Author: "Alice Rao", Journal: "ieee access", Topics: []string{"iot", "blockchain", "security"},
		}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.in), 1e-9)
		})
	}
}

func TestBlendPolicy(t *testing.T) {
	s, err := New(config.PolicyBlend)
	require.NoError(t, err)
	assert.False(t, s.DropsZero())

	assert.InDelta(t, 0.7*0.5+0.3, s.Score(Input{Record: paper, Lexical: 0.5, RawQuery: "IEEE Access"}), 1e-9)
	assert.InDelta(t, 0.0, s.Score(Input{Record: paper, RawQuery: ""}), 1e-9)
}

func TestScoreIsClamped(t *testing.T) {
	s, _ := New(config.PolicyBlend)
	assert.Equal(t, 1.0, s.Score(Input{Record: paper, Lexical: 2, RawQuery: "alice rao"}))
}
