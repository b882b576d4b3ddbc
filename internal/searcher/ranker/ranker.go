// Package ranker blends lexical similarity with fuzzy string signals into a
// single score in [0,1]. Two policies are supported:
//
//   - weighted: 0.6 lexical + 0.2 author + 0.15 journal + up to 0.05 for
//     topic hits in the title and keywords. Zero scores are dropped.
//   - blend: 0.7 lexical + 0.3 best fuzzy match of the raw query against
//     title, journal and first author. Every candidate is kept.
package ranker

import (
	"fmt"
	"math"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/fuzzy"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/config"
)

const (
	weightLexical   = 0.6
	weightAuthor    = 0.2
	weightJournal   = 0.15
	topicBonusEach  = 0.02
	topicBonusLimit = 0.05

	blendLexical = 0.7
	blendFuzzy   = 0.3
)

// Input is everything a policy may look at for one candidate.
type Input struct {
	Record   corpus.Normalized
	Lexical  float64
	RawQuery string
	Filters  parser.FilterSet
}

// Scorer applies one scoring policy.
type Scorer struct {
	policy string
}

// New returns a Scorer for policy (config.PolicyWeighted or
// config.PolicyBlend).
func New(policy string) (*Scorer, error) {
	switch policy {
	case config.PolicyWeighted, config.PolicyBlend:
		return &Scorer{policy: policy}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", policy)
	}
}

func (s *Scorer) Policy() string { return s.policy }

// DropsZero reports whether zero-scored candidates are excluded.
func (s *Scorer) DropsZero() bool { return s.policy == config.PolicyWeighted }

// Score is deterministic and clamped to [0,1].
func (s *Scorer) Score(in Input) float64 {
	if s.policy == config.PolicyBlend {
		return clamp(blend(in))
	}
	return clamp(weighted(in))
}

func weighted(in Input) float64 {
	score := weightLexical * in.Lexical
	if in.Filters.Author != "" {
		score += weightAuthor * fuzzy.PartialRatio(strings.ToLower(in.Filters.Author), in.Record.FirstAuthor) / 100
	}
	if in.Filters.Journal != "" {
		score += weightJournal * fuzzy.PartialRatio(strings.ToLower(in.Filters.Journal), in.Record.Journal) / 100
	}
	if len(in.Filters.Topics) > 0 {
		text := in.Record.TitleKeywords()
		hits := 0
		for _, t := range in.Filters.Topics {
			if strings.Contains(text, strings.ToLower(t)) {
				hits++
			}
		}
		score += math.Min(topicBonusLimit, topicBonusEach*float64(hits))
	}
	return score
}

func blend(in Input) float64 {
	q := strings.ToLower(strings.TrimSpace(in.RawQuery))
	best := math.Max(
		fuzzy.PartialRatio(q, in.Record.Title),
		math.Max(fuzzy.PartialRatio(q, in.Record.Journal), fuzzy.PartialRatio(q, in.Record.FirstAuthor)),
	)
	return blendLexical*in.Lexical + blendFuzzy*best/100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
