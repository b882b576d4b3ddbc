// Package executor runs a query end to end: parse, filter, fall back to
// the full corpus when filters eliminate everything, score, sort and
// truncate.
package executor

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/tracing"
)

// Result is a paper annotated with its score, rounded to 4 decimals.
type Result struct {
	corpus.Paper
	Score float64 `json:"score"`
}

type SearchResult struct {
	Query    string           `json:"query"`
	Filters  parser.FilterSet `json:"filters"`
	Count    int              `json:"count"`
	Fallback bool             `json:"fallback"`
	Version  int64            `json:"version"`
	Results  []Result         `json:"results"`
}

// Snapshots supplies the serving snapshot; *indexer.Engine implements it.
type Snapshots interface {
	Current() (*indexer.Snapshot, error)
}

type Options struct {
	DefaultLimit   int
	MaxResults     int
	FuzzyThreshold float64
	ScoringPolicy  string
}

type Executor struct {
	snapshots Snapshots
	opts      Options
	filter    *filter.Evaluator
	scorer    *ranker.Scorer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New returns an Executor. m may be nil.
func New(snapshots Snapshots, opts Options, m *metrics.Metrics) (*Executor, error) {
	scorer, err := ranker.New(opts.ScoringPolicy)
	if err != nil {
		return nil, err
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxResults < opts.DefaultLimit {
		opts.MaxResults = max(opts.DefaultLimit, 100)
	}
	return &Executor{
		snapshots: snapshots,
		opts:      opts,
		filter:    filter.New(opts.FuzzyThreshold),
		scorer:    scorer,
		metrics:   m,
		logger:    slog.Default().With("component", "query-executor"),
	}, nil
}

// Limit maps a requested result count onto [1, MaxResults]; non-positive
// values select DefaultLimit.
func (e *Executor) Limit(topK int) int {
	if topK <= 0 {
		return e.opts.DefaultLimit
	}
	return min(topK, e.opts.MaxResults)
}

type scored struct {
	idx   int
	score float64
}

// Search ranks the current snapshot against query. It fails only with
// ErrIndexNotReady; an empty corpus yields an empty result.
func (e *Executor) Search(ctx context.Context, query string, topK int) (*SearchResult, error) {
	snap, err := e.snapshots.Current()
	if err != nil {
		e.count(metrics.OutcomeError)
		return nil, err
	}
	limit := e.Limit(topK)

	_, span := tracing.StartChild(ctx, "parse")
	fs := parser.Parse(query)
	span.End()

	_, span = tracing.StartChild(ctx, "filter")
	candidates := e.filter.Candidates(snap.Store, fs)
	fallback := false
	if len(candidates) == 0 && snap.Store.Len() > 0 {
		fallback = true
		candidates = make([]int, snap.Store.Len())
		for i := range candidates {
			candidates[i] = i
		}
	}
	span.SetAttr("candidates", len(candidates))
	span.SetAttr("fallback", fallback)
	span.End()

	_, span = tracing.StartChild(ctx, "vectorize")
	qv := snap.Index.QueryVector(augment(query, fs))
	span.End()

	_, span = tracing.StartChild(ctx, "score")
	ranked := make([]scored, 0, len(candidates))
	for _, i := range candidates {
		s := e.scorer.Score(ranker.Input{
			Record:   snap.Store.NormalizedAt(i),
			Lexical:  snap.Index.SimilarityVector(qv, i),
			RawQuery: query,
			Filters:  fs,
		})
		ranked = append(ranked, scored{idx: i, score: s})
	}
	if e.scorer.DropsZero() {
		kept := make([]scored, 0, len(ranked))
		for _, r := range ranked {
			if r.score > 0 {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			ranked = kept
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	span.End()

	papers := snap.Store.Records()
	results := make([]Result, len(ranked))
	for k, r := range ranked {
		results[k] = Result{Paper: papers[r.idx], Score: math.Round(r.score*1e4) / 1e4}
	}

	outcome := metrics.OutcomeMatched
	switch {
	case len(results) == 0:
		outcome = metrics.OutcomeEmpty
	case fallback:
		outcome = metrics.OutcomeFallback
	}
	e.count(outcome)
	if e.metrics != nil {
		e.metrics.SearchResultsCount.Observe(float64(len(results)))
	}
	e.logger.Debug("query executed",
		"query", query,
		"candidates", len(candidates),
		"fallback", fallback,
		"results", len(results),
		"version", snap.Version,
	)
	return &SearchResult{
		Query:    query,
		Filters:  fs,
		Count:    len(results),
		Fallback: fallback,
		Version:  snap.Version,
		Results:  results,
	}, nil
}

// augment appends the extracted author, journal and topics to the query so
// that lexical similarity also sees them.
func augment(query string, fs parser.FilterSet) string {
	parts := []string{query}
	if fs.Author != "" {
		parts = append(parts, fs.Author)
	}
	if fs.Journal != "" {
		parts = append(parts, fs.Journal)
	}
	parts = append(parts, fs.Topics...)
	return strings.Join(parts, " ")
}

func (e *Executor) count(outcome string) {
	if e.metrics != nil {
		e.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}
