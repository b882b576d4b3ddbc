package executor

import (
	"context"
	"strconv"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/lexical"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSnapshots struct{ snap *indexer.Snapshot }

func (f fixedSnapshots) Current() (*indexer.Snapshot, error) {
	if f.snap == nil {
		return nil, apperrors.ErrIndexNotReady
	}
	return f.snap, nil
}

var opts = lexical.Options{NGramMax: 2, MaxFeatures: 50000}

func snapshotOf(papers []corpus.Paper) fixedSnapshots {
	return fixedSnapshots{snap: indexer.BuildSnapshot(corpus.NewStore(papers, 0), opts, 1)}
}

func newExecutor(t *testing.T, papers []corpus.Paper, policy string) *Executor {
	t.Helper()
	e, err := New(snapshotOf(papers), Options{
		DefaultLimit: 20, MaxResults: 100, FuzzyThreshold: 70, ScoringPolicy: policy,
	}, nil)
	require.NoError(t, err)
	return e
}

var threePapers = []corpus.Paper{
	{FirstAuthor: "Alice Rao", Title: "Sensor Networks", Journal: "IEEE Access", Year: "2019", Keywords: []string{"iot"}},
	{FirstAuthor: "Bob Shah", Title: "Distributed Ledgers", Journal: "Springer", Year: "2022", Keywords: []string{"blockchain"}},
	{FirstAuthor: "Alice Rao", Title: "Learning Systems", Journal: "Nature", Year: "2021", Keywords: []string{"ai"}},
}

func largerCorpus() []corpus.Paper {
	authors := []string{"Alice Rao", "Bob Shah", "Chen Wu", "Dana Kim", "Eli Cohen"}
	journals := []string{"IEEE Access", "Springer", "Nature", "Elsevier"}
	topics := []string{"iot", "blockchain", "machine learning", "healthcare", "security", "cloud computing"}
	var papers []corpus.Paper
	for i := 0; i < 30; i++ {
		year := ""
		if i%7 != 3 {
			year = strconv.Itoa(2000 + i%24)
		}
		papers = append(papers, corpus.Paper{
			FirstAuthor: authors[i%len(authors)],
			Title:       "Study of " + topics[i%len(topics)] + " systems " + strconv.Itoa(i),
			Journal:     journals[i%len(journals)],
			Year:        year,
			Keywords:    []string{topics[i%len(topics)], topics[(i+1)%len(topics)]},
		})
	}
	papers = append(papers, corpus.Paper{
		FirstAuthor: "Dmitri Volkov", Title: "Quantum Annealing Heuristics", Journal: "Physical Review", Year: "2018",
	})
	return papers
}

func TestThreeRecordExample(t *testing.T) {
	e := newExecutor(t, threePapers, config.PolicyWeighted)
	res, err := e.Search(context.Background(), "papers by Alice Rao after 2019", 10)
	require.NoError(t, err)

	require.Equal(t, 1, res.Count)
	assert.Equal(t, "2021", res.Results[0].Year)
	assert.Equal(t, "Nature", res.Results[0].Journal)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Alice Rao", res.Filters.Author)
	assert.Equal(t, int64(1), res.Version)
}

func TestAfterBoundIsStrict(t *testing.T) {
	e := newExecutor(t, largerCorpus(), config.PolicyWeighted)
	res, err := e.Search(context.Background(), "security papers after 2015", 100)
	require.NoError(t, err)
	require.NotZero(t, res.Count)
	require.False(t, res.Fallback)
	for _, r := range res.Results {
		if y, err := strconv.Atoi(r.Year); err == nil {
			assert.Greater(t, y, 2015)
		}
	}
}

func TestBeforeAndAfterWindow(t *testing.T) {
	e := newExecutor(t, largerCorpus(), config.PolicyWeighted)
	res, err := e.Search(context.Background(), "before 2010 and after 2005", 100)
	require.NoError(t, err)
	require.NotZero(t, res.Count)
	require.False(t, res.Fallback)
	for _, r := range res.Results {
		y, err := strconv.Atoi(r.Year)
		require.NoError(t, err)
		assert.Greater(t, y, 2005)
		assert.Less(t, y, 2010)
	}
}

func TestRebuildIsDeterministic(t *testing.T) {
	papers := largerCorpus()
	a := newExecutor(t, papers, config.PolicyWeighted)
	b := newExecutor(t, papers, config.PolicyWeighted)
	for _, q := range []string{"machine learning in healthcare", "blockchain security", "by Chen Wu"} {
		ra, err := a.Search(context.Background(), q, 50)
		require.NoError(t, err)
		rb, err := b.Search(context.Background(), q, 50)
		require.NoError(t, err)
		assert.Equal(t, ra.Results, rb.Results, q)
	}
}

func TestEmptyQueryReturnsCorpusOrder(t *testing.T) {
	papers := largerCorpus()
	e := newExecutor(t, papers, config.PolicyWeighted)
	res, err := e.Search(context.Background(), "", 5)
	require.NoError(t, err)
	require.Equal(t, 5, res.Count)
	for i, r := range res.Results {
		assert.Equal(t, papers[i].Title, r.Title)
		assert.Equal(t, 0.0, r.Score)
	}
}

func TestExactAuthorRanksFirst(t *testing.T) {
	e := newExecutor(t, largerCorpus(), config.PolicyWeighted)
	res, err := e.Search(context.Background(), "Dmitri Volkov", 10)
	require.NoError(t, err)
	require.NotZero(t, res.Count)
	assert.Equal(t, "Dmitri Volkov", res.Results[0].FirstAuthor)
}

func TestFallbackToFullCorpus(t *testing.T) {
	papers := largerCorpus()
	e := newExecutor(t, papers, config.PolicyWeighted)
	res, err := e.Search(context.Background(), "papers by Zed Quinn", 7)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 7, res.Count)
}

func TestEmptyCorpus(t *testing.T) {
	e := newExecutor(t, nil, config.PolicyWeighted)
	res, err := e.Search(context.Background(), "anything by anyone", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Results)
}

func TestScoresSortedAndRounded(t *testing.T) {
	e := newExecutor(t, largerCorpus(), config.PolicyWeighted)
	res, err := e.Search(context.Background(), "machine learning healthcare", 100)
	require.NoError(t, err)
	for i, r := range res.Results {
		assert.Equal(t, r.Score, float64(int64(r.Score*1e4+0.5))/1e4)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Results[i-1].Score, r.Score)
		}
	}
}

func TestBlendPolicyKeepsAllCandidates(t *testing.T) {
	papers := largerCorpus()
	e := newExecutor(t, papers, config.PolicyBlend)
	res, err := e.Search(context.Background(), "zzz", 100)
	require.NoError(t, err)
	assert.Equal(t, len(papers), res.Count)
}

func TestLimit(t *testing.T) {
	e := newExecutor(t, threePapers, config.PolicyWeighted)
	assert.Equal(t, 20, e.Limit(0))
	assert.Equal(t, 20, e.Limit(-3))
	assert.Equal(t, 7, e.Limit(7))
	assert.Equal(t, 100, e.Limit(1000))
}

func TestIndexNotReady(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e, err := New(fixedSnapshots{}, Options{ScoringPolicy: config.PolicyWeighted}, m)
	require.NoError(t, err)
	_, err = e.Search(context.Background(), "iot", 5)
	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeError)))
}
