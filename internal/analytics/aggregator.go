package analytics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/kafka"
)

const latencyWindow = 10000

// DefaultTopN and MaxTopN bound the ranked lists in a stats report.
const (
	DefaultTopN = 10
	MaxTopN     = 100
)

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	FallbackCount     int64        `json:"fallback_count"`
	CacheHitRate      float64      `json:"cache_hit_rate"`
	ZeroResultRate    float64      `json:"zero_result_rate"`
	FallbackRate      float64      `json:"fallback_rate"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	TopTopics         []QueryCount `json:"top_topics"`
	TopAuthors        []QueryCount `json:"top_authors"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
	LastVersion       int64        `json:"last_version"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running totals over search events. Latency percentiles
// cover the most recent latencyWindow searches.
type Aggregator struct {
	mu          sync.RWMutex
	total       int64
	cacheHits   int64
	zeroResults int64
	fallbacks   int64
	lastVersion int64
	latencies   []int64
	next        int
	queries     map[string]int64
	zeroQueries map[string]int64
	topics      map[string]int64
	authors     map[string]int64
	startTime   time.Time
	logger      *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:   make([]int64, 0, 1024),
		queries:     make(map[string]int64),
		zeroQueries: make(map[string]int64),
		topics:      make(map[string]int64),
		authors:     make(map[string]int64),
		startTime:   time.Now(),
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent feeds search events consumed from Kafka into agg.
// Undecodable messages are logged and skipped.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "key", string(key), "error", err)
			return nil
		}
		if event.Type != "" && event.Type != EventSearch {
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Record implements Sink.
func (a *Aggregator) Record(event SearchEvent) {
	query := strings.ToLower(strings.TrimSpace(event.Query))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	if event.CacheHit {
		a.cacheHits++
	}
	if event.Fallback {
		a.fallbacks++
	}
	if event.Version > a.lastVersion {
		a.lastVersion = event.Version
	}
	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % latencyWindow
	}
	a.queries[query]++
	if event.Returned == 0 {
		a.zeroResults++
		a.zeroQueries[query]++
	}
	for _, topic := range event.Topics {
		a.topics[topic]++
	}
	if event.Author != "" {
		a.authors[event.Author]++
	}
}

// Stats reports totals with the default number of top entries per list.
func (a *Aggregator) Stats() AggregatedStats {
	return a.StatsTop(DefaultTopN)
}

// StatsTop reports totals with at most top entries in each ranked list.
func (a *Aggregator) StatsTop(top int) AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.total,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.total - a.cacheHits,
		ZeroResultCount: a.zeroResults,
		FallbackCount:   a.fallbacks,
		LastVersion:     a.lastVersion,
	}
	if a.total > 0 {
		stats.CacheHitRate = float64(a.cacheHits) / float64(a.total)
		stats.ZeroResultRate = float64(a.zeroResults) / float64(a.total)
		stats.FallbackRate = float64(a.fallbacks) / float64(a.total)
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queries, top)
	stats.ZeroResultQueries = topN(a.zeroQueries, top)
	stats.TopTopics = topN(a.topics, top)
	stats.TopAuthors = topN(a.authors, top)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then key ascending.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
