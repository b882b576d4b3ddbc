// Package analytics records one event per answered search, publishes the
// events to Kafka in batches and aggregates them for the analytics endpoint.
package analytics

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/executor"
)

type EventType string

const (
	EventSearch EventType = "search"
)

type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Author    string    `json:"author,omitempty"`
	Journal   string    `json:"journal,omitempty"`
	Topics    []string  `json:"topics,omitempty"`
	Returned  int       `json:"returned"`
	Fallback  bool      `json:"fallback"`
	CacheHit  bool      `json:"cache_hit"`
	Version   int64     `json:"version"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewSearchEvent summarises an answered search.
func NewSearchEvent(res *executor.SearchResult, cacheHit bool, latency time.Duration, requestID string) SearchEvent {
	return SearchEvent{
		Type:      EventSearch,
		Query:     res.Query,
		Author:    res.Filters.Author,
		Journal:   res.Filters.Journal,
		Topics:    res.Filters.Topics,
		Returned:  res.Count,
		Fallback:  res.Fallback,
		CacheHit:  cacheHit,
		Version:   res.Version,
		LatencyMs: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
