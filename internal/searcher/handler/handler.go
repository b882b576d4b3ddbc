// Package handler serves the search HTTP API: the query endpoint, corpus
// reload and stats, and query cache administration.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/tracing"
)

// Searcher runs queries; *executor.Executor implements it.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) (*executor.SearchResult, error)
	Limit(topK int) int
}

// Corpus owns the serving snapshot; *indexer.Engine implements it.
type Corpus interface {
	Current() (*indexer.Snapshot, error)
	Reload(ctx context.Context) (*indexer.Snapshot, error)
	Stats() (indexer.Stats, error)
}

// Deps wires a Handler. Cache, Collector, Tracer and Metrics are optional.
type Deps struct {
	Searcher  Searcher
	Corpus    Corpus
	Cache     *cache.QueryCache
	Collector *analytics.Collector
	Tracer    *tracing.Tracer
	Metrics   *metrics.Metrics
	Timeout   time.Duration
}

type Handler struct {
	searcher  Searcher
	corpus    Corpus
	cache     *cache.QueryCache
	collector *analytics.Collector
	tracer    *tracing.Tracer
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		searcher:  d.Searcher,
		corpus:    d.Corpus,
		cache:     d.Cache,
		collector: d.Collector,
		tracer:    d.Tracer,
		metrics:   d.Metrics,
		timeout:   d.Timeout,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/corpus/reload", h.Reload)
	mux.HandleFunc("GET /api/v1/corpus/stats", h.CorpusStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type answer struct {
	result   *executor.SearchResult
	cacheHit bool
}

// Search serves GET /api/v1/search?q=<text>&limit=<n>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	requested := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		requested = parsed
	}
	limit := h.searcher.Limit(requested)

	ctx, span := h.tracer.Start(ctx, "search", logger.RequestID(ctx))
	span.SetAttr("query", query)
	span.SetAttr("limit", limit)
	defer h.tracer.Finish(span)

	ans, err := resilience.WithTimeout(ctx, h.timeout, "search", func(ctx context.Context) (answer, error) {
		return h.execute(ctx, query, limit)
	})
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search failed", "query", query, "error", err)
		}
		h.writeError(w, status, errorMessage(err))
		return
	}

	latency := time.Since(start)
	cacheStatus := "miss"
	if ans.cacheHit {
		cacheStatus = "hit"
	} else if h.cache == nil {
		cacheStatus = "disabled"
	}
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}
	span.SetAttr("cache", cacheStatus)
	span.SetAttr("returned", ans.result.Count)

	log.Info("search completed",
		"query", query,
		"returned", ans.result.Count,
		"fallback", ans.result.Fallback,
		"version", ans.result.Version,
		"cache", cacheStatus,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		h.collector.Track(analytics.NewSearchEvent(ans.result, ans.cacheHit, latency, logger.RequestID(ctx)))
	}
	h.writeJSON(w, http.StatusOK, ans.result)
}

func (h *Handler) execute(ctx context.Context, query string, limit int) (answer, error) {
	if h.cache == nil {
		res, err := h.searcher.Search(ctx, query, limit)
		return answer{result: res}, err
	}
	snap, err := h.corpus.Current()
	if err != nil {
		return answer{}, err
	}
	res, hit, err := h.cache.GetOrCompute(ctx, snap.Version, query, limit, func(ctx context.Context) (*executor.SearchResult, error) {
		return h.searcher.Search(ctx, query, limit)
	})
	return answer{result: res, cacheHit: hit}, err
}

// Reload serves POST /api/v1/corpus/reload. The new snapshot is serving
// when the response is written.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	snap, err := h.corpus.Reload(r.Context())
	if err != nil {
		log.Error("corpus reload failed", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "corpus reload failed; previous snapshot still serving")
		return
	}
	log.Info("corpus reloaded via api", "version", snap.Version)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reloaded",
		"version": snap.Version,
		"records": snap.Store.Len(),
	})
}

func (h *Handler) CorpusStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.corpus.Stats()
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), errorMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.Is(err, apperrors.ErrIndexNotReady):
		return "index not ready"
	case errors.Is(err, apperrors.ErrTimeout):
		return "search timed out"
	default:
		return "search failed"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
