package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler serves the aggregated search analytics.
type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/zero-results", h.ZeroResults)
}

// Stats serves GET /api/v1/analytics. The optional top parameter bounds
// every ranked list in the report.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top, ok := h.topParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.aggregator.StatsTop(top))
}

// ZeroResults serves GET /api/v1/analytics/zero-results.
func (h *Handler) ZeroResults(w http.ResponseWriter, r *http.Request) {
	top, ok := h.topParam(w, r)
	if !ok {
		return
	}
	stats := h.aggregator.StatsTop(top)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"zero_result_count": stats.ZeroResultCount,
		"zero_result_rate":  stats.ZeroResultRate,
		"fallback_rate":     stats.FallbackRate,
		"queries":           stats.ZeroResultQueries,
	})
}

func (h *Handler) topParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return DefaultTopN, true
	}
	top, err := strconv.Atoi(raw)
	if err != nil || top < 1 || top > MaxTopN {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "top must be an integer between 1 and " + strconv.Itoa(MaxTopN),
		})
		return 0, false
	}
	return top, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
