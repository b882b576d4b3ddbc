package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IndexVersion.Set(7)

	live := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"alive"}`)
	})
	srv := NewServer(0, reg, map[string]http.Handler{"GET /health/live": live})

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		contains string
	}{
		{"scrape", http.MethodGet, "/metrics", http.StatusOK, "index_version 7"},
		{"extra route", http.MethodGet, "/health/live", http.StatusOK, "alive"},
		{"no index page", http.MethodGet, "/", http.StatusNotFound, ""},
		{"scrape is read only", http.MethodPost, "/metrics", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestServerRunStopsWithContext(t *testing.T) {
	srv := NewServer(0, prometheus.NewRegistry(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
