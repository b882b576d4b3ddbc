// Package indexer owns the versioned search snapshot: the loaded corpus and
// the lexical index built from it. Searches read the current snapshot
// without locking; Reload builds a complete replacement and swaps it in.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/lexical"
	apperrors "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Snapshot is an immutable corpus plus the index built over it. Index row i
// corresponds to Store record i.
type Snapshot struct {
	Version int64
	Store   *corpus.Store
	Index   *lexical.Index
	BuiltAt time.Time
}

// Stats summarizes a snapshot for the ops endpoint.
type Stats struct {
	Version        int64     `json:"version"`
	Records        int       `json:"records"`
	Malformed      int       `json:"malformed_records"`
	VocabularySize int       `json:"vocabulary_size"`
	BuiltAt        time.Time `json:"built_at"`
	Source         string    `json:"source"`
}

// Document is the composite text indexed for p: title, journal, first
// author, co-authors and keywords joined by " | ", empty parts skipped.
func Document(p corpus.Paper) string {
	parts := []string{p.Title, p.Journal, p.FirstAuthor, p.CoAuthors, strings.Join(p.Keywords, " ")}
	kept := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " | ")
}

// BuildSnapshot indexes store under the given version.
func BuildSnapshot(store *corpus.Store, opts lexical.Options, version int64) *Snapshot {
	docs := make([]string, store.Len())
	for i, p := range store.Records() {
		docs[i] = Document(p)
	}
	return &Snapshot{
		Version: version,
		Store:   store,
		Index:   lexical.Build(docs, opts),
		BuiltAt: time.Now().UTC(),
	}
}

// Engine serves the current Snapshot and rebuilds it from a corpus Source.
type Engine struct {
	source  corpus.Source
	opts    lexical.Options
	metrics *metrics.Metrics
	logger  *slog.Logger

	current atomic.Pointer[Snapshot]
	group   singleflight.Group

	mu     sync.Mutex
	onSwap []func(*Snapshot)
}

// NewEngine returns an Engine with no snapshot; call Reload before serving.
// m may be nil.
func NewEngine(src corpus.Source, opts lexical.Options, m *metrics.Metrics) *Engine {
	return &Engine{
		source:  src,
		opts:    opts,
		metrics: m,
		logger:  slog.Default().With("component", "indexer", "source", src.Describe()),
	}
}

// OnSwap registers fn to run after each successful swap.
func (e *Engine) OnSwap(fn func(*Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSwap = append(e.onSwap, fn)
}

// Current returns the serving snapshot, or ErrIndexNotReady before the
// first successful build.
func (e *Engine) Current() (*Snapshot, error) {
	s := e.current.Load()
	if s == nil {
		return nil, apperrors.ErrIndexNotReady
	}
	return s, nil
}

// Ping reports readiness for health checks.
func (e *Engine) Ping(context.Context) error {
	_, err := e.Current()
	return err
}

// Stats describes the serving snapshot.
func (e *Engine) Stats() (Stats, error) {
	s, err := e.Current()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Version:        s.Version,
		Records:        s.Store.Len(),
		Malformed:      s.Store.Malformed(),
		VocabularySize: s.Index.VocabularySize(),
		BuiltAt:        s.BuiltAt,
		Source:         e.source.Describe(),
	}, nil
}

// Reload loads the corpus, builds a new snapshot and swaps it in.
// Concurrent calls share one build. On failure the previous snapshot keeps
// serving and the error is returned.
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := e.group.Do("reload", func() (any, error) {
		return e.rebuild(context.WithoutCancel(ctx))
	})
	if shared {
		e.logger.Debug("reload collapsed into in-flight build")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (e *Engine) rebuild(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	store, err := corpus.Load(ctx, e.source)
	if err != nil {
		e.observe("failure", start)
		e.logger.Error("corpus reload failed, keeping previous snapshot", "error", err)
		return nil, fmt.Errorf("reloading corpus: %w", err)
	}

	var version int64 = 1
	if prev := e.current.Load(); prev != nil {
		version = prev.Version + 1
	}
	snap := BuildSnapshot(store, e.opts, version)
	e.current.Store(snap)
	e.observe("success", start)

	if e.metrics != nil {
		e.metrics.IndexVersion.Set(float64(snap.Version))
		e.metrics.CorpusRecords.Set(float64(store.Len()))
		e.metrics.VocabularySize.Set(float64(snap.Index.VocabularySize()))
		e.metrics.MalformedRecords.Add(float64(store.Malformed()))
	}
	e.logger.Info("index snapshot swapped",
		"version", snap.Version,
		"records", store.Len(),
		"malformed", store.Malformed(),
		"vocabulary", snap.Index.VocabularySize(),
		"duration", time.Since(start),
	)

	e.mu.Lock()
	hooks := slices.Clone(e.onSwap)
	e.mu.Unlock()
	for _, fn := range hooks {
		fn(snap)
	}
	return snap, nil
}

func (e *Engine) observe(status string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.IndexRebuildsTotal.WithLabelValues(status).Inc()
	e.metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
}
