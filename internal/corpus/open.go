package corpus

import (
	"context"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/postgres"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource builds the Source selected by cfg.Corpus.Source. The returned
// closer releases any database handle.
func OpenSource(ctx context.Context, cfg *config.Config) (Source, io.Closer, error) {
	switch cfg.Corpus.Source {
	case config.SourceJSON:
		return JSONSource{Path: cfg.Corpus.Path}, nopCloser{}, nil
	case config.SourceSQLite:
		src, err := OpenSQLite(cfg.Corpus.Path, cfg.Corpus.Table)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	case config.SourcePostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, unavailable("%v", err)
		}
		src, err := NewPostgresSource(client, cfg.Corpus.Table)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return src, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}
