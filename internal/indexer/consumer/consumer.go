// Package consumer rebuilds the search snapshot when a corpus-reload event
// arrives on Kafka, so every replica picks up a new corpus without a
// restart.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/kafka"
)

// ReloadEvent asks consumers to reload the corpus.
type ReloadEvent struct {
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// Reloader rebuilds the serving snapshot.
type Reloader interface {
	Reload(ctx context.Context) (*indexer.Snapshot, error)
}

// HandleReload returns a Kafka MessageHandler that reloads r for every
// event. Undecodable messages are logged and skipped; a failed reload is
// returned so the message is not committed.
func HandleReload(r Reloader) kafka.MessageHandler {
	logger := slog.Default().With("component", "reload-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ReloadEvent](value)
		if err != nil {
			logger.Error("failed to decode reload event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		logger.Info("reload requested",
			"reason", event.Reason,
			"requested_by", event.RequestedBy,
		)
		snap, err := r.Reload(ctx)
		if err != nil {
			return fmt.Errorf("reloading corpus for %q: %w", event.Reason, err)
		}
		logger.Info("reload complete", "version", snap.Version)
		return nil
	}
}
