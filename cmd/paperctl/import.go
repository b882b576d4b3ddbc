package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/kafka"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <corpus.json> <database.db>",
		Short: "Copy a JSON corpus into a SQLite table",
		Long: `import replaces the SQLite table (default research_papers) with the
records of a JSON corpus. With --notify a corpus-reload event is published
so running search services rebuild their index.`,
		Args: cobra.ExactArgs(2),
		RunE: a.runImport,
	}
	cmd.Flags().Bool("notify", false, "publish a corpus-reload event to Kafka")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	from, to := args[0], args[1]
	ctx := cmd.Context()

	batch, err := corpus.JSONSource{Path: from}.Load(ctx)
	if err != nil {
		return err
	}
	if err := corpus.WriteSQLite(ctx, to, cfg.Corpus.Table, batch.Papers); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "imported %d records (%d malformed) into %s:%s\n",
		len(batch.Papers), batch.Malformed, to, cfg.Corpus.Table)

	if !a.v.GetBool("notify") {
		return nil
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CorpusReload)
	defer producer.Close()
	host, _ := os.Hostname()
	event := consumer.ReloadEvent{
		Reason:      "import " + from,
		RequestedBy: "paperctl@" + host,
		RequestedAt: time.Now().UTC(),
	}
	if err := producer.Publish(ctx, kafka.Event{Key: "corpus-reload", Value: event}); err != nil {
		return fmt.Errorf("publishing reload event: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "reload event published to", cfg.Kafka.Topics.CorpusReload)
	return nil
}
