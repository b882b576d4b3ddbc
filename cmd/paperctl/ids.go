package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
)

func newAssignIDsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign-ids",
		Short: "Give every distinct first author a stable T001-style ID",
		Long: `assign-ids loads the corpus, assigns a teacher_id to every record from
its first author (existing IDs are kept) and writes the corpus as JSON.`,
		Args: cobra.NoArgs,
		RunE: a.runAssignIDs,
	}
	cmd.Flags().StringP("out", "o", "", "output JSON file (default stdout)")
	return cmd
}

func (a *app) runAssignIDs(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	src, closer, err := corpus.OpenSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	batch, err := src.Load(cmd.Context())
	if err != nil {
		return err
	}
	corpus.AssignAuthorIDs(batch.Papers)

	out := a.v.GetString("out")
	if out == "" {
		return corpus.WriteJSON(a.out, batch.Papers)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := corpus.WriteJSON(f, batch.Papers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(batch.Papers), out)
	return nil
}
