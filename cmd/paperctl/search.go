package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/lexical"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/searcher/executor"
)

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one query against the corpus",
		Long: `Search loads the configured corpus, builds the lexical index and prints
the ranked matches for the query. Filters such as "by <author>",
"in <journal>", "after <year>" and topic words are read from the query text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runSearch,
	}
	cmd.Flags().Int("limit", 0, "maximum results (0 uses the configured default)")
	cmd.Flags().String("policy", "", "scoring policy: weighted or blend")
	cmd.Flags().Bool("json", false, "output the full response as JSON")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if p := a.v.GetString("policy"); p != "" {
		cfg.Search.ScoringPolicy = p
	}

	ctx := cmd.Context()
	src, closer, err := corpus.OpenSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	engine := indexer.NewEngine(src, lexical.Options{
		MaxFeatures: cfg.Index.MaxFeatures,
		NGramMax:    cfg.Index.NGramMax,
	}, nil)
	if _, err := engine.Reload(ctx); err != nil {
		return err
	}
	exec, err := executor.New(engine, executor.Options{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxResults:     cfg.Search.MaxResults,
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
		ScoringPolicy:  cfg.Search.ScoringPolicy,
	}, nil)
	if err != nil {
		return err
	}

	res, err := exec.Search(ctx, strings.Join(args, " "), a.v.GetInt("limit"))
	if err != nil {
		return err
	}
	if a.v.GetBool("json") {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	a.printTable(res)
	return nil
}

func (a *app) printTable(res *executor.SearchResult) {
	if res.Fallback {
		fmt.Fprintln(a.out, "No record matched every filter; ranking the whole corpus.")
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(a.out, "No results found.")
		return
	}
	fmt.Fprintf(a.out, "%-4s  %-7s  %-45s  %-20s  %-20s  %s\n",
		"Rank", "Score", "Title", "Author", "Journal", "Year")
	fmt.Fprintln(a.out, strings.Repeat("-", 110))
	for i, r := range res.Results {
		fmt.Fprintf(a.out, "%-4d  %-7.4f  %-45s  %-20s  %-20s  %s\n",
			i+1, r.Score, clip(r.Title, 45), clip(r.FirstAuthor, 20), clip(r.Journal, 20), r.Year)
	}
	fmt.Fprintf(a.out, "\n%d results (index version %d)\n", res.Count, res.Version)
}

// clip truncates s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
