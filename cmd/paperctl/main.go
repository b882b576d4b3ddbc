// Command paperctl runs one-shot searches over a paper corpus and manages
// corpus files: author ID assignment and JSON to SQLite import.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by every subcommand.
type app struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:           "paperctl",
		Short:         "Search and maintain a research paper corpus",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			slog.SetDefault(logger.New(os.Stderr, a.v.GetString("log-level"), "text"))
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.String("config", "", "service YAML config; corpus flags override it")
	pf.String("source", "", "corpus source: json, sqlite or postgres")
	pf.String("path", "", "corpus JSON file or SQLite database")
	pf.String("table", "", "corpus table for sql sources")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")

	a.v.SetEnvPrefix("PAPERCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newSearchCmd(a),
		newAssignIDsCmd(a),
		newImportCmd(a),
	)
	return root
}

// loadConfig reads the optional service config and applies corpus flags.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if s := a.v.GetString("source"); s != "" {
		cfg.Corpus.Source = s
	}
	if p := a.v.GetString("path"); p != "" {
		cfg.Corpus.Path = p
	}
	if t := a.v.GetString("table"); t != "" {
		cfg.Corpus.Table = t
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
