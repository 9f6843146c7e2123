package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/absa/internal/config"
	"github.com/agenthands/absa/internal/core"
	"github.com/agenthands/absa/internal/driver"
	"github.com/agenthands/absa/internal/logging"
	"github.com/agenthands/absa/internal/store"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "absa",
		Short: "Aspect-based sentiment analysis data preparation and evaluation",
		Long: `absa builds aspect-window training tables from annotated review sentences
and scores predicted (term, polarity) pairs against a gold corpus.

Corpora are SemEval XML or JSONL files; predictions are JSONL.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (TOML, or YAML by extension); defaults to $CONFIG_PATH")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newWindowCmd(a),
		newDatasetCmd(a),
		newEvaluateCmd(a),
		newSentencesCmd(a),
		newFilterCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Resolve(a.configPath, os.Getenv)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// engine builds an engine from the resolved config. When withGraph is set it
// connects to Memgraph and makes sure the indices exist; the returned func
// closes that connection.
func (a *app) engine(ctx context.Context, withGraph bool) (*core.Engine, func(), error) {
	var d driver.GraphDriver
	closeFn := func() {}

	if withGraph {
		if a.cfg.Memgraph.URI == "" {
			return nil, nil, errors.New("--graph needs memgraph.uri or MEMGRAPH_URI")
		}
		md, err := driver.NewMemgraphDriver(ctx, a.cfg.Memgraph.URI, a.cfg.Memgraph.User, a.cfg.Memgraph.Password, a.logger.Named("memgraph"))
		if err != nil {
			return nil, nil, err
		}
		d = md
		closeFn = func() {
			if err := md.Close(context.Background()); err != nil {
				a.logger.Warn("failed to close memgraph driver", zap.Error(err))
			}
		}
	}

	e, err := core.NewEngine(a.cfg, d, a.logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if withGraph {
		if err := e.BuildIndices(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return e, closeFn, nil
}

// openStore opens the SQLite store at path, falling back to store.sqlite_path.
func (a *app) openStore(path string) (*store.Store, error) {
	if path == "" {
		path = a.cfg.Store.SQLitePath
	}
	if path == "" {
		return nil, errors.New("--save needs --sqlite, store.sqlite_path or ABSA_SQLITE_PATH")
	}
	return store.Open(path)
}
