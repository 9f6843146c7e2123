package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/absa/internal/core/extraction"
	"github.com/agenthands/absa/internal/core/model"
	"github.com/agenthands/absa/internal/core/summary"
	"github.com/agenthands/absa/internal/corpus"
)

func newWindowCmd(a *app) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "window TEXT FROM TO",
		Short: "Print the aspect window for a character span of TEXT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid FROM %q: %w", args[1], err)
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid TO %q: %w", args[2], err)
			}

			e, closeFn, err := a.engine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			ex := e.Extractor
			if cmd.Flags().Changed("size") {
				ex = ex.WithWindowSize(size)
			}
			w, err := ex.ExtractWindow(args[0], from, to)
			if err != nil {
				return err
			}
			if !w.Aligned() {
				a.logger.Warn("span start is not inside a token, printing the whole text",
					zap.Int("from", from), zap.Int("to", to))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), w.Text)
			return err
		},
	}
	cmd.Flags().IntVar(&size, "size", extraction.DefaultWindowSize, "tokens of context on each side of the aspect")
	return cmd
}

func newDatasetCmd(a *app) *cobra.Command {
	var (
		groupID    string
		save       bool
		sqlitePath string
		graph      bool
	)

	cmd := &cobra.Command{
		Use:   "dataset INPUT OUTPUT",
		Short: "Build the aspect-window training table from an annotated corpus",
		Long: `Reads a SemEval XML or JSONL corpus and writes one row per (sentence, aspect)
to OUTPUT as JSONL or CSV, chosen by extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			if groupID == "" {
				groupID = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			}

			records, err := corpus.LoadRecords(input)
			if err != nil {
				return err
			}

			e, closeFn, err := a.engine(cmd.Context(), graph)
			if err != nil {
				return err
			}
			defer closeFn()

			rows, stats := e.BuildDataset(records)
			if err := corpus.WriteDataset(output, rows); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			if save {
				st, err := a.openStore(sqlitePath)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveDataset(cmd.Context(), groupID, rows); err != nil {
					return err
				}
			}
			if graph {
				if _, err := e.ExportDataset(cmd.Context(), groupID, rows); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"wrote %d rows from %d sentences to %s (fallback %d, malformed %d, dropped %d)\n",
				stats.Rows, stats.Sentences, output, stats.Fallback, stats.Malformed, stats.Dropped)
			return err
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "group id for stored rows (default: input file name)")
	cmd.Flags().BoolVar(&save, "save", false, "store the rows in SQLite")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite file (default: store.sqlite_path)")
	cmd.Flags().BoolVar(&graph, "graph", false, "export the rows to Memgraph")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		showMax    int
		align      string
		asJSON     bool
		save       bool
		sqlitePath string
		graph      bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate GOLD PREDICTIONS",
		Short: "Score predicted (term, polarity) pairs against a gold corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				gold  []model.GoldSentence
				preds []model.PredictionRecord
			)
			var g errgroup.Group
			g.Go(func() error {
				var err error
				gold, err = corpus.LoadGold(args[0])
				return err
			})
			g.Go(func() error {
				var err error
				preds, err = corpus.LoadPredictions(args[1])
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if cmd.Flags().Changed("show-max") {
				a.cfg.Evaluation.ShowMax = showMax
			}
			if cmd.Flags().Changed("align") {
				a.cfg.Evaluation.Align = align
			}

			e, closeFn, err := a.engine(cmd.Context(), graph)
			if err != nil {
				return err
			}
			defer closeFn()

			report := e.Evaluate(gold, preds)

			if save {
				st, err := a.openStore(sqlitePath)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveReport(cmd.Context(), report); err != nil {
					return err
				}
			}
			if graph {
				if err := e.ExportReport(cmd.Context(), report); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return summary.Render(out, report)
		},
	}
	cmd.Flags().IntVar(&showMax, "show-max", summary.DefaultShowMax, "maximum number of mismatches to print")
	cmd.Flags().StringVar(&align, "align", "index", "pair predictions with gold sentences by index or id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the report in SQLite")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite file (default: store.sqlite_path)")
	cmd.Flags().BoolVar(&graph, "graph", false, "export the report to Memgraph")
	return cmd
}

func newSentencesCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sentences XML OUTPUT",
		Short: "Write the first sentences of a SemEval corpus, one per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sentences, err := corpus.LoadSentences(args[0], limit)
			if err != nil {
				return err
			}

			if args[1] == "-" {
				return corpus.WriteLines(cmd.OutOrStdout(), sentences)
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := corpus.WriteLines(f, sentences); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			a.logger.Info("sentences extracted", zap.Int("count", len(sentences)), zap.String("output", args[1]))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "extracted %d sentences to %s\n", len(sentences), args[1])
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "max", 100, "maximum number of sentences, 0 for all")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filter INPUT OUTPUT",
		Short: "Drop JSONL samples whose aspect terms lack valid character offsets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			stats, err := corpus.FilterSamples(in, out, a.logger)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d valid samples written to %s\n%d invalid samples skipped (%d not JSON)\n",
				stats.Valid, args[1], stats.Invalid, stats.InvalidJSON)
			return err
		},
	}
}
