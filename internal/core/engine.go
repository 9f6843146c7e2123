package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/absa/internal/config"
	"github.com/agenthands/absa/internal/core/dataset"
	"github.com/agenthands/absa/internal/core/extraction"
	"github.com/agenthands/absa/internal/core/model"
	"github.com/agenthands/absa/internal/core/scoring"
	"github.com/agenthands/absa/internal/core/summary"
	"github.com/agenthands/absa/internal/driver"
)

var ErrNoDriver = errors.New("no graph driver configured")

type Engine struct {
	Driver     driver.GraphDriver
	Extractor  *extraction.Extractor
	Assembler  *dataset.Assembler
	Scorer     *scoring.Scorer
	Summarizer *summary.Summarizer
	Logger     *zap.Logger

	BulkExport    int
	UUIDGenerator func() string
}

// NewEngine wires the window, dataset and scoring components from cfg.
// d may be nil when nothing is exported.
func NewEngine(cfg *config.Config, d driver.GraphDriver, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	align, err := scoring.ParseAlignment(cfg.Evaluation.Align)
	if err != nil {
		return nil, err
	}

	ex := &extraction.Extractor{
		WindowSize:  cfg.Window.Size,
		OpenMarker:  cfg.Window.OpenMarker,
		CloseMarker: cfg.Window.CloseMarker,
	}

	drop := make([]model.Polarity, len(cfg.Dataset.DropPolarities))
	for i, p := range cfg.Dataset.DropPolarities {
		drop[i] = model.Polarity(p)
	}
	asm := dataset.NewAssembler(ex, drop...)
	asm.Logger = logger.Named("dataset")

	return &Engine{
		Driver:        d,
		Extractor:     ex,
		Assembler:     asm,
		Scorer:        scoring.NewScorer(align),
		Summarizer:    summary.NewSummarizer(cfg.Evaluation.ShowMax),
		Logger:        logger,
		BulkExport:    max(cfg.Concurrency.BulkExport, 1),
		UUIDGenerator: uuid.NewString,
	}, nil
}

func (e *Engine) Window(text string, from, to int) (model.Window, error) {
	return e.Extractor.ExtractWindow(text, from, to)
}

func (e *Engine) BuildDataset(records []model.SentenceRecord) ([]model.DatasetRow, model.AssembleStats) {
	rows, stats := e.Assembler.Build(records)
	e.Logger.Info("dataset assembled",
		zap.Int("sentences", stats.Sentences),
		zap.Int("aspects", stats.Aspects),
		zap.Int("rows", stats.Rows),
		zap.Int("fallback", stats.Fallback),
		zap.Int("malformed", stats.Malformed),
		zap.Int("dropped", stats.Dropped))
	return rows, stats
}

// Evaluate scores preds against gold and summarizes the result under a new run id.
func (e *Engine) Evaluate(gold []model.GoldSentence, preds []model.PredictionRecord) model.Report {
	res := e.Scorer.Evaluate(gold, preds)
	report := e.Summarizer.Summarize(res)
	report.RunID = e.UUIDGenerator()

	if report.Truncated {
		e.Logger.Warn("not every sentence was scored",
			zap.String("run_id", report.RunID),
			zap.Int("scored", report.Scored),
			zap.Int("gold_sentences", report.GoldSentences),
			zap.Int("pred_sentences", report.PredSentences),
			zap.Int("unmatched_gold", report.UnmatchedGold),
			zap.Int("unmatched_pred", report.UnmatchedPred))
	}
	e.Logger.Info("evaluation finished",
		zap.String("run_id", report.RunID),
		zap.Float64("precision", report.Precision),
		zap.Float64("recall", report.Recall),
		zap.Float64("f1", report.F1),
		zap.Int("mismatches", report.TotalMismatches))
	return report
}

func (e *Engine) BuildIndices(ctx context.Context) error {
	if e.Driver == nil {
		return ErrNoDriver
	}
	return e.Driver.BuildIndices(ctx)
}

// ExportDataset writes rows as Sentence and AspectWindow nodes under groupID,
// one sentence per run of consecutive rows with the same id and raw text.
// Sentences are written concurrently, up to BulkExport at a time.
func (e *Engine) ExportDataset(ctx context.Context, groupID string, rows []model.DatasetRow) (int, error) {
	if e.Driver == nil {
		return 0, ErrNoDriver
	}
	if groupID == "" {
		groupID = e.UUIDGenerator()
	}

	groups := groupBySentence(rows)
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.BulkExport)
	for _, grp := range groups {
		grp := grp
		sentenceUUID := e.UUIDGenerator()
		aspectUUIDs := make([]string, len(grp))
		for i := range grp {
			aspectUUIDs[i] = e.UUIDGenerator()
		}

		g.Go(func() error {
			return e.exportSentence(gctx, groupID, sentenceUUID, aspectUUIDs, grp, now)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	e.Logger.Info("dataset exported",
		zap.String("group_id", groupID),
		zap.Int("sentences", len(groups)),
		zap.Int("rows", len(rows)))
	return len(rows), nil
}

func (e *Engine) exportSentence(ctx context.Context, groupID, sentenceUUID string, aspectUUIDs []string, rows []model.DatasetRow, now time.Time) error {
	first := rows[0]
	_, err := e.Driver.ExecuteQuery(ctx, driver.SaveSentenceQuery, map[string]interface{}{
		"uuid":        sentenceUUID,
		"group_id":    groupID,
		"sentence_id": first.ID,
		"text":        first.Sentence,
		"text_raw":    first.SentenceRaw,
		"created_at":  now,
	})
	if err != nil {
		return fmt.Errorf("failed to save sentence %q: %w", first.ID, err)
	}

	for i, row := range rows {
		_, err := e.Driver.ExecuteQuery(ctx, driver.SaveAspectWindowQuery, map[string]interface{}{
			"uuid":          aspectUUIDs[i],
			"sentence_uuid": sentenceUUID,
			"group_id":      groupID,
			"aspect":        row.Aspect,
			"polarity":      string(row.Polarity),
			"window":        row.Window,
			"input_full":    row.InputFull,
			"aligned":       row.Aligned,
			"created_at":    now,
		})
		if err != nil {
			return fmt.Errorf("failed to save aspect %q of sentence %q: %w", row.Aspect, row.ID, err)
		}
	}
	return nil
}

// ExportReport writes an EvaluationRun node and one Mismatch node per
// mismatch kept in the report.
func (e *Engine) ExportReport(ctx context.Context, report model.Report) error {
	if e.Driver == nil {
		return ErrNoDriver
	}
	if report.RunID == "" {
		report.RunID = e.UUIDGenerator()
	}

	_, err := e.Driver.ExecuteQuery(ctx, driver.SaveEvaluationRunQuery, map[string]interface{}{
		"uuid":             report.RunID,
		"created_at":       report.CreatedAt,
		"precision":        report.Precision,
		"recall":           report.Recall,
		"f1":               report.F1,
		"tp":               report.TruePositive,
		"fp":               report.FalsePositive,
		"fn":               report.FalseNegative,
		"scored":           report.Scored,
		"gold_sentences":   report.GoldSentences,
		"pred_sentences":   report.PredSentences,
		"truncated":        report.Truncated,
		"total_mismatches": report.TotalMismatches,
	})
	if err != nil {
		return fmt.Errorf("failed to save evaluation run: %w", err)
	}

	for _, m := range report.Mismatches {
		_, err := e.Driver.ExecuteQuery(ctx, driver.SaveMismatchQuery, map[string]interface{}{
			"uuid":        e.UUIDGenerator(),
			"run_uuid":    report.RunID,
			"index":       m.Index,
			"sentence_id": m.ID,
			"sentence":    m.Sentence,
			"gold":        pairStrings(m.Gold),
			"pred":        pairStrings(m.Pred),
			"missing":     pairStrings(m.Missing),
			"extra":       pairStrings(m.Extra),
		})
		if err != nil {
			return fmt.Errorf("failed to save mismatch #%d: %w", m.Index, err)
		}
	}
	return nil
}

// CountGroupAspects returns the number of AspectWindow nodes exported under groupID.
func (e *Engine) CountGroupAspects(ctx context.Context, groupID string) (int64, error) {
	if e.Driver == nil {
		return 0, ErrNoDriver
	}
	res, err := e.Driver.ExecuteQuery(ctx, driver.CountGroupAspectsQuery, map[string]interface{}{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	v, _ := res.Records[0].Get("aspects")
	n, _ := v.(int64)
	return n, nil
}

func groupBySentence(rows []model.DatasetRow) [][]model.DatasetRow {
	var groups [][]model.DatasetRow
	for i, row := range rows {
		if i > 0 && row.ID == rows[i-1].ID && row.SentenceRaw == rows[i-1].SentenceRaw {
			groups[len(groups)-1] = append(groups[len(groups)-1], row)
			continue
		}
		groups = append(groups, []model.DatasetRow{row})
	}
	return groups
}

func pairStrings(pairs []model.AspectPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Term + "/" + p.Polarity
	}
	return out
}
