package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/agenthands/absa/internal/core/model"
)

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	var err error
	s.ctx = context.Background()
	s.store, err = Open(filepath.Join(s.T().TempDir(), "nested", "absa.db"))
	s.Require().NoError(err)
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func rows() []model.DatasetRow {
	return []model.DatasetRow{
		{ID: "1", Sentence: "the battery life is great", SentenceRaw: "The battery life is great", Aspect: "battery life",
			Polarity: model.Positive, Window: "the <ASP> battery life </ASP> is great", InputFull: "the battery life is great [SEP] battery life", Aligned: true},
		{ID: "1", Sentence: "the battery life is great", SentenceRaw: "The battery life is great", Aspect: "great",
			Polarity: model.Positive, Window: "the battery life is great", InputFull: "the battery life is great [SEP] great"},
		{ID: "2", Sentence: "the screen is dim", SentenceRaw: "The screen is dim", Aspect: "screen",
			Polarity: model.Negative, Window: "the <ASP> screen </ASP> is dim", InputFull: "the screen is dim [SEP] screen", Aligned: true},
	}
}

func (s *StoreSuite) TestDatasetRoundTrip() {
	s.Require().NoError(s.store.SaveDataset(s.ctx, "g1", rows()))

	got, err := s.store.LoadDataset(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(rows(), got)

	counts, err := s.store.PolarityCounts(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(map[model.Polarity]int{model.Positive: 2, model.Negative: 1}, counts)
}

func (s *StoreSuite) TestSaveDatasetReplacesGroup() {
	s.Require().NoError(s.store.SaveDataset(s.ctx, "g1", rows()))
	s.Require().NoError(s.store.SaveDataset(s.ctx, "g2", rows()[:1]))
	s.Require().NoError(s.store.SaveDataset(s.ctx, "g1", rows()[2:]))

	g1, err := s.store.LoadDataset(s.ctx, "g1")
	s.Require().NoError(err)
	s.Len(g1, 1)
	s.Equal("screen", g1[0].Aspect)

	g2, err := s.store.LoadDataset(s.ctx, "g2")
	s.Require().NoError(err)
	s.Len(g2, 1)

	none, err := s.store.LoadDataset(s.ctx, "missing")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestReportRoundTrip() {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := model.Report{
		RunID:         "run-1",
		CreatedAt:     created,
		Precision:     0.5,
		Recall:        0.5,
		F1:            0.5,
		TruePositive:  1,
		FalsePositive: 1,
		FalseNegative: 1,
		Scored:        2,
		GoldSentences: 2,
		PredSentences: 2,
		Mismatches: []model.Mismatch{{
			Index:    1,
			Sentence: "So many problems with the computer.",
			Gold:     []model.AspectPair{},
			Pred:     []model.AspectPair{{Term: "computer", Polarity: "negative"}},
			Missing:  []model.AspectPair{},
			Extra:    []model.AspectPair{{Term: "computer", Polarity: "negative"}},
		}},
		TotalMismatches: 1,
	}
	s.Require().NoError(s.store.SaveReport(s.ctx, report))

	got, err := s.store.LoadReport(s.ctx, "run-1")
	s.Require().NoError(err)
	s.Equal(report, got)

	later := report
	later.RunID = "run-2"
	later.CreatedAt = created.Add(time.Hour)
	later.F1 = 0.75
	s.Require().NoError(s.store.SaveReport(s.ctx, later))

	runs, err := s.store.Runs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]RunSummary{
		{RunID: "run-2", CreatedAt: later.CreatedAt, F1: 0.75},
		{RunID: "run-1", CreatedAt: created, F1: 0.5},
	}, runs)
}

func (s *StoreSuite) TestLoadReportNotFound() {
	_, err := s.store.LoadReport(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestSaveReportRequiresRunID() {
	s.Error(s.store.SaveReport(s.ctx, model.Report{}))
}
