//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/absa/internal/config"
	"github.com/agenthands/absa/internal/core"
	"github.com/agenthands/absa/internal/core/model"
	"github.com/agenthands/absa/internal/driver"
)

// setup connects to the Memgraph named by MEMGRAPH_URI and returns an engine
// writing to it under a fresh group id. Nodes of that group are deleted when
// the test ends.
func setup(t *testing.T, bulk int) (*core.Engine, *driver.MemgraphDriver, string) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg, err := config.Resolve("", os.Getenv)
	require.NoError(t, err)
	if cfg.Memgraph.URI == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	cfg.Concurrency.BulkExport = bulk

	logger := zap.NewNop()
	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
	require.NoError(t, err)

	e, err := core.NewEngine(cfg, d, logger)
	require.NoError(t, err)
	require.NoError(t, e.BuildIndices(ctx))

	groupID := fmt.Sprintf("it-%s", uuid.New().String())
	t.Cleanup(func() {
		_, _ = d.ExecuteQuery(context.Background(), `MATCH (n {group_id: $gid}) DETACH DELETE n`, map[string]interface{}{"gid": groupID})
		_ = d.Close(context.Background())
	})
	return e, d, groupID
}

func TestFullFlow(t *testing.T) {
	e, d, groupID := setup(t, 2)
	ctx := context.Background()

	records := []model.SentenceRecord{
		{
			ID:   "2339",
			Text: "I charge it at night and skip taking the cord with me because of the good battery life.",
			Aspects: []model.AspectSpan{
				{Term: "cord", Polarity: model.Neutral, From: 41, To: 45},
				{Term: "battery life", Polarity: model.Positive, From: 74, To: 86},
			},
		},
		{
			ID:      "1",
			Text:    "The screen is dim.",
			Aspects: []model.AspectSpan{{Term: "screen", Polarity: model.Negative, From: 4, To: 10}},
		},
	}

	rows, stats := e.BuildDataset(records)
	require.Equal(t, 3, stats.Rows)

	n, err := e.ExportDataset(ctx, groupID, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := e.CountGroupAspects(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	res, err := d.ExecuteQuery(ctx,
		`MATCH (a:AspectWindow {group_id: $gid, aspect: "cord"}) RETURN a.window AS window`,
		map[string]interface{}{"gid": groupID})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	window, _ := res.Records[0].Get("window")
	assert.Equal(t, "night and skip taking the <ASP> cord </ASP> with me because of the", window)

	report := e.Evaluate(
		[]model.GoldSentence{{Text: records[0].Text, Terms: []model.AspectTerm{{Term: "cord", Polarity: "neutral"}}}},
		[]model.PredictionRecord{{Terms: []model.AspectTerm{{Term: "cord", Polarity: "negative"}}}},
	)
	require.NoError(t, e.ExportReport(ctx, report))
	t.Cleanup(func() {
		_, _ = d.ExecuteQuery(context.Background(),
			`MATCH (r:EvaluationRun {uuid: $uuid}) OPTIONAL MATCH (r)-[:HAS_MISMATCH]->(m) DETACH DELETE r, m`,
			map[string]interface{}{"uuid": report.RunID})
	})

	res, err = d.ExecuteQuery(ctx,
		`MATCH (:EvaluationRun {uuid: $uuid})-[:HAS_MISMATCH]->(m:Mismatch) RETURN m.missing AS missing`,
		map[string]interface{}{"uuid": report.RunID})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	missing, _ := res.Records[0].Get("missing")
	assert.Equal(t, []interface{}{"cord/neutral"}, missing)
}
