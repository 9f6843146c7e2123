package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenthands/absa/internal/core/model"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS dataset_rows (
	group_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	sentence_id TEXT,
	sentence TEXT NOT NULL,
	sentence_raw TEXT NOT NULL,
	aspect TEXT NOT NULL,
	polarity TEXT NOT NULL,
	aspect_window TEXT NOT NULL,
	input_full TEXT NOT NULL,
	aligned INTEGER NOT NULL,
	PRIMARY KEY (group_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_dataset_rows_polarity ON dataset_rows(group_id, polarity);

CREATE TABLE IF NOT EXISTS evaluation_runs (
	run_id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	precision REAL NOT NULL,
	recall REAL NOT NULL,
	f1 REAL NOT NULL,
	tp INTEGER NOT NULL,
	fp INTEGER NOT NULL,
	fn INTEGER NOT NULL,
	truncated INTEGER NOT NULL,
	total_mismatches INTEGER NOT NULL,
	report TEXT NOT NULL
);
`

// Store keeps assembled datasets and evaluation reports in a SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database at path, and its directory, if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

// SaveDataset replaces the rows stored under groupID with rows.
func (s *Store) SaveDataset(ctx context.Context, groupID string, rows []model.DatasetRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM dataset_rows WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("failed to clear group %q: %w", groupID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dataset_rows
			(group_id, seq, sentence_id, sentence, sentence_raw, aspect, polarity, aspect_window, input_full, aligned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		_, err = stmt.ExecContext(ctx, groupID, i, row.ID, row.Sentence, row.SentenceRaw,
			row.Aspect, string(row.Polarity), row.Window, row.InputFull, row.Aligned)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadDataset returns the rows of groupID in insertion order.
func (s *Store) LoadDataset(ctx context.Context, groupID string) ([]model.DatasetRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sentence_id, sentence, sentence_raw, aspect, polarity, aspect_window, input_full, aligned
		FROM dataset_rows WHERE group_id = ? ORDER BY seq`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DatasetRow
	for rows.Next() {
		var row model.DatasetRow
		var polarity string
		if err := rows.Scan(&row.ID, &row.Sentence, &row.SentenceRaw, &row.Aspect,
			&polarity, &row.Window, &row.InputFull, &row.Aligned); err != nil {
			return nil, err
		}
		row.Polarity = model.Polarity(polarity)
		out = append(out, row)
	}
	return out, rows.Err()
}

// PolarityCounts returns the number of rows per polarity under groupID.
func (s *Store) PolarityCounts(ctx context.Context, groupID string) (map[model.Polarity]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT polarity, COUNT(*) FROM dataset_rows WHERE group_id = ? GROUP BY polarity`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Polarity]int)
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		out[model.Polarity(p)] = n
	}
	return out, rows.Err()
}

// SaveReport stores report under its run id, replacing an earlier one.
func (s *Store) SaveReport(ctx context.Context, report model.Report) error {
	if report.RunID == "" {
		return errors.New("report has no run id")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO evaluation_runs
			(run_id, created_at, precision, recall, f1, tp, fp, fn, truncated, total_mismatches, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.CreatedAt.UTC().Format(time.RFC3339Nano),
		report.Precision, report.Recall, report.F1,
		report.TruePositive, report.FalsePositive, report.FalseNegative,
		report.Truncated, report.TotalMismatches, string(data))
	if err != nil {
		return fmt.Errorf("failed to save report %q: %w", report.RunID, err)
	}
	return nil
}

func (s *Store) LoadReport(ctx context.Context, runID string) (model.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM evaluation_runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Report{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	if err != nil {
		return model.Report{}, err
	}

	var report model.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return model.Report{}, fmt.Errorf("failed to decode report %q: %w", runID, err)
	}
	return report, nil
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	F1        float64   `json:"f1"`
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, f1 FROM evaluation_runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var created string
		if err := rows.Scan(&r.RunID, &created, &r.F1); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("bad created_at for run %q: %w", r.RunID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
