// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of batch runs and the outcome of
// every file they touched, including a digest of each output so repeated
// runs can be compared.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/media-batch/pkg/types"
)

// ErrRunNotFound is returned when no run matches an ID or ID prefix.
var ErrRunNotFound = errors.New("run not found")

// Fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at path, creating its parent
// directory and schema when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			input_dir TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			status TEXT NOT NULL,
			images INTEGER NOT NULL DEFAULT 0,
			signals INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			source_path TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			error TEXT,
			error_kind TEXT,
			sha256 TEXT,
			bytes INTEGER,
			duration_ns INTEGER,
			width INTEGER,
			height INTEGER,
			row_count INTEGER,
			window_size INTEGER,
			input_mean REAL,
			output_mean REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_files_output_path ON files(output_path)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a running run with a fresh UUID and returns it.
func (s *Store) BeginRun(ctx context.Context, inputDir, outputDir string) (types.RunRecord, error) {
	run := types.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Status:    types.RunRunning,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_dir, output_dir, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(timeLayout), run.InputDir, run.OutputDir, string(run.Status),
	)
	if err != nil {
		return types.RunRecord{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// RecordFile stores the outcome of one file for runID.
func (s *Store) RecordFile(ctx context.Context, runID string, r types.FileResult) error {
	var rows, window sql.NullInt64
	var inMean, outMean sql.NullFloat64
	if r.Signal != nil {
		rows = sql.NullInt64{Int64: int64(r.Signal.Rows), Valid: true}
		window = sql.NullInt64{Int64: int64(r.Signal.Window), Valid: true}
		inMean = sql.NullFloat64{Float64: r.Signal.InputMean, Valid: true}
		outMean = sql.NullFloat64{Float64: r.Signal.OutputMean, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (run_id, kind, source_path, output_path, status, error, error_kind,
			sha256, bytes, duration_ns, width, height, row_count, window_size, input_mean, output_mean)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, string(r.Kind), r.SourcePath, r.OutputPath, string(r.Status), r.Error, r.ErrorKind,
		r.SHA256, r.Bytes, int64(r.Duration), r.Width, r.Height, rows, window, inMean, outMean,
	)
	if err != nil {
		return fmt.Errorf("inserting file %s: %w", r.SourcePath, err)
	}
	return nil
}

// FinishRun stores the final status, counts, and finish time of run.
func (s *Store) FinishRun(ctx context.Context, run types.RunRecord) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, images = ?, signals = ?, failed = ? WHERE id = ?`,
		finished.Format(timeLayout), string(run.Status), run.Images, run.Signals, run.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating run %s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}
