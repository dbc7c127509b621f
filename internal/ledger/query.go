// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/media-batch/pkg/types"
)

const defaultRunLimit = 20

// Runs returns the most recent runs, newest first, without their files.
// A limit of zero or less uses 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input_dir, output_dir, status, images, signals, failed
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run returns the run whose ID starts with id, including its files in the
// order they were recorded. No match returns ErrRunNotFound; a prefix
// matching several runs is an error.
func (s *Store) Run(ctx context.Context, id string) (types.RunRecord, error) {
	if id == "" {
		return types.RunRecord{}, fmt.Errorf("%w: empty run id", ErrRunNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input_dir, output_dir, status, images, signals, failed
		FROM runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, id, id)
	if err != nil {
		return types.RunRecord{}, fmt.Errorf("querying run %s: %w", id, err)
	}

	var matches []types.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return types.RunRecord{}, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.RunRecord{}, fmt.Errorf("querying run %s: %w", id, err)
	}

	switch len(matches) {
	case 0:
		return types.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
	default:
		return types.RunRecord{}, fmt.Errorf("run prefix %q is ambiguous", id)
	}

	run := matches[0]
	if run.Files, err = s.Files(ctx, run.ID); err != nil {
		return types.RunRecord{}, err
	}
	return run, nil
}

// Files returns the file results of runID in recording order.
func (s *Store) Files(ctx context.Context, runID string) ([]types.FileResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, source_path, output_path, status, error, error_kind, sha256, bytes,
			duration_ns, width, height, row_count, window_size, input_mean, output_mean
		FROM files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files for run %s: %w", runID, err)
	}
	defer rows.Close()

	var files []types.FileResult
	for rows.Next() {
		var (
			r                types.FileResult
			kind, status     string
			outPath, errMsg  sql.NullString
			errKind, digest  sql.NullString
			size, dur, w, h  sql.NullInt64
			rowCount, window sql.NullInt64
			inMean, outMean  sql.NullFloat64
		)
		if err := rows.Scan(&kind, &r.SourcePath, &outPath, &status, &errMsg, &errKind, &digest,
			&size, &dur, &w, &h, &rowCount, &window, &inMean, &outMean); err != nil {
			return nil, fmt.Errorf("scanning file row: %w", err)
		}

		r.Kind = types.FileKind(kind)
		r.Status = types.FileStatus(status)
		r.OutputPath = outPath.String
		r.Error = errMsg.String
		r.ErrorKind = errKind.String
		r.SHA256 = digest.String
		r.Bytes = size.Int64
		r.Duration = time.Duration(dur.Int64)
		r.Width = int(w.Int64)
		r.Height = int(h.Int64)
		if rowCount.Valid {
			r.Signal = &types.SignalStats{
				Rows:       int(rowCount.Int64),
				Window:     int(window.Int64),
				InputMean:  inMean.Float64,
				OutputMean: outMean.Float64,
			}
		}
		files = append(files, r)
	}
	return files, rows.Err()
}

// DigestChange describes an output whose digest differs between two runs.
type DigestChange struct {
	OutputPath string `json:"output_path" yaml:"output_path"`
	Before     string `json:"before" yaml:"before"`
	After      string `json:"after" yaml:"after"`
}

// Compare returns the outputs of run b whose digest differs from the same
// output in run a, including outputs present in only one of the runs. An
// empty result means b reproduced a byte for byte.
func (s *Store) Compare(ctx context.Context, a, b string) ([]DigestChange, error) {
	runA, err := s.Run(ctx, a)
	if err != nil {
		return nil, err
	}
	runB, err := s.Run(ctx, b)
	if err != nil {
		return nil, err
	}

	before := digests(runA.Files)
	after := digests(runB.Files)

	var changes []DigestChange
	for _, f := range runA.Files {
		if f.OutputPath == "" {
			continue
		}
		if d := after[f.OutputPath]; d != before[f.OutputPath] {
			changes = append(changes, DigestChange{OutputPath: f.OutputPath, Before: before[f.OutputPath], After: d})
		}
	}
	for _, f := range runB.Files {
		if _, seen := before[f.OutputPath]; f.OutputPath != "" && !seen {
			changes = append(changes, DigestChange{OutputPath: f.OutputPath, After: after[f.OutputPath]})
		}
	}
	return changes, nil
}

func digests(files []types.FileResult) map[string]string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		if f.OutputPath != "" {
			m[f.OutputPath] = f.SHA256
		}
	}
	return m
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (types.RunRecord, error) {
	var (
		run             types.RunRecord
		started, status string
		finished        sql.NullString
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.InputDir, &run.OutputDir, &status,
		&run.Images, &run.Signals, &run.Failed); err != nil {
		return types.RunRecord{}, fmt.Errorf("scanning run row: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return types.RunRecord{}, fmt.Errorf("parsing started_at of run %s: %w", run.ID, err)
	}
	if finished.Valid && finished.String != "" {
		if run.FinishedAt, err = time.Parse(timeLayout, finished.String); err != nil {
			return types.RunRecord{}, fmt.Errorf("parsing finished_at of run %s: %w", run.ID, err)
		}
	}
	run.Status = types.RunStatus(status)
	return run, nil
}
