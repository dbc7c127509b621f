// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives a batch run: it prepares the output directory,
// scans the input directory once, converts every image candidate, then
// filters every signal candidate.
//
// By default the first failure aborts the rest of the batch and is returned
// with its error kind intact. With KeepGoing set, failures are reported per
// file and the batch continues.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pdiddy/media-batch/internal/imaging"
	"github.com/pdiddy/media-batch/internal/logging"
	"github.com/pdiddy/media-batch/internal/scan"
	"github.com/pdiddy/media-batch/internal/signal"
	"github.com/pdiddy/media-batch/pkg/types"
)

// CompletionMessage is printed after every candidate was processed.
const CompletionMessage = "All files processed successfully."

// Recorder observes a run. *ledger.Store implements it.
type Recorder interface {
	BeginRun(ctx context.Context, inputDir, outputDir string) (types.RunRecord, error)
	RecordFile(ctx context.Context, runID string, r types.FileResult) error
	FinishRun(ctx context.Context, run types.RunRecord) error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	RunID   string
	Images  int
	Signals int
	Failed  int
}

// Total returns the number of files attempted.
func (r BatchResult) Total() int {
	return r.Images + r.Signals + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Run processes cfg.InputDir into cfg.OutputDir, printing one line per saved
// file to w. log receives structured progress; rec, when non-nil, records the
// run. Ledger failures are logged and never fail the batch.
func Run(ctx context.Context, cfg types.PipelineConfig, w io.Writer, log *slog.Logger, rec Recorder) (BatchResult, error) {
	if log == nil {
		log = logging.Discard()
	}
	r := &runner{
		cfg:  cfg,
		w:    w,
		log:  log,
		rec:  rec,
		opts: signal.OptionsFrom(cfg.Signal),
	}
	return r.execute(ctx)
}

type runner struct {
	cfg  types.PipelineConfig
	w    io.Writer
	log  *slog.Logger
	rec  Recorder
	opts signal.Options

	run    types.RunRecord
	result BatchResult
}

func (r *runner) execute(ctx context.Context) (BatchResult, error) {
	r.begin(ctx)
	ctx = logging.WithRunID(ctx, r.run.ID)
	start := time.Now()

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		err = fmt.Errorf("creating output directory %s: %w: %w", r.cfg.OutputDir, types.ErrIO, err)
		return r.abort(ctx, err)
	}

	cands, err := scan.Scan(r.cfg.InputDir, r.cfg.Extensions)
	if err != nil {
		return r.abort(ctx, err)
	}
	r.log.InfoContext(ctx, "scanned input directory",
		"component", "pipeline",
		"input_dir", r.cfg.InputDir,
		"images", len(cands.Images),
		"signals", len(cands.Signals))

	for path := range cands.ImageSeq() {
		if err := r.step(ctx, path, r.processImage); err != nil {
			return r.abort(ctx, err)
		}
	}
	for path := range cands.SignalSeq() {
		if err := r.step(ctx, path, r.processSignal); err != nil {
			return r.abort(ctx, err)
		}
	}

	r.log.InfoContext(ctx, "batch finished",
		"component", "pipeline",
		"images", r.result.Images,
		"signals", r.result.Signals,
		"failed", r.result.Failed,
		"duration", time.Since(start))

	if r.cfg.KeepGoing {
		fmt.Fprintf(r.w, "\nBatch summary: %d images, %d signals, %d failed (total: %d)\n",
			r.result.Images, r.result.Signals, r.result.Failed, r.result.Total())
	}
	if r.result.HasFailures() {
		r.finish(ctx, types.RunFailed)
		return r.result, fmt.Errorf("%d of %d files failed", r.result.Failed, r.result.Total())
	}

	fmt.Fprintln(r.w, CompletionMessage)
	r.finish(ctx, types.RunSucceeded)
	return r.result, nil
}

type processFunc func(path string) (types.FileResult, error)

// step processes one candidate. It returns an error only when the batch
// must stop.
func (r *runner) step(ctx context.Context, path string, process processFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch interrupted before %s: %w", path, err)
	}

	began := time.Now()
	res, err := process(path)
	res.SourcePath = path
	res.Duration = time.Since(began)

	if err != nil {
		res.Status = types.StatusFailed
		res.Error = err.Error()
		res.ErrorKind = types.Kind(err)
		r.result.Failed++
		r.record(ctx, res)
		r.log.ErrorContext(ctx, "file failed",
			"component", "pipeline",
			"kind", res.Kind,
			"path", path,
			"error_kind", res.ErrorKind,
			"error", err)
		if !r.cfg.KeepGoing {
			return err
		}
		fmt.Fprintf(r.w, "failed: %s (%v)\n", path, err)
		return nil
	}

	res.Status = types.StatusProcessed
	if res.SHA256, res.Bytes, err = digest(res.OutputPath); err != nil {
		r.log.WarnContext(ctx, "hashing output", "path", res.OutputPath, "error", err)
	}
	switch res.Kind {
	case types.KindImage:
		r.result.Images++
		fmt.Fprintf(r.w, "Saved processed image to: %s\n", res.OutputPath)
	case types.KindSignal:
		r.result.Signals++
		fmt.Fprintf(r.w, "Saved processed signal to: %s\n", res.OutputPath)
	}
	r.record(ctx, res)
	r.log.DebugContext(ctx, "file processed",
		"component", "pipeline",
		"kind", res.Kind,
		"path", path,
		"output", res.OutputPath,
		"duration", res.Duration)
	return nil
}

func (r *runner) processImage(path string) (types.FileResult, error) {
	res := types.FileResult{Kind: types.KindImage}
	out, err := imaging.Grayscale(path, r.cfg.OutputDir)
	if err != nil {
		return res, err
	}
	res.OutputPath = out.OutputPath
	res.Width = out.Width
	res.Height = out.Height
	return res, nil
}

func (r *runner) processSignal(path string) (types.FileResult, error) {
	res := types.FileResult{Kind: types.KindSignal}
	out, err := signal.Filter(path, r.cfg.OutputDir, r.opts)
	if err != nil {
		return res, err
	}
	stats := out.Stats
	res.OutputPath = out.OutputPath
	res.Signal = &stats
	return res, nil
}

func (r *runner) abort(ctx context.Context, err error) (BatchResult, error) {
	status := types.RunAborted
	if r.cfg.KeepGoing && !errors.Is(err, context.Canceled) {
		status = types.RunFailed
	}
	r.finish(ctx, status)
	return r.result, err
}

func (r *runner) begin(ctx context.Context) {
	if r.rec == nil {
		return
	}
	run, err := r.rec.BeginRun(ctx, r.cfg.InputDir, r.cfg.OutputDir)
	if err != nil {
		r.log.WarnContext(ctx, "ledger unavailable, run not recorded", "error", err)
		r.rec = nil
		return
	}
	r.run = run
	r.result.RunID = run.ID
}

func (r *runner) record(ctx context.Context, res types.FileResult) {
	if r.rec == nil {
		return
	}
	if err := r.rec.RecordFile(ctx, r.run.ID, res); err != nil {
		r.log.WarnContext(ctx, "recording file", "path", res.SourcePath, "error", err)
	}
}

func (r *runner) finish(ctx context.Context, status types.RunStatus) {
	if r.rec == nil {
		return
	}
	r.run.Status = status
	r.run.FinishedAt = time.Now().UTC()
	r.run.Images = r.result.Images
	r.run.Signals = r.result.Signals
	r.run.Failed = r.result.Failed

	// The run context may already be cancelled; the final status still lands.
	if err := r.rec.FinishRun(context.WithoutCancel(ctx), r.run); err != nil {
		r.log.WarnContext(ctx, "finishing run", "run", r.run.ID, "error", err)
	}
}

// digest returns the hex SHA-256 and size of the file at path.
func digest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
