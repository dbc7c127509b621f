// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared configuration, result records, and error kinds
// for the media-batch pipeline.
package types

import "time"

// FileKind identifies which transform handled a file.
type FileKind string

const (
	KindImage  FileKind = "image"
	KindSignal FileKind = "signal"
)

// FileStatus is the outcome of processing one file.
type FileStatus string

const (
	StatusProcessed FileStatus = "processed"
	StatusFailed    FileStatus = "failed"
)

// RunStatus is the overall outcome of a batch run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
)

// SignalStats summarizes the smoothed column of one signal file.
type SignalStats struct {
	// Rows is the number of data rows (excluding the header).
	Rows int `json:"rows" yaml:"rows"`

	// Window is the moving-average window applied.
	Window int `json:"window" yaml:"window"`

	// InputMean and OutputMean average the finite samples of the raw and
	// filtered columns; missing cells are left out.
	InputMean  float64 `json:"input_mean" yaml:"input_mean"`
	OutputMean float64 `json:"output_mean" yaml:"output_mean"`
}

// FileResult records what happened to one input file.
type FileResult struct {
	Kind       FileKind   `json:"kind" yaml:"kind"`
	SourcePath string     `json:"source_path" yaml:"source_path"`
	OutputPath string     `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Status     FileStatus `json:"status" yaml:"status"`

	// Error is the failure message; ErrorKind is the matching Kind() name.
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// SHA256 is the hex digest of the written output. Two runs over the same
	// inputs produce the same digest.
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Bytes  int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`

	// Width and Height are set for images.
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`

	// Signal is set for signal files.
	Signal *SignalStats `json:"signal,omitempty" yaml:"signal,omitempty"`
}

// RunRecord describes one batch run as stored in the ledger.
type RunRecord struct {
	// ID is a UUID assigned when the run begins.
	ID string `json:"id" yaml:"id"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`

	InputDir  string `json:"input_dir" yaml:"input_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	Status RunStatus `json:"status" yaml:"status"`

	Images  int `json:"images" yaml:"images"`
	Signals int `json:"signals" yaml:"signals"`
	Failed  int `json:"failed" yaml:"failed"`

	Files []FileResult `json:"files,omitempty" yaml:"files,omitempty"`
}
