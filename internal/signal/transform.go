// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signal

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/media-batch/pkg/types"
)

// Options selects the column to smooth, the column to write, and the window.
type Options struct {
	Column       string
	OutputColumn string
	Window       int
}

// DefaultOptions returns the "signal" -> "filtered_signal" window-5 setup.
func DefaultOptions() Options {
	return Options{
		Column:       types.DefaultSignalColumn,
		OutputColumn: types.DefaultFilteredColumn,
		Window:       types.DefaultWindow,
	}
}

// OptionsFrom converts the pipeline's signal settings.
func OptionsFrom(cfg types.SignalConfig) Options {
	return Options{
		Column:       cfg.Column,
		OutputColumn: cfg.OutputColumn,
		Window:       cfg.Window,
	}
}

// Result describes one filtered table.
type Result struct {
	OutputPath string
	Stats      types.SignalStats
}

// Filter reads the table at srcPath, smooths opts.Column with a moving
// average of opts.Window samples, stores the result as opts.OutputColumn,
// and writes the whole table to <outputDir>/<basename(srcPath)>.
//
// The source is read completely and closed before the output is created, so
// outputDir may equal the source directory.
func Filter(srcPath, outputDir string, opts Options) (Result, error) {
	t, err := readFile(srcPath)
	if err != nil {
		return Result{}, err
	}

	raw, err := t.Float64Column(opts.Column)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", srcPath, err)
	}

	smoothed, err := MovingAverage(raw, opts.Window)
	if err != nil {
		return Result{}, fmt.Errorf("filtering %s: %w", srcPath, err)
	}

	if err := t.SetColumn(opts.OutputColumn, FormatFloats(smoothed)); err != nil {
		return Result{}, fmt.Errorf("filtering %s: %w", srcPath, err)
	}

	outPath := filepath.Join(outputDir, filepath.Base(srcPath))
	if err := writeFile(outPath, t); err != nil {
		return Result{}, err
	}

	return Result{
		OutputPath: outPath,
		Stats: types.SignalStats{
			Rows:       t.Len(),
			Window:     opts.Window,
			InputMean:  mean(raw),
			OutputMean: mean(smoothed),
		},
	}, nil
}

func readFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w: %w", path, types.ErrParse, err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("parsing table %s: %w", path, err)
	}
	return t, nil
}

func writeFile(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table %s: %w: %w", path, types.ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing table %s: %w: %w", path, types.ErrIO, cerr)
		}
	}()

	if err := WriteTable(f, t); err != nil {
		return fmt.Errorf("writing table %s: %w: %w", path, types.ErrIO, err)
	}
	return nil
}

// mean averages the finite samples of x, or returns 0 when there are none.
func mean(x []float64) float64 {
	finite := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0
	}
	return stat.Mean(finite, nil)
}
