// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/media-batch/internal/config"
	"github.com/pdiddy/media-batch/internal/imaging"
	"github.com/pdiddy/media-batch/internal/scan"
	"github.com/pdiddy/media-batch/internal/signal"
	"github.com/pdiddy/media-batch/pkg/types"
)

// ensureDir creates the output directory and its parents.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w: %w", dir, types.ErrIO, err)
	}
	return nil
}

// --- scan subcommand ---

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the image and signal candidates of the input directory",
	Long: `Scan lists the files run would process, in processing order. Only the
immediate entries of the input directory are considered; extensions match
case-sensitively.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"input": config.KeyInputDir})
	},
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	cands, err := scan.Scan(cfg.InputDir, cfg.Extensions)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "images (%d):\n", len(cands.Images))
	for p := range cands.ImageSeq() {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintf(w, "signals (%d):\n", len(cands.Signals))
	for p := range cands.SignalSeq() {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

// --- image subcommand ---

var imageCmd = &cobra.Command{
	Use:   "image <files...>",
	Short: "Convert specific image files to grayscale",
	Long: `Image converts each named file to single-channel grayscale and writes it
to the output directory under its own name. The container format follows the
file extension (png, jpg/jpeg, bmp, tif/tiff).`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"output": config.KeyOutputDir})
	},
	RunE: runImage,
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := ensureDir(cfg.OutputDir); err != nil {
		return err
	}

	for _, src := range args {
		res, err := imaging.Grayscale(src, cfg.OutputDir)
		if err != nil {
			return err
		}
		log.Debug("image converted", "source", src, "format", res.Format, "width", res.Width, "height", res.Height)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved processed image to: %s\n", res.OutputPath)
	}
	return nil
}

// --- signal subcommand ---

var signalCmd = &cobra.Command{
	Use:   "signal <files...>",
	Short: "Append a moving-average column to specific CSV files",
	Long: `Signal reads each named CSV table, smooths the signal column with a
centered moving average over a zero-padded boundary, appends the result as the
last column, and writes the table to the output directory under its own name.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"output":        config.KeyOutputDir,
			"window":        config.KeyWindow,
			"column":        config.KeySignalColumn,
			"output-column": config.KeyOutputColumn,
		})
	},
	RunE: runSignal,
}

func runSignal(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := ensureDir(cfg.OutputDir); err != nil {
		return err
	}

	opts := signal.OptionsFrom(cfg.Signal)
	for _, src := range args {
		res, err := signal.Filter(src, cfg.OutputDir, opts)
		if err != nil {
			return err
		}
		log.Debug("signal filtered", "source", src, "rows", res.Stats.Rows, "output_mean", res.Stats.OutputMean)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved processed signal to: %s\n", res.OutputPath)
	}
	return nil
}

func init() {
	d := types.DefaultPipelineConfig()

	scanCmd.Flags().String("input", d.InputDir, "directory to scan")

	imageCmd.Flags().String("output", d.OutputDir, "directory receiving processed files")

	signalCmd.Flags().String("output", d.OutputDir, "directory receiving processed files")
	signalCmd.Flags().Int("window", d.Signal.Window, "moving-average window in samples")
	signalCmd.Flags().String("column", d.Signal.Column, "signal column to smooth")
	signalCmd.Flags().String("output-column", d.Signal.OutputColumn, "name of the appended smoothed column")

	rootCmd.AddCommand(scanCmd, imageCmd, signalCmd)
}
