// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/media-batch/internal/config"
	"github.com/pdiddy/media-batch/internal/ledger"
	"github.com/pdiddy/media-batch/internal/pipeline"
	"github.com/pdiddy/media-batch/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every image and signal file in the input directory",
	Long: `Run creates the output directory, scans the input directory once,
converts every image to grayscale, then appends a moving-average column to
every signal table. Files are processed in name order.

By default the first failure stops the batch. With --keep-going each failure
is reported and the remaining files are still processed.

Each run is recorded in a SQLite ledger (see the history command) unless
--no-ledger is given.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"input":         config.KeyInputDir,
			"output":        config.KeyOutputDir,
			"window":        config.KeyWindow,
			"column":        config.KeySignalColumn,
			"output-column": config.KeyOutputColumn,
			"keep-going":    config.KeyKeepGoing,
			"ledger":        config.KeyLedgerPath,
		})
	},
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if noLedger, _ := cmd.Flags().GetBool("no-ledger"); noLedger {
		cfg.Ledger.Enabled = false
	}

	var rec pipeline.Recorder
	if cfg.Ledger.Enabled {
		path := config.LedgerPath(cfg)
		store, err := ledger.Open(path)
		if err != nil {
			log.Warn("ledger unavailable, run not recorded", "path", path, "error", err)
		} else {
			defer store.Close()
			rec = store
		}
	}

	res, err := pipeline.Run(cmd.Context(), cfg, cmd.OutOrStdout(), log, rec)
	if res.RunID != "" {
		log.Info("run recorded", "run_id", res.RunID, "ledger", config.LedgerPath(cfg))
	}
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	return nil
}

func init() {
	d := types.DefaultPipelineConfig()
	runCmd.Flags().String("input", d.InputDir, "directory scanned for image and signal files")
	runCmd.Flags().String("output", d.OutputDir, "directory receiving processed files")
	runCmd.Flags().Int("window", d.Signal.Window, "moving-average window in samples")
	runCmd.Flags().String("column", d.Signal.Column, "signal column to smooth")
	runCmd.Flags().String("output-column", d.Signal.OutputColumn, "name of the appended smoothed column")
	runCmd.Flags().Bool("keep-going", false, "report per-file failures and continue the batch")
	runCmd.Flags().String("ledger", "", "ledger database path (default: <output>/.media-batch/ledger.db)")
	runCmd.Flags().Bool("no-ledger", false, "do not record the run")

	rootCmd.AddCommand(runCmd)
}
