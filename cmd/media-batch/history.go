// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/media-batch/internal/config"
	"github.com/pdiddy/media-batch/internal/ledger"
	"github.com/pdiddy/media-batch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs from the ledger",
	Long: `History lists recent runs recorded in the ledger, newest first.

  --run <id>                 show the files of one run (an ID prefix is enough)
  --run <id> --compare <id>  list outputs whose digest differs between two runs
  --run <id> --export yaml   write the run manifest as YAML or JSON`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"output": config.KeyOutputDir,
			"ledger": config.KeyLedgerPath,
		})
	},
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	runID, _ := cmd.Flags().GetString("run")
	compare, _ := cmd.Flags().GetString("compare")
	format, _ := cmd.Flags().GetString("export")
	if runID == "" && (compare != "" || format != "") {
		return fmt.Errorf("--compare and --export need --run")
	}

	w := cmd.OutOrStdout()
	path := config.LedgerPath(cfg)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "No runs recorded (%s does not exist).\n", path)
		return nil
	}

	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	switch {
	case format != "":
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			run, err := store.Run(ctx, runID)
			if err != nil {
				return err
			}
			out = run.ID + "." + format
		}
		if err := store.ExportFile(ctx, runID, format, out); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote manifest to: %s\n", out)
		return nil

	case compare != "":
		changes, err := store.Compare(ctx, runID, compare)
		if err != nil {
			return err
		}
		return printChanges(w, changes)

	case runID != "":
		run, err := store.Run(ctx, runID)
		if err != nil {
			return err
		}
		return printRun(w, run)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	return printRuns(w, runs)
}

func printRuns(w io.Writer, runs []types.RunRecord) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-9s  %6s  %7s  %6s\n",
		"Run", "Started", "Status", "Images", "Signals", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-9s  %6d  %7d  %6d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.Images, r.Signals, r.Failed)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

func printRun(w io.Writer, run types.RunRecord) error {
	fmt.Fprintf(w, "Run:     %s\n", run.ID)
	fmt.Fprintf(w, "Status:  %s\n", run.Status)
	fmt.Fprintf(w, "Input:   %s\n", run.InputDir)
	fmt.Fprintf(w, "Output:  %s\n", run.OutputDir)
	fmt.Fprintf(w, "Started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Elapsed: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	for _, f := range run.Files {
		switch f.Status {
		case types.StatusFailed:
			fmt.Fprintf(w, "failed     %-6s  %s (%s)\n", f.Kind, f.SourcePath, f.Error)
		default:
			digest := f.SHA256
			if len(digest) > 12 {
				digest = digest[:12]
			}
			fmt.Fprintf(w, "processed  %-6s  %s -> %s  %s\n", f.Kind, f.SourcePath, f.OutputPath, digest)
		}
	}
	fmt.Fprintf(w, "\n%d images, %d signals, %d failed\n", run.Images, run.Signals, run.Failed)
	return nil
}

func printChanges(w io.Writer, changes []ledger.DigestChange) error {
	if len(changes) == 0 {
		fmt.Fprintln(w, "Outputs are identical.")
		return nil
	}
	for _, c := range changes {
		before, after := c.Before, c.After
		if before == "" {
			before = "(none)"
		}
		if after == "" {
			after = "(none)"
		}
		fmt.Fprintf(w, "changed: %s\n  before: %s\n  after:  %s\n", c.OutputPath, before, after)
	}
	fmt.Fprintf(w, "\n%d outputs differ\n", len(changes))
	return nil
}

func init() {
	d := types.DefaultPipelineConfig()
	historyCmd.Flags().String("output", d.OutputDir, "output directory whose ledger to read")
	historyCmd.Flags().String("ledger", "", "ledger database path (default: <output>/.media-batch/ledger.db)")
	historyCmd.Flags().Int("limit", 20, "number of runs to list")
	historyCmd.Flags().String("run", "", "run ID or ID prefix to show")
	historyCmd.Flags().String("compare", "", "second run ID to compare output digests against")
	historyCmd.Flags().String("export", "", "write the run manifest: yaml or json")
	historyCmd.Flags().String("out", "", "manifest path (default: <run id>.<format>)")

	rootCmd.AddCommand(historyCmd)
}
