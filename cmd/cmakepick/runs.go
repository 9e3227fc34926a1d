package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wysaid/cmakepick/internal/storage"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded selection runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 10, "maximum number of runs to show")
	runsCmd.Flags().String("show", "", "run ID: list the files selected in that run")
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	show, _ := cmd.Flags().GetString("show")
	ctx := context.Background()

	store, err := storage.NewStore(cfg.Storage.LocalPath, logger)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	if show != "" {
		files, err := store.SelectedFiles(ctx, show)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Printf("No selected files recorded for run %s\n", show)
			return nil
		}
		for _, f := range files {
			fmt.Printf("  %-60s (lines: %d, complexity: %d)\n", truncate(f.RelPath, 60), f.Lines, f.Complexity)
		}
		return nil
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Try: cmakepick select")
		return nil
	}

	fmt.Printf("%-38s %-20s %9s %9s\n", "RUN", "STARTED", "ANALYZED", "SELECTED")
	for _, r := range runs {
		fmt.Printf("%-38s %-20s %9d %9d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.AnalyzedCount, r.SelectedCount)
	}
	return nil
}
