package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wysaid/cmakepick/internal/metrics"
	"github.com/wysaid/cmakepick/internal/pipeline"
	"github.com/wysaid/cmakepick/internal/storage"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan and score the checkout without selecting fixtures",
	Long: `Scan the sparse checkout, score every CMake file, and print the
complexity distribution. The checkout is fetched first if missing.
The analyzed metrics are recorded in the local run store.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("top", 10, "number of most complex files to list")
	analyzeCmd.Flags().Bool("no-store", false, "do not record this run in the local run store")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetInt("top")
	noStore, _ := cmd.Flags().GetBool("no-store")
	ctx := context.Background()
	started := time.Now()

	var store *storage.Store
	if !noStore {
		var err error
		store, err = storage.NewStore(cfg.Storage.LocalPath, logger)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
	}

	p := pipeline.New(cfg, logger, store)
	if err := p.Fetch(ctx, false); err != nil {
		return fmt.Errorf("clone failed: %w", err)
	}

	fmt.Printf("🔍 Scanning %s...\n", cfg.ScanRoot())
	analyzed, err := p.Analyze(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Analyzed %d files\n\n", len(analyzed))
	printDistribution(analyzed)

	fmt.Printf("\nMost complex files:\n")
	for _, m := range topFiles(analyzed, top) {
		fmt.Printf("  %-60s (lines: %d, complexity: %d)\n", truncate(m.RelPath, 60), m.Lines, m.Complexity)
	}

	runID, err := p.RecordAnalysis(ctx, started, analyzed)
	if err != nil {
		// The metrics were already printed; recording is bookkeeping.
		logger.WithError(err).Warn("failed to record run")
	} else if runID != "" {
		fmt.Printf("\n📝 Recorded run %s\n", runID)
	}
	return nil
}

// topFiles returns the first n entries of the complexity-sorted set,
// clamping n into the valid range.
func topFiles(analyzed []*metrics.FileMetrics, n int) []*metrics.FileMetrics {
	if n < 0 {
		n = 0
	}
	if n > len(analyzed) {
		n = len(analyzed)
	}
	return analyzed[:n]
}

func printDistribution(analyzed []*metrics.FileMetrics) {
	counts := make(map[string]int)
	for _, m := range analyzed {
		matched := false
		for _, b := range cfg.Selection.Buckets {
			if b.Contains(m) {
				counts[b.Name]++
				matched = true
				break
			}
		}
		if !matched {
			counts["unbucketed"]++
		}
	}

	fmt.Printf("Distribution:\n")
	for _, b := range cfg.Selection.Buckets {
		fmt.Printf("  %-12s %d candidates (target %d)\n", b.Name, counts[b.Name], b.Target)
	}
	if n := counts["unbucketed"]; n > 0 {
		fmt.Printf("  %-12s %d files outside every tier\n", "other", n)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
