package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wysaid/cmakepick/internal/pipeline"
	"github.com/wysaid/cmakepick/internal/storage"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run the full fixture selection",
	Long: `Clone (if needed), analyze, and select a diverse fixture set, then
copy the chosen files into the fixture directory together with a
generated README.md and manifest.yaml.

Examples:
  cmakepick select
  cmakepick select --output test/datasets/cmake-official --count 20
  cmakepick select --force        # re-clone before selecting`,
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringP("output", "o", "", "fixture output directory (default from config)")
	selectCmd.Flags().IntP("count", "n", 0, "total number of fixtures to select (default from config)")
	selectCmd.Flags().Bool("force", false, "discard any existing clone and fetch again")
	selectCmd.Flags().Bool("no-store", false, "do not record this run in the local run store")
}

func runSelect(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	count, _ := cmd.Flags().GetInt("count")
	force, _ := cmd.Flags().GetBool("force")
	noStore, _ := cmd.Flags().GetBool("no-store")

	var store *storage.Store
	if !noStore {
		var err error
		store, err = storage.NewStore(cfg.Storage.LocalPath, logger)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
	}

	fmt.Printf("🔄 Selecting CMake fixtures from %s\n", cfg.Source.RepoURL)

	p := pipeline.New(cfg, logger, store)
	result, err := p.Run(context.Background(), force, output, count)
	if err != nil {
		return err
	}

	fmt.Printf("\n📦 Selected %d of %d analyzed files:\n", len(result.Selected), len(result.Analyzed))
	for _, c := range result.Copies {
		fmt.Printf("  ✓ %-50s [%s] (lines: %d, complexity: %d)\n",
			truncate(c.DestName, 50), c.Bucket, c.Lines, c.Complexity)
	}

	fmt.Printf("\n✨ Done in %s. Fixtures saved to: %s\n", result.Duration.Round(time.Millisecond), result.DestDir)
	fmt.Printf("📄 README created: %s/README.md\n", result.DestDir)
	return nil
}
