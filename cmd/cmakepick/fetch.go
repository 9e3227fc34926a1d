package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wysaid/cmakepick/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Clone or refresh the sparse CMake checkout",
	Long: `Clone the upstream CMake repository into the work directory using a
shallow, blob-filtered sparse checkout restricted to the Tests/
subdirectory. An existing valid clone is reused unless --force is given.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("force", false, "discard any existing clone and fetch again")
}

func runFetch(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	fmt.Printf("🔄 Fetching %s (sparse: %s)\n", cfg.Source.RepoURL, cfg.Source.SparseDir)

	p := pipeline.New(cfg, logger, nil)
	if err := p.Fetch(context.Background(), force); err != nil {
		return err
	}

	fmt.Printf("✅ Checkout ready at %s\n", cfg.ScanRoot())
	return nil
}
