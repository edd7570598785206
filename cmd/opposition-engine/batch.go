// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/opposition-engine/internal/genai"
	"github.com/pdiddy/opposition-engine/internal/pipeline"
	"github.com/pdiddy/opposition-engine/internal/project"
	"github.com/pdiddy/opposition-engine/internal/secrets"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every project in a CSV export",
	Long: `Batch runs the pipeline over each row of the scraper's CSV export. A
failed project is reported and the batch continues; combine with --resume to
pick up an interrupted batch without repeating completed stages.

Per-project reports are persisted under the data directory; the command
prints one progress line per project and a final summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := secrets.Require(secrets.EnvGeminiKey, secrets.EnvBrightdataKey); err != nil {
			return err
		}

		csvPath, _ := cmd.Flags().GetString("csv")
		records, err := project.LoadCSV(csvPath, os.Stderr)
		if err != nil {
			return err
		}

		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(records) {
			records = records[:limit]
		}

		cfg := pipelineConfig()
		p := pipeline.New(cfg, genai.NewGemini(cfg.AI))
		p.Resume, _ = cmd.Flags().GetBool("resume")
		parallel, _ := cmd.Flags().GetInt("parallel")

		summary := p.RunBatch(cmd.Context(), records, parallel, os.Stdout)

		if summary.HasFailures() {
			return fmt.Errorf("%d of %d projects failed", summary.Failed, summary.Total())
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("csv", "renewable_energy_projects.csv", "CSV export listing the projects")
	batchCmd.Flags().Int("limit", 0, "process only the first N projects (0 = all)")
	batchCmd.Flags().Int("parallel", 1, "number of projects processed concurrently")
	batchCmd.Flags().Bool("resume", false, "reuse persisted stage outputs where they exist")

	rootCmd.AddCommand(batchCmd)
}
