// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/opposition-engine/internal/artifact"
	"github.com/pdiddy/opposition-engine/internal/genai"
	"github.com/pdiddy/opposition-engine/internal/pipeline"
	"github.com/pdiddy/opposition-engine/internal/project"
	"github.com/pdiddy/opposition-engine/internal/secrets"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a single project for opposition evidence",
	Long: `Run executes the full pipeline for one project: query synthesis, bilingual
search, content extraction, and evidence analysis. The project comes either
from a YAML file (--project-file) or from the --id/--name/... flags.

Progress goes to stderr; the final report is printed to stdout as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := secrets.Require(secrets.EnvGeminiKey, secrets.EnvBrightdataKey); err != nil {
			return err
		}

		rec, err := runProjectRecord(cmd)
		if err != nil {
			return err
		}

		cfg := pipelineConfig()
		p := pipeline.New(cfg, genai.NewGemini(cfg.AI))
		p.Resume, _ = cmd.Flags().GetBool("resume")

		report := p.Run(cmd.Context(), rec, os.Stderr)

		out, err := artifact.MarshalIndent(report)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		os.Stdout.Write(out)

		if report.Failed() {
			return fmt.Errorf("project %s failed: %s", report.ProjectID, report.Error)
		}
		return nil
	},
}

// runProjectRecord builds the project record from --project-file or the
// individual field flags. The file wins when both are given.
func runProjectRecord(cmd *cobra.Command) (types.ProjectRecord, error) {
	if file, _ := cmd.Flags().GetString("project-file"); file != "" {
		return project.LoadYAML(file)
	}

	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		return types.ProjectRecord{}, fmt.Errorf("either --project-file or --id is required")
	}

	rec := types.ProjectRecord{ProjectID: id}
	rec.ProjectName, _ = cmd.Flags().GetString("name")
	rec.Location, _ = cmd.Flags().GetString("location")
	rec.Capacity, _ = cmd.Flags().GetString("capacity")
	rec.Agency, _ = cmd.Flags().GetString("agency")
	rec.PresentStatus, _ = cmd.Flags().GetString("status")
	return rec.Normalized(), nil
}

func init() {
	runCmd.Flags().String("project-file", "", "YAML file describing the project")
	runCmd.Flags().String("id", "", "project id (keys the persisted artifacts)")
	runCmd.Flags().String("name", "", "project name")
	runCmd.Flags().String("location", "", "project location")
	runCmd.Flags().String("capacity", "", "project capacity")
	runCmd.Flags().String("agency", "", "implementing agency")
	runCmd.Flags().String("status", "", "present status")
	runCmd.Flags().Bool("resume", false, "reuse persisted stage outputs where they exist")

	rootCmd.AddCommand(runCmd)
}
