// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opposition-engine/internal/artifact"
	"github.com/pdiddy/opposition-engine/internal/catalog"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index persisted verdicts and query the index",
	Long: `Catalog maintains a SQLite full-text index over the persisted verdicts.
The summary files remain the source of truth; ingest re-indexes only the
files that changed since the last run, and the database can always be
deleted and rebuilt.`,
}

// openCatalog opens the catalog database at --db, defaulting to
// <data_dir>/catalog.db.
func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = filepath.Join(viper.GetString("data_dir"), "catalog.db")
	}
	return catalog.Open(dbPath)
}

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index new and changed verdict files",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		store := artifact.NewStore(types.StoreConfig{DataDir: viper.GetString("data_dir")})
		summary, err := c.Ingest(cmd.Context(), store.SummaryDir(), os.Stdout)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d verdict files could not be indexed", summary.Failed)
		}
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over indexed verdict summaries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := c.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		out, err := artifact.MarshalIndent(entries)
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		os.Stdout.Write(out)
		return nil
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print counts and mean confidence for the indexed verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}

		out, err := artifact.MarshalIndent(stats)
		if err != nil {
			return fmt.Errorf("encoding stats: %w", err)
		}
		os.Stdout.Write(out)
		return nil
	},
}

func init() {
	catalogCmd.PersistentFlags().String("db", "", "catalog database path (default: <data_dir>/catalog.db)")
	catalogSearchCmd.Flags().Int("limit", 20, "maximum number of results")

	catalogCmd.AddCommand(catalogIngestCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}
