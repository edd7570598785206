// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the opposition-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opposition-engine/internal/secrets"
	"github.com/pdiddy/opposition-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the opposition-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "opposition-engine",
	Short: "Evidence pipeline for opposition to renewable energy projects",
	Long: `opposition-engine researches local opposition to renewable energy
projects. For each project it synthesizes English and Bangla search queries,
runs both through a SERP proxy, extracts readable text from the result pages,
and asks a generative model whether the content documents opposition.

Every stage's output is persisted under the data directory, so interrupted
batches can resume without repeating work. The catalog subcommand indexes
the persisted verdicts for full-text search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		secrets.Apply(s)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./opposition-engine.yaml or ~/.opposition-engine/opposition-engine.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("opposition-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".opposition-engine"))
		}
	}

	viper.SetDefault("data_dir", "data")
	viper.SetDefault("model", "gemini-2.0-flash-exp")
	viper.SetDefault("timeout_seconds", 30)
	viper.SetDefault("fetch_delay_seconds", 2)
	viper.SetDefault("max_retries", 2)
	viper.SetDefault("search_zone", "serp")
	viper.SetDefault("max_results", 10)
	viper.SetDefault("max_content_chars", 15000)

	viper.SetEnvPrefix("OPPOSITION_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configurations from viper settings and
// the required credentials. Call only after secrets.Require has succeeded.
func pipelineConfig() types.PipelineConfig {
	timeout := time.Duration(viper.GetInt("timeout_seconds")) * time.Second
	retries := viper.GetInt("max_retries")

	http := types.HTTPConfig{
		Timeout:    timeout,
		MaxRetries: retries,
	}

	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: http,
			APIKey:     os.Getenv(secrets.EnvBrightdataKey),
			Zone:       viper.GetString("search_zone"),
			MaxResults: viper.GetInt("max_results"),
		},
		Content: types.ContentConfig{
			HTTPConfig: http,
			FetchDelay: time.Duration(viper.GetInt("fetch_delay_seconds")) * time.Second,
			MaxChars:   viper.GetInt("max_content_chars"),
		},
		AI: types.AIConfig{
			Model:      viper.GetString("model"),
			APIKey:     os.Getenv(secrets.EnvGeminiKey),
			Timeout:    timeout,
			MaxRetries: retries,
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("data_dir"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
