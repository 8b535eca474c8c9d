// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the clintra CLI.
// Implements: prd009-variations, prd010-fanout, prd011-enrichment,
//             prd012-history (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/clintra/internal/secrets"
	"github.com/meshintel/clintra/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the clintra CLI.
var rootCmd = &cobra.Command{
	Use:   "clintra",
	Short: "Aggregate biomedical research data from public APIs",
	Long: `clintra queries biomedical databases (PubMed, ClinicalTrials.gov, PubChem,
RCSB PDB, KEGG, DrugBank, ChEMBL, UniProt) in parallel for a single search
term, deduplicates the results, and optionally produces an AI-generated
research summary.

Each stage is a subcommand: fetch runs the multi-source aggregation, enrich
summarizes a saved result file, and history manages the local request log.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./clintra.yaml or ~/.config/clintra/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("clintra")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "clintra"))
		}
	}

	viper.SetEnvPrefix("CLINTRA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPipelineConfig merges the config file, environment, and secrets
// into a PipelineConfig with defaults applied.
func loadPipelineConfig() types.PipelineConfig {
	var cfg types.PipelineConfig
	viper.Unmarshal(&cfg)

	if cfg.Fanout.MaxResults <= 0 {
		cfg.Fanout.MaxResults = 10
	}
	if cfg.Fanout.RequestDelay <= 0 {
		cfg.Fanout.RequestDelay = 500 * time.Millisecond
	}
	if cfg.Fanout.CacheTTL < 0 {
		cfg.Fanout.CacheTTL = 0
	}
	if cfg.Fanout.Timeout <= 0 {
		cfg.Fanout.Timeout = 30 * time.Second
	}
	if cfg.Fanout.UserAgent == "" {
		cfg.Fanout.UserAgent = "clintra/" + version
	}
	cfg.Fanout.NCBIAPIKey = secretDefault("ncbi-api-key", cfg.Fanout.NCBIAPIKey)
	cfg.Fanout.DrugBankAPIKey = secretDefault("drugbank-api-key", cfg.Fanout.DrugBankAPIKey)

	if cfg.Enrich.MaxRetries <= 0 {
		cfg.Enrich.MaxRetries = 3
	}
	if cfg.Enrich.MaxTokens <= 0 {
		cfg.Enrich.MaxTokens = 1024
	}
	if cfg.Enrich.Temperature <= 0 {
		cfg.Enrich.Temperature = 0.3
	}
	if cfg.Enrich.Timeout <= 0 {
		cfg.Enrich.Timeout = 60 * time.Second
	}
	if cfg.Enrich.Primary.BaseURL == "" {
		cfg.Enrich.Primary.BaseURL = "https://api.cerebras.ai/v1/chat/completions"
	}
	if cfg.Enrich.Primary.Model == "" {
		cfg.Enrich.Primary.Model = "llama-4-scout-17b-16e-instruct"
	}
	if cfg.Enrich.Secondary.BaseURL == "" {
		cfg.Enrich.Secondary.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Enrich.Secondary.Model == "" {
		cfg.Enrich.Secondary.Model = "gpt-4o-mini"
	}
	cfg.Enrich.Primary.APIKey = secretDefault("cerebras-api-key", cfg.Enrich.Primary.APIKey)
	cfg.Enrich.Secondary.APIKey = secretDefault("openai-api-key", cfg.Enrich.Secondary.APIKey)

	if cfg.History.HistoryDir == "" {
		cfg.History.HistoryDir = "history"
	}
	if cfg.History.MaxResults <= 0 {
		cfg.History.MaxResults = 20
	}

	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
