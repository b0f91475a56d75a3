// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litfetch CLI: search PubMed,
// arXiv and bioRxiv in parallel, then download open-access PDFs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litfetch/internal/secrets"
	"github.com/pdiddy/litfetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the litfetch CLI.
var rootCmd = &cobra.Command{
	Use:   "litfetch",
	Short: "Search literature databases and download open-access papers",
	Long: `litfetch queries PubMed, arXiv and bioRxiv in parallel, merges and
deduplicates the results, and downloads open-access PDFs, resolving DOIs
through Unpaywall. Every API is called no faster than its published limit.

Downloads are recorded in a SQLite catalog so later runs can list what is
already on disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, os.Stderr)
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

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./litfetch.yaml or ~/.config/litfetch/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of secret files (ncbi-api-key, unpaywall-email)")
	pf.String("email", "", "contact address sent to PubMed and Unpaywall")
	pf.String("download-dir", "", "directory receiving PDFs (default "+types.DefaultDownloadDir+")")
	pf.String("catalog", "", "path of the download catalog (default "+types.DefaultCatalogPath+")")

	viper.BindPFlag("email", pf.Lookup("email"))
	viper.BindPFlag("acquisition.download_dir", pf.Lookup("download-dir"))
	viper.BindPFlag("catalog.path", pf.Lookup("catalog"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litfetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litfetch"))
		}
	}

	def := types.DefaultConfig()
	viper.SetDefault("timeout", def.Search.Timeout)
	viper.SetDefault("user_agent", def.Search.UserAgent)
	viper.SetDefault("email", def.Search.Email)
	viper.SetDefault("search.max_results", def.Search.MaxResults)
	viper.SetDefault("acquisition.download_dir", def.Acquisition.DownloadDir)
	viper.SetDefault("acquisition.max_concurrent", def.Acquisition.MaxConcurrent)
	viper.SetDefault("catalog.path", def.Catalog.Path)

	viper.SetEnvPrefix("LITFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the viper state into a types.Config. Top-level
// timeout, user_agent, email and max_retries apply to both stages unless a
// stage sets its own; secrets fill in what configuration leaves empty.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	shared := types.HTTPConfig{
		Timeout:    viper.GetDuration("timeout"),
		UserAgent:  viper.GetString("user_agent"),
		Email:      viper.GetString("email"),
		MaxRetries: viper.GetInt("max_retries"),
	}
	inheritHTTP(&cfg.Search.HTTPConfig, shared)
	inheritHTTP(&cfg.Acquisition.HTTPConfig, shared)

	secrets.Apply(&cfg, loadedSecrets)
	return cfg, nil
}

func inheritHTTP(h *types.HTTPConfig, shared types.HTTPConfig) {
	if h.Timeout <= 0 {
		h.Timeout = shared.Timeout
	}
	if h.UserAgent == "" {
		h.UserAgent = shared.UserAgent
	}
	if h.Email == "" {
		h.Email = shared.Email
	}
	if h.MaxRetries <= 0 {
		h.MaxRetries = shared.MaxRetries
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
