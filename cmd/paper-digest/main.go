// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "LLM-reviewed weekly digest of new arXiv papers",
	Long: `paper-digest searches arXiv for recent papers on configured topics, has
language-model agents filter and review them in two independent rounds,
summarizes the best ones, and delivers a combined report to disk or email.

Use "run" for the full pipeline. The other subcommands expose single stages:
search, fetch, categories, and an MCP server for the paper tools.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(viper.GetString("secrets_dir"))
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-digest.yaml or ~/.config/paper-digest/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func setDefaults() {
	viper.SetDefault("secrets_dir", ".secrets/")
	viper.SetDefault("llm.provider", string(types.ProviderAnthropic))
	viper.SetDefault("llm.model", "claude-sonnet-4-5")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.retry_delay", "2s")
	viper.SetDefault("llm.timeout", "5m")
	viper.SetDefault("arxiv.api_base", "http://export.arxiv.org/api/query")
	viper.SetDefault("arxiv.requests_per_second", 0.33)
	viper.SetDefault("arxiv.max_results_per_category", 2000)
	viper.SetDefault("arxiv.timeout", "60s")
	viper.SetDefault("arxiv.user_agent", "paper-digest/"+version)
	viper.SetDefault("cache.dir", "outputs/papers")
	viper.SetDefault("converter", string(types.ConverterPdftotext))
	viper.SetDefault("concurrency", 8)
	viper.SetDefault("output.reports_dir", "outputs/reports")
	viper.SetDefault("output.history_file", "outputs/history.db")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output", "stderr")
	viper.SetDefault("gmail.credentials_file", ".secrets/gmail-credentials.json")
	viper.SetDefault("gmail.token_file", ".secrets/gmail-token.json")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-digest"))
		}
	}

	viper.SetEnvPrefix("PAPER_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged viper settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc("2006-01-02"),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
