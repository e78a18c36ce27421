package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "reportsearch",
	Short: "Search inspection report PDFs for quoted findings",
	Long: `reportsearch ingests home inspection report PDFs and locates quoted passages
inside them, tolerating the line breaks, spacing and hyphenation noise that
PDF text extraction introduces.

Run without a subcommand to start the MCP server on stdio.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.reportsearch/config.toml)")
}

// loadConfig resolves configuration, honoring --config over REPORTSEARCH_CONFIG
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		if err := os.Setenv(config.EnvConfigPath, cfgFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
