package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/storage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "reportsearch\n")
		_, _ = fmt.Fprintf(out, "Version: %s\n", version)
		_, _ = fmt.Fprintf(out, "Build Time: %s\n", buildTime)
		_, _ = fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
		_, _ = fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
