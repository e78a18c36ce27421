package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/ingest"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/pdftext"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/storage"
)

var ingestForce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a report PDF or every PDF below a directory",
	Long: `Extract the text of every page and store it in the report database.

Reports whose content hash is unchanged since the last ingest are skipped
unless --force is given.

Examples:
  reportsearch ingest ~/reports/123-main-st.pdf
  reportsearch ingest ~/reports --force`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "Re-extract reports even if unchanged")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbPath, err := cfg.ResolvedDBPath()
	if err != nil {
		return err
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	ing := ingest.New(store, pdftext.NewExtractor())
	stats, err := ing.IngestPath(cmd.Context(), path, &ingest.Config{
		Workers: cfg.Workers,
		Force:   ingestForce,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Ingested: %d, skipped: %d, failed: %d\n",
		stats.ReportsIngested, stats.ReportsSkipped, stats.ReportsFailed)
	_, _ = fmt.Fprintf(out, "Pages stored: %d (%d empty) in %s\n",
		stats.PagesStored, stats.EmptyPages, stats.Duration.Round(time.Millisecond))
	for _, msg := range stats.ErrorMessages {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  error: %s\n", msg)
	}
	return nil
}
