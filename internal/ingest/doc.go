// Package ingest loads inspection report PDFs into storage.
//
// The ingester hashes each file, extracts the text of every page and stores
// the report row plus all pages in a single transaction.
//
// # Basic Usage
//
//	ing := ingest.New(store, pdftext.NewExtractor())
//
//	stats, err := ing.IngestPath(ctx, "/reports", &ingest.Config{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Ingested %d reports (%d pages) in %v\n",
//	    stats.ReportsIngested, stats.PagesStored, stats.Duration)
//
// # Incremental Ingest
//
// A report whose SHA-256 content hash matches the stored one is skipped.
// Set Config.Force to re-extract it anyway. When a changed report is
// re-ingested its row is updated in place, so issues recorded against it keep
// their report ID, and its pages are replaced.
//
// # Concurrency
//
// IngestDirectory walks a directory for *.pdf files (hidden directories are
// skipped) and processes them with a worker pool bounded by Config.Workers,
// which defaults to runtime.NumCPU(). Extraction runs in parallel; writes are
// serialized by the single SQLite connection. A report that fails is counted
// in Statistics.ReportsFailed and its error appended to ErrorMessages.
//
// Only one ingest runs per Ingester at a time. A second call made while one
// is in progress returns ErrIngestInProgress immediately.
package ingest
