// Package storage provides SQLite-based persistence for ingested inspection
// reports.
//
// The storage layer manages:
//   - Report metadata and content hashes
//   - Raw extracted text of every page
//   - Issues recorded against a report, with their source quotes
//
// # Database Schema
//
// Tables:
//   - reports: Source path (unique), title, SHA-256 hash, page count
//   - pages: One row per (report, page number) holding the raw page text
//   - issues: Title, system, severity and the quoted passage
//   - schema_version: Applied migrations, compared with semver
//
// Deleting a report cascades to its pages and issues.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.reportsearch/reports.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	report, err := db.GetReport(ctx, "/reports/123-main-st.pdf")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // not ingested yet
//	}
//
// # Transactions
//
// Ingestion writes a report and all of its pages atomically:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.CreateReport(ctx, report); err != nil {
//	    return err
//	}
//	for _, page := range pages {
//	    if err := tx.UpsertPage(ctx, page); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// The connection pool holds a single connection, so code running inside a
// transaction must use the Tx for every query.
//
// # Page Source
//
// ReportPages reads a stored report page by page and can be handed directly to
// a search session:
//
//	s := session.New(storage.NewReportPages(db, report.ID), engine)
//
// # Build Modes
//
// The pure Go driver (modernc.org/sqlite) is used by default. Building with
// -tags sqlite_cgo switches to github.com/mattn/go-sqlite3. DriverName and
// BuildMode report which one was compiled in.
package storage
