package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// isUniqueViolation reports whether err came from a UNIQUE constraint. Both
// drivers surface the same SQLite message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullTime stores the zero time as NULL
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Report operations

const reportColumns = `id, source_path, title, content_hash, page_count, size_bytes,
		       last_ingested_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*Report, error) {
	var report Report
	var hash []byte
	var lastIngestedAt sql.NullTime
	err := row.Scan(
		&report.ID, &report.SourcePath, &report.Title, &hash,
		&report.PageCount, &report.SizeBytes,
		&lastIngestedAt, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(report.ContentHash[:], hash)
	if lastIngestedAt.Valid {
		report.LastIngestedAt = lastIngestedAt.Time
	}
	return &report, nil
}

// createReportWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createReportWithQuerier(ctx context.Context, q querier, report *Report) error {
	query := `
		INSERT INTO reports (source_path, title, content_hash, page_count, size_bytes,
		                     last_ingested_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		report.SourcePath, report.Title, report.ContentHash[:],
		report.PageCount, report.SizeBytes, nullTime(report.LastIngestedAt), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("report %s: %w", report.SourcePath, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	report.ID = id
	report.CreatedAt = now
	report.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateReport(ctx context.Context, report *Report) error {
	return s.createReportWithQuerier(ctx, s.querier(), report)
}

// getReportWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getReportWithQuerier(ctx context.Context, q querier, sourcePath string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE source_path = ?`

	report, err := scanReport(q.QueryRowContext(ctx, query, sourcePath))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *SQLiteStorage) GetReport(ctx context.Context, sourcePath string) (*Report, error) {
	return s.getReportWithQuerier(ctx, s.querier(), sourcePath)
}

// getReportByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getReportByIDWithQuerier(ctx context.Context, q querier, reportID int64) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	report, err := scanReport(q.QueryRowContext(ctx, query, reportID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *SQLiteStorage) GetReportByID(ctx context.Context, reportID int64) (*Report, error) {
	return s.getReportByIDWithQuerier(ctx, s.querier(), reportID)
}

// updateReportWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateReportWithQuerier(ctx context.Context, q querier, report *Report) error {
	query := `
		UPDATE reports
		SET title = ?, content_hash = ?, page_count = ?, size_bytes = ?,
		    last_ingested_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		report.Title, report.ContentHash[:], report.PageCount, report.SizeBytes,
		nullTime(report.LastIngestedAt), now, report.ID)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	report.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateReport(ctx context.Context, report *Report) error {
	return s.updateReportWithQuerier(ctx, s.querier(), report)
}

// listReportsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listReportsWithQuerier(ctx context.Context, q querier) ([]*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY source_path`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	reports := make([]*Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (s *SQLiteStorage) ListReports(ctx context.Context) ([]*Report, error) {
	return s.listReportsWithQuerier(ctx, s.querier())
}

// deleteReportWithQuerier removes a report; pages and issues cascade
func (s *SQLiteStorage) deleteReportWithQuerier(ctx context.Context, q querier, reportID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteReport(ctx context.Context, reportID int64) error {
	return s.deleteReportWithQuerier(ctx, s.querier(), reportID)
}

// Page operations

// upsertPageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertPageWithQuerier(ctx context.Context, q querier, page *Page) error {
	if page.PageNumber < 1 {
		return fmt.Errorf("invalid page number %d", page.PageNumber)
	}

	query := `
		INSERT INTO pages (report_id, page_number, text, char_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(report_id, page_number) DO UPDATE SET
			text = excluded.text,
			char_count = excluded.char_count
		RETURNING id
	`
	err := q.QueryRowContext(ctx, query,
		page.ReportID, page.PageNumber, page.Text, page.CharCount).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertPage(ctx context.Context, page *Page) error {
	return s.upsertPageWithQuerier(ctx, s.querier(), page)
}

// getPageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getPageWithQuerier(ctx context.Context, q querier, reportID int64, pageNumber int) (*Page, error) {
	query := `
		SELECT id, report_id, page_number, text, char_count
		FROM pages
		WHERE report_id = ? AND page_number = ?
	`
	var page Page
	err := q.QueryRowContext(ctx, query, reportID, pageNumber).Scan(
		&page.ID, &page.ReportID, &page.PageNumber, &page.Text, &page.CharCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *SQLiteStorage) GetPage(ctx context.Context, reportID int64, pageNumber int) (*Page, error) {
	return s.getPageWithQuerier(ctx, s.querier(), reportID, pageNumber)
}

// listPagesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listPagesWithQuerier(ctx context.Context, q querier, reportID int64) ([]*Page, error) {
	query := `
		SELECT id, report_id, page_number, text, char_count
		FROM pages
		WHERE report_id = ?
		ORDER BY page_number
	`
	rows, err := q.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	pages := make([]*Page, 0)
	for rows.Next() {
		var page Page
		err := rows.Scan(&page.ID, &page.ReportID, &page.PageNumber, &page.Text, &page.CharCount)
		if err != nil {
			return nil, err
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

func (s *SQLiteStorage) ListPages(ctx context.Context, reportID int64) ([]*Page, error) {
	return s.listPagesWithQuerier(ctx, s.querier(), reportID)
}

// deletePagesByReportWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deletePagesByReportWithQuerier(ctx context.Context, q querier, reportID int64) error {
	query := `DELETE FROM pages WHERE report_id = ?`
	_, err := q.ExecContext(ctx, query, reportID)
	return err
}

func (s *SQLiteStorage) DeletePagesByReport(ctx context.Context, reportID int64) error {
	return s.deletePagesByReportWithQuerier(ctx, s.querier(), reportID)
}

// Issue operations

// createIssueWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createIssueWithQuerier(ctx context.Context, q querier, issue *Issue) error {
	query := `
		INSERT INTO issues (report_id, title, system, severity, source_quote, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		issue.ReportID, issue.Title, issue.System, issue.Severity, issue.SourceQuote, now)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	issue.ID = id
	issue.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateIssue(ctx context.Context, issue *Issue) error {
	return s.createIssueWithQuerier(ctx, s.querier(), issue)
}

// getIssueWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getIssueWithQuerier(ctx context.Context, q querier, issueID int64) (*Issue, error) {
	query := `
		SELECT id, report_id, title, system, severity, source_quote, created_at
		FROM issues
		WHERE id = ?
	`
	var issue Issue
	err := q.QueryRowContext(ctx, query, issueID).Scan(
		&issue.ID, &issue.ReportID, &issue.Title, &issue.System,
		&issue.Severity, &issue.SourceQuote, &issue.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *SQLiteStorage) GetIssue(ctx context.Context, issueID int64) (*Issue, error) {
	return s.getIssueWithQuerier(ctx, s.querier(), issueID)
}

// listIssuesByReportWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listIssuesByReportWithQuerier(ctx context.Context, q querier, reportID int64) ([]*Issue, error) {
	query := `
		SELECT id, report_id, title, system, severity, source_quote, created_at
		FROM issues
		WHERE report_id = ?
		ORDER BY id
	`
	rows, err := q.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	issues := make([]*Issue, 0)
	for rows.Next() {
		var issue Issue
		err := rows.Scan(
			&issue.ID, &issue.ReportID, &issue.Title, &issue.System,
			&issue.Severity, &issue.SourceQuote, &issue.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		issues = append(issues, &issue)
	}
	return issues, rows.Err()
}

func (s *SQLiteStorage) ListIssuesByReport(ctx context.Context, reportID int64) ([]*Issue, error) {
	return s.listIssuesByReportWithQuerier(ctx, s.querier(), reportID)
}

// deleteIssueWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteIssueWithQuerier(ctx context.Context, q querier, issueID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, issueID)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteIssue(ctx context.Context, issueID int64) error {
	return s.deleteIssueWithQuerier(ctx, s.querier(), issueID)
}

// Status operations

// getStatusWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, reportID int64) (*ReportStatus, error) {
	report, err := s.getReportByIDWithQuerier(ctx, q, reportID)
	if err != nil {
		return nil, err
	}

	status := &ReportStatus{
		Report:         report,
		LastIngestedAt: report.LastIngestedAt,
	}

	// Count pages and extracted characters
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN char_count = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(char_count), 0)
		FROM pages
		WHERE report_id = ?
	`, reportID).Scan(&status.PagesCount, &status.EmptyPages, &status.TotalChars)
	if err != nil {
		return nil, err
	}

	// Count issues
	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM issues WHERE report_id = ?", reportID).Scan(&status.IssuesCount)
	if err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	err = q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	// Check health status
	status.Health = HealthStatus{
		DatabaseAccessible: true,
		TextExtracted:      status.TotalChars > 0,
		PagesComplete:      status.PagesCount == report.PageCount,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, reportID int64) (*ReportStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), reportID)
}

// Transaction implementations delegate to the storage helpers with the
// transaction's querier

func (t *sqliteTx) CreateReport(ctx context.Context, report *Report) error {
	return t.storage.createReportWithQuerier(ctx, t.querier(), report)
}

func (t *sqliteTx) GetReport(ctx context.Context, sourcePath string) (*Report, error) {
	return t.storage.getReportWithQuerier(ctx, t.querier(), sourcePath)
}

func (t *sqliteTx) GetReportByID(ctx context.Context, reportID int64) (*Report, error) {
	return t.storage.getReportByIDWithQuerier(ctx, t.querier(), reportID)
}

func (t *sqliteTx) UpdateReport(ctx context.Context, report *Report) error {
	return t.storage.updateReportWithQuerier(ctx, t.querier(), report)
}

func (t *sqliteTx) ListReports(ctx context.Context) ([]*Report, error) {
	return t.storage.listReportsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteReport(ctx context.Context, reportID int64) error {
	return t.storage.deleteReportWithQuerier(ctx, t.querier(), reportID)
}

func (t *sqliteTx) UpsertPage(ctx context.Context, page *Page) error {
	return t.storage.upsertPageWithQuerier(ctx, t.querier(), page)
}

func (t *sqliteTx) GetPage(ctx context.Context, reportID int64, pageNumber int) (*Page, error) {
	return t.storage.getPageWithQuerier(ctx, t.querier(), reportID, pageNumber)
}

func (t *sqliteTx) ListPages(ctx context.Context, reportID int64) ([]*Page, error) {
	return t.storage.listPagesWithQuerier(ctx, t.querier(), reportID)
}

func (t *sqliteTx) DeletePagesByReport(ctx context.Context, reportID int64) error {
	return t.storage.deletePagesByReportWithQuerier(ctx, t.querier(), reportID)
}

func (t *sqliteTx) CreateIssue(ctx context.Context, issue *Issue) error {
	return t.storage.createIssueWithQuerier(ctx, t.querier(), issue)
}

func (t *sqliteTx) GetIssue(ctx context.Context, issueID int64) (*Issue, error) {
	return t.storage.getIssueWithQuerier(ctx, t.querier(), issueID)
}

func (t *sqliteTx) ListIssuesByReport(ctx context.Context, reportID int64) ([]*Issue, error) {
	return t.storage.listIssuesByReportWithQuerier(ctx, t.querier(), reportID)
}

func (t *sqliteTx) DeleteIssue(ctx context.Context, issueID int64) error {
	return t.storage.deleteIssueWithQuerier(ctx, t.querier(), issueID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, reportID int64) (*ReportStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), reportID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
