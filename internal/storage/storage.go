package storage

import (
	"context"
	"time"
)

// Storage defines the interface for persisting inspection reports, their
// extracted page text and the issues recorded against them
type Storage interface {
	// Report operations
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, sourcePath string) (*Report, error)
	GetReportByID(ctx context.Context, reportID int64) (*Report, error)
	UpdateReport(ctx context.Context, report *Report) error
	ListReports(ctx context.Context) ([]*Report, error)
	DeleteReport(ctx context.Context, reportID int64) error

	// Page operations
	UpsertPage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, reportID int64, pageNumber int) (*Page, error)
	ListPages(ctx context.Context, reportID int64) ([]*Page, error)
	DeletePagesByReport(ctx context.Context, reportID int64) error

	// Issue operations
	CreateIssue(ctx context.Context, issue *Issue) error
	GetIssue(ctx context.Context, issueID int64) (*Issue, error)
	ListIssuesByReport(ctx context.Context, reportID int64) ([]*Issue, error)
	DeleteIssue(ctx context.Context, issueID int64) error

	// Status operations
	GetStatus(ctx context.Context, reportID int64) (*ReportStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Report represents an ingested inspection report PDF
type Report struct {
	ID             int64
	SourcePath     string // Absolute path of the PDF
	Title          string
	ContentHash    [32]byte
	PageCount      int
	SizeBytes      int64
	LastIngestedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Page holds the raw extracted text of one report page
type Page struct {
	ID         int64
	ReportID   int64
	PageNumber int // 1-based
	Text       string
	CharCount  int
}

// Issue is a finding recorded against a report. SourceQuote is the passage
// copied from the report and is searched verbatim to locate the issue.
type Issue struct {
	ID          int64
	ReportID    int64
	Title       string
	System      string // e.g. roof, plumbing, electrical
	Severity    string
	SourceQuote string
	CreatedAt   time.Time
}

// ReportStatus contains statistics about an ingested report
type ReportStatus struct {
	Report         *Report
	PagesCount     int
	EmptyPages     int
	IssuesCount    int
	TotalChars     int
	DatabaseSizeMB float64
	LastIngestedAt time.Time
	Health         HealthStatus
}

// HealthStatus represents the health of the stored report
type HealthStatus struct {
	DatabaseAccessible bool
	TextExtracted      bool
	PagesComplete      bool
}
