package storage

import (
	"context"
	"errors"
	"fmt"
)

// ReportPages exposes the stored page text of one report page by page, in the
// shape a search session reads it.
type ReportPages struct {
	store    Storage
	reportID int64
}

// NewReportPages creates a page source over a stored report
func NewReportPages(store Storage, reportID int64) *ReportPages {
	return &ReportPages{store: store, reportID: reportID}
}

// ReportID returns the report the pages belong to
func (p *ReportPages) ReportID() int64 {
	return p.reportID
}

// PageCount returns the page count recorded when the report was ingested
func (p *ReportPages) PageCount(ctx context.Context) (int, error) {
	report, err := p.store.GetReportByID(ctx, p.reportID)
	if err != nil {
		return 0, fmt.Errorf("report %d: %w", p.reportID, err)
	}
	return report.PageCount, nil
}

// PageText returns the raw text of a 1-based page. A page that was never
// stored reads as empty text.
func (p *ReportPages) PageText(ctx context.Context, pageNumber int) (string, error) {
	page, err := p.store.GetPage(ctx, p.reportID, pageNumber)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("report %d page %d: %w", p.reportID, pageNumber, err)
	}
	return page.Text, nil
}
