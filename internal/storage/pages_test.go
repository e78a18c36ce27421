package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportPages(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	report := createTestReport(t, storage, "/reports/123-main-st.pdf")
	require.NoError(t, storage.UpsertPage(ctx, &Page{ReportID: report.ID, PageNumber: 1, Text: "Roof\nloose shingles"}))
	require.NoError(t, storage.UpsertPage(ctx, &Page{ReportID: report.ID, PageNumber: 3, Text: "Active leak"}))

	pages := NewReportPages(storage, report.ID)
	assert.Equal(t, report.ID, pages.ReportID())

	n, err := pages.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	text, err := pages.PageText(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Roof\nloose shingles", text)

	// Page 2 had no text stored
	text, err = pages.PageText(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	text, err = pages.PageText(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Active leak", text)
}

func TestReportPages_UnknownReport(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := NewReportPages(storage, 404).PageCount(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
