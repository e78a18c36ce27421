package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/storage"
)

// fakeExtractor returns canned pages keyed by file base name
type fakeExtractor struct {
	mu    sync.Mutex
	pages map[string][]string
	fail  map[string]error
	calls int32
	gate  chan struct{} // when set, Extract blocks until closed
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		pages: make(map[string][]string),
		fail:  make(map[string]error),
	}
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	name := filepath.Base(path)
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	return f.pages[name], nil
}

func (f *fakeExtractor) set(name string, pages ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[name] = pages
}

func setupTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	return store
}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestReport_New(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	dir := t.TempDir()
	path := createTestFile(t, dir, "123-main-st.pdf", "%PDF-1.4 v1")

	ext := newFakeExtractor()
	ext.set("123-main-st.pdf",
		"Roof\nThe roof has several loose shingles and granule loss.",
		"   ",
		"Plumbing\nActive leak under the kitchen sink.",
	)

	ing := New(store, ext)
	result, err := ing.IngestReport(context.Background(), path, nil)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 3, result.PagesCount)
	assert.Equal(t, 1, result.EmptyPages)
	assert.Equal(t, "123-main-st", result.Report.Title)
	assert.Equal(t, int64(len("%PDF-1.4 v1")), result.Report.SizeBytes)

	ctx := context.Background()
	report, err := store.GetReport(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, result.Report.ID, report.ID)
	assert.Equal(t, 3, report.PageCount)
	assert.False(t, report.LastIngestedAt.IsZero())

	pages, err := store.ListPages(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "Roof\nThe roof has several loose shingles and granule loss.", pages[0].Text)
	assert.Equal(t, 58, pages[0].CharCount)
}

func TestIngestReport_SkipsUnchanged(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	path := createTestFile(t, t.TempDir(), "report.pdf", "v1")
	ext := newFakeExtractor()
	ext.set("report.pdf", "page one")

	ing := New(store, ext)
	first, err := ing.IngestReport(context.Background(), path, nil)
	require.NoError(t, err)

	second, err := ing.IngestReport(context.Background(), path, nil)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.Report.ID, second.Report.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ext.calls))

	// Force re-extracts even when unchanged
	forced, err := ing.IngestReport(context.Background(), path, &Config{Force: true})
	require.NoError(t, err)
	assert.False(t, forced.Skipped)
	assert.Equal(t, int32(2), atomic.LoadInt32(&ext.calls))
}

func TestIngestReport_ChangedReplacesPagesKeepsIssues(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	ctx := context.Background()
	dir := t.TempDir()
	path := createTestFile(t, dir, "report.pdf", "v1")
	ext := newFakeExtractor()
	ext.set("report.pdf", "one", "two", "three")

	ing := New(store, ext)
	first, err := ing.IngestReport(ctx, path, nil)
	require.NoError(t, err)

	issue := &storage.Issue{ReportID: first.Report.ID, Title: "Roof", SourceQuote: "one"}
	require.NoError(t, store.CreateIssue(ctx, issue))

	createTestFile(t, dir, "report.pdf", "v2")
	ext.set("report.pdf", "uno", "dos")

	second, err := ing.IngestReport(ctx, path, nil)
	require.NoError(t, err)
	assert.False(t, second.Skipped)
	assert.Equal(t, first.Report.ID, second.Report.ID)

	pages, err := store.ListPages(ctx, first.Report.ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "uno", pages[0].Text)

	issues, err := store.ListIssuesByReport(ctx, first.Report.ID)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestIngestReport_Errors(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	dir := t.TempDir()
	ext := newFakeExtractor()
	ext.fail["broken.pdf"] = errors.New("malformed xref")
	ing := New(store, ext)

	_, err := ing.IngestReport(context.Background(), filepath.Join(dir, "missing.pdf"), nil)
	assert.Error(t, err)

	path := createTestFile(t, dir, "broken.pdf", "garbage")
	_, err = ing.IngestReport(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed xref")

	// Nothing is stored for a failed extraction
	_, err = store.GetReport(context.Background(), path)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiscoverReports(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "a.pdf", "a")
	createTestFile(t, dir, "B.PDF", "b")
	createTestFile(t, dir, "notes.txt", "n")
	createTestFile(t, dir, "2024/c.pdf", "c")
	createTestFile(t, dir, ".cache/d.pdf", "d")

	files, err := discoverReports(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, rel)
	}
	assert.ElementsMatch(t, []string{"a.pdf", "B.PDF", filepath.Join("2024", "c.pdf")}, names)
}

func TestIngestDirectory(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	dir := t.TempDir()
	ext := newFakeExtractor()
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("report%d.pdf", i)
		createTestFile(t, dir, name, name)
		ext.set(name, "page one", "", "page three")
	}
	createTestFile(t, dir, "broken.pdf", "broken")
	ext.fail["broken.pdf"] = errors.New("encrypted")

	ing := New(store, ext)
	stats, err := ing.IngestDirectory(context.Background(), dir, &Config{Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 6, stats.ReportsIngested)
	assert.Equal(t, 0, stats.ReportsSkipped)
	assert.Equal(t, 1, stats.ReportsFailed)
	assert.Equal(t, 18, stats.PagesStored)
	assert.Equal(t, 6, stats.EmptyPages)
	assert.Len(t, stats.ReportIDs, 6)
	assert.Len(t, stats.UpdatedIDs, 6)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "broken.pdf")

	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 6)

	// Second run skips everything that did not change
	stats, err = ing.IngestDirectory(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ReportsIngested)
	assert.Equal(t, 6, stats.ReportsSkipped)
	assert.Equal(t, 1, stats.ReportsFailed)
}

func TestIngestPath(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	dir := t.TempDir()
	path := createTestFile(t, dir, "single.pdf", "x")
	createTestFile(t, dir, "sub/other.pdf", "y")
	ext := newFakeExtractor()
	ext.set("single.pdf", "a", "b")
	ext.set("other.pdf", "c")

	ing := New(store, ext)

	stats, err := ing.IngestPath(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReportsIngested)
	assert.Equal(t, 2, stats.PagesStored)

	stats, err = ing.IngestPath(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReportsIngested)
	assert.Equal(t, 1, stats.ReportsSkipped)

	_, err = ing.IngestPath(context.Background(), filepath.Join(dir, "nope"), nil)
	assert.Error(t, err)
}

func TestIngest_ConcurrentCallsRejected(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	dir := t.TempDir()
	path := createTestFile(t, dir, "report.pdf", "x")
	ext := newFakeExtractor()
	ext.set("report.pdf", "page")
	ext.gate = make(chan struct{})

	ing := New(store, ext)

	done := make(chan error, 1)
	go func() {
		_, err := ing.IngestReport(context.Background(), path, nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&ext.calls) == 1 }, time.Second, time.Millisecond)
	assert.True(t, ing.lock.Held())

	_, err := ing.IngestDirectory(context.Background(), dir, nil)
	assert.ErrorIs(t, err, ErrIngestInProgress)
	_, err = ing.IngestReport(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrIngestInProgress)

	close(ext.gate)
	require.NoError(t, <-done)
	assert.False(t, ing.lock.Held())
}

func TestIngestDirectory_ContextCancellation(t *testing.T) {
	store := setupTestStorage(t)
	defer store.Close()

	dir := t.TempDir()
	ext := newFakeExtractor()
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("r%d.pdf", i)
		createTestFile(t, dir, name, name)
		ext.set(name, "page")
	}
	ext.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store, ext).IngestDirectory(ctx, dir, &Config{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestLock(t *testing.T) {
	var lock IngestLock

	assert.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire())
	lock.Release()
	assert.True(t, lock.TryAcquire())
	lock.Release()
}
