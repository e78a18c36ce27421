package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/storage"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/textnorm"
)

// ErrIngestInProgress is returned when another ingest holds the lock
var ErrIngestInProgress = errors.New("ingest already in progress")

// Extractor returns the plain text of every page of a document. Element i
// holds page i+1.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// Ingester coordinates the ingest pipeline: hash -> extract -> store
type Ingester struct {
	extractor Extractor
	storage   storage.Storage
	lock      IngestLock
}

// Config contains configuration for an ingest run
type Config struct {
	Workers int  // Number of concurrent workers (default: runtime.NumCPU())
	Force   bool // Re-extract reports whose content hash is unchanged
}

// Result describes the outcome of ingesting one report
type Result struct {
	Report     *storage.Report
	Skipped    bool // Content unchanged since the last ingest
	PagesCount int
	EmptyPages int
}

// Statistics contains statistics about an ingest run
type Statistics struct {
	ReportsIngested int
	ReportsSkipped  int
	ReportsFailed   int
	PagesStored     int
	EmptyPages      int
	ReportIDs       []int64 // Every report ingested or skipped
	UpdatedIDs      []int64 // Reports whose pages were rewritten
	Duration        time.Duration
	ErrorMessages   []string
}

// New creates a new Ingester instance
func New(store storage.Storage, extractor Extractor) *Ingester {
	return &Ingester{
		extractor: extractor,
		storage:   store,
	}
}

func normalizeConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return config
}

// IngestPath ingests a single PDF or every PDF below a directory
func (ing *Ingester) IngestPath(ctx context.Context, path string, config *Config) (*Statistics, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ing.IngestDirectory(ctx, path, config)
	}

	if !ing.lock.TryAcquire() {
		return nil, ErrIngestInProgress
	}
	defer ing.lock.Release()

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	result, err := ing.ingestReport(ctx, path, normalizeConfig(config))
	if err != nil {
		return nil, err
	}
	stats.record(result)
	stats.Duration = time.Since(startTime)
	return stats, nil
}

// IngestReport ingests one PDF. An unchanged report is skipped unless
// config.Force is set; its pages are then left as they are.
func (ing *Ingester) IngestReport(ctx context.Context, path string, config *Config) (*Result, error) {
	if !ing.lock.TryAcquire() {
		return nil, ErrIngestInProgress
	}
	defer ing.lock.Release()

	return ing.ingestReport(ctx, path, normalizeConfig(config))
}

// IngestDirectory ingests every PDF below root concurrently. A report that
// fails is recorded in the statistics and does not stop the others.
func (ing *Ingester) IngestDirectory(ctx context.Context, root string, config *Config) (*Statistics, error) {
	if !ing.lock.TryAcquire() {
		return nil, ErrIngestInProgress
	}
	defer ing.lock.Release()

	config = normalizeConfig(config)
	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	files, err := discoverReports(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover reports: %w", err)
	}

	if err := ing.ingestFiles(ctx, files, config, stats); err != nil {
		return nil, fmt.Errorf("failed to ingest reports: %w", err)
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// discoverReports finds all PDF files below root, skipping hidden directories
func discoverReports(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// ingestFiles ingests files concurrently with a semaphore-bounded worker pool
func (ing *Ingester) ingestFiles(ctx context.Context, files []string, config *Config, stats *Statistics) error {
	semaphore := make(chan struct{}, config.Workers)

	var (
		ingested int32
		skipped  int32
		failed   int32
		pages    int32
		empty    int32
	)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protect stats.ErrorMessages and stats.ReportIDs

	for _, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
				// Acquire semaphore
			}
			defer func() { <-semaphore }()

			result, err := ing.ingestReport(gctx, path, config)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				// Continue with other reports
				return nil
			}

			if result.Skipped {
				atomic.AddInt32(&skipped, 1)
			} else {
				atomic.AddInt32(&ingested, 1)
				atomic.AddInt32(&pages, int32(result.PagesCount))
				atomic.AddInt32(&empty, int32(result.EmptyPages))
			}
			mu.Lock()
			stats.ReportIDs = append(stats.ReportIDs, result.Report.ID)
			if !result.Skipped {
				stats.UpdatedIDs = append(stats.UpdatedIDs, result.Report.ID)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.ReportsIngested = int(ingested)
	stats.ReportsSkipped = int(skipped)
	stats.ReportsFailed = int(failed)
	stats.PagesStored = int(pages)
	stats.EmptyPages = int(empty)

	return nil
}

// ingestReport hashes, extracts and stores a single report
func (ing *Ingester) ingestReport(ctx context.Context, path string, config *Config) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	hash, sizeBytes, err := computeFileHash(absPath)
	if err != nil {
		return nil, err
	}

	existing, err := ing.storage.GetReport(ctx, absPath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if existing != nil && existing.ContentHash == hash && !config.Force {
		return &Result{Report: existing, Skipped: true, PagesCount: existing.PageCount}, nil
	}

	pageTexts, err := ing.extractor.Extract(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	report := existing
	if report == nil {
		report = &storage.Report{SourcePath: absPath}
	}
	report.Title = reportTitle(absPath)
	report.ContentHash = hash
	report.SizeBytes = sizeBytes
	report.PageCount = len(pageTexts)
	report.LastIngestedAt = time.Now()

	empty, err := ing.storeReport(ctx, report, existing != nil, pageTexts)
	if err != nil {
		return nil, err
	}

	return &Result{Report: report, PagesCount: len(pageTexts), EmptyPages: empty}, nil
}

// storeReport writes the report row and all of its pages in one transaction
func (ing *Ingester) storeReport(ctx context.Context, report *storage.Report, exists bool, pageTexts []string) (int, error) {
	tx, err := ing.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if exists {
		if err := tx.UpdateReport(ctx, report); err != nil {
			return 0, err
		}
		// Drop old pages so a shorter revision leaves no stale tail
		if err := tx.DeletePagesByReport(ctx, report.ID); err != nil {
			return 0, fmt.Errorf("failed to delete old pages: %w", err)
		}
	} else {
		if err := tx.CreateReport(ctx, report); err != nil {
			return 0, err
		}
	}

	empty := 0
	for i, text := range pageTexts {
		charCount := textnorm.CharCount(text)
		if strings.TrimSpace(text) == "" {
			empty++
		}

		page := &storage.Page{
			ReportID:   report.ID,
			PageNumber: i + 1,
			Text:       text,
			CharCount:  charCount,
		}
		if err := tx.UpsertPage(ctx, page); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return empty, nil
}

func (s *Statistics) record(result *Result) {
	if result.Skipped {
		s.ReportsSkipped++
	} else {
		s.ReportsIngested++
		s.PagesStored += result.PagesCount
		s.EmptyPages += result.EmptyPages
		s.UpdatedIDs = append(s.UpdatedIDs, result.Report.ID)
	}
	s.ReportIDs = append(s.ReportIDs, result.Report.ID)
}

// reportTitle derives a display title from the file name
func reportTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return [32]byte{}, 0, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return [32]byte{}, 0, err
	}
	if info.IsDir() {
		return [32]byte{}, 0, fmt.Errorf("%s is a directory", filePath)
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, 0, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))

	return result, info.Size(), nil
}
