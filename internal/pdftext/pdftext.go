package pdftext

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of PDF files page by page
type Extractor struct{}

// NewExtractor creates a PDF text extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of every page of the PDF at path. Element i
// holds page i+1. Pages without content, or whose text cannot be decoded, are
// returned as empty strings so page numbering is preserved.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	return extractPages(ctx, r)
}

// ExtractReader is like Extract but reads the PDF from r
func (e *Extractor) ExtractReader(ctx context.Context, r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	return extractPages(ctx, reader)
}

func extractPages(ctx context.Context, r *pdf.Reader) ([]string, error) {
	numPages := r.NumPage()
	pages := make([]string, numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", i, err)
			continue
		}
		pages[i-1] = text
	}

	return pages, nil
}

// Document is the extracted text of one PDF. It satisfies session.PageSource.
type Document struct {
	path  string
	pages []string
}

// Open extracts the text of the PDF at path
func Open(ctx context.Context, path string) (*Document, error) {
	pages, err := NewExtractor().Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewDocument(path, pages), nil
}

// NewDocument wraps already extracted page texts
func NewDocument(path string, pages []string) *Document {
	return &Document{path: path, pages: pages}
}

// Path returns the file the document was read from
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages
func (d *Document) PageCount(_ context.Context) (int, error) {
	return len(d.pages), nil
}

// PageText returns the extracted text of a 1-based page
func (d *Document) PageText(_ context.Context, pageNumber int) (string, error) {
	if pageNumber < 1 || pageNumber > len(d.pages) {
		return "", fmt.Errorf("page %d out of range 1..%d", pageNumber, len(d.pages))
	}
	return d.pages[pageNumber-1], nil
}

// Pages returns a copy of every page's text
func (d *Document) Pages() []string {
	out := make([]string, len(d.pages))
	copy(out, d.pages)
	return out
}
