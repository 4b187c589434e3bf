// Package pdf loads PDF documents and reads their text runs page by page.
//
// We use the ledongthuc/pdf library for parsing.
// It's a pure Go implementation with no CGO or external dependencies.
// Pages are parsed lazily and cached per document, so a caller that walks
// the document once pays for each page exactly once.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// Page is the text content of one page as reported by the document layer.
// Index is 1-based; Runs are in reading order.
type Page struct {
	Index int
	Runs  []string
}

// Document is a loaded PDF with lazy per-page text retrieval.
//
// Go Pattern: The underlying reader is not safe for concurrent use, so every
// access goes through the mutex. The page cache is keyed by page index.
type Document struct {
	mu        sync.Mutex
	reader    *pdf.Reader
	pageCount int
	cache     map[int]Page
	closed    bool
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// Load parses the PDF structure (header, xref, page tree) without reading
// any page content. The input bytes are never modified.
func Load(data []byte) (doc *Document, err error) {
	if !ValidatePDF(data) {
		return nil, &DocumentParseError{Reason: ReasonInvalidFormat}
	}

	// The parser panics on some malformed inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &DocumentParseError{Reason: ReasonCorrupt, Err: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DocumentParseError{Reason: classifyOpenError(err), Err: err}
	}

	return &Document{
		reader:    reader,
		pageCount: reader.NumPage(),
		cache:     make(map[int]Page),
	}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Page returns the runs of page i (1 <= i <= PageCount), parsing it on first
// access. Repeated calls for the same index are served from the cache.
func (d *Document) Page(ctx context.Context, i int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if i < 1 || i > d.pageCount {
		return Page{}, fmt.Errorf("page %d of %d: %w", i, d.pageCount, ErrPageOutOfRange)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Page{}, ErrClosed
	}
	if p, ok := d.cache[i]; ok {
		return p, nil
	}

	runs, err := d.readRuns(i)
	if err != nil {
		return Page{}, &PageExtractionError{Page: i, Err: err}
	}

	p := Page{Index: i, Runs: runs}
	d.cache[i] = p
	return p, nil
}

// Close evicts the page cache and releases the reader.
// Page returns ErrClosed afterwards. Close is idempotent.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.cache = nil
	d.reader = nil
}

// cachedPages reports how many pages are currently cached.
func (d *Document) cachedPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cache)
}

// readRuns reads one page's text rows. Caller holds d.mu.
func (d *Document) readRuns(i int) (runs []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	page := d.reader.Page(i)
	if page.V.IsNull() {
		// A missing page object has no text; it still occupies its index.
		return []string{}, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}
	// GetTextByRow recovers its own panics and then returns (nil, nil).
	// A readable page always yields a non-nil slice, even when empty.
	if rows == nil {
		return nil, errors.New("malformed page content: content stream could not be decoded")
	}

	runs = make([]string, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		if run := rowRun(row.Content); run != "" {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// classifyOpenError maps parser errors onto stable reason codes.
// The magic bytes were already checked, so a "not a PDF" complaint from the
// parser means the body is damaged. A "malformed" message wins over any
// mention of encryption: a broken encryption dictionary is corruption, not
// a password problem.
func classifyOpenError(err error) string {
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return ReasonEncrypted
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "malformed"):
		return ReasonCorrupt
	case strings.Contains(msg, "unsupported"):
		return ReasonUnsupportedEncoding
	case strings.Contains(msg, "encrypt"):
		return ReasonEncrypted
	default:
		return ReasonCorrupt
	}
}
