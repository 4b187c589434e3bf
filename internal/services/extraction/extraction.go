// Package extraction drives a loaded document through page-by-page text
// retrieval and normalization.
//
// Go Pattern: Extract depends on the small Source interface rather than on
// *pdf.Document, so tests can feed it fake pages and block on demand.
package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/textnorm"
)

// Source is anything that can hand out pages by 1-based index.
// *pdf.Document satisfies it.
type Source interface {
	PageCount() int
	Page(ctx context.Context, i int) (pdf.Page, error)
}

// ProgressFunc is called after each page with the number of pages done.
type ProgressFunc func(done, total int)

// Result is the outcome of a full extraction.
type Result struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	WordCount int    `json:"word_count"`
}

// Extract requests pages 1..N strictly in order and returns the normalized
// text. The first page error aborts the whole extraction; no partial text is
// ever returned. onPage may be nil.
func Extract(ctx context.Context, src Source, onPage ProgressFunc) (string, error) {
	total := src.PageCount()
	pages := make([]pdf.Page, 0, total)

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		p, err := src.Page(ctx, i)
		if err != nil {
			return "", err
		}
		pages = append(pages, p)

		if onPage != nil {
			onPage(i, total)
		}
	}

	return textnorm.Normalize(pages), nil
}

// ExtractPDF loads raw PDF bytes and extracts them in one call.
// A zero timeout means no ceiling beyond ctx itself.
func ExtractPDF(ctx context.Context, data []byte, timeout time.Duration) (*Result, error) {
	doc, err := pdf.Load(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := Extract(ctx, doc, nil)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	return &Result{
		Text:      text,
		PageCount: doc.PageCount(),
		WordCount: textnorm.WordCount(text),
	}, nil
}
