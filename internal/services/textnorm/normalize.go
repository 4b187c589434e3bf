// Package textnorm turns per-page text runs into canonical plain text.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/pdf"
)

// PageSeparator marks a page boundary in joined text.
const PageSeparator = "\n\n"

var (
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	// Any whitespace except a newline.
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)

	// Two or more newlines, optionally separated by spaces, plus the spaces
	// touching the run on either side.
	paragraphBreak = regexp.MustCompile(` *\n(?: *\n)+ *`)
)

// Normalize joins each page's runs with a single space, joins pages with
// PageSeparator and cleans the result. Pages must already be in index order.
// A document with no pages normalizes to "".
func Normalize(pages []pdf.Page) string {
	if len(pages) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString(PageSeparator)
		}
		sb.WriteString(strings.Join(p.Runs, " "))
	}
	return Clean(sb.String())
}

// Clean applies the whitespace rules to an already joined string:
// horizontal whitespace runs become one space, runs of two or more newlines
// become exactly two, and the result is trimmed. Clean is idempotent.
func Clean(text string) string {
	text = lineEndings.Replace(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = paragraphBreak.ReplaceAllString(text, PageSeparator)
	return strings.TrimSpace(text)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
