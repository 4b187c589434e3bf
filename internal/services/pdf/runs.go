package pdf

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// spaceGapRatio is the horizontal gap, as a fraction of the font size,
// above which two glyphs on the same row are treated as separate words.
const spaceGapRatio = 0.15

// rowRun joins the glyphs of one text row into a single run.
//
// The PDF text layer reports positioned glyphs, not words; explicit spaces
// are often missing. We sort by X and insert a space wherever the gap to the
// previous glyph is wider than spaceGapRatio * font size.
func rowRun(texts pdf.TextHorizontal) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].X < sorted[b].X })

	var sb strings.Builder
	var prevEnd float64
	for i, t := range sorted {
		if t.S == "" {
			continue
		}
		if i > 0 && sb.Len() > 0 {
			gap := t.X - prevEnd
			if gap > spaceGapRatio*fontSize(t) && !endsWithSpace(sb.String()) && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
		prevEnd = t.X + glyphWidth(t)
	}
	return sb.String()
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 1
	}
	return t.FontSize
}

// glyphWidth falls back to half an em per rune when the font has no widths.
func glyphWidth(t pdf.Text) float64 {
	if t.W > 0 {
		return t.W
	}
	return 0.5 * fontSize(t) * float64(utf8.RuneCountInString(t.S))
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ")
}
