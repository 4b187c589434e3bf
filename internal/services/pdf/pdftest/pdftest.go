// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// Build writes a minimal PDF with one Helvetica text line per page.
// Offsets in the xref table are computed from the buffer so the file is valid.
func Build(pages ...string) []byte {
	return build("", pages)
}

// BuildFiltered is Build with every content stream declaring /Filter /<filter>.
// The stream bytes stay uncompressed, so any filter the parser does not know
// produces a structurally valid file whose pages cannot be decoded.
func BuildFiltered(filter string, pages ...string) []byte {
	return build(filter, pages)
}

func build(filter string, pages []string) []byte {
	var buf bytes.Buffer
	total := 4 + 2*len(pages)
	offsets := make([]int, total)

	obj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	var kids bytes.Buffer
	for k := range pages {
		fmt.Fprintf(&kids, "%d 0 R ", 4+2*k)
	}

	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), len(pages)))
	obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for k, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(4+2*k, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*k))
		dict := fmt.Sprintf("/Length %d", len(stream))
		if filter != "" {
			dict += " /Filter /" + filter
		}
		obj(5+2*k, fmt.Sprintf("<< %s >>\nstream\n%s\nendstream", dict, stream))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xrefStart)
	return buf.Bytes()
}
