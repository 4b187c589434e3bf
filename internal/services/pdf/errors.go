package pdf

import (
	"errors"
	"fmt"
)

// Stable reason codes carried by DocumentParseError.
const (
	ReasonInvalidFormat       = "invalid-format"
	ReasonCorrupt             = "corrupt"
	ReasonEncrypted           = "encrypted"
	ReasonUnsupportedEncoding = "unsupported-encoding"
)

// DocumentParseError reports that a payload could not be opened as a PDF.
// The caller decides whether to ask for a new file; nothing is retried here.
type DocumentParseError struct {
	Reason string
	Err    error
}

func (e *DocumentParseError) Error() string {
	if e.Err == nil {
		return "document parse error: " + e.Reason
	}
	return fmt.Sprintf("document parse error: %s: %v", e.Reason, e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// Message returns a human-readable explanation suitable for API clients.
func (e *DocumentParseError) Message() string {
	switch e.Reason {
	case ReasonInvalidFormat:
		return "The uploaded file does not appear to be a valid PDF"
	case ReasonEncrypted:
		return "The PDF is password protected; upload an unlocked copy"
	case ReasonUnsupportedEncoding:
		return "The PDF uses an encoding that is not supported"
	default:
		return "The PDF is damaged and could not be read; please upload it again"
	}
}

// PageExtractionError reports that one page failed mid-document.
// Extraction is aborted as a whole when this happens.
type PageExtractionError struct {
	Page int
	Err  error
}

func (e *PageExtractionError) Error() string {
	return fmt.Sprintf("page %d: text extraction failed: %v", e.Page, e.Err)
}

func (e *PageExtractionError) Unwrap() error { return e.Err }

// ErrPageOutOfRange is returned for page indices outside 1..PageCount.
var ErrPageOutOfRange = errors.New("page index out of range")

// ErrClosed is returned by Page after Close has evicted the document.
var ErrClosed = errors.New("document closed")

// Reason extracts the stable reason code from an extraction error chain.
// It returns "" when err is not a document or page error.
func Reason(err error) string {
	var pe *DocumentParseError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	var pg *PageExtractionError
	if errors.As(err, &pg) {
		return "page-extraction"
	}
	return ""
}
