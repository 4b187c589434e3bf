// pdf.go handles synchronous PDF text extraction.
//
// POST /api/v1/pdf/extract, upload a PDF and get its text back in one call
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/extraction"
	pdfservice "github.com/Shimizu-Technology/resume-optimizer-api/internal/services/pdf"
)

// defaultMaxUpload applies when the Handler has no configured limit.
const defaultMaxUpload = 10 << 20 // 10MB

// ExtractPDF handles PDF file upload and text extraction.
// POST /api/v1/pdf/extract
//
// Accepts multipart file upload with field name "file".
// Only .pdf files are accepted. Processing is synchronous.
func (h *Handler) ExtractPDF(c *gin.Context) {
	data, header, ok := h.readPDFUpload(c)
	if !ok {
		return
	}

	result, err := extraction.ExtractPDF(c.Request.Context(), data, h.ExtractionTimeout)
	if err != nil {
		log.Printf("⚠️  PDF extraction failed for %s: %v", header.Filename, err)
		writeExtractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ExtractionResponse{
		FileName:  header.Filename,
		Text:      result.Text,
		PageCount: result.PageCount,
		WordCount: result.WordCount,
	})
}

// readPDFUpload reads the multipart "file" field, enforcing the size limit
// and the .pdf extension. On failure it has already written the response.
func (h *Handler) readPDFUpload(c *gin.Context) ([]byte, *multipart.FileHeader, bool) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	// Multipart framing adds a little on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errorJSON(c, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("File exceeds the %dMB limit", limit>>20))
			return nil, nil, false
		}
		errorJSON(c, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("No PDF file provided. Upload a file with the field name 'file'. Max size: %dMB.", limit>>20))
		return nil, nil, false
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		errorJSON(c, http.StatusBadRequest, "invalid_file_type",
			fmt.Sprintf("Unsupported file format '%s'. Only .pdf files are accepted.", ext))
		return nil, nil, false
	}
	if header.Size > limit {
		errorJSON(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Sprintf("File exceeds the %dMB limit", limit>>20))
		return nil, nil, false
	}

	// The pdf library needs random access, so the whole file is read into memory.
	data, err := io.ReadAll(file)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "read_error", "Failed to read uploaded file")
		return nil, nil, false
	}
	return data, header, true
}

// extractionErrorCodes maps loader reasons onto API error codes.
var extractionErrorCodes = map[string]string{
	pdfservice.ReasonInvalidFormat:       "invalid_pdf",
	pdfservice.ReasonCorrupt:             "corrupt_pdf",
	pdfservice.ReasonEncrypted:           "encrypted_pdf",
	pdfservice.ReasonUnsupportedEncoding: "unsupported_encoding",
}

// writeExtractionError turns a load or extraction failure into a response.
func writeExtractionError(c *gin.Context, err error) {
	var parseErr *pdfservice.DocumentParseError
	var pageErr *pdfservice.PageExtractionError

	switch {
	case errors.As(err, &parseErr):
		errorJSON(c, http.StatusUnprocessableEntity, extractionErrorCodes[parseErr.Reason], parseErr.Message())
	case errors.As(err, &pageErr):
		errorJSON(c, http.StatusUnprocessableEntity, "page_extraction_failed",
			fmt.Sprintf("Text on page %d could not be read; please try another copy of the file", pageErr.Page))
	case errors.Is(err, context.DeadlineExceeded):
		errorJSON(c, http.StatusGatewayTimeout, "extraction_timeout", "The PDF took too long to process")
	default:
		errorJSON(c, http.StatusInternalServerError, "extraction_failed", "PDF text extraction failed")
	}
}
