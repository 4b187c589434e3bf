// export.go handles resume export in multiple formats.
//
// Supported formats:
//   - txt:  the resume text as is
//   - md:   Markdown with a metadata table
//   - json: the resume with derived statistics
//
// Go Pattern: Each export format is its own function. Adding a format means
// adding a case to the switch and a formatter.
package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/buffer"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/textnorm"
)

// ExportResume exports a saved resume in the requested format.
// GET /api/v1/resumes/:id/export?format=txt|md|json
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
func (h *Handler) ExportResume(c *gin.Context) {
	format := c.DefaultQuery("format", "txt")

	// Validate format before doing any database work
	validFormats := map[string]bool{"txt": true, "md": true, "json": true}
	if !validFormats[format] {
		errorJSON(c, http.StatusBadRequest, "invalid_format", "Supported formats: txt, md, json")
		return
	}

	r, ok := h.loadResume(c)
	if !ok {
		return
	}

	// A title with no usable characters falls back to the editor's default name.
	filename := sanitizeFilename(r.Title)
	if filename == "" {
		filename = strings.TrimSuffix(buffer.ExportFilename, ".txt")
	}

	switch format {
	case "txt":
		exportTXT(c, r, filename)
	case "md":
		exportMarkdown(c, r, filename)
	case "json":
		exportJSON(c, r, filename)
	}
}

// exportTXT returns the resume as plain UTF-8 text.
func exportTXT(c *gin.Context, r *models.Resume, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.txt"`, filename))
	c.Data(http.StatusOK, buffer.ExportContentType, []byte(r.Content))
}

// exportMarkdown returns the resume as Markdown with a metadata header.
func exportMarkdown(c *gin.Context, r *models.Resume, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.md"`, filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(renderMarkdown(r)))
}

func renderMarkdown(r *models.Resume) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Version | %d |\n", r.Version))
	sb.WriteString(fmt.Sprintf("| Words | %d |\n", textnorm.WordCount(r.Content)))
	sb.WriteString(fmt.Sprintf("| Updated | %s |\n", r.UpdatedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n---\n\n")
	sb.WriteString(r.Content)
	sb.WriteString("\n")
	return sb.String()
}

// exportJSON returns the resume with derived statistics.
func exportJSON(c *gin.Context, r *models.Resume, filename string) {
	words := textnorm.WordCount(r.Content)
	exportData := map[string]interface{}{
		"id":           r.ID,
		"title":        r.Title,
		"content":      r.Content,
		"version":      r.Version,
		"file_url":     r.FileURL,
		"word_count":   words,
		"reading_time": readingTime(words),
		"created_at":   r.CreatedAt,
		"updated_at":   r.UpdatedAt,
	}

	jsonBytes, err := json.MarshalIndent(exportData, "", "  ")
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "export_error", "Failed to generate JSON export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", jsonBytes)
}

// --- Helper Functions ---

// readingTime estimates reading time at 200 words per minute.
func readingTime(words int) string {
	return fmt.Sprintf("%d min", int(math.Ceil(float64(words)/200.0)))
}

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple. Unsafe characters become hyphens; this only
// feeds the Content-Disposition header, never the filesystem.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
