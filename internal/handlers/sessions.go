// sessions.go exposes editing sessions: upload a PDF, poll until its text
// is extracted, edit it, reset it, export it, save it as a resume.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/database"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/buffer"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/session"
)

// CreateSession starts an empty session.
// POST /api/v1/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	s := h.Sessions.Create(user.ID)
	c.JSON(http.StatusCreated, s.Response(false))
}

// GetSession returns the session state, including the text once ready.
// GET /api/v1/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Response(true))
}

// DeleteSession discards the session and cancels its extraction.
// DELETE /api/v1/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Sessions.Delete(user.ID, c.Param("id")); err != nil {
		errorJSON(c, http.StatusNotFound, "not_found", "Session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadToSession replaces the session's document and starts extraction.
// POST /api/v1/sessions/:id/upload
//
// Returns 202 immediately; poll GET /sessions/:id for the result. Uploading
// again while a previous file is still extracting supersedes it.
func (h *Handler) UploadToSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}

	data, header, ok := h.readPDFUpload(c)
	if !ok {
		return
	}

	if err := h.Sessions.Upload(s, header.Filename, data); err != nil {
		log.Printf("⚠️  Session %s: could not schedule extraction: %v", s.ID, err)
		if errors.Is(err, session.ErrQueueFull) {
			errorJSON(c, http.StatusServiceUnavailable, "queue_full", "Too many documents are being processed; try again shortly")
			return
		}
		errorJSON(c, http.StatusServiceUnavailable, "unavailable", "Extraction is not available right now")
		return
	}

	c.JSON(http.StatusAccepted, s.Response(false))
}

// SetSessionContent replaces the edited text.
// PUT /api/v1/sessions/:id/content
func (h *Handler) SetSessionContent(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req models.SetContentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "A 'content' string is required (it may be empty)")
		return
	}

	if err := h.Sessions.SetContent(s, *req.Content); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Response(true))
}

// ResetSession discards all edits.
// POST /api/v1/sessions/:id/reset
func (h *Handler) ResetSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	if err := h.Sessions.Reset(s); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Response(true))
}

// ExportSession downloads the edited text as resume.txt.
// GET /api/v1/sessions/:id/export
func (h *Handler) ExportSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	data, err := h.Sessions.Export(s)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+buffer.ExportFilename+`"`)
	c.Data(http.StatusOK, buffer.ExportContentType, data)
}

// SaveSession stores the edited text as a resume. The first save creates
// the resume; later saves update it and bump its version. The uploaded PDF
// is stored once per upload.
// POST /api/v1/sessions/:id/save
func (h *Handler) SaveSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req models.SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "A non-empty 'title' (max 200 chars) is required")
		return
	}
	title := strings.TrimSpace(req.Title)

	unlock := s.LockSave()
	defer unlock()

	content, err := h.Sessions.Content(s)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	ctx := c.Request.Context()
	resumeID, fileURL := s.Saved()
	if fileURL == nil && h.Storage != nil {
		if name, data := s.File(); len(data) > 0 {
			url, err := h.Storage.Save(ctx, s.UserID, name, data)
			if err != nil {
				log.Printf("⚠️  Session %s: failed to store upload: %v", s.ID, err)
			} else {
				fileURL = &url
			}
		}
	}

	if resumeID != "" {
		updated, err := h.DB.UpdateResume(ctx, s.UserID, resumeID, database.ResumeUpdate{
			Title:   &title,
			Content: &content,
			FileURL: fileURL,
		})
		if err == nil {
			s.MarkSaved(updated.ID, fileURL)
			c.JSON(http.StatusOK, updated)
			return
		}
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("❌ Failed to update resume %s: %v", resumeID, err)
			errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to save resume")
			return
		}
		// The resume was deleted since the last save; start a new one.
	}

	r := &models.Resume{
		UserID:  s.UserID,
		Title:   title,
		Content: content,
		FileURL: fileURL,
	}
	if err := h.DB.CreateResume(ctx, r); err != nil {
		log.Printf("❌ Failed to create resume: %v", err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to save resume")
		return
	}
	s.MarkSaved(r.ID, fileURL)
	c.JSON(http.StatusCreated, r)
}

// loadSession resolves :id for the current user or writes a 404.
func (h *Handler) loadSession(c *gin.Context) (*session.Session, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	s, err := h.Sessions.Get(user.ID, c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, "not_found", "Session not found")
		return nil, false
	}
	return s, true
}

func writeSessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotReady) {
		errorJSON(c, http.StatusConflict, "not_ready", "The session has no extracted text yet; upload a PDF and wait for it to be ready")
		return
	}
	errorJSON(c, http.StatusInternalServerError, "server_error", err.Error())
}
