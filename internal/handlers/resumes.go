// resumes.go handles saved resume CRUD.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/database"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// CreateResume saves a resume from raw text.
// POST /api/v1/resumes
func (h *Handler) CreateResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "A non-empty 'title' (max 200 chars) is required")
		return
	}

	r := &models.Resume{
		UserID:  user.ID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
	}
	if err := h.DB.CreateResume(c.Request.Context(), r); err != nil {
		log.Printf("❌ Failed to create resume: %v", err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to create resume")
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ListResumes returns the user's resumes, most recently updated first.
// GET /api/v1/resumes
func (h *Handler) ListResumes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	resumes, err := h.DB.ListResumes(c.Request.Context(), user.ID, 50)
	if err != nil {
		log.Printf("❌ Failed to list resumes: %v", err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to list resumes")
		return
	}
	if resumes == nil {
		resumes = []models.Resume{}
	}
	c.JSON(http.StatusOK, resumes)
}

// GetResume returns one resume.
// GET /api/v1/resumes/:id
func (h *Handler) GetResume(c *gin.Context) {
	r, ok := h.loadResume(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// UpdateResume changes the title and/or content and bumps the version.
// PATCH /api/v1/resumes/:id
func (h *Handler) UpdateResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "Invalid resume update: "+err.Error())
		return
	}
	if req.Title == nil && req.Content == nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "Nothing to update; send title and/or content")
		return
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			errorJSON(c, http.StatusBadRequest, "invalid_request", "title cannot be empty")
			return
		}
		req.Title = &trimmed
	}

	r, err := h.DB.UpdateResume(c.Request.Context(), user.ID, c.Param("id"), database.ResumeUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeResumeError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteResume removes a resume and its analyses.
// DELETE /api/v1/resumes/:id
func (h *Handler) DeleteResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.DB.DeleteResume(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeResumeError(c, err, "delete")
		return
	}
	c.Status(http.StatusNoContent)
}

// loadResume resolves :id for the current user or writes an error.
func (h *Handler) loadResume(c *gin.Context) (*models.Resume, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	r, err := h.DB.GetResume(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeResumeError(c, err, "load")
		return nil, false
	}
	return r, true
}

func writeResumeError(c *gin.Context, err error, action string) {
	if errors.Is(err, database.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "not_found", "Resume not found")
		return
	}
	log.Printf("❌ Failed to %s resume: %v", action, err)
	errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to "+action+" resume")
}
