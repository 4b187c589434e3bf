// analyses.go scores saved resumes against job descriptions.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// maxJobDescription caps the job description so one request cannot hand the
// scorer (or the LLM) an unbounded prompt.
const maxJobDescription = 20000

// CreateAnalysis runs the configured scorer and stores the result.
// POST /api/v1/resumes/:id/analyses
func (h *Handler) CreateAnalysis(c *gin.Context) {
	r, ok := h.loadResume(c)
	if !ok {
		return
	}

	var req models.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.JobDescription) == "" {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "A non-empty 'job_description' is required")
		return
	}
	if len(req.JobDescription) > maxJobDescription {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "job_description is too long")
		return
	}
	if strings.TrimSpace(r.Content) == "" {
		errorJSON(c, http.StatusUnprocessableEntity, "empty_resume", "The resume has no text to analyze")
		return
	}
	if h.Scorer == nil {
		errorJSON(c, http.StatusServiceUnavailable, "unavailable", "Analysis is not configured")
		return
	}

	ctx := c.Request.Context()
	result, err := h.Scorer.Score(ctx, r.Content, req.JobDescription)
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nothing useful to write.
			log.Printf("⚠️  Analysis for resume %s cancelled: %v", r.ID, err)
			return
		}
		log.Printf("❌ Analysis failed for resume %s: %v", r.ID, err)
		errorJSON(c, http.StatusBadGateway, "analysis_failed", "Failed to analyze resume: "+err.Error())
		return
	}

	suggestions, err := json.Marshal(result.Suggestions)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "server_error", "Failed to encode suggestions")
		return
	}
	details, err := json.Marshal(result.Details)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "server_error", "Failed to encode details")
		return
	}

	a := &models.Analysis{
		ResumeID:       r.ID,
		JobDescription: req.JobDescription,
		Score:          result.Score,
		Keywords:       result.Keywords,
		Suggestions:    suggestions,
		Details:        details,
		ScorerUsed:     h.Scorer.Name(),
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if err := h.DB.CreateAnalysis(ctx, a); err != nil {
		log.Printf("❌ Failed to store analysis: %v", err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to store analysis")
		return
	}

	log.Printf("✅ Resume %s scored %d by %s", r.ID, a.Score, a.ScorerUsed)
	c.JSON(http.StatusCreated, a)
}

// ListAnalyses returns a resume's analyses, newest first.
// GET /api/v1/resumes/:id/analyses
func (h *Handler) ListAnalyses(c *gin.Context) {
	r, ok := h.loadResume(c)
	if !ok {
		return
	}

	analyses, err := h.DB.ListAnalyses(c.Request.Context(), r.ID, 20)
	if err != nil {
		log.Printf("❌ Failed to list analyses: %v", err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []models.Analysis{}
	}
	c.JSON(http.StatusOK, analyses)
}
