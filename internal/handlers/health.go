// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, String, Status)
// - Middleware data (c.Get/c.Set)
//
// Related handlers hang off one Handler struct that holds shared dependencies.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/database"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/middleware"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/analysis"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/storage"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/worker"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/session"
)

// Store is the persistence the handlers need. *database.DB satisfies it.
type Store interface {
	HealthCheck(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id string, fullName *string, prefs json.RawMessage) (*models.User, error)

	CreateResume(ctx context.Context, r *models.Resume) error
	GetResume(ctx context.Context, userID, id string) (*models.Resume, error)
	ListResumes(ctx context.Context, userID string, limit int) ([]models.Resume, error)
	UpdateResume(ctx context.Context, userID, id string, u database.ResumeUpdate) (*models.Resume, error)
	DeleteResume(ctx context.Context, userID, id string) error

	CreateAnalysis(ctx context.Context, a *models.Analysis) error
	ListAnalyses(ctx context.Context, resumeID string, limit int) ([]models.Analysis, error)
}

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Tests build a Handler
// with fakes instead of a live database.
type Handler struct {
	DB       Store
	Worker   *worker.Pool
	Sessions *session.Manager
	Scorer   analysis.Scorer
	Storage  *storage.Store

	JWTSecret         string
	MaxUploadBytes    int64
	ExtractionTimeout time.Duration
	Version           string
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	if h.DB == nil {
		dbStatus = "not configured"
	} else if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	resp := models.HealthResponse{
		Status:   "ok",
		Version:  h.Version,
		Database: dbStatus,
	}
	if h.Worker != nil {
		resp.Workers = h.Worker.WorkerCount()
		resp.Queued = h.Worker.QueueSize()
	}
	if h.Sessions != nil {
		resp.Sessions = h.Sessions.Count()
	}
	if h.Scorer != nil {
		resp.Scorer = h.Scorer.Name()
	}

	c.JSON(http.StatusOK, resp)
}

// errorJSON writes the standard error body.
func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.GetUser(c)
	if user == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return nil, false
	}
	return user, true
}
