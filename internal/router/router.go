// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/handlers"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/middleware"
)

// Options holds the router settings that are not handler dependencies.
type Options struct {
	AllowedOrigins []string
	RateLimit      int // requests per hour per user
}

// Setup creates and configures the Gin router with all routes.
// users resolves the account named in each JWT; usually the same store as h.DB.
func Setup(h *handlers.Handler, users middleware.UserLookup, opts Options) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(opts.AllowedOrigins))

	rateLimiter := middleware.NewRateLimiter(opts.RateLimit)

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	// --- JWT-protected, rate-limited routes ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(users, h.JWTSecret))
	protected.Use(rateLimiter.RateLimit())
	{
		// Account
		protected.GET("/auth/me", h.GetMe)
		protected.PATCH("/auth/me", h.UpdateMe)
		protected.POST("/auth/refresh", h.RefreshToken)

		// One-shot extraction
		protected.POST("/pdf/extract", h.ExtractPDF)

		// Editing sessions
		protected.POST("/sessions", h.CreateSession)
		protected.GET("/sessions/:id", h.GetSession)
		protected.DELETE("/sessions/:id", h.DeleteSession)
		protected.POST("/sessions/:id/upload", h.UploadToSession)
		protected.PUT("/sessions/:id/content", h.SetSessionContent)
		protected.POST("/sessions/:id/reset", h.ResetSession)
		protected.GET("/sessions/:id/export", h.ExportSession)
		protected.POST("/sessions/:id/save", h.SaveSession)

		// Saved resumes
		protected.POST("/resumes", h.CreateResume)
		protected.GET("/resumes", h.ListResumes)
		protected.GET("/resumes/:id", h.GetResume)
		protected.PATCH("/resumes/:id", h.UpdateResume)
		protected.DELETE("/resumes/:id", h.DeleteResume)
		protected.GET("/resumes/:id/export", h.ExportResume)

		// ATS analysis
		protected.POST("/resumes/:id/analyses", h.CreateAnalysis)
		protected.GET("/resumes/:id/analyses", h.ListAnalyses)

		// Stored uploads
		protected.GET("/files/*key", h.GetFile)
	}

	return r
}
