// auth.go handles user authentication HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/database"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/middleware"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// Register creates a new user account.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "A valid email and a password of at least 8 characters are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create account",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
	}

	if err := h.DB.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "email_taken",
				Message: "An account with this email already exists",
				Code:    http.StatusConflict,
			})
			return
		}
		log.Printf("❌ Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create account",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	h.issueToken(c, http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Email and password are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Unknown email and wrong password get the same answer.
	user, err := h.DB.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// GetMe returns the current authenticated user.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe changes the user's display name and/or preferences.
// PATCH /api/v1/auth/me
func (h *Handler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "Invalid profile update: "+err.Error())
		return
	}
	if req.FullName == nil && req.Preferences == nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "Nothing to update; send full_name and/or preferences")
		return
	}

	var prefs json.RawMessage
	if req.Preferences != nil {
		prefs, _ = json.Marshal(req.Preferences)
	}
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		req.FullName = &trimmed
	}

	updated, err := h.DB.UpdateUserProfile(c.Request.Context(), user.ID, req.FullName, prefs)
	if err != nil {
		log.Printf("❌ Failed to update profile for %s: %v", user.ID, err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RefreshToken issues a new JWT token for an authenticated user.
// POST /api/v1/auth/refresh
//
// Clients call this before the current token expires to stay signed in
// without re-entering their password.
func (h *Handler) RefreshToken(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	h.issueToken(c, http.StatusOK, user)
}

func (h *Handler) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := middleware.GenerateJWT(user, h.JWTSecret)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token_error",
			Message: "Failed to generate token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(status, models.AuthResponse{
		Token: token,
		User:  *user,
	})
}
