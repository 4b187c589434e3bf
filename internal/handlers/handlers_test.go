package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/database"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/middleware"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/analysis"
)

const testSecret = "test-secret"

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	resumes   map[string]*models.Resume
	analyses  []models.Analysis
	healthErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*models.User),
		resumes: make(map[string]*models.Resume),
	}
}

func (s *fakeStore) HealthCheck(ctx context.Context) error { return s.healthErr }

func (s *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user: %w", database.ErrDuplicate)
		}
	}
	u.ID = uuid.New().String()
	u.Preferences = json.RawMessage(`{}`)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", database.ErrNotFound)
}

func (s *fakeStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", database.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) UpdateUserProfile(ctx context.Context, id string, fullName *string, prefs json.RawMessage) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", database.ErrNotFound)
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if prefs != nil {
		u.Preferences = prefs
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) CreateResume(ctx context.Context, r *models.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.New().String()
	r.Version = 1
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	s.resumes[r.ID] = &cp
	return nil
}

func (s *fakeStore) GetResume(ctx context.Context, userID, id string) (*models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[id]
	if !ok || r.UserID != userID {
		return nil, fmt.Errorf("resume: %w", database.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) ListResumes(ctx context.Context, userID string, limit int) ([]models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Resume
	for _, r := range s.resumes {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *fakeStore) UpdateResume(ctx context.Context, userID, id string, u database.ResumeUpdate) (*models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[id]
	if !ok || r.UserID != userID {
		return nil, fmt.Errorf("resume: %w", database.ErrNotFound)
	}
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.FileURL != nil {
		r.FileURL = u.FileURL
	}
	r.Version++
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (s *fakeStore) DeleteResume(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[id]
	if !ok || r.UserID != userID {
		return fmt.Errorf("resume: %w", database.ErrNotFound)
	}
	delete(s.resumes, id)
	return nil
}

func (s *fakeStore) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now()
	s.analyses = append(s.analyses, *a)
	return nil
}

func (s *fakeStore) ListAnalyses(ctx context.Context, resumeID string, limit int) ([]models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Analysis
	for i := len(s.analyses) - 1; i >= 0; i-- {
		if s.analyses[i].ResumeID == resumeID {
			out = append(out, s.analyses[i])
		}
	}
	return out, nil
}

// addUser stores a user with a known password and returns a bearer token.
func (s *fakeStore) addUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Email: email, PasswordHash: string(hash)}
	require.NoError(t, s.CreateUser(context.Background(), u))
	token, err := middleware.GenerateJWT(u, testSecret)
	require.NoError(t, err)
	return u, token
}

// testEngine mounts the handlers the same way the router does.
func testEngine(h *Handler, users middleware.UserLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/api/v1/health", h.HealthCheck)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(users, testSecret))
	{
		api.GET("/auth/me", h.GetMe)
		api.PATCH("/auth/me", h.UpdateMe)
		api.POST("/auth/refresh", h.RefreshToken)

		api.POST("/pdf/extract", h.ExtractPDF)

		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.DeleteSession)
		api.POST("/sessions/:id/upload", h.UploadToSession)
		api.PUT("/sessions/:id/content", h.SetSessionContent)
		api.POST("/sessions/:id/reset", h.ResetSession)
		api.GET("/sessions/:id/export", h.ExportSession)
		api.POST("/sessions/:id/save", h.SaveSession)

		api.POST("/resumes", h.CreateResume)
		api.GET("/resumes", h.ListResumes)
		api.GET("/resumes/:id", h.GetResume)
		api.PATCH("/resumes/:id", h.UpdateResume)
		api.DELETE("/resumes/:id", h.DeleteResume)
		api.GET("/resumes/:id/export", h.ExportResume)
		api.POST("/resumes/:id/analyses", h.CreateAnalysis)
		api.GET("/resumes/:id/analyses", h.ListAnalyses)

		api.GET("/files/*key", h.GetFile)
	}
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, r http.Handler, path, token, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	store := newFakeStore()
	h := &Handler{DB: store, Scorer: &analysis.SampleScorer{}, Version: "test"}
	r := testEngine(h, store)

	w := doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "healthy", resp.Database)
	assert.Equal(t, "sample", resp.Scorer)
	assert.Equal(t, "test", resp.Version)

	store.healthErr = fmt.Errorf("connection refused")
	w = doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)
	resp = decode[models.HealthResponse](t, w)
	assert.Equal(t, "unhealthy: connection refused", resp.Database)
}

func TestAuthFlow(t *testing.T) {
	store := newFakeStore()
	h := &Handler{DB: store, JWTSecret: testSecret}
	r := testEngine(h, store)

	register := map[string]string{"email": "Jane@Example.com", "password": "password123", "full_name": " Jane Doe "}
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	auth := decode[models.AuthResponse](t, w)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "jane@example.com", auth.User.Email)
	assert.Equal(t, "Jane Doe", auth.User.FullName)
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "jane@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "jane@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[models.AuthResponse](t, w).Token

	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.User.ID, decode[models.User](t, w).ID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[models.AuthResponse](t, w).Token)
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	r := testEngine(&Handler{DB: store, JWTSecret: testSecret}, store)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"password": "password123"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "password123"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_request", decode[models.ErrorResponse](t, w).Error)
		})
	}
}

func TestUpdateMe(t *testing.T) {
	store := newFakeStore()
	r := testEngine(&Handler{DB: store, JWTSecret: testSecret}, store)
	_, token := store.addUser(t, "jane@example.com")

	w := doJSON(t, r, http.MethodPatch, "/api/v1/auth/me", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/auth/me", token, map[string]interface{}{
		"preferences": map[string]string{"theme": "purple"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/auth/me", token, map[string]interface{}{
		"full_name":   "Jane Q. Doe",
		"preferences": map[string]string{"theme": "dark"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u := decode[models.User](t, w)
	assert.Equal(t, "Jane Q. Doe", u.FullName)
	assert.JSONEq(t, `{"theme":"dark"}`, string(u.Preferences))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	store := newFakeStore()
	r := testEngine(&Handler{DB: store, JWTSecret: testSecret}, store)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/resumes"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		w = doJSON(t, r, http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
