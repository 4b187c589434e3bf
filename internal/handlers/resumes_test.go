package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/analysis"
)

func TestResumeCRUD(t *testing.T) {
	store := newFakeStore()
	r := testEngine(&Handler{DB: store, JWTSecret: testSecret}, store)
	_, token := store.addUser(t, "jane@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/resumes", token, map[string]string{"title": "  ", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/resumes", token, map[string]string{"title": "Backend", "content": "Go engineer"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Resume](t, w)
	assert.Equal(t, 1, created.Version)

	w = doJSON(t, r, http.MethodGet, "/api/v1/resumes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Resume](t, w), 1)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/resumes/"+created.ID, token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/resumes/"+created.ID, token, map[string]string{"content": "Senior Go engineer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Resume](t, w)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Backend", updated.Title)
	assert.Equal(t, "Senior Go engineer", updated.Content)

	w = doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[models.Resume](t, w).Version)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/resumes/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/resumes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestResumesAreScopedToOwner(t *testing.T) {
	store := newFakeStore()
	r := testEngine(&Handler{DB: store, JWTSecret: testSecret}, store)
	_, janeToken := store.addUser(t, "jane@example.com")
	_, bobToken := store.addUser(t, "bob@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/resumes", janeToken, map[string]string{"title": "Jane", "content": "private"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Resume](t, w).ID

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/resumes/" + id},
		{http.MethodPatch, "/api/v1/resumes/" + id},
		{http.MethodDelete, "/api/v1/resumes/" + id},
		{http.MethodGet, "/api/v1/resumes/" + id + "/export"},
		{http.MethodGet, "/api/v1/resumes/" + id + "/analyses"},
	} {
		w := doJSON(t, r, tc.method, tc.path, bobToken, map[string]string{"title": "stolen"})
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestExportResume(t *testing.T) {
	store := newFakeStore()
	r := testEngine(&Handler{DB: store, JWTSecret: testSecret}, store)
	_, token := store.addUser(t, "jane@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/resumes", token, map[string]string{"title": "Jane: Backend", "content": "Go and PostgreSQL"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Resume](t, w).ID

	tests := []struct {
		format      string
		contentType string
		filename    string
		contains    string
	}{
		{"", "text/plain; charset=utf-8", "Jane- Backend.txt", "Go and PostgreSQL"},
		{"txt", "text/plain; charset=utf-8", "Jane- Backend.txt", "Go and PostgreSQL"},
		{"md", "text/markdown; charset=utf-8", "Jane- Backend.md", "# Jane: Backend"},
		{"json", "application/json; charset=utf-8", "Jane- Backend.json", `"word_count": 3`},
	}
	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			path := "/api/v1/resumes/" + id + "/export"
			if tt.format != "" {
				path += "?format=" + tt.format
			}
			w := doJSON(t, r, http.MethodGet, path, token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, w.Header().Get("Content-Disposition"))
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+id+"/export?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_format", decode[models.ErrorResponse](t, w).Error)
}

func TestAnalyses(t *testing.T) {
	store := newFakeStore()
	h := &Handler{DB: store, JWTSecret: testSecret, Scorer: &analysis.SampleScorer{}}
	r := testEngine(h, store)
	_, token := store.addUser(t, "jane@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/resumes", token, map[string]string{"title": "Empty"})
	require.Equal(t, http.StatusCreated, w.Code)
	emptyID := decode[models.Resume](t, w).ID

	w = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+emptyID+"/analyses", token, map[string]string{"job_description": "React developer"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/resumes", token, map[string]string{"title": "Frontend", "content": "React and TypeScript"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Resume](t, w).ID

	w = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+id+"/analyses", token, map[string]string{"job_description": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+id+"/analyses", token, map[string]string{"job_description": "React developer"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[models.Analysis](t, w)
	assert.Equal(t, 75, a.Score)
	assert.Equal(t, "sample", a.ScorerUsed)
	assert.Len(t, a.Keywords, 7)

	var details models.AnalysisDetails
	require.NoError(t, json.Unmarshal(a.Details, &details))
	assert.Equal(t, 5, details.ExperienceYears)
	assert.Equal(t, "Bachelor's Degree", details.EducationLevel)

	w = doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+id+"/analyses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Analysis](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestAnalysisWithKeywordScorer(t *testing.T) {
	store := newFakeStore()
	h := &Handler{DB: store, JWTSecret: testSecret, Scorer: analysis.NewKeywordScorer()}
	r := testEngine(h, store)
	_, token := store.addUser(t, "jane@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/resumes", token, map[string]string{
		"title":   "Backend",
		"content": "Experience\nBuilt Kubernetes services in Golang with PostgreSQL.\n\nSkills\nGolang, PostgreSQL",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Resume](t, w).ID

	w = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+id+"/analyses", token, map[string]string{
		"job_description": "Golang engineer with PostgreSQL and Terraform",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[models.Analysis](t, w)
	assert.Equal(t, "keyword", a.ScorerUsed)
	assert.GreaterOrEqual(t, a.Score, 0)
	assert.LessOrEqual(t, a.Score, 100)
	assert.Contains(t, a.Keywords, "golang")
}
