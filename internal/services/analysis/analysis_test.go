package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

const testResume = `Jane Doe Summary Senior engineer with 7 years of experience building Go and PostgreSQL services.
Experience Led migration to Kubernetes, cutting deploy time by 60%. Built REST APIs in Go.
Education Bachelor of Science in Computer Science.
Skills Go, PostgreSQL, Docker, Kubernetes, node.js`

const testJob = `We need a backend engineer with Go, Go and Go. PostgreSQL and Kubernetes required.
Experience with Terraform and Terraform modules. Kafka is a plus.`

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"default is keyword", Config{}, ScorerKeyword, false},
		{"sample", Config{Kind: "sample"}, ScorerSample, false},
		{"case insensitive", Config{Kind: "KEYWORD"}, ScorerKeyword, false},
		{"llm with key", Config{Kind: "llm", APIKey: "k"}, ScorerLLM, false},
		{"llm without key", Config{Kind: "llm"}, "", true},
		{"unknown", Config{Kind: "magic"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}

func TestSampleScorer(t *testing.T) {
	s := &SampleScorer{}
	res, err := s.Score(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 75, res.Score)
	assert.Len(t, res.Keywords, 7)
	assert.Len(t, res.Details.KeywordMatches, 6)
	assert.Equal(t, 5, res.Details.ExperienceYears)
	assert.Equal(t, "Bachelor's Degree", res.Details.EducationLevel)

	// Each call returns an independent copy.
	res.Keywords[0] = "changed"
	again, err := s.Score(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "React", again.Keywords[0])
}

func TestSampleScorer_HonoursContext(t *testing.T) {
	s := &SampleScorer{Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Score(ctx, "", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeywordScorer(t *testing.T) {
	k := NewKeywordScorer()
	res, err := k.Score(context.Background(), testResume, testJob)
	require.NoError(t, err)

	assert.Contains(t, res.Keywords, "postgresql")
	assert.Contains(t, res.Keywords, "kubernetes")
	assert.NotContains(t, res.Keywords, "terraform")
	assert.Greater(t, res.Score, 0)
	assert.LessOrEqual(t, res.Score, 100)

	// Two-letter "go" is below the token length floor.
	assert.NotContains(t, res.Keywords, "go")

	var terraform *models.KeywordMatch
	for i := range res.Details.KeywordMatches {
		if res.Details.KeywordMatches[i].Keyword == "terraform" {
			terraform = &res.Details.KeywordMatches[i]
		}
	}
	require.NotNil(t, terraform)
	assert.False(t, terraform.Found)
	assert.Equal(t, models.ImportanceRecommended, terraform.Importance)

	hasHint := false
	for _, s := range res.Suggestions {
		if s.Type == models.SuggestionKeyword && s.Section == "Skills" {
			hasHint = true
		}
	}
	assert.True(t, hasHint, "missing keywords produce suggestions")

	assert.Equal(t, 7, res.Details.ExperienceYears)
	assert.Equal(t, "Bachelor's Degree", res.Details.EducationLevel)
	assert.NotEmpty(t, res.Details.ImpactMetrics)
	assert.Len(t, res.Details.SectionScores, 5)
}

func TestKeywordScorer_Deterministic(t *testing.T) {
	k := NewKeywordScorer()
	a, err := k.Score(context.Background(), testResume, testJob)
	require.NoError(t, err)
	b, err := k.Score(context.Background(), testResume, testJob)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKeywordScorer_EmptyInputs(t *testing.T) {
	res, err := NewKeywordScorer().Score(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Keywords)
	assert.NotNil(t, res.Keywords)
}

func TestKeywordScorer_NoJobKeywords(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		job    string
	}{
		{"stop words only", testResume, "the and with for you are"},
		{"short words only", testResume, "go c# to be or no"},
		{"empty resume", "", "the and of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewKeywordScorer().Score(context.Background(), tt.resume, tt.job)
			require.NoError(t, err)

			assert.NotNil(t, res.Keywords)
			assert.NotNil(t, res.Suggestions)
			assert.NotNil(t, res.Details.KeywordMatches)
			assert.NotNil(t, res.Details.SkillMatches)
			assert.NotNil(t, res.Details.ImpactMetrics)
			assert.Empty(t, res.Details.KeywordMatches)

			raw, err := json.Marshal(res)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "null")
		})
	}
}

func TestParseModelOutput_MissingArrays(t *testing.T) {
	res, err := parseModelOutput(`{"score": 50}`)
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")
	assert.Equal(t, []string{}, res.Keywords)
}

func TestTokenize(t *testing.T) {
	got := tokenize("C++ and C# with Node.js. Node.js, the Go API")
	assert.Equal(t, 1, got["c++"])
	assert.Equal(t, 2, got["node.js"])
	assert.Equal(t, 1, got["api"])
	assert.NotContains(t, got, "and")
	assert.NotContains(t, got, "the")
	assert.NotContains(t, got, "c#", "two characters is below the floor")
}

func TestParseModelOutput(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantScore int
		wantErr   bool
	}{
		{"plain json", `{"score": 82, "keywords": ["go"]}`, 82, false},
		{"markdown fence", "Here you go:\n```json\n{\"score\": 64, \"suggestions\": [{\"type\": \"keyword\", \"text\": \"add {braces}\"}]}\n```", 64, false},
		{"clamped", `{"score": 140}`, 100, false},
		{"no json", "I cannot help with that.", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseModelOutput(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
		})
	}
}

func TestLLMScorer_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"score\": 71, \"keywords\": [\"Go\"]}"}}]}`))
	}))
	defer srv.Close()

	l := NewLLMScorer("test-key", "")
	l.endpoint = srv.URL

	res, err := l.Score(context.Background(), "resume", "job")
	require.NoError(t, err)
	assert.Equal(t, 71, res.Score)
	assert.Equal(t, []string{"Go"}, res.Keywords)
}

func TestLLMScorer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	l := NewLLMScorer("test-key", "")
	l.endpoint = srv.URL

	_, err := l.Score(context.Background(), "resume", "job")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
