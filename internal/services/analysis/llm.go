package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// OpenRouter provides a unified API for multiple LLM providers using a
// single API key. The request format follows the OpenAI chat completions
// standard.
const (
	openRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel = "openai/gpt-4o-mini"
	maxPromptChars  = 12000
)

// LLMScorer asks a language model to produce the analysis.
type LLMScorer struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewLLMScorer creates an LLMScorer. An empty model uses the default.
func NewLLMScorer(apiKey, model string) *LLMScorer {
	if model == "" {
		model = defaultLLMModel
	}
	return &LLMScorer{
		apiKey:   apiKey,
		model:    model,
		endpoint: openRouterURL,
		// Go Pattern: Always configure timeouts on HTTP clients.
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // LLMs can be slow
		},
	}
}

func (l *LLMScorer) Name() string { return ScorerLLM }

// --- OpenRouter API types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Score sends both texts to the model and parses its JSON answer.
func (l *LLMScorer) Score(ctx context.Context, resumeText, jobDescription string) (*Result, error) {
	log.Printf("🤖 Scoring resume against job description using %s", l.model)

	reqBody := chatRequest{
		Model: l.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an applicant tracking system. You compare resumes to job descriptions and answer only with JSON.",
			},
			{
				Role:    "user",
				Content: buildPrompt(resumeText, jobDescription),
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://github.com/Shimizu-Technology/resume-optimizer-api")
	req.Header.Set("X-Title", "Resume Optimizer API")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenRouter error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	return parseModelOutput(chatResp.Choices[0].Message.Content)
}

func buildPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`Compare the resume to the job description.

**Important:** Respond with valid JSON in this exact format:
{
  "score": 0-100,
  "keywords": ["job keywords found in the resume"],
  "suggestions": [{"type": "missing|improvement|keyword", "text": "...", "section": "..."}],
  "details": {
    "keyword_matches": [{"keyword": "...", "frequency": 0, "context": "...", "importance": "critical|recommended|optional", "found": true, "variations": []}],
    "skill_matches": [{"name": "...", "score": 0, "required": true}],
    "section_scores": [{"name": "...", "score": 0}],
    "experience_years": 0,
    "education_level": "...",
    "impact_metrics": ["..."]
  }
}

**Job description:**
%s

**Resume:**
%s`, truncate(jobDescription, maxPromptChars/3), truncate(resumeText, maxPromptChars))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "\n\n[Truncated due to length...]"
}

// parseModelOutput extracts the Result JSON from a model reply. Models
// sometimes wrap JSON in markdown, so the first balanced { ... } object is
// tried when the whole reply does not parse.
func parseModelOutput(content string) (*Result, error) {
	var res Result
	if err := json.Unmarshal([]byte(content), &res); err == nil {
		res.Score = clampScore(res.Score)
		res.fillEmpty()
		return &res, nil
	}

	if obj := firstObject(content); obj != "" {
		if err := json.Unmarshal([]byte(obj), &res); err == nil {
			res.Score = clampScore(res.Score)
			res.fillEmpty()
			return &res, nil
		}
	}
	return nil, fmt.Errorf("model reply did not contain an analysis object")
}

// firstObject returns the first balanced {...} span in s, or "".
func firstObject(s string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i, c := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
