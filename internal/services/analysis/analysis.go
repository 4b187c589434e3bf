// Package analysis scores a resume against a job description.
//
// Go Pattern: Scorer is a one-method interface, so handlers never care which
// implementation is configured. Swapping "sample" for "keyword" or "llm" is
// a config change, not a code change.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// Scorer names accepted by New.
const (
	ScorerSample  = "sample"
	ScorerKeyword = "keyword"
	ScorerLLM     = "llm"
)

// Scorer produces an ATS-style match result.
// Implementations must return promptly when ctx is cancelled.
type Scorer interface {
	Name() string
	Score(ctx context.Context, resumeText, jobDescription string) (*Result, error)
}

// Result is the outcome of one analysis.
type Result struct {
	Score       int                    `json:"score"`
	Keywords    []string               `json:"keywords"`
	Suggestions []models.Suggestion    `json:"suggestions"`
	Details     models.AnalysisDetails `json:"details"`
}

// fillEmpty replaces nil slices with empty ones so stored JSON carries []
// rather than null.
func (r *Result) fillEmpty() {
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []models.Suggestion{}
	}
	d := &r.Details
	if d.KeywordMatches == nil {
		d.KeywordMatches = []models.KeywordMatch{}
	}
	if d.SkillMatches == nil {
		d.SkillMatches = []models.SkillMatch{}
	}
	if d.SectionScores == nil {
		d.SectionScores = []models.SectionScore{}
	}
	if d.ImpactMetrics == nil {
		d.ImpactMetrics = []string{}
	}
}

// Config selects and configures a Scorer.
type Config struct {
	Kind        string
	SampleDelay time.Duration
	APIKey      string
	Model       string
}

// New builds the scorer named by cfg.Kind. An empty kind means "keyword".
func New(cfg Config) (Scorer, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", ScorerKeyword:
		return NewKeywordScorer(), nil
	case ScorerSample:
		return &SampleScorer{Delay: cfg.SampleDelay}, nil
	case ScorerLLM:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm scorer requires OPENROUTER_API_KEY")
		}
		return NewLLMScorer(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown analysis scorer %q (want sample, keyword or llm)", cfg.Kind)
	}
}

// clampScore keeps a score inside 0..100.
func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
