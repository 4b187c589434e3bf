package analysis

import (
	"context"
	"time"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// SampleScorer returns a fixed demonstration result after Delay.
// It ignores its inputs and is meant for demos and frontend work.
type SampleScorer struct {
	Delay time.Duration
}

func (s *SampleScorer) Name() string { return ScorerSample }

// Score waits for Delay (or ctx) and returns the sample result.
func (s *SampleScorer) Score(ctx context.Context, _, _ string) (*Result, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sampleResult(), nil
}

// sampleResult builds a fresh copy every call so callers may mutate it.
func sampleResult() *Result {
	return &Result{
		Score:    75,
		Keywords: []string{"React", "TypeScript", "Node.js", "REST API", "Git", "Agile", "Team Leadership"},
		Suggestions: []models.Suggestion{
			{Type: models.SuggestionMissing, Text: "Add experience with CI/CD pipelines", Section: "Experience"},
			{Type: models.SuggestionKeyword, Text: "Mention Docker or containerization work", Section: "Skills"},
			{Type: models.SuggestionImprovement, Text: "Quantify achievements with metrics where possible", Section: "Experience"},
		},
		Details: models.AnalysisDetails{
			KeywordMatches: []models.KeywordMatch{
				{Keyword: "React.js", Frequency: 3, Context: "Frontend Development, UI Components", Importance: models.ImportanceCritical, Found: true, Variations: []string{"React", "ReactJS", "React.js"}},
				{Keyword: "TypeScript", Frequency: 2, Context: "Frontend Development, Type Safety", Importance: models.ImportanceCritical, Found: true, Variations: []string{"TS", "TypeScript"}},
				{Keyword: "Docker", Frequency: 0, Context: "Container Development, DevOps", Importance: models.ImportanceRecommended, Found: false, Variations: []string{"Containerization", "Docker Container"}},
				{Keyword: "CI/CD", Frequency: 0, Context: "DevOps, Automation", Importance: models.ImportanceCritical, Found: false, Variations: []string{"Continuous Integration", "Continuous Deployment", "Pipeline"}},
				{Keyword: "Agile", Frequency: 1, Context: "Project Management, Development Methodology", Importance: models.ImportanceRecommended, Found: true, Variations: []string{"Scrum", "Kanban", "Sprint"}},
				{Keyword: "AWS", Frequency: 1, Context: "Cloud Infrastructure", Importance: models.ImportanceOptional, Found: true, Variations: []string{"Amazon Web Services", "Cloud Computing"}},
			},
			SkillMatches: []models.SkillMatch{
				{Name: "React", Score: 90, Required: true},
				{Name: "TypeScript", Score: 85, Required: true},
				{Name: "Node.js", Score: 70, Required: false},
				{Name: "Docker", Score: 20, Required: false},
			},
			SectionScores: []models.SectionScore{
				{Name: "Experience", Score: 80},
				{Name: "Education", Score: 90},
				{Name: "Skills", Score: 75},
				{Name: "Projects", Score: 60},
			},
			ExperienceYears: 5,
			EducationLevel:  "Bachelor's Degree",
			ImpactMetrics: []string{
				"Reduced page load time by 40%",
				"Led a team of 5 engineers",
			},
		},
	}
}
