package analysis

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// Limits on how much of the job description is reported back.
const (
	maxKeywordMatches = 15
	maxMissingHints   = 5
	maxImpactMetrics  = 5
	contextRadius     = 40
)

// stopWords filters common English words that add noise to keyword matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"years": true, "year": true, "experience": true, "strong": true,
	"must": true, "should": true, "including": true, "across": true,
}

// sections maps a display name to words that signal its presence.
var sections = []struct {
	name    string
	signals []string
}{
	{"Summary", []string{"summary", "profile", "objective"}},
	{"Experience", []string{"experience", "employment", "work history"}},
	{"Education", []string{"education", "university", "degree", "college"}},
	{"Skills", []string{"skills", "technologies", "competencies"}},
	{"Projects", []string{"projects", "portfolio"}},
}

var (
	yearsPattern  = regexp.MustCompile(`(?i)\b(\d{1,2})\+?\s*(?:years?|yrs?)\b`)
	metricPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*%|\$\s?\d[\d,.]*[kmb]?|\b\d+x\b`)
	sentenceSplit = regexp.MustCompile(`[.;\n]\s+|\n`)
)

// KeywordScorer scores by keyword overlap between resume and job text.
type KeywordScorer struct{}

// NewKeywordScorer creates a KeywordScorer.
func NewKeywordScorer() *KeywordScorer { return &KeywordScorer{} }

func (k *KeywordScorer) Name() string { return ScorerKeyword }

// Score is deterministic: the same inputs always give the same Result.
func (k *KeywordScorer) Score(ctx context.Context, resumeText, jobDescription string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resumeKW := tokenize(resumeText)
	jobKW := tokenize(jobDescription)

	inter := 0
	matching := []string{}
	for kw := range resumeKW {
		if jobKW[kw] > 0 {
			inter++
			matching = append(matching, kw)
		}
	}
	sort.Strings(matching)

	score := 0
	if union := len(resumeKW) + len(jobKW) - inter; union > 0 {
		score = clampScore(int(math.Round(float64(inter) / float64(union) * 100)))
	}

	ranked := rankByFrequency(jobKW)
	if len(ranked) > maxKeywordMatches {
		ranked = ranked[:maxKeywordMatches]
	}

	lowerResume := strings.ToLower(resumeText)
	keywordMatches := make([]models.KeywordMatch, 0, len(ranked))
	skillMatches := make([]models.SkillMatch, 0, len(ranked))
	suggestions := []models.Suggestion{}
	for _, kw := range ranked {
		freq := resumeKW[kw]
		importance := importanceFor(jobKW[kw])
		keywordMatches = append(keywordMatches, models.KeywordMatch{
			Keyword:    kw,
			Frequency:  freq,
			Context:    snippet(lowerResume, kw),
			Importance: importance,
			Found:      freq > 0,
		})

		skillScore := 0
		if freq > 0 {
			skillScore = clampScore(60 + 20*freq)
		}
		skillMatches = append(skillMatches, models.SkillMatch{
			Name:     kw,
			Score:    skillScore,
			Required: importance == models.ImportanceCritical,
		})

		if freq == 0 && len(suggestions) < maxMissingHints {
			suggestions = append(suggestions, models.Suggestion{
				Type:    models.SuggestionKeyword,
				Text:    fmt.Sprintf("Add %q to your resume if it reflects your experience", kw),
				Section: "Skills",
			})
		}
	}

	sectionScores := make([]models.SectionScore, 0, len(sections))
	for _, sec := range sections {
		s := 0
		if containsAny(lowerResume, sec.signals) {
			s = 100
		} else {
			suggestions = append(suggestions, models.Suggestion{
				Type:    models.SuggestionMissing,
				Text:    fmt.Sprintf("Add a %s section", sec.name),
				Section: sec.name,
			})
		}
		sectionScores = append(sectionScores, models.SectionScore{Name: sec.name, Score: s})
	}

	metrics := impactMetrics(resumeText)
	if len(metrics) == 0 {
		suggestions = append(suggestions, models.Suggestion{
			Type:    models.SuggestionImprovement,
			Text:    "Quantify achievements with numbers, percentages or amounts",
			Section: "Experience",
		})
	}

	return &Result{
		Score:       score,
		Keywords:    matching,
		Suggestions: suggestions,
		Details: models.AnalysisDetails{
			KeywordMatches:  keywordMatches,
			SkillMatches:    skillMatches,
			SectionScores:   sectionScores,
			ExperienceYears: experienceYears(resumeText),
			EducationLevel:  educationLevel(lowerResume),
			ImpactMetrics:   metrics,
		},
	}, nil
}

// tokenize lowercases text into keyword frequencies (>= 3 chars, no stop
// words). + # . count as word characters so "c++", "c#" and "node.js"
// survive intact.
func tokenize(text string) map[string]int {
	kw := make(map[string]int)
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) >= 3 && !stopWords[w] {
			kw[w]++
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// rankByFrequency orders keywords by descending count, then alphabetically.
func rankByFrequency(kw map[string]int) []string {
	out := make([]string, 0, len(kw))
	for w := range kw {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if kw[out[i]] != kw[out[j]] {
			return kw[out[i]] > kw[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func importanceFor(jobFreq int) models.Importance {
	switch {
	case jobFreq >= 3:
		return models.ImportanceCritical
	case jobFreq == 2:
		return models.ImportanceRecommended
	default:
		return models.ImportanceOptional
	}
}

// snippet returns the text around the first occurrence of kw.
func snippet(lower, kw string) string {
	i := strings.Index(lower, kw)
	if i < 0 {
		return ""
	}
	start := max(0, i-contextRadius)
	end := min(len(lower), i+len(kw)+contextRadius)
	// Stay on rune boundaries.
	for start > 0 && !utf8Start(lower[start]) {
		start--
	}
	for end < len(lower) && !utf8Start(lower[end]) {
		end++
	}
	return strings.TrimSpace(lower[start:end])
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// experienceYears returns the largest "N years" figure in the text.
func experienceYears(text string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

func educationLevel(lower string) string {
	switch {
	case containsAny(lower, []string{"ph.d", "phd", "doctorate"}):
		return "Doctorate"
	case containsAny(lower, []string{"master", "m.s.", "mba"}):
		return "Master's Degree"
	case containsAny(lower, []string{"bachelor", "b.s.", "b.a.", "bsc"}):
		return "Bachelor's Degree"
	case strings.Contains(lower, "associate"):
		return "Associate Degree"
	default:
		return ""
	}
}

// impactMetrics picks sentences that carry a number with a unit of impact.
func impactMetrics(text string) []string {
	out := []string{}
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" || !metricPattern.MatchString(strings.ToLower(s)) {
			continue
		}
		out = append(out, s)
		if len(out) == maxImpactMetrics {
			break
		}
	}
	return out
}
