// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// The `db` tags work with sqlx for database column mapping. Persistence
// lives in the database package; models stay plain data containers.
package models

import (
	"encoding/json"
	"time"
)

// User is a registered account.
type User struct {
	ID           string          `json:"id" db:"id"`
	Email        string          `json:"email" db:"email"`
	PasswordHash string          `json:"-" db:"password_hash"` // "-" means never serialize to JSON
	FullName     string          `json:"full_name,omitempty" db:"full_name"`
	Preferences  json.RawMessage `json:"preferences" db:"preferences"` // JSONB
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Preferences is the decoded form of User.Preferences.
type Preferences struct {
	DefaultTemplate    string `json:"default_template,omitempty"`
	EmailNotifications *bool  `json:"email_notifications,omitempty"`
	Theme              string `json:"theme,omitempty" binding:"omitempty,oneof=light dark"`
}

// Resume is a saved resume document.
// Version starts at 1 and is bumped by the database on every update.
type Resume struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	FileURL   *string   `json:"file_url,omitempty" db:"file_url"` // Pointer = nullable
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SuggestionType classifies an analysis suggestion.
type SuggestionType string

const (
	SuggestionMissing     SuggestionType = "missing"
	SuggestionImprovement SuggestionType = "improvement"
	SuggestionKeyword     SuggestionType = "keyword"
)

// Suggestion is a single piece of advice produced by an analysis.
type Suggestion struct {
	Type    SuggestionType `json:"type"`
	Text    string         `json:"text"`
	Section string         `json:"section,omitempty"`
}

// Importance ranks how much a keyword matters for a job description.
type Importance string

const (
	ImportanceCritical    Importance = "critical"
	ImportanceRecommended Importance = "recommended"
	ImportanceOptional    Importance = "optional"
)

// KeywordMatch describes how a single job keyword shows up in a resume.
type KeywordMatch struct {
	Keyword    string     `json:"keyword"`
	Frequency  int        `json:"frequency"`
	Context    string     `json:"context"`
	Importance Importance `json:"importance"`
	Found      bool       `json:"found"`
	Variations []string   `json:"variations,omitempty"`
}

// SkillMatch scores one skill from the job description.
type SkillMatch struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Required bool   `json:"required"`
}

// SectionScore scores one resume section.
type SectionScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// AnalysisDetails holds the parts of an analysis stored as a JSONB blob.
type AnalysisDetails struct {
	KeywordMatches  []KeywordMatch `json:"keyword_matches"`
	SkillMatches    []SkillMatch   `json:"skill_matches"`
	SectionScores   []SectionScore `json:"section_scores"`
	ExperienceYears int            `json:"experience_years"`
	EducationLevel  string         `json:"education_level"`
	ImpactMetrics   []string       `json:"impact_metrics"`
}

// Analysis is a stored ATS match result for one resume and job description.
type Analysis struct {
	ID             string          `json:"id" db:"id"`
	ResumeID       string          `json:"resume_id" db:"resume_id"`
	JobDescription string          `json:"job_description" db:"job_description"`
	Score          int             `json:"score" db:"score"`
	Keywords       []string        `json:"keywords" db:"-"` // text[], scanned with pq.Array
	Suggestions    json.RawMessage `json:"suggestions" db:"suggestions"`
	Details        json.RawMessage `json:"details" db:"details"`
	ScorerUsed     string          `json:"scorer_used" db:"scorer_used"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---
// Go Pattern: Separate structs for API input/output vs database models.

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest is the JSON body for PATCH /api/v1/auth/me.
type UpdateProfileRequest struct {
	FullName    *string      `json:"full_name"`
	Preferences *Preferences `json:"preferences"`
}

// CreateResumeRequest is the JSON body for POST /api/v1/resumes.
type CreateResumeRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content"`
}

// UpdateResumeRequest is the JSON body for PATCH /api/v1/resumes/:id.
// Nil fields are left unchanged.
type UpdateResumeRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Content *string `json:"content"`
}

// SaveSessionRequest is the JSON body for POST /api/v1/sessions/:id/save.
type SaveSessionRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// SetContentRequest is the JSON body for PUT /api/v1/sessions/:id/content.
// Content may legitimately be empty, so it is a pointer checked by hand.
type SetContentRequest struct {
	Content *string `json:"content" binding:"required"`
}

// CreateAnalysisRequest is the JSON body for POST /api/v1/resumes/:id/analyses.
type CreateAnalysisRequest struct {
	JobDescription string `json:"job_description" binding:"required"`
}

// SessionResponse is the API view of an editing session.
type SessionResponse struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Generation uint64    `json:"generation"`
	FileName   string    `json:"file_name,omitempty"`
	PagesDone  int       `json:"pages_done"`
	PageCount  int       `json:"page_count"`
	Reason     string    `json:"reason,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Dirty      bool      `json:"dirty"`
	ResumeID   string    `json:"resume_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ExtractionResponse is returned by the synchronous POST /api/v1/pdf/extract.
type ExtractionResponse struct {
	FileName  string `json:"file_name"`
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	WordCount int    `json:"word_count"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Workers  int    `json:"workers"`
	Queued   int    `json:"queued"`
	Sessions int    `json:"sessions"`
	Scorer   string `json:"scorer"`
}
