// analyses.go stores ATS analysis results.
package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// analysisRow adds the text[] column that models.Analysis keeps out of sqlx.
type analysisRow struct {
	models.Analysis
	KeywordsArr pq.StringArray `db:"keywords"`
}

func (r analysisRow) toModel() models.Analysis {
	a := r.Analysis
	a.Keywords = []string(r.KeywordsArr)
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	return a
}

// CreateAnalysis inserts an analysis for a resume the caller already owns.
func (db *DB) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	query := `
		INSERT INTO analyses (resume_id, job_description, score, keywords, suggestions, details, scorer_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	// pq.Array converts a Go slice into a Postgres text[] parameter.
	return db.QueryRowContext(ctx, query,
		a.ResumeID, a.JobDescription, a.Score, pq.Array(a.Keywords),
		string(a.Suggestions), string(a.Details), a.ScorerUsed,
	).Scan(&a.ID, &a.CreatedAt)
}

// ListAnalyses returns a resume's analyses, newest first.
func (db *DB) ListAnalyses(ctx context.Context, resumeID string, limit int) ([]models.Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []analysisRow
	err := db.SelectContext(ctx, &rows, `
		SELECT id, resume_id, job_description, score, keywords, suggestions, details, scorer_used, created_at
		FROM analyses
		WHERE resume_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, resumeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	out := make([]models.Analysis, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}
