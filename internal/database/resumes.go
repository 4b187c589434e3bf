// resumes.go handles saved resume documents.
//
// Every query is scoped by user_id, so a resume that belongs to someone else
// looks exactly like one that does not exist.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// CreateResume inserts a new resume at version 1.
func (db *DB) CreateResume(ctx context.Context, r *models.Resume) error {
	query := `
		INSERT INTO resumes (user_id, title, content, file_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version, created_at, updated_at`

	return db.QueryRowContext(ctx, query,
		r.UserID, r.Title, r.Content, r.FileURL,
	).Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt)
}

// GetResume retrieves one of the user's resumes.
func (db *DB) GetResume(ctx context.Context, userID, id string) (*models.Resume, error) {
	var r models.Resume
	err := db.GetContext(ctx, &r, `SELECT * FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, notFound("resume", err)
	}
	return &r, nil
}

// ListResumes returns the user's resumes, most recently updated first.
func (db *DB) ListResumes(ctx context.Context, userID string, limit int) ([]models.Resume, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	resumes := []models.Resume{}
	err := db.SelectContext(ctx, &resumes,
		`SELECT * FROM resumes WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return resumes, nil
}

// ResumeUpdate lists the columns an update may touch. Nil means unchanged.
type ResumeUpdate struct {
	Title   *string
	Content *string
	FileURL *string
}

// UpdateResume applies u and increments the version in the same statement,
// so concurrent updates can never produce the same version twice.
func (db *DB) UpdateResume(ctx context.Context, userID, id string, u ResumeUpdate) (*models.Resume, error) {
	var r models.Resume
	err := db.GetContext(ctx, &r, `
		UPDATE resumes
		SET title = COALESCE($3, title),
			content = COALESCE($4, content),
			file_url = COALESCE($5, file_url),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING *`,
		id, userID, u.Title, u.Content, u.FileURL)
	if err != nil {
		return nil, notFound("resume", err)
	}
	return &r, nil
}

// DeleteResume removes a resume and, via ON DELETE CASCADE, its analyses.
func (db *DB) DeleteResume(ctx context.Context, userID, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if isInvalidText(err) {
		return fmt.Errorf("resume: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("resume: %w", ErrNotFound)
	}
	return nil
}
