// users.go handles user-related database operations.
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
)

// CreateUser inserts a new user record.
// Returns ErrDuplicate if the email is taken.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	if len(u.Preferences) == 0 {
		u.Preferences = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO users (email, password_hash, full_name, preferences)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.FullName, string(u.Preferences),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", u.Email, ErrDuplicate)
	}
	return err
}

// GetUserByEmail retrieves a user by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// UpdateUserProfile changes the name and/or preferences of a user.
// Nil arguments leave the column unchanged; preferences are merged into the
// stored JSONB object rather than replacing it.
func (db *DB) UpdateUserProfile(ctx context.Context, id string, fullName *string, prefs json.RawMessage) (*models.User, error) {
	var prefsArg interface{}
	if len(prefs) > 0 {
		prefsArg = string(prefs)
	}

	var u models.User
	err := db.GetContext(ctx, &u, `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
			preferences = CASE WHEN $3::jsonb IS NULL THEN preferences ELSE preferences || $3::jsonb END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *`,
		id, fullName, prefsArg)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}
