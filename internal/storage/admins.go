package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/synopsis/internal/models"
)

// UpsertAdmin creates the admin account or replaces its password hash, email
// and role if the username already exists.
func (s *Store) UpsertAdmin(ctx context.Context, admin *models.Admin) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash, email, role)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
			password_hash = excluded.password_hash,
			email         = excluded.email,
			role          = excluded.role`,
		admin.Username, admin.PasswordHash, nullableString(admin.Email), admin.Role,
	)
	if err != nil {
		return fmt.Errorf("upserting admin %q: %w", admin.Username, err)
	}
	return nil
}

// GetAdmin returns the admin account with the given username.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetAdmin(ctx context.Context, username string) (*models.Admin, error) {
	var (
		admin     models.Admin
		email     sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, email, role, created_at
		 FROM admins WHERE username = ?`, username,
	).Scan(&admin.Username, &admin.PasswordHash, &email, &admin.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting admin %q: %w", username, err)
	}
	admin.Email = email.String
	admin.CreatedAt = parseTime(createdAt)
	return &admin, nil
}

// nullableString converts an empty string to nil for nullable TEXT columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
