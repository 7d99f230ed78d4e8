package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/hoanghai1803/synopsis/internal/models"
	"github.com/hoanghai1803/synopsis/internal/storage"
)

// Directory looks up and stores admin accounts. *storage.Store implements it.
type Directory interface {
	GetAdmin(ctx context.Context, username string) (*models.Admin, error)
	UpsertAdmin(ctx context.Context, admin *models.Admin) error
}

// dummyHash is compared against when the username is unknown, so a failed
// login takes about as long whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("synopsis-dummy-password"), bcrypt.DefaultCost)

// Authenticate checks username and password against the directory.
func Authenticate(ctx context.Context, dir Directory, username, password string) (*Identity, error) {
	admin, err := dir.GetAdmin(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if admin.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	return &Identity{Username: admin.Username, Role: admin.Role}, nil
}

// SeedAdmin makes sure the configured admin account exists with the given
// password. The stored hash is left alone when it already matches.
func SeedAdmin(ctx context.Context, dir Directory, username, password, email string) error {
	if username == "" || password == "" {
		return errors.New("seeding admin: username and password are required")
	}

	existing, err := dir.GetAdmin(ctx, username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if existing != nil &&
		existing.Email == email &&
		existing.Role == RoleAdmin &&
		bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	if err := dir.UpsertAdmin(ctx, &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Role:         RoleAdmin,
	}); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	slog.Info("admin account seeded", "username", username)
	return nil
}
