package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hoanghai1803/synopsis/internal/models"
	"github.com/hoanghai1803/synopsis/internal/storage"
)

// memDirectory is an in-memory Directory.
type memDirectory struct {
	admins  map[string]models.Admin
	upserts int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{admins: make(map[string]models.Admin)}
}

func (d *memDirectory) GetAdmin(_ context.Context, username string) (*models.Admin, error) {
	a, ok := d.admins[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (d *memDirectory) UpsertAdmin(_ context.Context, admin *models.Admin) error {
	d.upserts++
	d.admins[admin.Username] = *admin
	return nil
}

func TestSeedAndAuthenticate(t *testing.T) {
	dir := newMemDirectory()
	ctx := context.Background()

	if err := SeedAdmin(ctx, dir, "admin", "s3cret", "admin@example.com"); err != nil {
		t.Fatalf("SeedAdmin() error: %v", err)
	}
	if dir.admins["admin"].PasswordHash == "s3cret" {
		t.Fatal("password stored in plain text")
	}

	id, err := Authenticate(ctx, dir, "admin", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if id.Username != "admin" || id.Role != RoleAdmin {
		t.Errorf("Authenticate() = %+v", id)
	}

	tests := []struct {
		name, username, password string
	}{
		{name: "wrong password", username: "admin", password: "nope"},
		{name: "unknown user", username: "root", password: "s3cret"},
		{name: "empty password", username: "admin", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Authenticate(ctx, dir, tt.username, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	dir := newMemDirectory()
	ctx := context.Background()

	for range 2 {
		if err := SeedAdmin(ctx, dir, "admin", "s3cret", ""); err != nil {
			t.Fatalf("SeedAdmin() error: %v", err)
		}
	}
	if dir.upserts != 1 {
		t.Errorf("upserts = %d, want 1 when nothing changed", dir.upserts)
	}

	if err := SeedAdmin(ctx, dir, "admin", "changed", ""); err != nil {
		t.Fatalf("SeedAdmin() error: %v", err)
	}
	if dir.upserts != 2 {
		t.Errorf("upserts = %d, want 2 after a password change", dir.upserts)
	}
	if _, err := Authenticate(ctx, dir, "admin", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
}

func TestSeedAdmin_RequiresPassword(t *testing.T) {
	if err := SeedAdmin(context.Background(), newMemDirectory(), "admin", "", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestAuthenticate_NonAdminRole(t *testing.T) {
	dir := newMemDirectory()
	ctx := context.Background()
	if err := SeedAdmin(ctx, dir, "viewer", "pw", ""); err != nil {
		t.Fatalf("SeedAdmin() error: %v", err)
	}
	a := dir.admins["viewer"]
	a.Role = "viewer"
	dir.admins["viewer"] = a

	if _, err := Authenticate(ctx, dir, "viewer", "pw"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
