package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoanghai1803/synopsis/internal/auth"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	if err := auth.SeedAdmin(context.Background(), env.store, "admin", "s3cret", "admin@example.com"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	h := Login(env.store, env.gateway)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid credentials", body: `{"username":"admin","password":"s3cret"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"root","password":"s3cret"}`, wantStatus: http.StatusUnauthorized},
		{name: "missing password", body: `{"username":"admin"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"username":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/admin/api/login", strings.NewReader(tt.body))
			w := serve(h, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			resp := decodeBody[loginResponse](t, w)
			if !resp.ExpiresAt.After(time.Now()) {
				t.Errorf("expires_at %v is not in the future", resp.ExpiresAt)
			}
			id, err := env.gateway.Verify(resp.Token)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if id.Username != "admin" || id.Role != auth.RoleAdmin {
				t.Errorf("got identity %+v", id)
			}
		})
	}
}
