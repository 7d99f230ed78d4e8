package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/synopsis/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /admin/api/login.
func Login(dir auth.Directory, gateway *auth.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		id, err := auth.Authenticate(r.Context(), dir, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrForbidden) {
				slog.Warn("admin login rejected", "username", req.Username)
				writeError(w, http.StatusUnauthorized, "Invalid username or password")
				return
			}
			slog.Error("admin login failed", "username", req.Username, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		token, expires, err := gateway.IssueToken(*id)
		if err != nil {
			slog.Error("failed to issue token", "username", id.Username, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		slog.Info("admin logged in", "username", id.Username)
		writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires.UTC()})
	}
}
