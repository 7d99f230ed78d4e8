package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/themes"
)

// SettingsWriter persists runtime settings. *storage.Store implements it.
type SettingsWriter interface {
	SetSettings(ctx context.Context, values map[string]any) error
}

// configResponse is the admin view of the runtime settings. The API key is
// never returned, only whether one is set.
type configResponse struct {
	Version      uint64   `json:"version"`
	Provider     string   `json:"provider"`
	BaseURL      string   `json:"base_url"`
	Model        string   `json:"model"`
	SystemPrompt string   `json:"system_prompt"`
	APIKeySet    bool     `json:"api_key_set"`
	CORSOrigins  []string `json:"cors_origins"`
	Theme        string   `json:"theme"`
}

func newConfigResponse(snap *config.Snapshot) configResponse {
	cfg := snap.Config
	origins := cfg.Server.CORSOrigins
	if origins == nil {
		origins = []string{}
	}
	return configResponse{
		Version:      snap.Version,
		Provider:     cfg.AI.Provider,
		BaseURL:      cfg.AI.BaseURL,
		Model:        cfg.AI.Model,
		SystemPrompt: cfg.AI.SystemPrompt,
		APIKeySet:    cfg.AI.APIKey != "",
		CORSOrigins:  origins,
		Theme:        cfg.Themes.Active,
	}
}

// GetConfig handles GET /admin/api/config.
func GetConfig(settings *config.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newConfigResponse(settings.Current()))
	}
}

// persistError marks a failure to save settings, as opposed to a rejected
// value.
type persistError struct{ err error }

func (e *persistError) Error() string { return e.err.Error() }
func (e *persistError) Unwrap() error { return e.err }

// UpdateConfig handles PUT /admin/api/config. Only the fields present in the
// body change. The new settings are saved before they are published, so a
// failed save leaves the running configuration untouched.
func UpdateConfig(settings *config.Holder, store SettingsWriter, themeStore *themes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rs config.RuntimeSettings
		if err := decodeJSON(w, r, &rs); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		values := rs.Values()
		if len(values) == 0 {
			writeError(w, http.StatusBadRequest, "No settings to update")
			return
		}

		snap, err := settings.Update(
			func(cfg *config.Config) error {
				if rs.Theme != nil {
					if _, err := themeStore.Get(*rs.Theme); err != nil {
						return fmt.Errorf("theme %q: %w", *rs.Theme, err)
					}
				}
				rs.Apply(cfg)
				return nil
			},
			func(*config.Config) error {
				if err := store.SetSettings(r.Context(), values); err != nil {
					return &persistError{err: err}
				}
				return nil
			},
		)
		if err != nil {
			var pe *persistError
			if errors.As(err, &pe) {
				slog.Error("failed to save settings", "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to save settings")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		slog.Info("runtime settings updated", "version", snap.Version, "keys", len(values))
		writeJSON(w, http.StatusOK, newConfigResponse(snap))
	}
}
