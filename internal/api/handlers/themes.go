package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/themes"
)

type themeInfo struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type themeContent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ListThemes handles GET /admin/api/themes.
func ListThemes(store *themes.Store, settings *config.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := store.List()
		if err != nil {
			slog.Error("failed to list themes", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list themes")
			return
		}

		active := settings.Current().Config.Themes.Active
		out := make([]themeInfo, len(names))
		for i, name := range names {
			out[i] = themeInfo{Name: name, Active: name == active}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetTheme handles GET /admin/api/themes/{name}.
func GetTheme(store *themes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		content, err := store.Get(name)
		if err != nil {
			writeThemeError(w, err, name)
			return
		}
		writeJSON(w, http.StatusOK, themeContent{Name: name, Content: content})
	}
}

// PutTheme handles PUT /admin/api/themes/{name} with body {"content": "..."}.
func PutTheme(store *themes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		if err := store.Put(name, req.Content); err != nil {
			writeThemeError(w, err, name)
			return
		}

		slog.Info("theme saved", "theme", name)
		writeJSON(w, http.StatusOK, themeContent{Name: name, Content: req.Content})
	}
}

// DeleteTheme handles DELETE /admin/api/themes/{name}. The active theme
// cannot be deleted.
func DeleteTheme(store *themes.Store, settings *config.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		if name == settings.Current().Config.Themes.Active {
			writeError(w, http.StatusConflict, "Cannot delete the active theme")
			return
		}

		if err := store.Delete(name); err != nil {
			writeThemeError(w, err, name)
			return
		}

		slog.Info("theme deleted", "theme", name)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func writeThemeError(w http.ResponseWriter, err error, name string) {
	switch {
	case errors.Is(err, themes.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid theme name")
	case errors.Is(err, themes.ErrNotFound):
		writeError(w, http.StatusNotFound, "Theme not found")
	default:
		slog.Error("theme operation failed", "theme", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
