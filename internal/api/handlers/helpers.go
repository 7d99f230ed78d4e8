package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/synopsis/internal/summary"
)

// maxBodyBytes bounds request bodies. Article content is the largest
// expected payload.
const maxBodyBytes = 2 << 20

// timestampLayout is the format of last_updated in summary requests.
const timestampLayout = "2006-01-02 15:04:05"

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// decodeJSON decodes a bounded JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decoding request body: unexpected data after JSON value")
	}
	return nil
}

// parseTimestamp parses an optional "YYYY-MM-DD HH:MM:SS" value as UTC. The
// empty string yields the zero time.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid last_updated %q: want YYYY-MM-DD HH:MM:SS", s)
	}
	return t, nil
}

// articleIDParam extracts the unescaped article ID from a chi URL parameter.
func articleIDParam(r *http.Request, param string) (string, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return "", fmt.Errorf("missing URL parameter %q", param)
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %q parameter: %w", param, err)
	}
	return id, nil
}

// writeServiceError maps a summary.Error to a response. Generation and
// persistence failures are logged in full but reported generically.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch summary.KindOf(err) {
	case summary.KindInvalidIdentity:
		writeError(w, http.StatusBadRequest, err.Error())
	case summary.KindNotFound:
		writeError(w, http.StatusNotFound, "Summary not found")
	case summary.KindCanceled:
		slog.Debug(op+" canceled", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Request canceled")
	case summary.KindGeneration:
		slog.Error(op+" failed", "kind", "generation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate summary")
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
