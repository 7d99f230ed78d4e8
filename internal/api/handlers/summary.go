package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/summary"
	"github.com/hoanghai1803/synopsis/internal/themes"
)

// ArticleExtractor loads the readable text of an article page.
// *feeds.Fetcher implements it.
type ArticleExtractor interface {
	ExtractArticle(ctx context.Context, articleURL string) (string, error)
}

type summarizeRequest struct {
	Message     string `json:"message"`
	LastUpdated string `json:"last_updated"`
	ArticleURL  string `json:"article_url"`
}

type summarizeContentRequest struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	LastUpdated string `json:"last_updated"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summarize handles POST /api/summary. The article is identified by its URL.
// When message is empty and extractor is non-nil, the article text is
// fetched from the URL, but only if the cache cannot answer.
func Summarize(svc *summary.Service, extractor ArticleExtractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		reported, err := parseTimestamp(req.LastUpdated)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var source summary.ContentSource
		if strings.TrimSpace(req.Message) == "" {
			if extractor == nil {
				writeError(w, http.StatusBadRequest, "message is required")
				return
			}
			articleURL := req.ArticleURL
			source = func(ctx context.Context) (string, error) {
				return extractor.ExtractArticle(ctx, articleURL)
			}
		}

		res, err := svc.SummarizeURL(r.Context(), req.ArticleURL, req.Message, source, reported)
		if err != nil {
			writeServiceError(w, err, "summarize")
			return
		}

		slog.Debug("summary served", "article_id", res.ArticleID, "decision", res.Decision)
		writeJSON(w, http.StatusOK, summaryResponse{Summary: res.Summary})
	}
}

// SummarizeContent handles POST /api/summary/content. The article is
// identified by an explicit ID and last_updated is optional.
func SummarizeContent(svc *summary.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeContentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		reported, err := parseTimestamp(req.LastUpdated)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := svc.SummarizeContent(r.Context(), req.ID, req.Content, reported)
		if err != nil {
			writeServiceError(w, err, "summarize content")
			return
		}

		writeJSON(w, http.StatusOK, summaryResponse{Summary: res.Summary})
	}
}

// CardTemplate handles GET /api/card-template. It returns the HTML template
// of the active theme.
func CardTemplate(settings *config.Holder, store *themes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := settings.Current().Config.Themes.Active

		card, err := store.Card(active)
		if err != nil {
			slog.Error("failed to load card template", "theme", active, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load card template")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"card": card})
	}
}
