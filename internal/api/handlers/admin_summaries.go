package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/feeds"
	"github.com/hoanghai1803/synopsis/internal/storage"
	"github.com/hoanghai1803/synopsis/internal/summary"
)

// FeedFetcher loads the entries of the blog's feed. *feeds.Fetcher
// implements it.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) ([]feeds.Entry, error)
}

// ListSummaries handles
// GET /admin/api/summaries?page=&per_page=&search=&sort=&order=.
func ListSummaries(svc *summary.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseSummaryQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		page, err := svc.List(r.Context(), q)
		if err != nil {
			writeServiceError(w, err, "list summaries")
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

// parseSummaryQuery reads the listing parameters, rejecting values out of
// range instead of silently adjusting them.
func parseSummaryQuery(r *http.Request) (storage.SummaryQuery, error) {
	q := storage.DefaultSummaryQuery()
	params := r.URL.Query()

	if v := params.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, fmt.Errorf("invalid page %q: must be an integer >= 1", v)
		}
		q.Page = page
	}
	if v := params.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			return q, fmt.Errorf("invalid per_page %q: must be between 1 and 100", v)
		}
		q.PerPage = perPage
	}

	sort, err := storage.ParseSortField(params.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sort

	switch strings.ToLower(params.Get("order")) {
	case "", "desc":
		q.Desc = true
	case "asc":
		q.Desc = false
	default:
		return q, fmt.Errorf("invalid order %q: must be \"asc\" or \"desc\"", params.Get("order"))
	}

	q.Search = params.Get("search")
	return q, nil
}

// DeleteSummary handles DELETE /admin/api/summaries/{id}.
func DeleteSummary(svc *summary.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := articleIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err, "delete summary")
			return
		}

		slog.Info("summary deleted", "article_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// RefreshSummary handles POST /admin/api/summaries/{id}/refresh. The next
// request for the article regenerates its summary.
func RefreshSummary(svc *summary.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := articleIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := svc.Refresh(r.Context(), id); err != nil {
			writeServiceError(w, err, "refresh summary")
			return
		}

		slog.Info("summary refresh requested", "article_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "refresh_requested"})
	}
}

// Stats handles GET /admin/api/stats.
func Stats(svc *summary.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeServiceError(w, err, "summary stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// FeedAudit handles GET /admin/api/feed-audit. It reports, for every entry of
// the configured feed, whether the next summary request would be served from
// the cache.
func FeedAudit(svc *summary.Service, fetcher FeedFetcher, settings *config.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feedURL := settings.Current().Config.Blog.FeedURL
		if fetcher == nil || feedURL == "" {
			writeError(w, http.StatusConflict, "blog.feed_url is not configured")
			return
		}

		entries, err := fetcher.FetchFeed(r.Context(), feedURL)
		if err != nil {
			slog.Warn("feed audit fetch failed", "url", feedURL, "error", err)
			writeError(w, http.StatusBadGateway, "Failed to fetch feed")
			return
		}

		items := make([]summary.FeedItem, len(entries))
		for i, e := range entries {
			items[i] = summary.FeedItem{Title: e.Title, Link: e.Link, Updated: e.Updated}
		}

		report, err := svc.Audit(r.Context(), items)
		if err != nil {
			writeServiceError(w, err, "feed audit")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"feed_url": feedURL,
			"entries":  report,
		})
	}
}
