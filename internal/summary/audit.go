package summary

import (
	"context"
	"errors"
	"time"

	"github.com/hoanghai1803/synopsis/internal/storage"
)

// FeedItem is one article listed in the blog's feed.
type FeedItem struct {
	Title   string
	Link    string
	Updated time.Time
}

// AuditEntry reports what a summary request for a feed item would do now.
type AuditEntry struct {
	Title          string     `json:"title"`
	Link           string     `json:"link"`
	ArticleID      string     `json:"article_id,omitempty"`
	Updated        *time.Time `json:"updated,omitempty"`
	CachedModified *time.Time `json:"cached_modified,omitempty"`
	Decision       string     `json:"decision,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Audit compares every feed item with the cache without calling the model
// or writing anything. Items whose link does not identify an article are
// reported with an error instead of a decision.
func (s *Service) Audit(ctx context.Context, items []FeedItem) ([]AuditEntry, error) {
	marker := s.settings.Current().Config.Blog.ArticlePathMarker

	entries := make([]AuditEntry, 0, len(items))
	for _, item := range items {
		entry := AuditEntry{Title: item.Title, Link: item.Link}
		updated := watermark(item.Updated)
		if !updated.IsZero() {
			entry.Updated = &updated
		}

		id, err := ArticleIDFromURL(item.Link, marker)
		if err != nil {
			entry.Error = err.Error()
			entries = append(entries, entry)
			continue
		}
		entry.ArticleID = id

		cached, err := s.store.GetSummary(ctx, id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, newError(KindPersistence, "audit feed", err)
		}
		if cached != nil {
			modified := cached.SourceLastModified
			entry.CachedModified = &modified
		}
		entry.Decision = Decide(cached, updated).String()
		entries = append(entries, entry)
	}
	return entries, nil
}
