package models

import "time"

// CachedSummary holds the cached AI-generated summary for one article.
// There is at most one row per ArticleID.
type CachedSummary struct {
	ArticleID          string    `json:"article_id"`
	SourceLastModified time.Time `json:"source_last_modified"`
	Summary            string    `json:"summary"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	FromCache          bool      `json:"from_cache"`
	RefreshRequested   bool      `json:"refresh_requested"`
}

// SummaryStats is the aggregate view shown on the admin dashboard.
type SummaryStats struct {
	Total           int             `json:"total"`
	ServedFromCache int             `json:"served_from_cache"`
	PendingRefresh  int             `json:"pending_refresh"`
	RecentSummaries []RecentSummary `json:"recent_summaries"`
}

// RecentSummary is a shortened CachedSummary used in SummaryStats.
type RecentSummary struct {
	ArticleID          string    `json:"article_id"`
	SourceLastModified time.Time `json:"source_last_modified"`
	Summary            string    `json:"summary"`
}
