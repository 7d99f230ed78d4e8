package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hoanghai1803/synopsis/internal/models"
)

const summaryColumns = `article_id, source_last_modified, summary, created_at, updated_at, from_cache, refresh_requested`

// GetSummary returns the cached summary for the given article ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetSummary(ctx context.Context, articleID string) (*models.CachedSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM article_summaries WHERE article_id = ?`, articleID)

	summary, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting summary %q: %w", articleID, err)
	}
	return summary, nil
}

// CommitSummary inserts a freshly generated summary or replaces the existing
// one for the same article, inside a single transaction. The stored row has
// from_cache and refresh_requested cleared, and updated_at never moves
// backwards. The committed row is returned.
func (s *Store) CommitSummary(ctx context.Context, summary *models.CachedSummary) (*models.CachedSummary, error) {
	if summary.ArticleID == "" {
		return nil, fmt.Errorf("committing summary: empty article id")
	}
	if strings.TrimSpace(summary.Summary) == "" {
		return nil, fmt.Errorf("committing summary %q: %w", summary.ArticleID, ErrEmptySummary)
	}

	now := formatTime(s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO article_summaries
			(article_id, source_last_modified, summary, created_at, updated_at, from_cache, refresh_requested)
		 VALUES (?, ?, ?, ?, ?, 0, 0)
		 ON CONFLICT(article_id) DO UPDATE SET
			source_last_modified = excluded.source_last_modified,
			summary              = excluded.summary,
			updated_at           = MAX(article_summaries.updated_at, excluded.updated_at),
			from_cache           = 0,
			refresh_requested    = 0`,
		summary.ArticleID, formatTime(summary.SourceLastModified), summary.Summary, now, now,
	); err != nil {
		return nil, fmt.Errorf("upserting summary %q: %w", summary.ArticleID, err)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM article_summaries WHERE article_id = ?`, summary.ArticleID)
	committed, err := scanSummary(row)
	if err != nil {
		return nil, fmt.Errorf("reading committed summary %q: %w", summary.ArticleID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return committed, nil
}

// MarkServedFromCache records that the latest response for the article was
// answered from the cache. Returns ErrNotFound if the row does not exist.
func (s *Store) MarkServedFromCache(ctx context.Context, articleID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE article_summaries
		 SET from_cache = 1, updated_at = MAX(updated_at, ?)
		 WHERE article_id = ?`,
		formatTime(s.now()), articleID,
	)
	if err != nil {
		return fmt.Errorf("marking summary %q as cached: %w", articleID, err)
	}
	return requireAffected(res, "marking summary as cached")
}

// RequestRefresh flags the article so the next lookup regenerates its
// summary regardless of freshness. Returns ErrNotFound if the row does not
// exist.
func (s *Store) RequestRefresh(ctx context.Context, articleID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE article_summaries SET refresh_requested = 1 WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("requesting refresh of %q: %w", articleID, err)
	}
	return requireAffected(res, "requesting refresh")
}

// DeleteSummary removes the cached summary for the article.
// Returns ErrNotFound if the row does not exist.
func (s *Store) DeleteSummary(ctx context.Context, articleID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM article_summaries WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("deleting summary %q: %w", articleID, err)
	}
	return requireAffected(res, "deleting summary")
}

// SummaryStats returns aggregate counts and the most recently modified
// summaries, each shortened to 100 characters.
func (s *Store) SummaryStats(ctx context.Context, recent int) (*models.SummaryStats, error) {
	var stats models.SummaryStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
				COALESCE(SUM(from_cache), 0),
				COALESCE(SUM(refresh_requested), 0)
		 FROM article_summaries`,
	).Scan(&stats.Total, &stats.ServedFromCache, &stats.PendingRefresh)
	if err != nil {
		return nil, fmt.Errorf("counting summaries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id, source_last_modified, summary
		 FROM article_summaries
		 ORDER BY source_last_modified DESC, article_id ASC
		 LIMIT ?`, recent)
	if err != nil {
		return nil, fmt.Errorf("querying recent summaries: %w", err)
	}
	defer rows.Close()

	stats.RecentSummaries = []models.RecentSummary{}
	for rows.Next() {
		var (
			r            models.RecentSummary
			lastModified string
		)
		if err := rows.Scan(&r.ArticleID, &lastModified, &r.Summary); err != nil {
			return nil, fmt.Errorf("scanning recent summary: %w", err)
		}
		r.SourceLastModified = parseTime(lastModified)
		r.Summary = truncateRunes(r.Summary, 100)
		stats.RecentSummaries = append(stats.RecentSummaries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent summaries: %w", err)
	}
	return &stats, nil
}

// scanner is a minimal interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSummary scans a row selected with summaryColumns.
func scanSummary(row scanner) (*models.CachedSummary, error) {
	var (
		summary      models.CachedSummary
		lastModified string
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(
		&summary.ArticleID, &lastModified, &summary.Summary,
		&createdAt, &updatedAt, &summary.FromCache, &summary.RefreshRequested,
	); err != nil {
		return nil, err
	}
	summary.SourceLastModified = parseTime(lastModified)
	summary.CreatedAt = parseTime(createdAt)
	summary.UpdatedAt = parseTime(updatedAt)
	return &summary, nil
}

// requireAffected turns a zero-row result into ErrNotFound.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// truncateRunes shortens s to limit runes, appending "..." when cut.
func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
