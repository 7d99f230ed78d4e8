package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoanghai1803/synopsis/internal/models"
)

// SortField names a column the admin listing may be ordered by.
type SortField string

// Sortable fields. Anything else is rejected by ParseSortField.
const (
	SortArticleID          SortField = "article_id"
	SortSourceLastModified SortField = "source_last_modified"
	SortCreatedAt          SortField = "created_at"
	SortUpdatedAt          SortField = "updated_at"
	SortFromCache          SortField = "from_cache"
)

// sortColumns maps each SortField to the ORDER BY expression it uses. Keeping
// the mapping explicit means request input never reaches the SQL text.
var sortColumns = map[SortField]string{
	SortArticleID:          "article_id",
	SortSourceLastModified: "source_last_modified",
	SortCreatedAt:          "created_at",
	SortUpdatedAt:          "updated_at",
	SortFromCache:          "from_cache",
}

// ParseSortField validates a user-supplied sort field. The empty string
// selects the default ordering (updated_at).
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortUpdatedAt, nil
	}
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sortColumns[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
	return f, nil
}

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// SummaryQuery selects one page of cached summaries.
type SummaryQuery struct {
	// Search is matched case-insensitively as a substring of the summary
	// text or the article ID. Empty matches everything.
	Search string

	// Sort defaults to SortUpdatedAt. Ascending holds for Desc == false.
	Sort SortField
	Desc bool

	// Page is 1-based. PerPage is clamped to [1, 100], default 10.
	Page    int
	PerPage int
}

// SummaryPage is one page of a SummaryQuery result.
type SummaryPage struct {
	Items      []models.CachedSummary `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	TotalPages int                    `json:"total_pages"`
}

// DefaultSummaryQuery returns the ordering used when the caller specifies
// none: most recently updated first.
func DefaultSummaryQuery() SummaryQuery {
	return SummaryQuery{Sort: SortUpdatedAt, Desc: true, Page: 1, PerPage: defaultPerPage}
}

// ListSummaries returns a filtered, sorted page of cached summaries. Rows
// with equal sort keys are ordered by article_id so paging is stable.
func (s *Store) ListSummaries(ctx context.Context, q SummaryQuery) (*SummaryPage, error) {
	if q.Sort == "" {
		q.Sort = SortUpdatedAt
	}
	column, ok := sortColumns[q.Sort]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, q.Sort)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}

	where := ""
	var args []any
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		where = ` WHERE summary LIKE ? ESCAPE '\' OR article_id LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_summaries`+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting summaries: %w", err)
	}

	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}
	query := `SELECT ` + summaryColumns + ` FROM article_summaries` + where +
		` ORDER BY ` + column + ` ` + direction + `, article_id ASC LIMIT ? OFFSET ?`
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	items := []models.CachedSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		items = append(items, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}

	return &SummaryPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	}, nil
}

// escapeLike escapes the LIKE wildcards in s using backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
