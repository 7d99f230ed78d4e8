package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoanghai1803/synopsis/internal/models"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(timeLayout, s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return v
}

// seedSummary commits a summary and fails the test on error.
func seedSummary(t *testing.T, store *Store, id, modified, text string) *models.CachedSummary {
	t.Helper()
	committed, err := store.CommitSummary(context.Background(), &models.CachedSummary{
		ArticleID:          id,
		SourceLastModified: mustTime(t, modified),
		Summary:            text,
	})
	if err != nil {
		t.Fatalf("CommitSummary(%q) error: %v", id, err)
	}
	return committed
}

// fixedClock makes store.now return the given times in order, repeating the
// last one.
func fixedClock(store *Store, times ...time.Time) {
	i := 0
	store.now = func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestCommitSummary_CreatesNew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixedClock(store, mustTime(t, "2024-02-01 12:00:00"))

	got := seedSummary(t, store, "p1", "2024-01-01 00:00:00", "S1")

	if got.ArticleID != "p1" || got.Summary != "S1" {
		t.Errorf("committed = %+v", got)
	}
	if !got.SourceLastModified.Equal(mustTime(t, "2024-01-01 00:00:00")) {
		t.Errorf("source_last_modified = %v", got.SourceLastModified)
	}
	if !got.CreatedAt.Equal(mustTime(t, "2024-02-01 12:00:00")) || !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("created_at = %v, updated_at = %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.FromCache || got.RefreshRequested {
		t.Errorf("flags should be clear on a new row: %+v", got)
	}

	fetched, err := store.GetSummary(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSummary() error: %v", err)
	}
	if *fetched != *got {
		t.Errorf("GetSummary() = %+v, want %+v", fetched, got)
	}
}

func TestCommitSummary_ReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixedClock(store,
		mustTime(t, "2024-02-01 12:00:00"),
		mustTime(t, "2024-07-01 12:00:00"),
	)

	first := seedSummary(t, store, "p1", "2024-01-01 00:00:00", "S1")
	if err := store.MarkServedFromCache(ctx, "p1"); err != nil {
		t.Fatalf("MarkServedFromCache() error: %v", err)
	}
	if err := store.RequestRefresh(ctx, "p1"); err != nil {
		t.Fatalf("RequestRefresh() error: %v", err)
	}

	second := seedSummary(t, store, "p1", "2024-06-01 00:00:00", "S2")

	if second.Summary != "S2" {
		t.Errorf("summary = %q, want S2", second.Summary)
	}
	if !second.SourceLastModified.Equal(mustTime(t, "2024-06-01 00:00:00")) {
		t.Errorf("source_last_modified = %v", second.SourceLastModified)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.FromCache || second.RefreshRequested {
		t.Errorf("flags should be cleared by a commit: %+v", second)
	}
}

func TestCommitSummary_UpdatedAtNeverDecreases(t *testing.T) {
	store := newTestStore(t)
	fixedClock(store,
		mustTime(t, "2024-05-01 00:00:00"),
		mustTime(t, "2024-03-01 00:00:00"), // clock stepped backwards
	)

	first := seedSummary(t, store, "p1", "2024-01-01 00:00:00", "S1")
	second := seedSummary(t, store, "p1", "2024-02-01 00:00:00", "S2")

	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestCommitSummary_Rejects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		summary models.CachedSummary
		wantErr error
	}{
		{name: "empty id", summary: models.CachedSummary{Summary: "S"}},
		{name: "empty text", summary: models.CachedSummary{ArticleID: "p1", Summary: ""}, wantErr: ErrEmptySummary},
		{name: "blank text", summary: models.CachedSummary{ArticleID: "p1", Summary: " \n "}, wantErr: ErrEmptySummary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CommitSummary(ctx, &tt.summary)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := store.GetSummary(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected commit left a row behind: %v", err)
	}
}

func TestGetSummary_NotFound(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetSummary(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil summary, got %+v", got)
	}
}

func TestMarkServedFromCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixedClock(store,
		mustTime(t, "2024-02-01 00:00:00"),
		mustTime(t, "2024-02-02 00:00:00"),
	)

	seedSummary(t, store, "p1", "2024-01-01 00:00:00", "S1")
	if err := store.MarkServedFromCache(ctx, "p1"); err != nil {
		t.Fatalf("MarkServedFromCache() error: %v", err)
	}

	got, err := store.GetSummary(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSummary() error: %v", err)
	}
	if !got.FromCache {
		t.Error("from_cache not set")
	}
	if !got.UpdatedAt.Equal(mustTime(t, "2024-02-02 00:00:00")) {
		t.Errorf("updated_at = %v, want 2024-02-02", got.UpdatedAt)
	}
	if got.Summary != "S1" || !got.SourceLastModified.Equal(mustTime(t, "2024-01-01 00:00:00")) {
		t.Errorf("content changed: %+v", got)
	}

	if err := store.MarkServedFromCache(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestRefresh(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedSummary(t, store, "p1", "2024-01-01 00:00:00", "S1")
	if err := store.RequestRefresh(ctx, "p1"); err != nil {
		t.Fatalf("RequestRefresh() error: %v", err)
	}
	got, err := store.GetSummary(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSummary() error: %v", err)
	}
	if !got.RefreshRequested {
		t.Error("refresh_requested not set")
	}

	if err := store.RequestRefresh(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedSummary(t, store, "p1", "2024-01-01 00:00:00", "S1")
	seedSummary(t, store, "p2", "2024-01-01 00:00:00", "S2")

	if err := store.DeleteSummary(ctx, "p1"); err != nil {
		t.Fatalf("DeleteSummary() error: %v", err)
	}
	if _, err := store.GetSummary(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("p1 still present: %v", err)
	}
	if _, err := store.GetSummary(ctx, "p2"); err != nil {
		t.Errorf("p2 affected by delete: %v", err)
	}
	if err := store.DeleteSummary(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestSummaryStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	long := ""
	for range 30 {
		long += "abcde"
	}
	seedSummary(t, store, "old", "2024-01-01 00:00:00", "short")
	seedSummary(t, store, "new", "2024-03-01 00:00:00", long)
	seedSummary(t, store, "mid", "2024-02-01 00:00:00", "middle")
	if err := store.MarkServedFromCache(ctx, "old"); err != nil {
		t.Fatalf("MarkServedFromCache() error: %v", err)
	}
	if err := store.RequestRefresh(ctx, "mid"); err != nil {
		t.Fatalf("RequestRefresh() error: %v", err)
	}

	stats, err := store.SummaryStats(ctx, 2)
	if err != nil {
		t.Fatalf("SummaryStats() error: %v", err)
	}
	if stats.Total != 3 || stats.ServedFromCache != 1 || stats.PendingRefresh != 1 {
		t.Errorf("counts = %+v", stats)
	}
	if len(stats.RecentSummaries) != 2 {
		t.Fatalf("got %d recent summaries, want 2", len(stats.RecentSummaries))
	}
	if stats.RecentSummaries[0].ArticleID != "new" || stats.RecentSummaries[1].ArticleID != "mid" {
		t.Errorf("recent order = %s, %s", stats.RecentSummaries[0].ArticleID, stats.RecentSummaries[1].ArticleID)
	}
	if got := stats.RecentSummaries[0].Summary; got != long[:100]+"..." {
		t.Errorf("recent summary not truncated: %q", got)
	}
}

func TestSummaryStats_Empty(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.SummaryStats(context.Background(), 10)
	if err != nil {
		t.Fatalf("SummaryStats() error: %v", err)
	}
	if stats.Total != 0 || stats.RecentSummaries == nil || len(stats.RecentSummaries) != 0 {
		t.Errorf("stats = %+v, want zero counts and an empty list", stats)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "hello", limit: 10, want: "hello"},
		{in: "hello", limit: 5, want: "hello"},
		{in: "hello world", limit: 5, want: "hello..."},
		{in: "日本語のテキスト", limit: 3, want: "日本語..."},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
