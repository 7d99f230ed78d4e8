package summary

import (
	"context"
	"errors"

	"github.com/hoanghai1803/synopsis/internal/models"
	"github.com/hoanghai1803/synopsis/internal/storage"
)

// recentSummaries is how many entries Stats returns.
const recentSummaries = 5

// Delete removes the cached summary of an article.
func (s *Service) Delete(ctx context.Context, articleID string) error {
	const op = "delete summary"
	id, err := ArticleIDFromExplicit(articleID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSummary(ctx, id); err != nil {
		return storeError(op, err)
	}
	return nil
}

// Refresh marks an article so its next lookup regenerates the summary once,
// whatever the reported modification time.
func (s *Service) Refresh(ctx context.Context, articleID string) error {
	const op = "refresh summary"
	id, err := ArticleIDFromExplicit(articleID)
	if err != nil {
		return err
	}
	if err := s.store.RequestRefresh(ctx, id); err != nil {
		return storeError(op, err)
	}
	return nil
}

// List returns one page of cached summaries.
func (s *Service) List(ctx context.Context, q storage.SummaryQuery) (*storage.SummaryPage, error) {
	page, err := s.store.ListSummaries(ctx, q)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSort) {
			return nil, newError(KindInvalidIdentity, "list summaries", err)
		}
		return nil, storeError("list summaries", err)
	}
	return page, nil
}

// Stats returns cache counts and the most recently modified summaries.
func (s *Service) Stats(ctx context.Context) (*models.SummaryStats, error) {
	stats, err := s.store.SummaryStats(ctx, recentSummaries)
	if err != nil {
		return nil, storeError("summary stats", err)
	}
	return stats, nil
}

// storeError classifies an error returned by the Store.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return newError(KindNotFound, op, err)
	}
	return newError(KindPersistence, op, err)
}
