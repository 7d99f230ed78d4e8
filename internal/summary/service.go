// Package summary decides when a cached article summary can be served and
// coordinates regenerating it with a language model when it cannot.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hoanghai1803/synopsis/internal/ai"
	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/models"
	"github.com/hoanghai1803/synopsis/internal/storage"
)

// Store is the persistence the Service needs. *storage.Store implements it.
type Store interface {
	GetSummary(ctx context.Context, articleID string) (*models.CachedSummary, error)
	CommitSummary(ctx context.Context, summary *models.CachedSummary) (*models.CachedSummary, error)
	MarkServedFromCache(ctx context.Context, articleID string) error
	RequestRefresh(ctx context.Context, articleID string) error
	DeleteSummary(ctx context.Context, articleID string) error
	ListSummaries(ctx context.Context, q storage.SummaryQuery) (*storage.SummaryPage, error)
	SummaryStats(ctx context.Context, recent int) (*models.SummaryStats, error)
}

// ClientFactory builds a model client from provider settings.
type ClientFactory func(ai.ProviderConfig) (ai.Client, error)

// ContentSource loads article text on demand. It is only called when the
// cached summary cannot be served.
type ContentSource func(ctx context.Context) (string, error)

// Request asks for the summary of one article.
type Request struct {
	ArticleID string

	// Content is the article text sent to the model. When empty, Source is
	// called instead.
	Content string
	Source  ContentSource

	// ReportedModified is the caller's last-modified time for the article.
	// The zero value carries no watermark.
	ReportedModified time.Time
}

// Result is the summary served for a Request.
type Result struct {
	ArticleID          string
	Summary            string
	Decision           Decision
	FromCache          bool
	SourceLastModified time.Time
}

// Service serves article summaries from the cache and regenerates them when
// they are missing or stale. It is safe for concurrent use.
type Service struct {
	store     Store
	settings  *config.Holder
	newClient ClientFactory
	metrics   *Metrics
	locks     keyedMutex
	now       func() time.Time

	clientMu      sync.Mutex
	client        ai.Client
	clientVersion uint64
}

// NewService creates a Service. A nil newClient selects ai.NewClient; a nil
// metrics records nothing.
func NewService(store Store, settings *config.Holder, newClient ClientFactory, metrics *Metrics) *Service {
	if newClient == nil {
		newClient = ai.NewClient
	}
	return &Service{
		store:     store,
		settings:  settings,
		newClient: newClient,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SummarizeURL resolves the article ID from rawURL using the configured path
// marker and generates or serves its summary. An empty content defers to
// source, which may be nil if content is always given.
func (s *Service) SummarizeURL(ctx context.Context, rawURL, content string, source ContentSource, reported time.Time) (*Result, error) {
	snap := s.settings.Current()
	id, err := ArticleIDFromURL(rawURL, snap.Config.Blog.ArticlePathMarker)
	if err != nil {
		s.metrics.observeFailure(KindInvalidIdentity)
		return nil, err
	}
	return s.generate(ctx, snap, Request{
		ArticleID:        id,
		Content:          content,
		Source:           source,
		ReportedModified: reported,
	})
}

// SummarizeContent generates or serves the summary of an article identified
// by an explicit ID.
func (s *Service) SummarizeContent(ctx context.Context, id, content string, reported time.Time) (*Result, error) {
	return s.Generate(ctx, Request{ArticleID: id, Content: content, ReportedModified: reported})
}

// Generate serves the cached summary for req.ArticleID when it is still
// valid, and otherwise asks the model for a new one and stores it.
//
// Requests for the same article are serialized. Once the model has been
// called, the call and the following write run to completion even if ctx is
// cancelled, bounded by the configured timeout. Nothing is written unless
// the model returned a summary.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	return s.generate(ctx, s.settings.Current(), req)
}

func (s *Service) generate(ctx context.Context, snap *config.Snapshot, req Request) (*Result, error) {
	res, err := s.serve(ctx, snap, req)
	if err != nil {
		s.metrics.observeFailure(KindOf(err))
		return nil, err
	}
	s.metrics.observeDecision(res.Decision)
	return res, nil
}

func (s *Service) serve(ctx context.Context, snap *config.Snapshot, req Request) (*Result, error) {
	const op = "generate summary"

	id, err := ArticleIDFromExplicit(req.ArticleID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" && req.Source == nil {
		return nil, newError(KindInvalidIdentity, op, errors.New("article content is empty"))
	}

	unlock, err := s.locks.lock(ctx, id)
	if err != nil {
		return nil, newError(KindCanceled, op, fmt.Errorf("waiting for article %q: %w", id, err))
	}
	defer unlock()

	cached, err := s.store.GetSummary(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, newError(KindPersistence, op, err)
	}

	reported := watermark(req.ReportedModified)
	decision := Decide(cached, reported)
	slog.Debug("summary cache decision", "article_id", id, "decision", decision)

	if decision == Hit {
		if err := s.store.MarkServedFromCache(ctx, id); err != nil {
			return nil, newError(KindPersistence, op, err)
		}
		return &Result{
			ArticleID:          id,
			Summary:            cached.Summary,
			Decision:           Hit,
			FromCache:          true,
			SourceLastModified: cached.SourceLastModified,
		}, nil
	}

	timeout := time.Duration(snap.Config.AI.TimeoutSeconds) * time.Second
	workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	content := req.Content
	if strings.TrimSpace(content) == "" {
		content, err = req.Source(workCtx)
		if err != nil {
			slog.Error("loading article content failed", "article_id", id, "error", err)
			return nil, newError(KindGeneration, op, fmt.Errorf("loading content of %q: %w", id, err))
		}
		if strings.TrimSpace(content) == "" {
			return nil, newError(KindInvalidIdentity, op, errors.New("article content is empty"))
		}
	}

	text, err := s.complete(workCtx, snap, content)
	if err != nil {
		slog.Error("summary generation failed", "article_id", id, "decision", decision, "error", err)
		return nil, newError(KindGeneration, op, err)
	}

	modified := reported
	if modified.IsZero() {
		modified = watermark(s.now())
	}

	committed, err := s.store.CommitSummary(workCtx, &models.CachedSummary{
		ArticleID:          id,
		SourceLastModified: modified,
		Summary:            text,
	})
	if err != nil {
		slog.Error("storing summary failed", "article_id", id, "error", err)
		return nil, newError(KindPersistence, op, err)
	}

	slog.Info("summary generated", "article_id", id, "decision", decision)
	return &Result{
		ArticleID:          id,
		Summary:            committed.Summary,
		Decision:           decision,
		SourceLastModified: committed.SourceLastModified,
	}, nil
}

// complete runs one model call with the snapshot's instructions.
func (s *Service) complete(ctx context.Context, snap *config.Snapshot, content string) (string, error) {
	client, err := s.clientFor(snap)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := client.Complete(ctx, snap.Config.AI.SystemPrompt, content)
	s.metrics.observeGeneration(time.Since(start))
	return text, err
}

// clientFor returns the model client for snap, building a new one when the
// configuration has changed since the last call.
func (s *Service) clientFor(snap *config.Snapshot) (ai.Client, error) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()

	if s.client != nil && s.clientVersion == snap.Version {
		return s.client, nil
	}

	aiCfg := snap.Config.AI
	if aiCfg.APIKey == "" {
		return nil, errors.New("no API key configured")
	}
	client, err := s.newClient(ai.ProviderConfig{
		Provider: aiCfg.Provider,
		APIKey:   aiCfg.APIKey,
		BaseURL:  aiCfg.BaseURL,
		Model:    aiCfg.Model,
		Timeout:  time.Duration(aiCfg.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	s.client = client
	s.clientVersion = snap.Version
	return client, nil
}
