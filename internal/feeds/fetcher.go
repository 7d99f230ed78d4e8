// Package feeds fetches blog content over HTTP: the readable text of an
// article page and the entries of the blog's RSS or Atom feed.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/singleflight"
)

const (
	httpTimeout    = 30 * time.Second
	rateLimitDelay = 1 * time.Second
	maxWords       = 5000
)

// Fetcher retrieves article pages and feeds with a per-domain request delay.
// Concurrent requests for the same URL share a single fetch.
type Fetcher struct {
	client      *http.Client
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
	group       singleflight.Group
}

// NewFetcher creates a Fetcher with a 30-second HTTP timeout and the Synopsis
// user agent.
func NewFetcher() *Fetcher {
	return newFetcher(&http.Client{
		Timeout:   httpTimeout,
		Transport: &userAgentTransport{base: http.DefaultTransport},
	})
}

func newFetcher(client *http.Client) *Fetcher {
	return &Fetcher{
		client:      client,
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Synopsis/1.0; +https://github.com/hoanghai1803/synopsis)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return t.base.RoundTrip(req)
}

// ExtractArticle fetches the page at articleURL and returns its main readable
// text, truncated to 5000 words.
func (f *Fetcher) ExtractArticle(ctx context.Context, articleURL string) (string, error) {
	v, err := f.shared(ctx, "article:"+articleURL, func(ctx context.Context) (any, error) {
		if err := f.waitForRateLimit(ctx, extractDomain(articleURL)); err != nil {
			return nil, err
		}
		text, err := extractText(ctx, f.client, articleURL)
		if err != nil {
			return nil, err
		}
		return truncateWords(text, maxWords), nil
	})
	if err != nil {
		return "", fmt.Errorf("extracting article from %q: %w", articleURL, err)
	}
	return v.(string), nil
}

// FetchFeed fetches and parses the RSS or Atom feed at feedURL.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]Entry, error) {
	v, err := f.shared(ctx, "feed:"+feedURL, func(ctx context.Context) (any, error) {
		if err := f.waitForRateLimit(ctx, extractDomain(feedURL)); err != nil {
			return nil, err
		}
		fp := gofeed.NewParser()
		fp.Client = f.client
		feed, err := fp.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return nil, err
		}
		return parseFeedEntries(feed), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", feedURL, err)
	}
	return v.([]Entry), nil
}

// shared runs fn once for all concurrent callers using the same key. The
// fetch is not tied to any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (f *Fetcher) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := f.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpTimeout)
		defer cancel()
		return fn(fetchCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// waitForRateLimit enforces a minimum delay of 1 second between requests to
// the same domain.
func (f *Fetcher) waitForRateLimit(ctx context.Context, domain string) error {
	f.mu.Lock()
	var wait time.Duration
	now := time.Now()
	if last, ok := f.rateLimiter[domain]; ok {
		if next := last.Add(rateLimitDelay); next.After(now) {
			wait = next.Sub(now)
		}
	}
	f.rateLimiter[domain] = now.Add(wait)
	f.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
