package summary

import (
	"time"

	"github.com/hoanghai1803/synopsis/internal/models"
)

// Decision is the outcome of comparing a cached summary with the state of
// the article a caller reports.
type Decision int

const (
	// Miss: nothing is cached; generate and insert.
	Miss Decision = iota + 1
	// Hit: the cached summary is still valid; serve it.
	Hit
	// Update: the cached summary is stale; regenerate and replace.
	Update
)

func (d Decision) String() string {
	switch d {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// Decide reports whether cached is valid for an article last modified at
// reported. A zero reported time carries no watermark, so any cached entry
// is valid. An entry with a pending manual refresh is always stale.
func Decide(cached *models.CachedSummary, reported time.Time) Decision {
	switch {
	case cached == nil:
		return Miss
	case cached.RefreshRequested:
		return Update
	case !cached.SourceLastModified.Before(reported):
		return Hit
	default:
		return Update
	}
}

// watermark normalizes a reported modification time to the precision the
// store keeps, so a repeated request with the same time compares equal.
func watermark(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Second)
}
