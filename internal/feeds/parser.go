package feeds

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// Entry is one article listed in a feed.
type Entry struct {
	Title string `json:"title"`
	Link  string `json:"link"`

	// Updated is the item's last modification time, falling back to its
	// publication time. Zero when the feed gives neither.
	Updated time.Time `json:"updated"`
}

// parseFeedEntries converts gofeed items into entries, skipping items without
// a link.
func parseFeedEntries(feed *gofeed.Feed) []Entry {
	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		var updated time.Time
		switch {
		case item.UpdatedParsed != nil:
			updated = item.UpdatedParsed.UTC()
		case item.PublishedParsed != nil:
			updated = item.PublishedParsed.UTC()
		}

		entries = append(entries, Entry{
			Title:   strings.TrimSpace(stripHTML(item.Title)),
			Link:    link,
			Updated: updated,
		})
	}
	return entries
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}
