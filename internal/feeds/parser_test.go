package feeds

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestParseFeedEntries(t *testing.T) {
	published := time.Date(2024, 1, 1, 8, 0, 0, 0, time.FixedZone("UTC+8", 8*60*60))
	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	feed := &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Updated Post", Link: "https://blog.example.com/archives/a/", PublishedParsed: &published, UpdatedParsed: &updated},
		{Title: "Published <em>Only</em>", Link: "https://blog.example.com/archives/b/", PublishedParsed: &published},
		{Title: "No Dates &amp; More", Link: " https://blog.example.com/archives/c/ "},
		{Title: "No Link", Link: ""},
	}}

	entries := parseFeedEntries(feed)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	tests := []struct {
		title   string
		link    string
		updated time.Time
	}{
		{title: "Updated Post", link: "https://blog.example.com/archives/a/", updated: updated},
		{title: "Published Only", link: "https://blog.example.com/archives/b/", updated: published.UTC()},
		{title: "No Dates & More", link: "https://blog.example.com/archives/c/"},
	}
	for i, tt := range tests {
		e := entries[i]
		if e.Title != tt.title {
			t.Errorf("entry %d: Title = %q, want %q", i, e.Title, tt.title)
		}
		if e.Link != tt.link {
			t.Errorf("entry %d: Link = %q, want %q", i, e.Link, tt.link)
		}
		if !e.Updated.Equal(tt.updated) {
			t.Errorf("entry %d: Updated = %v, want %v", i, e.Updated, tt.updated)
		}
	}
	if entries[1].Updated.Location() != time.UTC {
		t.Errorf("Updated not normalized to UTC: %v", entries[1].Updated.Location())
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "plain", want: "plain"},
		{input: "<p>Hello <b>world</b></p>", want: "Hello world"},
		{input: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{input: "", want: ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.input); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
