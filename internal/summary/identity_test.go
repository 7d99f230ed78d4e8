package summary

import "testing"

func TestArticleIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		marker  string
		want    string
		wantErr bool
	}{
		{name: "trailing slash", url: "https://blog.example.com/archives/hello-world/", want: "hello-world"},
		{name: "no trailing slash", url: "https://blog.example.com/archives/hello-world", want: "hello-world"},
		{name: "query and fragment ignored", url: "https://blog.example.com/archives/p1/?utm=x#comments", want: "p1"},
		{name: "escaped segment", url: "https://blog.example.com/archives/go%20notes/", want: "go notes"},
		{name: "custom marker", url: "https://example.com/posts/42", marker: "/posts/", want: "42"},
		{name: "nested blog path", url: "https://example.com/blog/archives/p2/", want: "p2"},
		{name: "default marker when empty", url: "https://example.com/archives/p3", marker: "", want: "p3"},
		{name: "empty url", url: "", wantErr: true},
		{name: "no marker", url: "https://blog.example.com/about/", wantErr: true},
		{name: "marker without id", url: "https://blog.example.com/archives/", wantErr: true},
		{name: "extra path segment", url: "https://blog.example.com/archives/p1/comments/", wantErr: true},
		{name: "escaped slash", url: "https://blog.example.com/archives/a%2Fb/", wantErr: true},
		{name: "unparsable", url: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := tt.marker
			if marker == "" {
				marker = DefaultPathMarker
			}
			got, err := ArticleIDFromURL(tt.url, marker)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if k := KindOf(err); k != KindInvalidIdentity {
					t.Errorf("KindOf(err) = %v, want %v", k, KindInvalidIdentity)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArticleIDFromExplicit(t *testing.T) {
	if id, err := ArticleIDFromExplicit("p1"); err != nil || id != "p1" {
		t.Errorf("ArticleIDFromExplicit(p1) = %q, %v", id, err)
	}
	for _, id := range []string{"", "   "} {
		if _, err := ArticleIDFromExplicit(id); KindOf(err) != KindInvalidIdentity {
			t.Errorf("ArticleIDFromExplicit(%q) error = %v, want invalid identity", id, err)
		}
	}
}
