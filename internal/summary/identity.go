package summary

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultPathMarker is the URL path prefix that precedes article IDs on the
// blog, as in https://blog.example.com/archives/hello-world/.
const DefaultPathMarker = "/archives/"

// ArticleIDFromURL returns the path segment that immediately follows marker
// in rawURL. One trailing slash is allowed after the segment; anything else
// after it is rejected. Query string and fragment are ignored.
func ArticleIDFromURL(rawURL, marker string) (string, error) {
	const op = "resolve article id"

	if marker == "" {
		marker = DefaultPathMarker
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", newError(KindInvalidIdentity, op, errors.New("article URL is empty"))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", newError(KindInvalidIdentity, op, fmt.Errorf("parsing article URL: %w", err))
	}

	path := u.EscapedPath()
	idx := strings.LastIndex(path, marker)
	if idx < 0 {
		return "", newError(KindInvalidIdentity, op,
			fmt.Errorf("article URL %q does not contain %q", rawURL, marker))
	}

	segment := strings.TrimSuffix(path[idx+len(marker):], "/")
	if segment == "" || strings.Contains(segment, "/") {
		return "", newError(KindInvalidIdentity, op,
			fmt.Errorf("cannot extract article id from URL %q", rawURL))
	}

	id, err := url.PathUnescape(segment)
	if err != nil {
		return "", newError(KindInvalidIdentity, op, fmt.Errorf("unescaping article id: %w", err))
	}
	if strings.Contains(id, "/") {
		return "", newError(KindInvalidIdentity, op,
			fmt.Errorf("article id %q contains an escaped slash", id))
	}
	return id, nil
}

// ArticleIDFromExplicit validates an id supplied directly by the caller and
// returns it verbatim.
func ArticleIDFromExplicit(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", newError(KindInvalidIdentity, "resolve article id", errors.New("article id is empty"))
	}
	return id, nil
}
