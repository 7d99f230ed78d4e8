package storage

import "time"

// timeLayout is the form of every TEXT timestamp column. It keeps whole
// seconds only; callers comparing against stored times must truncate.
const timeLayout = "2006-01-02 15:04:05"

// formatTime renders t in UTC using timeLayout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp. Rows written by SQLite defaults use
// timeLayout; RFC 3339 is accepted for hand-edited rows. Anything else
// yields the zero time.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
