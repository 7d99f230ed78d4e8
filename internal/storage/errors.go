package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmptySummary is returned when a summary without text is committed.
var ErrEmptySummary = errors.New("summary text is empty")

// ErrInvalidSort is returned when a listing asks for an unknown sort field.
var ErrInvalidSort = errors.New("invalid sort field")
