package summary

import (
	"errors"
	"fmt"
)

// Kind classifies the errors returned by this package. The set is closed;
// callers switch on it to choose a response.
type Kind int

const (
	// KindInvalidIdentity covers malformed URLs, empty ids and other input
	// rejected before any external call. Not retryable.
	KindInvalidIdentity Kind = iota + 1

	// KindGeneration means the language model failed or timed out. The
	// cause must not be shown to the caller. Retryable.
	KindGeneration

	// KindNotFound means the targeted article has no cached summary.
	KindNotFound

	// KindPersistence means a store read or write failed. Any open
	// transaction has been rolled back.
	KindPersistence

	// KindCanceled means the caller gave up before any work started.
	// Nothing was called or written.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentity:
		return "invalid_identity"
	case KindGeneration:
		return "generation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the error type returned by Service and the identity resolvers.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or 0 when there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
