package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidURL rejects malformed input before any network call.
var ErrInvalidURL = errors.New("invalid url: absolute http(s) URL with host required")

// FetchErrorKind classifies why a page could not be retrieved.
type FetchErrorKind string

const (
	FetchTimeout          FetchErrorKind = "timeout"
	FetchUnreachable      FetchErrorKind = "unreachable"
	FetchNon2xx           FetchErrorKind = "non2xx"
	FetchTooManyRedirects FetchErrorKind = "tooManyRedirects"
)

// FetchError is the only error besides ErrInvalidURL that fails a whole
// verification; every later stage degrades instead.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ArchiveError reports a failed snapshot attempt. Callers absorb it; it never
// propagates out of a verification.
type ArchiveError struct {
	URL string
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %v", e.URL, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
