package rama

import (
	"errors"
	"fmt"
)

var (
	// Redirect handling errors
	ErrMaxRedirects               = errors.New("maximum redirect attempts exceeded")
	ErrMissingLocation            = errors.New("missing Location header in 308 redirect")
	ErrInvalidLocation            = errors.New("invalid Location header in 308 redirect")
	ErrMissingSupervisorLocations = errors.New("missing Supervisor-Locations header in 308 redirect")
	ErrInvalidSupervisorLocations = errors.New("invalid Supervisor-Locations header in 308 redirect")

	// Builder errors
	ErrQueryConsumed = errors.New("path already executed")
)

// StatusError reports a response status that is neither 200 nor 308. It
// carries the contacted URL and a best-effort snippet of the response body
// for diagnostics.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
	}
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Code, e.URL, e.Body)
}
