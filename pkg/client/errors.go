package client

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is matched by every FetchError.
	ErrFetch = errors.New("fetch failed")

	// ErrBaseURLRequired is returned when a client is created without an API address.
	ErrBaseURLRequired = errors.New("api base url is required")
)

// FetchError reports a failed call to the flows API: either the request never
// completed or the server answered with a non-2xx status.
type FetchError struct {
	Op         string // Operation name, e.g. "list" or "execute"
	Method     string
	URL        string
	StatusCode int    // Zero when the request did not complete
	Detail     string // Server-provided detail, if any
	Err        error  // Transport or decoding error, if any
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("failed to %s flows: %d - %s", e.Op, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to %s flows: %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("failed to %s flows: %v", e.Op, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// IsNotFound checks if an error is a FetchError for a 404 response.
func IsNotFound(err error) bool {
	var fetchErr *FetchError

	return errors.As(err, &fetchErr) && fetchErr.StatusCode == 404
}
