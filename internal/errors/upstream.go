package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when an upstream source has no record for the request.
var ErrNotFound = stdErrors.New("not found")

// UpstreamStatusError represents an unexpected HTTP status from a source
type UpstreamStatusError struct {
	Source     string
	StatusCode int
	Body       string // Leading bytes of the response body, if any
}

func (e *UpstreamStatusError) Error() string {
	msg := fmt.Sprintf("%s: unexpected status %d %s", e.Source, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		return msg + ": " + e.Body
	}
	return msg
}

// NewUpstreamStatusError creates a new upstream status error
func NewUpstreamStatusError(source string, statusCode int, body string) *UpstreamStatusError {
	return &UpstreamStatusError{
		Source:     source,
		StatusCode: statusCode,
		Body:       body,
	}
}

// IsUpstreamStatusError checks if error is an UpstreamStatusError
func IsUpstreamStatusError(err error) bool {
	var statusErr *UpstreamStatusError
	return stdErrors.As(err, &statusErr)
}

// IsServerError reports whether err is an UpstreamStatusError in the 5xx range.
func IsServerError(err error) bool {
	var statusErr *UpstreamStatusError
	if !stdErrors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 500
}
