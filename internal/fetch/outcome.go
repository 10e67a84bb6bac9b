package fetch

import (
	"fmt"
	"time"

	shErrors "github.com/lepinkainen/shamash/internal/errors"
)

// Kind classifies the result of a single GET.
type Kind int

const (
	Success Kind = iota
	NotFound
	RateLimited
	ServerError
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case ServerError:
		return "server_error"
	case TransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the tagged result of one HTTP call. Only Success carries a body.
type Outcome struct {
	Kind        Kind
	Status      int
	Body        []byte
	ContentType string
	// Cause holds the transport error for TransportFailure.
	Cause error
	// Waited is the extra delay applied after a 429.
	Waited time.Duration
}

// OK reports whether the outcome carries a usable body.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Err converts a non-success outcome into a typed error for logging.
// Success returns nil.
func (o Outcome) Err(source string) error {
	switch o.Kind {
	case Success:
		return nil
	case NotFound:
		return fmt.Errorf("%s: %w", source, shErrors.ErrNotFound)
	case RateLimited:
		return shErrors.NewRateLimitErrorWithRetry(source+": rate limited", o.Waited)
	case ServerError:
		return shErrors.NewUpstreamStatusError(source, o.Status, snippet(o.Body))
	default:
		return fmt.Errorf("%s: transport failure: %w", source, o.Cause)
	}
}

func snippet(body []byte) string {
	const maxSnippet = 200
	if len(body) > maxSnippet {
		body = body[:maxSnippet]
	}
	return string(body)
}
