package llm

import (
	"fmt"
	"time"
)

// Kind classifies a transport failure so callers can decide how to react
// without parsing error strings.
type Kind string

const (
	KindRateLimit       Kind = "rate_limit"
	KindOverloaded      Kind = "overloaded"
	KindInvalidRequest  Kind = "invalid_request"
	KindInsufficientQta Kind = "insufficient_quota"
	KindConnection      Kind = "connection"
	KindInternal        Kind = "internal"
)

// TransportError wraps a provider-level failure with its classification.
// It preserves the provider's message verbatim.
type TransportError struct {
	Kind       Kind
	StatusCode int
	Message    string
	// RetryAfter is the provider-advertised cooldown. HasRetryAfter
	// distinguishes an advertised zero from no advertisement at all.
	RetryAfter    time.Duration
	HasRetryAfter bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
}

// ErrMaxRetriesExceeded is returned when all retry attempts are exhausted.
type ErrMaxRetriesExceeded struct {
	Attempts int
	Last     error
}

func (e *ErrMaxRetriesExceeded) Error() string {
	return fmt.Sprintf("llm: max retries exceeded (%d attempts): %v", e.Attempts, e.Last)
}

func (e *ErrMaxRetriesExceeded) Unwrap() error { return e.Last }

// classifyStatus maps an HTTP status code to a Kind and its default retryability.
func classifyStatus(statusCode int) (kind Kind, retryable bool) {
	switch statusCode {
	case 400, 422:
		return KindInvalidRequest, false
	case 401, 403:
		return KindInvalidRequest, false
	case 402:
		return KindInsufficientQta, false
	case 429:
		return KindRateLimit, true
	case 529:
		return KindOverloaded, true
	case 500, 502, 503, 504:
		return KindInternal, true
	default:
		return KindInternal, false
	}
}
