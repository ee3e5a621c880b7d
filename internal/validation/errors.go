package validation

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when the breaker refuses a call without
// touching the network. It is a refusal, not a validation failure:
// callers must branch on it separately.
var ErrCircuitOpen = errors.New("circuit breaker open")

// ErrorKind classifies a raw transport/response outcome before any
// policy logic runs.
type ErrorKind int

const (
	// KindTimeout is the only retryable class: the request timed out.
	KindTimeout ErrorKind = iota
	// KindUpstreamDown covers HTTP 5xx and connection refused/reset.
	KindUpstreamDown
	// KindBadRequest covers HTTP 4xx responses.
	KindBadRequest
	// KindBadResponse covers 2xx responses whose body could not be parsed.
	KindBadResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUpstreamDown:
		return "upstream_down"
	case KindBadRequest:
		return "bad_request"
	case KindBadResponse:
		return "bad_response"
	}
	return "unknown"
}

// Retryable reports whether the kind is worth retrying locally.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout
}

// ValidationError is a classified failure of a single remote call attempt.
type ValidationError struct {
	Kind ErrorKind
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation call failed (%s): %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RetryExhaustedError is returned when every attempt of a retried call
// timed out. The caller treats the upstream as too slow to trust.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("validation retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}
