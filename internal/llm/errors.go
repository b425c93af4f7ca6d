package llm

import "fmt"

// ErrorKind classifies a generation-service failure.
type ErrorKind string

// Error kinds surfaced by the Invoker.
const (
	// ErrTimeout means the call exceeded its deadline or was cancelled.
	ErrTimeout ErrorKind = "timeout"
	// ErrRateLimited means the service rejected the call with a quota error.
	ErrRateLimited ErrorKind = "rate_limited"
	// ErrMalformedResponse means the service responded but the document did
	// not parse as JSON matching the declared shape, after retries.
	ErrMalformedResponse ErrorKind = "malformed_response"
	// ErrServiceUnavailable covers transport and server-side failures.
	ErrServiceUnavailable ErrorKind = "service_unavailable"
)

// ClientError is the discriminated error the Invoker returns. Callers branch
// on Kind, never on error strings.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation service %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation service %s: %s", e.Kind, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}
