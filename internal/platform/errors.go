package platform

import (
	"errors"
	"fmt"
	"time"
)

// AuthError means the API key was rejected. Fatal for the whole run.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("platform rejected credentials (HTTP %d)", e.Status)
}

// NotFoundError means a project, component, or unit does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Resource)
}

// ConflictError means the unit changed on the platform since it was read.
// The write is abandoned, never retried.
type ConflictError struct {
	UnitKey string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unit %q changed since it was read", e.UnitKey)
}

// RateLimitError means the platform throttled the request. RetryAfter is
// zero when the response carried no Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// TransientError wraps network failures and 5xx responses. Retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient platform error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Retryable reports whether err is worth retrying against the platform.
// Conflicts and missing resources are permanent; throttling and transport
// failures are not.
func Retryable(err error) bool {
	var rl *RateLimitError
	var tr *TransientError
	return errors.As(err, &rl) || errors.As(err, &tr)
}
