// internal/providers/errors.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RequestError is the uniform error every provider adapter maps its failures
// onto. StatusCode carries the HTTP-like status of the failure, Retryable
// marks transient conditions (429 and 5xx), and RetryAfter carries the
// provider's backoff hint when one was given.
type RequestError struct {
	Provider   string
	StatusCode int
	Message    string
	Retryable  bool
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// NewRequestError builds a RequestError for the given status, deriving the
// Retryable flag from the status code.
func NewRequestError(provider string, statusCode int, message string) *RequestError {
	return &RequestError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  statusCode == http.StatusTooManyRequests || statusCode >= 500,
	}
}

// NewTimeoutError builds the retryable error used when a request exceeds its
// per-call timeout.
func NewTimeoutError(provider string, timeout time.Duration) *RequestError {
	return &RequestError{
		Provider:   provider,
		StatusCode: http.StatusGatewayTimeout,
		Message:    fmt.Sprintf("request exceeded %s timeout", timeout),
		Retryable:  true,
	}
}

// WrapTransportError converts a transport-level failure into a RequestError.
// Context deadline expiry becomes a retryable timeout; other transport
// failures are treated as retryable connectivity faults.
func WrapTransportError(provider string, err error, timeout time.Duration) *RequestError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(provider, timeout)
	}
	return &RequestError{
		Provider:   provider,
		StatusCode: http.StatusServiceUnavailable,
		Message:    err.Error(),
		Retryable:  true,
	}
}

// IsRetryable reports whether err is a RequestError marked retryable.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Retryable
}

// ParseRetryAfter interprets a Retry-After header given in whole seconds.
// Malformed or non-positive values yield zero.
func ParseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
