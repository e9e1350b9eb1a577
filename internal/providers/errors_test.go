// internal/providers/errors_test.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestNewRequestErrorRetryableClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		err := NewRequestError("test", tt.status, "msg")
		if err.Retryable != tt.retryable {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, err.Retryable, tt.retryable)
		}
	}
}

func TestWrapTransportErrorTimeout(t *testing.T) {
	err := WrapTransportError("test", fmt.Errorf("request: %w", context.DeadlineExceeded), 60*time.Second)
	if !err.Retryable {
		t.Fatal("timeout should be retryable")
	}
	if err.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", err.StatusCode)
	}
}

func TestIsRetryableOnWrappedError(t *testing.T) {
	inner := NewRequestError("test", http.StatusServiceUnavailable, "down")
	wrapped := fmt.Errorf("call failed: %w", inner)
	if !IsRetryable(wrapped) {
		t.Fatal("wrapped retryable error not recognized")
	}
	if IsRetryable(errors.New("plain")) {
		t.Fatal("plain error must not be retryable")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"2", 2 * time.Second},
		{" 10 ", 10 * time.Second},
		{"", 0},
		{"soon", 0},
		{"-1", 0},
	}
	for _, tt := range tests {
		if got := ParseRetryAfter(tt.value); got != tt.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
