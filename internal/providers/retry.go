// internal/providers/retry.go
package providers

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/mwiater/biasprobe/internal/logging"
)

// RetryPolicy controls the retry wrapper's attempt budget and backoff
// delays.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the engine-wide retry defaults: three attempts
// with exponential backoff starting at one second, capped at thirty seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// RetryingClient wraps a ModelClient and retries transient failures. A 429
// with a Retry-After hint sleeps exactly that long (capped at MaxDelay);
// other retryable failures use exponential backoff with jitter.
// Non-retryable errors propagate immediately.
type RetryingClient struct {
	inner  ModelClient
	policy RetryPolicy

	// rngMu guards rng; one client is shared across case workers.
	rngMu sync.Mutex
	rng   *rand.Rand

	sleep func(time.Duration)
}

// NewRetryingClient wraps inner with the given retry policy.
func NewRetryingClient(inner ModelClient, policy RetryPolicy) *RetryingClient {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = DefaultRetryPolicy().MaxDelay
	}
	return &RetryingClient{
		inner:  inner,
		policy: policy,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  time.Sleep,
	}
}

// GenerateCompletion forwards to the wrapped client, retrying transient
// failures up to the policy's attempt budget.
func (c *RetryingClient) GenerateCompletion(ctx context.Context, prompt string, opts CompletionOptions) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(lastErr, attempt-1)
			logging.LogEvent("[RETRY] attempt %d/%d after %s: %v", attempt+1, c.policy.MaxAttempts, delay, lastErr)
			c.sleep(delay)
		}

		completion, err := c.inner.GenerateCompletion(ctx, prompt, opts)
		if err == nil {
			return completion, nil
		}
		if !IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// backoffDelay derives the sleep before the next attempt. A server-supplied
// Retry-After hint wins over exponential backoff.
func (c *RetryingClient) backoffDelay(err error, attempt int) time.Duration {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.RetryAfter > 0 {
		if reqErr.RetryAfter > c.policy.MaxDelay {
			return c.policy.MaxDelay
		}
		return reqErr.RetryAfter
	}

	delay := c.policy.BaseDelay * (1 << attempt)
	c.rngMu.Lock()
	jitter := time.Duration(c.rng.Int63n(int64(c.policy.BaseDelay)))
	c.rngMu.Unlock()
	delay += jitter
	if delay > c.policy.MaxDelay {
		delay = c.policy.MaxDelay
	}
	return delay
}

// TestConnection forwards to the wrapped client without retry.
func (c *RetryingClient) TestConnection(ctx context.Context) error {
	return c.inner.TestConnection(ctx)
}

// Close closes the wrapped client.
func (c *RetryingClient) Close() error {
	return c.inner.Close()
}
