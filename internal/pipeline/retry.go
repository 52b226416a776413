package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/quizway/quizway/internal/oracle"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *oracle.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// retryingOracle wraps a provider with transient-error retries so the
// generation protocol above it only ever sees terminal outcomes.
type retryingOracle struct {
	inner oracle.Oracle
}

// WithRetries decorates o with backoff on rate-limit and server errors.
// A nil oracle passes through untouched (fallback-only mode).
func WithRetries(o oracle.Oracle) oracle.Oracle {
	if o == nil {
		return nil
	}
	return &retryingOracle{inner: o}
}

func (r *retryingOracle) Generate(ctx context.Context, prompt string) (string, error) {
	var raw string
	var lastErr error
	for attempt := range MaxRetries {
		raw, lastErr = r.inner.Generate(ctx, prompt)
		if lastErr == nil || !IsRetryable(lastErr) {
			return raw, lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return raw, lastErr
}

func (r *retryingOracle) Close() {
	r.inner.Close()
}
