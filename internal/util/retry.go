// ABOUTME: Retry helpers with exponential backoff for store calls
// ABOUTME: Used by the CLI and MCP callers; the sync core never retries
package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	// jitter in [-25%, +25%)
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// Retry calls fn until it succeeds, returns an error retryable rejects, or
// retries extra attempts have failed. The last error is returned. A nil
// retryable retries every error.
func Retry(ctx context.Context, retries int, baseDelay time.Duration, retryable func(error) bool, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= retries || (retryable != nil && !retryable(err)) {
			return err
		}

		wait := CalculateBackoff(baseDelay, attempt+1)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
}
