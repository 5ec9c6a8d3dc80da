package judge

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"time"
)

// RetryConfig controls backoff between judge attempts.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxJitter   time.Duration
}

// DefaultRetryConfig suits interactive API judges: quick first retry,
// bounded total wait.
func DefaultRetryConfig(maxAttempts int) RetryConfig {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryConfig{
		MaxAttempts: maxAttempts,
		BaseBackoff: 2 * time.Second,
		MaxBackoff:  30 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// retryable reports whether an error is worth another attempt. Malformed
// and incomplete replies are retried because the model may do better on a
// second pass; context cancellation never is.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// retryWithBackoff runs fn up to cfg.MaxAttempts times with exponential
// backoff and jitter between attempts.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		if !retryable(lastErr) || attempt == cfg.MaxAttempts {
			break
		}

		backoff := min(cfg.BaseBackoff<<(attempt-1), cfg.MaxBackoff)

		var jitter time.Duration
		if cfg.MaxJitter > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter)))
			if err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		slog.Warn("judge call failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"backoff", backoff+jitter,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return result, lastErr
}
