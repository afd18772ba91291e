package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mfuentes/insider-scout/internal/service"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// WithRetry executes an operation with exponential backoff. Errors wrapped in
// a non-retryable RetryableError stop immediately.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = opts.InitialDelay
	policy.MaxInterval = opts.MaxDelay
	policy.Multiplier = opts.Multiplier

	attempt := 0
	wrapped := func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}

		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return backoff.Permanent(err)
		}

		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"error", err)
		return err
	}

	limited := backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(opts.MaxAttempts-1))
	if err := backoff.Retry(wrapped, limited); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, attempt, err)
	}
	return nil
}
