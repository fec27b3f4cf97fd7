package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inventory-automation/app/domain"
)

// RetryPolicy is opt-in. MaxAttempts of 1 or less runs the handler once.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

// WithRetry reruns a failing handler with exponential backoff. The job is
// only marked FAILED once every attempt has failed.
func WithRetry(handler domain.JobHandler, policy RetryPolicy) domain.JobHandler {
	if policy.MaxAttempts <= 1 {
		return handler
	}

	return func(ctx context.Context) (any, error) {
		backoff := policy.Backoff
		var err error
		for attempt := 1; ; attempt++ {
			var result any
			result, err = handler(ctx)
			if err == nil {
				return result, nil
			}
			if attempt >= policy.MaxAttempts {
				break
			}

			slog.WarnContext(ctx, "[WithRetry] attempt failed", "attempt", attempt, "backoff", backoff, "error", err)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("retry aborted after %d attempts: %w", attempt, err)
			case <-timer.C:
			}

			backoff *= 2
			if policy.MaxBackoff > 0 {
				backoff = min(backoff, policy.MaxBackoff)
			}
		}
		return nil, fmt.Errorf("failed after %d attempts: %w", policy.MaxAttempts, err)
	}
}

// WithLock holds a cross-process lock for the duration of the handler so
// replicas never run the same sweep concurrently. A nil locker disables it.
func WithLock(handler domain.JobHandler, locker domain.JobLocker, key string, ttl time.Duration) domain.JobHandler {
	if locker == nil {
		return handler
	}

	return func(ctx context.Context) (any, error) {
		lock, err := locker.Obtain(ctx, key, ttl)
		if err != nil {
			slog.WarnContext(ctx, "[WithLock] Obtain", "key", key, "error", err)
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "[WithLock] Release", "key", key, "error", err)
			}
		}()

		return handler(ctx)
	}
}
