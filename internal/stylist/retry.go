package stylist

import (
	"context"
	"time"
)

// RetryPolicy is a bounded retry loop with a pluggable backoff curve and a
// retryable-error predicate. It suspends on the context rather than
// blocking, so an abandoned suggestion flow cancels in-flight retries.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(err error) bool
}

// LinearBackoff returns attempt*step (2s, 4s, ... for step=2s).
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Do runs call until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts, or the context is cancelled.
func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = call(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// next attempt
		}
	}
	return lastErr
}
