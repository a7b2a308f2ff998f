package services

import (
	"context"
	"time"
)

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryPolicy runs an operation up to attempts times with linear backoff
// (backoff * attempt between tries). Shared by the dispatcher and the
// subscription-expiry sweep.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
	sleep    sleepFunc
}

// run returns the number of attempts made and the final error, nil on success.
func (p retryPolicy) run(ctx context.Context, fn func() error) (int, error) {
	attempts := p.attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}
		if attempt < attempts && p.backoff > 0 {
			if err := sleep(ctx, time.Duration(attempt)*p.backoff); err != nil {
				// Context cancelled mid-backoff; report what we saw so far.
				return attempt, lastErr
			}
		}
	}
	return attempts, lastErr
}
