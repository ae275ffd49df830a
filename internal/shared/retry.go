package shared

import (
	"context"
	"time"
)

// RetryPolicy wraps a remote call with bounded exponential backoff.
//
// The zero value retries nothing; use [NewRetryPolicy] or set fields
// explicitly. Sleep is injectable for tests.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Retriable reports whether an error warrants another attempt.
	// A nil predicate treats every error as transient.
	Retriable func(error) bool

	// Sleep blocks between attempts. Defaults to [SleepWithContext].
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy builds a policy from config values with a 30s delay cap.
func NewRetryPolicy(cfg RetryConfig, retriable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay(),
		MaxDelay:    30 * time.Second,
		Retriable:   retriable,
	}
}

// Do invokes fn until it succeeds, the error is not retriable, attempts are
// exhausted, or ctx is cancelled. The last error is returned on failure.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepWithContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retriable != nil && !p.Retriable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		if err := sleep(ctx, p.delay(attempt)); err != nil {
			return err
		}
	}

	return lastErr
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
