package retry

import (
	"context"
	"time"
)

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base * (1 << attempt)
}

// CappedBackoff is ExponentialBackoff limited to max.
func CappedBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt > 30 {
		return max
	}
	if d := ExponentialBackoff(attempt, base); d < max {
		return d
	}
	return max
}

// Policy describes how often and how quickly an operation is retried.
type Policy struct {
	MaxRetries int
	Base       time.Duration
	Max        time.Duration
	// Retryable decides whether err is worth another attempt. Nil retries every error.
	Retryable func(err error) bool
}

// Do runs fn until it succeeds, returns a non-retryable error, exhausts the
// policy, or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Max <= 0 {
		p.Max = 30 * time.Second
	}
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(CappedBackoff(attempt-1, p.Base, p.Max)):
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return err
}
