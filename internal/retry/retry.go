// Package retry runs short bounded retry loops with exponential backoff.
package retry

import (
	"context"
	"time"
)

// Delay returns the backoff before retry number attempt (1-based):
// base, 2*base, 4*base, doubling each time.
func Delay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}

// Do calls fn up to attempts times, sleeping Delay(base, n) between
// tries. It returns nil on the first success, the last error once
// attempts are exhausted, or ctx.Err() if the context ends while
// waiting.
func Do(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
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
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Delay(base, attempt)):
		}
	}
	return lastErr
}
