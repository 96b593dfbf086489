// Package retry provides a small retry policy for outbound API calls.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried: total attempt count and an
// exponential backoff between attempts (BaseDelay, BaseDelay*Multiplier, ...).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  int
}

// DefaultPolicy returns the policy used for all generation calls:
// 3 attempts with delays of 2s and 4s between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, Multiplier: 2}
}

// Do runs fn until it succeeds or MaxAttempts is exhausted, sleeping between
// attempts. Context cancellation during a sleep aborts with ctx.Err().
// The last error from fn is returned after exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if p.Multiplier > 1 {
			delay *= time.Duration(p.Multiplier)
		}
	}
	return lastErr
}
