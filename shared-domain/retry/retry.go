// Package retry provides the exponential backoff + jitter policy used by
// booking-service's HTTP clients to Inventory and Payment. Every retried
// call carries the same idempotency key, so a retry can never double the
// underlying effect — only the outer transport attempt is repeated.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy controls retry behavior for outbound calls.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	ShouldRetry func(error) bool
}

// Do executes fn according to the policy. It stops as soon as fn succeeds,
// as soon as ctx is done, or once ShouldRetry returns false.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts || !shouldRetry(err) {
			return err
		}

		delay := p.BaseDelay
		if delay > 0 {
			delay = delay << (attempt - 1)
		}
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		delay = jitter(delay)

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

// jitter spreads a delay over +/-25% to avoid synchronized retry storms
// across concurrent callers hitting the same downstream service.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	spread := float64(d) * 0.25
	offset := (rand.Float64()*2 - 1) * spread
	return d + time.Duration(offset)
}
