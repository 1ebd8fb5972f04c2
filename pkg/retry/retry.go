// Package retry runs an operation under a bounded, fixed-delay retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is wrapped by the error Do returns after the last allowed
// attempt failed with a retryable error.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// Delay is the fixed wait between two attempts.
	Delay time.Duration
	// Retryable decides whether an error is worth another attempt. Nil
	// means every error is retryable.
	Retryable func(error) bool
	// Sleep defaults to a timer honouring ctx.
	Sleep Sleeper
	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error)
}

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. Non-retryable errors are returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if serr := sleep(ctx, p.Delay); serr != nil {
			return fmt.Errorf("retry interrupted after %d attempts: %w", attempt, serr)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
