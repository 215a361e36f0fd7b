// Package retry runs an operation under a bounded, constant-delay retry policy.
//
// The same Policy drives both the listing-page fetch and the report download:
// an operation is attempted up to MaxAttempts times with a fixed Delay between
// attempts. Errors for which Retryable returns false stop the loop at once.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is wrapped into the error returned after the last attempt fails.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes how often and how patiently to retry.
type Policy struct {
	// MaxAttempts counts the first try. Values below 1 are treated as 1.
	MaxAttempts int

	// Delay is the constant wait between attempts.
	Delay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool

	// OnRetry, if set, is called before each wait with the attempt number
	// that just failed (starting at 1) and its error.
	OnRetry func(attempt int, err error)
}

// Do calls op until it succeeds, returns a non-retryable error, the policy is
// exhausted, or ctx is done.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		result    T
		lastErr   error
		attempt   int
		permanent bool
	)

	operation := func() error {
		attempt++
		v, err := op(ctx)
		if err == nil {
			result = v
			return nil
		}
		lastErr = err
		if p.Retryable != nil && !p.Retryable(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, _ time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)),
		ctx,
	)

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		var zero T
		switch {
		case permanent:
			return zero, lastErr
		case ctx.Err() != nil:
			return zero, fmt.Errorf("after %d attempts: %w", attempt, ctx.Err())
		default:
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, lastErr)
		}
	}
	return result, nil
}
