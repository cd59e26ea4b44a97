package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, pages without a
// usable image) with this type so that [Retry] knows to attempt the
// operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy controls how [Retry] spaces attempts.
type Policy struct {
	// Attempts is the maximum number of calls to fn. Values below 1 mean 1.
	Attempts int

	// Delay is the wait after the first failed attempt.
	Delay time.Duration

	// Multiplier scales Delay after each failed attempt. Zero or one keeps
	// the delay fixed.
	Multiplier float64

	// DelayAfterLast also waits after the final failed attempt. Useful as
	// caller-side throttling when the next operation hits the same host.
	DelayAfterLast bool
}

// FixedPolicy returns a policy with a constant inter-attempt delay.
func FixedPolicy(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay, Multiplier: 1}
}

// Retry executes fn up to p.Attempts times. fn receives the 1-based attempt
// number. It only retries errors wrapped with [RetryableError]; other errors
// are returned immediately. Returns the last error if all attempts fail, or
// ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, p Policy, fn func(attempt int) error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(i + 1); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 || p.DelayAfterLast {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				if p.Multiplier > 1 {
					delay = time.Duration(float64(delay) * p.Multiplier)
				}
			}
		}
	}
	return lastErr
}
