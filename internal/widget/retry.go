package widget

import (
	"context"
	"errors"
	"time"
)

// Policy bounds the retry behavior around one idempotent network call.
// The schedule is fixed exponential with no jitter: BaseDelay, 2x, 4x, ...
// Deliberately simple for a low-QPS embed script.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy is the schedule the embed script ships with: 3 attempts,
// waiting 1s then 2s between them
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

// TransientError marks a failure worth retrying: a network error or a 5xx
// from the store. Anything else is a business failure and propagates
// immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable
func Transient(err error) error {
	return &TransientError{Err: err}
}

// IsTransient reports whether err may be retried
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Do runs op under the policy, sleeping the exponential schedule between
// failed attempts. The final error is returned once attempts are
// exhausted; non-transient errors short-circuit on the spot.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return err
}
