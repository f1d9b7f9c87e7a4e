// Package retry computes backoff delays and drives the attempt loop on sethvargo/go-retry.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Policy describes how a failed attempt is retried.
type Policy struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int
	// BaseDelay is the wait after the first failure.
	BaseDelay time.Duration
	// Exponential doubles the wait after every further failure.
	Exponential bool
}

// NewPolicy clamps negative values to zero.
func NewPolicy(maxRetries int, baseDelay time.Duration, exponential bool) Policy {
	return Policy{
		MaxRetries:  max(maxRetries, 0),
		BaseDelay:   max(baseDelay, 0),
		Exponential: exponential,
	}
}

// MaxAttempts is the total number of attempts including the first.
func (p Policy) MaxAttempts() int {
	return max(p.MaxRetries, 0) + 1
}

// Delay returns the wait after failed attempt number attempt (1-based):
// BaseDelay * 2^(attempt-1) when exponential, BaseDelay otherwise.
// The exponential value saturates at the largest time.Duration.
func (p Policy) Delay(attempt int) time.Duration {
	base := max(p.BaseDelay, 0)
	if !p.Exponential || attempt <= 1 || base == 0 {
		return base
	}

	shift := attempt - 1
	if shift >= 63 || base > time.Duration(math.MaxInt64>>shift) {
		return time.Duration(math.MaxInt64)
	}
	return base << shift
}

// Backoff returns a fresh go-retry backoff that yields Delay(1), Delay(2), ...
// and stops after MaxRetries values.
func (p Policy) Backoff() goretry.Backoff {
	attempt := 0
	next := goretry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return p.Delay(attempt), false
	})
	return goretry.WithMaxRetries(uint64(max(p.MaxRetries, 0)), next) // #nosec G115 - clamped above
}

// Func is one attempt. attempt starts at 1.
type Func func(ctx context.Context, attempt int) error

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// used up, or ctx is done. The last attempt error is returned unwrapped; a done
// ctx yields ctx.Err().
func (p Policy) Do(ctx context.Context, fn Func) error {
	attempt := 0
	err := goretry.Do(ctx, p.Backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
		return goretry.RetryableError(err)
	})

	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
