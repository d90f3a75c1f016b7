// Package retry wraps operations whose failures are transient
// (network and upstream-service errors) with exponential backoff.
// Errors not marked transient are never retried.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as a transient service failure eligible for retry.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err (or anything it wraps) was marked transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Policy configures the backoff between attempts.
type Policy struct {
	MaxAttempts     int           // total tries, including the first
	InitialInterval time.Duration // delay before the second attempt
	MaxInterval     time.Duration // cap on the delay between attempts
	Multiplier      float64
	Jitter          float64 // randomization factor, 0 disables jitter
}

// DefaultPolicy mirrors the upstream defaults used across the service:
// three attempts, 1s initial delay, doubling, with jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
		Jitter:          0.1,
	}
}

func (p Policy) backoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		bo.Multiplier = p.Multiplier
	}
	bo.RandomizationFactor = p.Jitter
	return bo
}

// Do runs op, retrying transient failures up to p.MaxAttempts tries.
// Non-transient errors return immediately; exhausting the attempts
// returns the last error.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(p.backoff()), backoff.WithMaxTries(uint(attempts)))
}
