package patience

import (
	"context"
	"errors"
	"time"
)

// Match returns a Condition satisfied by errors matching any of targets
// via errors.Is.
func Match(targets ...error) Condition {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// Retry invokes op until it completes without an error matching match,
// sleeping between attempts. An error outside match propagates immediately
// with no further attempts.
//
// On exhaustion the last matching error is returned unchanged, so its
// diagnostic detail reaches the caller rather than a synthetic wrapper.
// A nil match treats every error as retryable.
//
// Defaults: 3 attempts, 1 second interval, no overall timeout.
func Retry[T any](ctx context.Context, op Op[T], match Condition, opts ...Option) (T, error) {
	cfg := repeatConfig{
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultInterval,
		clock:       realClock{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if match == nil {
		match = defaultCondition
	}

	return repeat(ctx, cfg, op,
		func(_ T, err error) bool {
			return err == nil || !match(err)
		},
		func(_ T, lastErr error, _ int, _ time.Duration) error {
			return lastErr
		},
	)
}

// Retrier binds op and match into a reusable operation with the same
// semantics as Retry.
func Retrier[T any](op Op[T], match Condition, opts ...Option) Op[T] {
	return func(ctx context.Context) (T, error) {
		return Retry(ctx, op, match, opts...)
	}
}
