package patience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError is returned by Poll when the predicate does not succeed
// within the configured bound. Last holds the final observed result.
type TimeoutError struct {
	Attempts int
	Elapsed  time.Duration
	Last     any
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("patience: polling timed out after %s and %d attempts", e.Elapsed, e.Attempts)
}

// IsTimeout reports whether err is a polling timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Poll repeatedly invokes op until until reports that its result is
// acceptable, sleeping between attempts. until must not be nil.
//
// Polling repeats results, not failures: any error from op propagates
// immediately without another attempt. If the bound elapses before until
// succeeds, Poll returns a *TimeoutError carrying the last observed
// result.
//
// Defaults: 15 second timeout, 1 second interval, no attempt limit.
func Poll[T any](ctx context.Context, op Op[T], until Predicate[T], opts ...Option) (T, error) {
	cfg := repeatConfig{
		timeout:  DefaultTimeout,
		interval: DefaultInterval,
		clock:    realClock{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return repeat(ctx, cfg, op,
		func(result T, err error) bool {
			return err != nil || until(result)
		},
		func(last T, _ error, attempts int, elapsed time.Duration) error {
			return &TimeoutError{Attempts: attempts, Elapsed: elapsed, Last: last}
		},
	)
}

// Poller binds op and until into a reusable operation with the same
// semantics as Poll. Use it to attach a polling policy at wire-up time
// rather than at each call site.
func Poller[T any](op Op[T], until Predicate[T], opts ...Option) Op[T] {
	return func(ctx context.Context) (T, error) {
		return Poll(ctx, op, until, opts...)
	}
}
