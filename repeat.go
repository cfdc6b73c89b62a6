package patience

import (
	"context"
	"errors"
	"time"
)

// Op is the function signature for repeatable operations.
type Op[T any] func(ctx context.Context) (T, error)

// Predicate reports whether polling should stop for a given result.
type Predicate[T any] func(result T) bool

// OnErrorFunc is called each time an attempt fails. attempt is the number
// of previous attempts, starting at 0.
type OnErrorFunc func(err error, attempt int)

// Default loop values.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultInterval    = time.Second
	DefaultMaxAttempts = 3
)

// Configuration errors, returned before the first attempt is made.
var (
	// ErrUnbounded is returned when neither a timeout nor an attempt limit
	// bounds the loop.
	ErrUnbounded = errors.New("patience: neither timeout nor attempt limit set")

	// ErrNegativeInterval is returned when the delay between attempts is
	// negative.
	ErrNegativeInterval = errors.New("patience: interval must not be negative")
)

type repeatConfig struct {
	timeout     time.Duration
	maxAttempts int
	interval    time.Duration
	backoff     Backoff
	clock       Clock
	onError     OnErrorFunc
}

// Option configures a poll or retry loop.
type Option func(*repeatConfig)

// WithTimeout bounds the total wall-clock time spent looping. Zero removes
// the bound, in which case an attempt limit must be set.
func WithTimeout(d time.Duration) Option {
	return func(c *repeatConfig) {
		c.timeout = d
	}
}

// WithMaxAttempts bounds the number of attempts. Zero removes the bound,
// in which case a timeout must be set.
func WithMaxAttempts(n int) Option {
	return func(c *repeatConfig) {
		c.maxAttempts = n
	}
}

// WithInterval sets a fixed delay between attempts. It is equivalent to
// WithBackoff(Constant(d)).
func WithInterval(d time.Duration) Option {
	return func(c *repeatConfig) {
		c.interval = d
		c.backoff = nil
	}
}

// WithBackoff sets the delay strategy between attempts, replacing the
// fixed interval.
func WithBackoff(b Backoff) Option {
	return func(c *repeatConfig) {
		c.backoff = b
	}
}

// WithSleeper sets the Clock used for deadlines and inter-attempt sleeps.
// Useful for testing.
func WithSleeper(clock Clock) Option {
	return func(c *repeatConfig) {
		c.clock = clock
	}
}

// OnError sets a hook called after each failed attempt, typically to log
// the error.
func OnError(fn OnErrorFunc) Option {
	return func(c *repeatConfig) {
		c.onError = fn
	}
}

func (c *repeatConfig) validate() error {
	if c.interval < 0 {
		return ErrNegativeInterval
	}
	if c.timeout <= 0 && c.maxAttempts <= 0 {
		return ErrUnbounded
	}
	return nil
}

func (c *repeatConfig) delay(attempt int) time.Duration {
	if c.backoff != nil {
		return c.backoff.Delay(attempt)
	}
	return c.interval
}

// repeat drives the attempt loop shared by Poll and Retry. judge reports
// whether the loop should stop, in which case the attempt's outcome is
// returned as-is. Once the configured bound is reached, fail builds the
// terminal error from the last outcome. The bound check happens before
// sleeping, so a final failure surfaces promptly rather than after one
// more idle interval.
//
// All loop state is local to the invocation; concurrent calls with
// independent configurations never interact.
func repeat[T any](
	ctx context.Context,
	cfg repeatConfig,
	op Op[T],
	judge func(result T, err error) bool,
	fail func(last T, lastErr error, attempts int, elapsed time.Duration) error,
) (T, error) {
	var zero T

	if err := cfg.validate(); err != nil {
		return zero, err
	}

	start := cfg.clock.Now()
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err != nil && cfg.onError != nil {
			cfg.onError(err, attempt)
		}
		if judge(result, err) {
			return result, err
		}

		attempts := attempt + 1
		elapsed := cfg.clock.Now().Sub(start)
		if cfg.maxAttempts > 0 && attempts >= cfg.maxAttempts {
			return zero, fail(result, err, attempts, elapsed)
		}
		if cfg.timeout > 0 && elapsed >= cfg.timeout {
			return zero, fail(result, err, attempts, elapsed)
		}

		if err := cfg.clock.Sleep(ctx, cfg.delay(attempt)); err != nil {
			return zero, err
		}
	}
}
