package patience

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff determines the delay before a retry attempt.
type Backoff interface {
	// Delay returns the duration to wait before the given attempt
	// (0-indexed: attempt 0 is the delay before the first repeat).
	Delay(attempt int) time.Duration
}

// BackoffFunc adapts an ordinary function into a Backoff.
type BackoffFunc func(attempt int) time.Duration

// Delay calls the underlying function.
func (f BackoffFunc) Delay(attempt int) time.Duration { return f(attempt) }

type constantBackoff struct {
	d time.Duration
}

func (b constantBackoff) Delay(int) time.Duration { return b.d }

// Constant returns a Backoff that waits the same duration before every
// attempt.
func Constant(d time.Duration) Backoff {
	return constantBackoff{d: d}
}

type linearBackoff struct {
	step time.Duration
}

func (b linearBackoff) Delay(attempt int) time.Duration {
	return b.step * time.Duration(attempt+1)
}

// Linear returns a Backoff whose delay grows linearly: step, 2*step,
// 3*step, and so on.
func Linear(step time.Duration) Backoff {
	return linearBackoff{step: step}
}

type exponentialBackoff struct {
	base time.Duration
}

func (b exponentialBackoff) Delay(attempt int) time.Duration {
	return time.Duration(float64(b.base) * math.Pow(2, float64(attempt)))
}

// Exponential returns a Backoff whose delay doubles with each attempt:
// base * 2^attempt.
func Exponential(base time.Duration) Backoff {
	return exponentialBackoff{base: base}
}

type capBackoff struct {
	max   time.Duration
	inner Backoff
}

func (b capBackoff) Delay(attempt int) time.Duration {
	d := b.inner.Delay(attempt)
	if d > b.max {
		return b.max
	}
	return d
}

// WithCap wraps b so that its delay never exceeds max.
func WithCap(max time.Duration, b Backoff) Backoff {
	return capBackoff{max: max, inner: b}
}

type minBackoff struct {
	min   time.Duration
	inner Backoff
}

func (b minBackoff) Delay(attempt int) time.Duration {
	d := b.inner.Delay(attempt)
	if d < b.min {
		return b.min
	}
	return d
}

// WithMin wraps b so that its delay is at least min.
func WithMin(min time.Duration, b Backoff) Backoff {
	return minBackoff{min: min, inner: b}
}

type jitterBackoff struct {
	factor float64
	inner  Backoff
}

func (b jitterBackoff) Delay(attempt int) time.Duration {
	d := b.inner.Delay(attempt)
	if d <= 0 || b.factor <= 0 {
		return d
	}
	delta := b.factor * float64(d)
	jittered := float64(d) + (rand.Float64()*2-1)*delta
	if jittered < 0 {
		return 0
	}
	return time.Duration(jittered)
}

// WithJitter wraps b so that its delay is randomized within
// +/- factor * delay. Jitter spreads concurrent retriers across time to
// avoid a thundering herd.
func WithJitter(factor float64, b Backoff) Backoff {
	return jitterBackoff{factor: factor, inner: b}
}
