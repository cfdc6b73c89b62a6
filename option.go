package patience

import "time"

type breakerConfig struct {
	failureThreshold int
	successThreshold int
	resetTimeout     time.Duration
	halfOpenRequests int
	condition        Condition
	clock            Clock

	onStateChange OnStateChangeFunc
	onCall        OnCallFunc
	onReject      OnRejectFunc
}

// BreakerOption configures a Circuit.
type BreakerOption func(*breakerConfig)

// WithFailureThreshold sets consecutive matching failures before opening
// the circuit. Default is 5.
func WithFailureThreshold(n int) BreakerOption {
	return func(c *breakerConfig) {
		c.failureThreshold = n
	}
}

// WithSuccessThreshold sets consecutive trial successes in half-open state
// required before closing the circuit. Default is 1.
func WithSuccessThreshold(n int) BreakerOption {
	return func(c *breakerConfig) {
		c.successThreshold = n
	}
}

// WithResetTimeout sets how long the circuit stays open before the next
// call is admitted as a trial. Default is 30 seconds.
func WithResetTimeout(d time.Duration) BreakerOption {
	return func(c *breakerConfig) {
		c.resetTimeout = d
	}
}

// WithHalfOpenRequests sets how many trial calls may be in flight at once
// in the half-open state. Default is 1.
func WithHalfOpenRequests(n int) BreakerOption {
	return func(c *breakerConfig) {
		c.halfOpenRequests = n
	}
}

// If sets the condition that determines whether an error counts as a
// failure. By default, any non-nil error is a failure. Errors outside the
// condition propagate unchanged and never count toward the threshold.
func If(cond Condition) BreakerOption {
	return func(c *breakerConfig) {
		c.condition = cond
	}
}

// IfNot sets a condition where matching errors are NOT counted as
// failures. This is equivalent to If(Not(cond)).
func IfNot(cond Condition) BreakerOption {
	return If(Not(cond))
}

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(err error) bool {
		return !cond(err)
	}
}

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clock Clock) BreakerOption {
	return func(c *breakerConfig) {
		c.clock = clock
	}
}

// OnStateChange sets a hook called when the circuit changes state.
func OnStateChange(fn OnStateChangeFunc) BreakerOption {
	return func(c *breakerConfig) {
		c.onStateChange = fn
	}
}

// OnCall sets a hook called after each call attempt.
func OnCall(fn OnCallFunc) BreakerOption {
	return func(c *breakerConfig) {
		c.onCall = fn
	}
}

// OnReject sets a hook called when a call is rejected due to an open
// circuit.
func OnReject(fn OnRejectFunc) BreakerOption {
	return func(c *breakerConfig) {
		c.onReject = fn
	}
}
