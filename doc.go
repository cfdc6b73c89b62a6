// Package patience provides resilience primitives for operations that fail
// transiently or that must be repeated until a condition holds.
//
// patience wraps a caller-supplied operation with one of three policies:
//
//   - Polling: repeat until a predicate on the result is satisfied
//   - Retrying: repeat until no matching error is returned
//   - Circuit Breaking: stop calling after a failure threshold, then
//     periodically probe for recovery
//
// # Quick Start
//
// Poll until a result is acceptable:
//
//	status, err := patience.Poll(ctx, fetchStatus, func(s Status) bool {
//	    return s.Ready
//	})
//
// Retry an operation that fails transiently:
//
//	body, err := patience.Retry(ctx, download, patience.Match(ErrUnavailable),
//	    patience.WithMaxAttempts(5),
//	    patience.WithBackoff(patience.Exponential(100*time.Millisecond)),
//	)
//
// Protect a call site with a circuit breaker:
//
//	circuit := patience.New("payment-service")
//
//	err := circuit.Do(ctx, func(ctx context.Context) error {
//	    return client.Charge(ctx, amount)
//	})
//	if patience.IsOpen(err) {
//	    return handleFallback()
//	}
//
// # Polling
//
// Poll repeatedly invokes an operation and evaluates a predicate on its
// result. An error from the operation propagates immediately: polling
// repeats results, not failures. When the bound elapses without the
// predicate succeeding, Poll returns a *TimeoutError carrying the last
// observed result:
//
//	_, err := patience.Poll(ctx, fetchStatus, isReady,
//	    patience.WithTimeout(30*time.Second),
//	    patience.WithInterval(2*time.Second),
//	)
//	if patience.IsTimeout(err) {
//	    var te *patience.TimeoutError
//	    errors.As(err, &te)
//	    log.Printf("gave up after %d attempts, last: %v", te.Attempts, te.Last)
//	}
//
// Defaults: 15 second timeout, 1 second interval.
//
// # Retrying
//
// Retry repeats an operation while it returns a matching error. Errors
// outside the match propagate immediately with no further attempts, and
// on exhaustion the last matching error is returned unchanged so its
// diagnostic detail reaches the caller:
//
//	user, err := patience.Retry(ctx, fetchUser, patience.Match(ErrTimeout, ErrUnavailable),
//	    patience.WithMaxAttempts(3),
//	)
//
// A nil matcher treats every error as retryable. Defaults: 3 attempts,
// 1 second interval.
//
// Both loops require a bound: a configuration with neither a timeout nor
// an attempt limit is rejected with ErrUnbounded before the first attempt.
//
// # Wrapped Forms
//
// Poller, Retrier, and Protect bind a policy to an operation at wire-up
// time, returning a plain operation for call sites:
//
//	healthy := patience.Poller(checkHealth, isHealthy, patience.WithTimeout(time.Minute))
//	// later, possibly in another package:
//	_, err := healthy(ctx)
//
// # Circuit States
//
// The circuit breaker has three states:
//
//	Closed (normal):
//	    - Calls flow through to the protected operation
//	    - Matching failures are counted; success resets the count
//	    - When failures reach the threshold, the circuit opens
//
//	Open (tripped):
//	    - Calls are rejected immediately with *OpenError
//	    - After the reset timeout, the next call is admitted as a trial
//
//	HalfOpen (testing):
//	    - One trial call probes the dependency; everyone else is
//	      rejected until it resolves
//	    - Success closes the circuit
//	    - Failure reopens it
//
// The Open to HalfOpen transition is evaluated lazily when a call
// arrives; the breaker runs no background timers.
//
// # Configuration
//
// Configure thresholds and timing with options:
//
//	circuit := patience.New("api",
//	    patience.WithFailureThreshold(3),          // Open after 3 consecutive failures
//	    patience.WithResetTimeout(30*time.Second), // Wait 30s before a trial
//	)
//
// Default values:
//
//   - FailureThreshold: 5 consecutive matching failures
//   - SuccessThreshold: 1 trial success to close
//   - ResetTimeout: 30 seconds
//   - HalfOpenRequests: 1 trial slot
//
// # Failure Conditions
//
// By default, any non-nil error counts as a failure. Customize this with
// If, IfNot, and Not:
//
//	circuit := patience.New("api",
//	    patience.If(patience.Match(ErrTimeout, ErrUnavailable)),
//	)
//
// Errors outside the condition always propagate unchanged and are never
// retried or counted toward the threshold.
//
// # Distinguishing Refusals
//
// A refused call is not a failed operation. Use IsOpen to tell them
// apart, and OpenError.Remaining to see how long the circuit stays shut:
//
//	err := circuit.Do(ctx, op)
//	var oe *patience.OpenError
//	if errors.As(err, &oe) {
//	    log.Printf("circuit open, retry in %s", oe.Remaining)
//	}
//
// # Lifecycle Hooks
//
// Hooks provide observability without coupling to a specific logger or
// metrics system:
//
//	circuit := patience.New("service",
//	    patience.OnStateChange(func(name string, from, to patience.State) {
//	        logger.Info("circuit state change", "circuit", name, "from", from, "to", to)
//	    }),
//	)
//
//	_, err := patience.Retry(ctx, op, nil,
//	    patience.OnError(func(err error, attempt int) {
//	        logger.Warn("attempt failed", "attempt", attempt, "error", err)
//	    }),
//	)
//
// # Policy Files
//
// LoadConfig reads named policies from a JSON file and hands out
// persistent circuits and loop options through a Registry:
//
//	{
//	  "policies": {
//	    "payment": {
//	      "breaker": {"failure_threshold": 3, "reset_timeout": "30s"},
//	      "retry": {"max_attempts": 3, "backoff": "exponential", "base_delay": "100ms"}
//	    }
//	  }
//	}
//
//	reg, err := patience.LoadConfig("policies.json")
//	circuit := reg.Circuit("payment")
//	_, err = patience.Retry(ctx, op, nil, reg.RetryOptions("payment")...)
//
// # Composition
//
// Retry and circuit breaking work well together; stop retrying once the
// circuit refuses to try:
//
//	charge := patience.Protect(circuit, chargeOnce)
//	_, err := patience.Retry(ctx, charge, patience.Not(patience.IsOpen))
//
// # Testing
//
// Inject a fake clock to control time without real sleeps:
//
//	type fakeClock struct {
//	    now time.Time
//	}
//
//	func (c *fakeClock) Now() time.Time { return c.now }
//	func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
//	    c.now = c.now.Add(d)
//	    return ctx.Err()
//	}
//
// Pass it with WithClock on a circuit or WithSleeper on a loop.
//
// # Concurrency
//
// Operations execute on the caller's goroutine and sleeps are blocking
// waits; run the whole loop on a worker if you need it off the hot path.
// A Circuit's state is guarded by a single mutex held only across state
// decisions, never while the protected operation runs. Loops keep no
// shared state between invocations. Nothing here coordinates across
// processes: a Circuit protects a single in-process call site.
package patience
