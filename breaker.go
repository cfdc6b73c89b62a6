package patience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// Closed is the normal operating state. Calls flow through.
	Closed State = iota

	// Open is the tripped state. Calls are rejected immediately.
	Open

	// HalfOpen is the recovery testing state. A limited number of trial
	// calls are allowed.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Func is the function signature for protected operations.
type Func func(ctx context.Context) error

// Condition determines whether an error counts as a matching failure.
type Condition func(error) bool

// OnStateChangeFunc is called when the circuit changes state.
type OnStateChangeFunc func(name string, from, to State)

// OnCallFunc is called after each call attempt.
type OnCallFunc func(name string, state State, err error)

// OnRejectFunc is called when a call is rejected due to an open circuit.
type OnRejectFunc func(name string)

// ErrOpen is the errors.Is target for calls refused because the circuit
// is open or a trial is already in flight. Refusals are distinct from the
// protected operation's own failures: the operation is never invoked.
var ErrOpen = errors.New("circuit open")

// OpenError reports a refused call. Remaining is how long until the next
// trial call will be admitted; it is zero while a trial is in flight.
type OpenError struct {
	Circuit   string
	Remaining time.Duration
}

func (e *OpenError) Error() string {
	if e.Remaining > 0 {
		return fmt.Sprintf("circuit %s open: try again in %s", e.Circuit, e.Remaining)
	}
	return fmt.Sprintf("circuit %s open", e.Circuit)
}

func (e *OpenError) Is(target error) bool { return target == ErrOpen }

// IsOpen reports whether err is because the circuit refused the call.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// Default values.
const (
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 1
	DefaultResetTimeout     = 30 * time.Second
	DefaultHalfOpenRequests = 1
)

// Circuit is a circuit breaker. Safe for concurrent use: a single mutex
// guards every state decision, and the protected operation always runs
// outside the lock. Create one Circuit per protected call site and share
// it across the callers it should protect together; its whole purpose is
// memory across calls.
type Circuit struct {
	name string
	cfg  breakerConfig

	mu         sync.Mutex
	state      State
	generation uint64 // bumped on every transition; stamps admissions
	failures   int
	successes  int
	inflight   int // trial calls currently executing in half-open
	openedAt   time.Time
}

// New creates a Circuit with the given options.
func New(name string, opts ...BreakerOption) *Circuit {
	cfg := breakerConfig{
		failureThreshold: DefaultFailureThreshold,
		successThreshold: DefaultSuccessThreshold,
		resetTimeout:     DefaultResetTimeout,
		halfOpenRequests: DefaultHalfOpenRequests,
		condition:        defaultCondition,
		clock:            realClock{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Circuit{
		name:  name,
		cfg:   cfg,
		state: Closed,
	}
}

// Do executes fn with circuit breaker protection. fn's own error is
// returned unchanged; refusals are reported as *OpenError.
func (c *Circuit) Do(ctx context.Context, fn Func) error {
	gen, admitted, err := c.allow()
	if err != nil {
		if c.cfg.onReject != nil {
			c.cfg.onReject(c.name)
		}
		return err
	}

	fnErr := fn(ctx)

	c.record(gen, fnErr)

	if c.cfg.onCall != nil {
		c.cfg.onCall(c.name, admitted, fnErr)
	}

	return fnErr
}

// State returns the current state.
func (c *Circuit) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentState()
}

// Reset manually resets the circuit to closed state.
func (c *Circuit) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setState(Closed)
}

// Name returns the circuit name.
func (c *Circuit) Name() string {
	return c.name
}

// Counts returns the current failure and success counts.
func (c *Circuit) Counts() (failures, successes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures, c.successes
}

// allow decides whether a call may proceed and, in half-open, takes a
// trial slot. The generation stamps the window the call was admitted
// under, so its outcome can be attributed to that window and no other.
func (c *Circuit) allow() (uint64, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.currentState()
	switch state {
	case Open:
		return c.generation, state, &OpenError{Circuit: c.name, Remaining: c.remaining()}
	case HalfOpen:
		if c.inflight >= c.cfg.halfOpenRequests {
			return c.generation, state, &OpenError{Circuit: c.name}
		}
		c.inflight++
	}
	return c.generation, state, nil
}

func (c *Circuit) record(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.currentState()

	if gen != c.generation {
		// The window this call was admitted under is gone: every
		// transition, including a reset or a re-opened probe window,
		// bumps the generation. Only calls admitted in the current
		// window are evidence, and their slots died with the window.
		return
	}

	// An unchanged generation means no transition happened since
	// admission, so state here is the state the call was admitted under.
	if state == HalfOpen {
		c.inflight--
	}

	switch state {
	case Closed:
		switch {
		case err == nil:
			c.failures = 0
		case c.cfg.condition(err):
			c.failures++
			if c.failures >= c.cfg.failureThreshold {
				c.setState(Open)
			}
		}
		// Errors outside the condition leave the counter untouched.

	case HalfOpen:
		switch {
		case err == nil:
			c.successes++
			if c.successes >= c.cfg.successThreshold {
				c.setState(Closed)
			}
		case c.cfg.condition(err):
			c.setState(Open)
		default:
			// A failure outside the condition still aborts the trial,
			// but the open window it interrupted keeps running, so the
			// next call is admitted as a fresh trial.
			openedAt := c.openedAt
			c.setState(Open)
			c.openedAt = openedAt
		}
	}
}

func (c *Circuit) currentState() State {
	if c.state == Open && c.cfg.clock.Now().Sub(c.openedAt) >= c.cfg.resetTimeout {
		c.setState(HalfOpen)
	}
	return c.state
}

func (c *Circuit) remaining() time.Duration {
	r := c.cfg.resetTimeout - c.cfg.clock.Now().Sub(c.openedAt)
	if r < 0 {
		return 0
	}
	return r
}

func (c *Circuit) setState(to State) {
	if c.state == to {
		return
	}
	from := c.state
	c.state = to
	c.generation++

	c.failures = 0
	c.successes = 0
	c.inflight = 0

	if to == Open {
		c.openedAt = c.cfg.clock.Now()
	}

	if c.cfg.onStateChange != nil {
		c.cfg.onStateChange(c.name, from, to)
	}
}

func defaultCondition(err error) bool {
	return err != nil
}
