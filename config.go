package patience

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// configFile is the top-level JSON structure.
	configFile struct {
		Policies map[string]PolicyConfig `json:"policies"`
	}

	// PolicyConfig holds the decoded configuration for a single named
	// policy. Export it to embed in your own app config structs, then
	// call the Options methods to obtain functional options.
	PolicyConfig struct {
		// Breaker configures a circuit breaker.
		// Optional. Example: {"failure_threshold": 5}.
		Breaker *BreakerConfig `json:"breaker,omitempty"`
		// Retry configures a retry loop.
		// Optional. Example: {"max_attempts": 3, "interval": "1s"}.
		Retry *RetryConfig `json:"retry,omitempty"`
		// Poll configures a polling loop.
		// Optional. Example: {"timeout": "15s", "interval": "1s"}.
		Poll *PollConfig `json:"poll,omitempty"`
	}

	// BreakerConfig holds circuit breaker configuration values.
	BreakerConfig struct {
		// FailureThreshold is the number of consecutive matching
		// failures before opening. Optional. Example: 5.
		FailureThreshold *int `json:"failure_threshold,omitempty"`
		// SuccessThreshold is the number of trial successes needed to
		// close from half-open. Optional. Example: 1.
		SuccessThreshold *int `json:"success_threshold,omitempty"`
		// ResetTimeout is how long the circuit stays open.
		// Optional. Parsed via time.ParseDuration. Example: "30s".
		ResetTimeout *string `json:"reset_timeout,omitempty"`
		// HalfOpenRequests is the number of trial slots in half-open.
		// Optional. Example: 1.
		HalfOpenRequests *int `json:"half_open_requests,omitempty"`
	}

	// RetryConfig holds retry loop configuration values.
	RetryConfig struct {
		// MaxAttempts bounds the number of attempts. Optional. Example: 3.
		MaxAttempts *int `json:"max_attempts,omitempty"`
		// Timeout bounds the total time spent retrying.
		// Optional. Parsed via time.ParseDuration. Example: "30s".
		Timeout *string `json:"timeout,omitempty"`
		// Interval is the fixed delay between attempts. Ignored when
		// Backoff is set. Optional. Example: "1s".
		Interval *string `json:"interval,omitempty"`
		// Backoff names a delay strategy. One of: "constant", "linear",
		// "exponential", "exponential_jitter". Requires BaseDelay.
		Backoff *string `json:"backoff,omitempty"`
		// BaseDelay is the base delay for the named backoff strategy.
		// Parsed via time.ParseDuration. Example: "100ms".
		BaseDelay *string `json:"base_delay,omitempty"`
	}

	// PollConfig holds polling loop configuration values.
	PollConfig struct {
		// Timeout bounds the total time spent polling.
		// Optional. Parsed via time.ParseDuration. Example: "15s".
		Timeout *string `json:"timeout,omitempty"`
		// Interval is the fixed delay between attempts.
		// Optional. Parsed via time.ParseDuration. Example: "1s".
		Interval *string `json:"interval,omitempty"`
		// MaxAttempts bounds the number of attempts. Optional.
		MaxAttempts *int `json:"max_attempts,omitempty"`
	}
)

// LoadConfig reads a JSON configuration file and stores the policy
// configurations in a Registry. Circuits are not created until
// Registry.Circuit is called, so callers can supply additional
// code-level options (hooks, clocks, conditions) at wire-up.
//
// All policies are validated eagerly so errors surface at load time.
func LoadConfig(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("patience: read config: %w", err)
	}

	var cfg configFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("patience: parse config: %w", err)
	}

	for name, pc := range cfg.Policies {
		if err := pc.validate(); err != nil {
			return nil, fmt.Errorf("patience: policy %q: %w", name, err)
		}
	}

	reg := NewRegistry()
	reg.mu.Lock()
	reg.configs = cfg.Policies
	reg.mu.Unlock()

	return reg, nil
}

func (pc *PolicyConfig) validate() error {
	if pc.Breaker != nil {
		if _, err := pc.Breaker.Options(); err != nil {
			return err
		}
	}
	if pc.Retry != nil {
		if _, err := pc.Retry.Options(); err != nil {
			return err
		}
	}
	if pc.Poll != nil {
		if _, err := pc.Poll.Options(); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the decoded breaker configuration into functional
// options for New.
func (bc *BreakerConfig) Options() ([]BreakerOption, error) {
	var opts []BreakerOption

	if bc.FailureThreshold != nil {
		opts = append(opts, WithFailureThreshold(*bc.FailureThreshold))
	}
	if bc.SuccessThreshold != nil {
		opts = append(opts, WithSuccessThreshold(*bc.SuccessThreshold))
	}
	if bc.ResetTimeout != nil {
		d, err := time.ParseDuration(*bc.ResetTimeout)
		if err != nil {
			return nil, fmt.Errorf("breaker.reset_timeout: %w", err)
		}
		opts = append(opts, WithResetTimeout(d))
	}
	if bc.HalfOpenRequests != nil {
		opts = append(opts, WithHalfOpenRequests(*bc.HalfOpenRequests))
	}

	return opts, nil
}

// Options converts the decoded retry configuration into functional
// options for Retry.
func (rc *RetryConfig) Options() ([]Option, error) {
	var opts []Option

	if rc.MaxAttempts != nil {
		opts = append(opts, WithMaxAttempts(*rc.MaxAttempts))
	}
	if rc.Timeout != nil {
		d, err := time.ParseDuration(*rc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("retry.timeout: %w", err)
		}
		opts = append(opts, WithTimeout(d))
	}
	if rc.Interval != nil {
		d, err := time.ParseDuration(*rc.Interval)
		if err != nil {
			return nil, fmt.Errorf("retry.interval: %w", err)
		}
		opts = append(opts, WithInterval(d))
	}
	if rc.Backoff != nil {
		b, err := parseBackoff(rc.Backoff, rc.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("retry: %w", err)
		}
		opts = append(opts, WithBackoff(b))
	}

	return opts, nil
}

// Options converts the decoded poll configuration into functional options
// for Poll.
func (pc *PollConfig) Options() ([]Option, error) {
	var opts []Option

	if pc.Timeout != nil {
		d, err := time.ParseDuration(*pc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("poll.timeout: %w", err)
		}
		opts = append(opts, WithTimeout(d))
	}
	if pc.Interval != nil {
		d, err := time.ParseDuration(*pc.Interval)
		if err != nil {
			return nil, fmt.Errorf("poll.interval: %w", err)
		}
		opts = append(opts, WithInterval(d))
	}
	if pc.MaxAttempts != nil {
		opts = append(opts, WithMaxAttempts(*pc.MaxAttempts))
	}

	return opts, nil
}

// parseBackoff maps a backoff name and base delay to a Backoff. BaseDelay
// is required whenever a strategy is named.
func parseBackoff(name, baseDelay *string) (Backoff, error) {
	if baseDelay == nil {
		return nil, fmt.Errorf("base_delay is required with backoff")
	}

	base, err := time.ParseDuration(*baseDelay)
	if err != nil {
		return nil, fmt.Errorf("base_delay: %w", err)
	}

	switch *name {
	case "constant":
		return Constant(base), nil
	case "linear":
		return Linear(base), nil
	case "exponential":
		return Exponential(base), nil
	case "exponential_jitter":
		return WithJitter(1, Exponential(base)), nil
	default:
		return nil, fmt.Errorf("unknown backoff strategy: %q", *name)
	}
}
