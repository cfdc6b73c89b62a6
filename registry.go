package patience

import "sync"

// Registry holds named policy configurations and one persistent Circuit
// per name. Circuits are created lazily on first use and live for the
// lifetime of the registry, so every call site asking for the same name
// shares the same breaker state.
type Registry struct {
	mu       sync.Mutex
	configs  map[string]PolicyConfig
	circuits map[string]*Circuit
}

// NewRegistry creates an empty registry. Use LoadConfig to create one
// populated from a policy file.
func NewRegistry() *Registry {
	return &Registry{
		configs:  make(map[string]PolicyConfig),
		circuits: make(map[string]*Circuit),
	}
}

// Circuit returns the circuit registered under name, creating it on first
// use. Configuration loaded for that name is applied first; opts come
// last so they take precedence. Options are ignored on subsequent calls
// for the same name.
func (r *Registry) Circuit(name string, opts ...BreakerOption) *Circuit {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.circuits[name]; ok {
		return c
	}

	var all []BreakerOption
	if pc, ok := r.configs[name]; ok && pc.Breaker != nil {
		// Configs are validated at load time, so this cannot fail for a
		// registry produced by LoadConfig.
		if cfgOpts, err := pc.Breaker.Options(); err == nil {
			all = append(all, cfgOpts...)
		}
	}
	all = append(all, opts...)

	c := New(name, all...)
	r.circuits[name] = c
	return c
}

// RetryOptions returns the retry options loaded for name, or nil when the
// name has no retry configuration.
func (r *Registry) RetryOptions(name string) []Option {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc, ok := r.configs[name]
	if !ok || pc.Retry == nil {
		return nil
	}
	opts, err := pc.Retry.Options()
	if err != nil {
		return nil
	}
	return opts
}

// PollOptions returns the poll options loaded for name, or nil when the
// name has no poll configuration.
func (r *Registry) PollOptions(name string) []Option {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc, ok := r.configs[name]
	if !ok || pc.Poll == nil {
		return nil
	}
	opts, err := pc.Poll.Options()
	if err != nil {
		return nil
	}
	return opts
}
