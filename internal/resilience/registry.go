package resilience

import (
	"sort"
	"sync"
	"time"
)

// Config holds breaker defaults shared by every named breaker.
type Config struct {
	FailureThreshold int           `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"5"`
	ResetTimeout     time.Duration `env:"BREAKER_RESET_TIMEOUT"     envDefault:"60s"`
}

// Registry hands out named breakers, creating them on first use.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	defaults []Option
}

// NewRegistry creates a registry whose breakers are built with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		defaults: opts,
	}
}

// NewRegistryFromConfig creates a registry from configuration (DI constructor).
func NewRegistryFromConfig(cfg *Config, onStateChange StateChangeFunc) *Registry {
	opts := []Option{WithStateChange(onStateChange)}
	if cfg != nil {
		opts = append(opts,
			WithFailureThreshold(cfg.FailureThreshold),
			WithResetTimeout(cfg.ResetTimeout),
		)
	}
	return NewRegistry(opts...)
}

// Get returns the breaker for name, creating it if needed.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok = r.breakers[name]; ok {
		return cb
	}

	cb = NewCircuitBreaker(name, r.defaults...)
	r.breakers[name] = cb
	return cb
}

// Statuses returns a snapshot of every breaker, sorted by name.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	statuses := make([]Status, 0, len(r.breakers))
	for _, cb := range r.breakers {
		statuses = append(statuses, cb.Status())
	}
	r.mu.RUnlock()

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// Reset closes the named breaker. It reports false when no such breaker exists.
func (r *Registry) Reset(name string) bool {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	cb.Reset()
	return true
}

// ResetAll closes every breaker.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cb := range r.breakers {
		cb.Reset()
	}
}
