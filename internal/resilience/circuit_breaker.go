package resilience

import (
	"sync"
	"time"
)

const (
	defaultFailureThreshold = 5
	defaultResetTimeout     = 60 * time.Second
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed is the normal state where requests are allowed.
	StateClosed State = iota
	// StateOpen is when the circuit is tripped and requests are blocked.
	StateOpen
	// StateHalfOpen is when the circuit admits a trial request.
	StateHalfOpen
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Clock returns the current time. time.Now carries a monotonic reading.
type Clock func() time.Time

// StateChangeFunc observes breaker transitions. It is called without the breaker lock held.
type StateChangeFunc func(name string, from, to State)

// Status is a read-only snapshot of a breaker.
type Status struct {
	Name             string        `json:"name"`
	State            string        `json:"state"`
	FailureCount     int           `json:"failure_count"`
	FailureThreshold int           `json:"failure_threshold"`
	LastFailure      time.Time     `json:"last_failure,omitempty"`
	ResetTimeout     time.Duration `json:"reset_timeout"`
}

// CircuitBreaker tracks failures of one dependency and gates calls to it.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	resetTimeout     time.Duration
	now              Clock
	onStateChange    StateChangeFunc

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	trialInFlight bool
}

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithFailureThreshold sets the number of failures before opening the circuit.
func WithFailureThreshold(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.failureThreshold = n
		}
	}
}

// WithResetTimeout sets the cooldown before a trial request is admitted.
func WithResetTimeout(d time.Duration) Option {
	return func(cb *CircuitBreaker) {
		if d > 0 {
			cb.resetTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(cb *CircuitBreaker) {
		if clock != nil {
			cb.now = clock
		}
	}
}

// WithStateChange registers a transition observer.
func WithStateChange(fn StateChangeFunc) Option {
	return func(cb *CircuitBreaker) {
		cb.onStateChange = fn
	}
}

// NewCircuitBreaker creates a closed circuit breaker.
// Default: 5 failures, 60 second reset timeout.
func NewCircuitBreaker(name string, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:             name,
		failureThreshold: defaultFailureThreshold,
		resetTimeout:     defaultResetTimeout,
		now:              time.Now,
		state:            StateClosed,
	}

	for _, opt := range opts {
		opt(cb)
	}

	return cb
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the stored state without triggering a transition.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// CanExecute reports whether a call may proceed. An open circuit whose cooldown
// has elapsed moves to half-open as a side effect.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	from := cb.state
	allowed := cb.canExecuteLocked()
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return allowed
}

func (cb *CircuitBreaker) canExecuteLocked() bool {
	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	default: // StateOpen
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			return true
		}
		return false
	}
}

// acquire admits a guarded call. In half-open only one trial may be in flight.
func (cb *CircuitBreaker) acquire() bool {
	cb.mu.Lock()
	from := cb.state
	allowed := cb.canExecuteLocked()
	if allowed && cb.state == StateHalfOpen {
		if cb.trialInFlight {
			allowed = false
		} else {
			cb.trialInFlight = true
		}
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return allowed
}

// release gives up a trial slot without recording an outcome.
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	cb.trialInFlight = false
	cb.mu.Unlock()
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.state
	cb.failures = 0
	cb.trialInFlight = false
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	from := cb.state
	cb.failures++
	cb.lastFailure = cb.now()
	cb.trialInFlight = false
	if cb.failures >= cb.failureThreshold {
		cb.state = StateOpen
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// Reset forces the circuit closed and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.trialInFlight = false
	cb.mu.Unlock()

	cb.notify(from, StateClosed)
}

// Status returns a snapshot for observability.
func (cb *CircuitBreaker) Status() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Status{
		Name:             cb.name,
		State:            cb.state.String(),
		FailureCount:     cb.failures,
		FailureThreshold: cb.failureThreshold,
		LastFailure:      cb.lastFailure,
		ResetTimeout:     cb.resetTimeout,
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}
