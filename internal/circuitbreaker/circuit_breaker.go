// Package circuitbreaker stops calling a failing dependency for a while so
// requests fail fast instead of queueing on timeouts.
package circuitbreaker

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/logging"
)

// State represents the circuit breaker state
type State string

const (
	// StateClosed means calls pass through
	StateClosed State = "closed"
	// StateOpen means calls are rejected
	StateOpen State = "open"
	// StateHalfOpen means a single trial call is allowed through
	StateHalfOpen State = "half_open"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call
var ErrCircuitOpen = stderrors.New("circuit breaker is open")

// Config configures a circuit breaker
type Config struct {
	Name string
	// MaxFailures consecutive failures open the circuit
	MaxFailures int
	// Cooldown is how long the circuit stays open before a trial call
	Cooldown time.Duration
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxFailures: 5,
		Cooldown:    15 * time.Second,
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
	logger      *logging.Logger

	mu               sync.Mutex
	state            State
	consecutiveFails int
	openedAt         time.Time
	trialInFlight    bool
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(config Config, logger *logging.Logger) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 1
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &CircuitBreaker{
		name:        config.Name,
		maxFailures: config.MaxFailures,
		cooldown:    config.Cooldown,
		now:         time.Now,
		logger:      logger.WithField("circuitBreaker", config.Name),
		state:       StateClosed,
	}
}

// Execute runs fn unless the circuit is open. Caller errors (validation,
// not found) and cancellations do not count as failures.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.logger.Info("Circuit breaker half-open, allowing a trial call")
		fallthrough
	case StateHalfOpen:
		if cb.trialInFlight {
			return ErrCircuitOpen
		}
		cb.trialInFlight = true
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	wasTrial := cb.state == StateHalfOpen
	cb.trialInFlight = false

	if !countsAsFailure(err) {
		if wasTrial {
			cb.logger.Info("Circuit breaker closed after a successful trial call")
		}
		cb.state = StateClosed
		cb.consecutiveFails = 0
		return
	}

	cb.consecutiveFails++
	if wasTrial || cb.consecutiveFails >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = cb.now()
		cb.logger.WithError(err).WithField("consecutiveFails", cb.consecutiveFails).Warn("Circuit breaker opened")
	}
}

func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	return !errors.IsUserError(err)
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.consecutiveFails = 0
	cb.trialInFlight = false
}
