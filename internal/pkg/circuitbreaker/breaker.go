// Package circuitbreaker stops calling a failing dependency for a while. The
// rider agent uses it to shed pings while the tracking backend is down.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/logger"
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed allows requests to pass through
	StateClosed State = iota
	// StateOpen rejects requests immediately
	StateOpen
	// StateHalfOpen lets a limited number of trial requests through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Errors
var (
	ErrOpen            = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config holds circuit breaker configuration
type Config struct {
	Name             string        // used in logs
	FailureThreshold uint32        // consecutive failures that open the circuit
	OpenTimeout      time.Duration // time spent open before a trial request
	MaxTrials        uint32        // concurrent requests allowed while half-open
	IsFailure        func(err error) bool
	OnStateChange    func(name string, from, to State)
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		MaxTrials:        1,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	config Config
	logger *logger.ZapLogger
	now    func() time.Time

	mutex               sync.Mutex
	state               State
	consecutiveFailures uint32
	trials              uint32
	openedAt            time.Time
}

// New creates a new circuit breaker. A nil logger logs through the global logger.
func New(config Config, l *logger.ZapLogger) *CircuitBreaker {
	defaults := DefaultConfig(config.Name)
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = defaults.OpenTimeout
	}
	if config.MaxTrials == 0 {
		config.MaxTrials = defaults.MaxTrials
	}
	if config.IsFailure == nil {
		config.IsFailure = defaults.IsFailure
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &CircuitBreaker{
		config: config,
		logger: l,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Execute runs fn unless the circuit is open. Rejected calls return ErrOpen
// or ErrTooManyRequests without invoking fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.config.OpenTimeout {
			return ErrOpen
		}
		cb.setState(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.trials >= cb.config.MaxTrials {
			return ErrTooManyRequests
		}
		cb.trials++
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state == StateHalfOpen && cb.trials > 0 {
		cb.trials--
	}

	if cb.config.IsFailure(err) {
		cb.consecutiveFailures++
		if cb.state == StateHalfOpen || cb.consecutiveFailures >= cb.config.FailureThreshold {
			cb.openedAt = cb.now()
			cb.setState(StateOpen)
		}
		return
	}

	cb.consecutiveFailures = 0
	if cb.state == StateHalfOpen {
		cb.setState(StateClosed)
	}
}

// setState must be called with the mutex held
func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}
	prev := cb.state
	cb.state = state
	if state != StateHalfOpen {
		cb.trials = 0
	}

	cb.logger.Info("Circuit breaker state changed",
		logger.String("name", cb.config.Name),
		logger.String("from", prev.String()),
		logger.String("to", state.String()),
		logger.Int("consecutive_failures", int(cb.consecutiveFailures)))

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, prev, state)
	}
}

// State returns the current state. An open circuit past its timeout still
// reports StateOpen until the next request tries it.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Name returns the circuit breaker name
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}
