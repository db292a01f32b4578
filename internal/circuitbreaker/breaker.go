// Package circuitbreaker implements an opt-in fail-fast breaker for the
// request path. It never retries; when open, calls fail immediately.
package circuitbreaker

import (
	"sync"
	"time"
)

// State is the breaker state.
type State int32

const (
	StateClosed State = iota
	StateOpen
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

// Config holds the breaker thresholds.
type Config struct {
	// FailThreshold is the number of consecutive failures that opens the breaker.
	FailThreshold int `json:"fail_threshold"`
	// SuccessThreshold is the number of successes in half-open that close it.
	SuccessThreshold int `json:"success_threshold"`
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `json:"timeout"`
}

// Breaker tracks request outcomes and trips after consecutive failures.
type Breaker struct {
	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	failThreshold    int
	successThreshold int
	timeout          time.Duration
	openedAt         time.Time
}

// New creates a breaker in the closed state.
func New(config Config) *Breaker {
	return &Breaker{
		state:            StateClosed,
		failThreshold:    config.FailThreshold,
		successThreshold: config.SuccessThreshold,
		timeout:          config.Timeout,
	}
}

// Allow reports whether a request may proceed. An open breaker
// transitions to half-open once its timeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(b.openedAt) >= b.timeout {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	}
	return false
}

// Record feeds the outcome of a request into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.failThreshold {
			b.trip()
		}
	case StateHalfOpen:
		if !success {
			b.trip()
			return
		}
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateOpen:
		// Outcomes recorded while open (in-flight stragglers) only
		// refresh the open window on failure.
		if !success {
			b.openedAt = time.Now()
		}
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.failures = 0
	b.successes = 0
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset returns the breaker to the closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
