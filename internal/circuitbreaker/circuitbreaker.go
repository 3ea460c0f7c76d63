// Package circuitbreaker guards the round executor against repeatedly
// retrying a failing dependency (a selector/ledger/treasury call that
// keeps erroring): after enough consecutive failures it opens and blocks
// calls until a cooldown elapses, then probes recovery in a half-open
// state before fully closing again. Ported from the security crate's
// circuit breaker.
package circuitbreaker

import (
	"sync"
	"time"
)

// State is the circuit breaker's current operating mode.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// Config parameterizes the breaker's thresholds.
type Config struct {
	FailureThreshold        uint32
	HalfOpenSuccessThreshold uint32
	RecoveryTimeout          time.Duration
}

// DefaultConfig matches the security crate's defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:         5,
		HalfOpenSuccessThreshold: 3,
		RecoveryTimeout:          30 * time.Second,
	}
}

// Breaker is a mutex-guarded circuit breaker.
type Breaker struct {
	mu sync.Mutex

	config       Config
	state        State
	failureCount uint32
	successCount uint32
	lastFailure  time.Time
}

// New returns a closed circuit breaker using config.
func New(config Config) *Breaker {
	return &Breaker{config: config, state: Closed}
}

// CanExecute reports whether a call is currently allowed, transitioning
// Open to HalfOpen once the recovery timeout has elapsed.
func (b *Breaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		if b.successCount >= b.config.HalfOpenSuccessThreshold {
			b.closeLocked()
		}
		return true
	case Open:
		if !b.lastFailure.IsZero() && time.Since(b.lastFailure) >= b.config.RecoveryTimeout {
			b.state = HalfOpen
			b.successCount = 0
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess marks a call as having succeeded.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failureCount = 0
	case HalfOpen:
		b.successCount++
		if b.successCount >= b.config.HalfOpenSuccessThreshold {
			b.closeLocked()
		}
	case Open:
		// unreachable in practice: execution is blocked while open.
	}
}

// RecordFailure marks a call as having failed, possibly opening the
// circuit.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++

	switch b.state {
	case Closed:
		if b.failureCount >= b.config.FailureThreshold {
			b.openLocked()
		}
	case HalfOpen, Open:
		b.openLocked()
	}
}

// Reset forces the breaker back to Closed with counters cleared.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.failureCount = 0
	b.successCount = 0
	b.lastFailure = time.Time{}
}

// GetState returns the current state.
func (b *Breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) openLocked() {
	b.state = Open
	b.successCount = 0
	b.lastFailure = time.Now()
}

func (b *Breaker) closeLocked() {
	b.state = Closed
	b.failureCount = 0
	b.successCount = 0
	b.lastFailure = time.Time{}
}
