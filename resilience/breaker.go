// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package resilience

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState represents the current state of one dependency's circuit.
type CircuitState int

const (
	// StateClosed means normal operation: requests allowed, failures counted.
	StateClosed CircuitState = iota

	// StateOpen means too many consecutive failures: requests rejected
	// without a network attempt until the cooldown elapses.
	StateOpen

	// StateHalfOpen means the cooldown elapsed and exactly one trial call is
	// allowed to probe recovery.
	StateHalfOpen
)

// String returns a human-readable representation of the circuit state.
func (s CircuitState) String() string {
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

// BreakerConfig holds configuration for circuit breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening
	// the circuit. Default: 5
	FailureThreshold int

	// Cooldown is the duration to wait before transitioning from open to
	// half-open. During this time all calls are rejected. Default: 30s
	Cooldown time.Duration
}

// DefaultBreakerConfig returns a configuration with the standard defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}

// circuit tracks the breaker state for a single dependency.
type circuit struct {
	state    CircuitState
	failures int       // consecutive failures while closed
	openedAt time.Time // when the circuit last opened
	probing  bool      // a half-open trial call is in flight
}

// Breaker manages circuit state per dependency name.
//
// State transitions:
//   - closed -> open: after FailureThreshold consecutive failures
//   - open -> half-open: after Cooldown, on the next Allow
//   - half-open -> closed: the trial call succeeds
//   - half-open -> open: the trial call fails, cooldown restarts
//
// The failure counter resets on any success while closed. All methods are
// safe for concurrent use.
type Breaker struct {
	config   BreakerConfig
	logger   *slog.Logger
	mu       sync.Mutex
	circuits map[string]*circuit
}

// NewBreaker creates a breaker with the given configuration. Zero-valued
// config fields fall back to the defaults.
func NewBreaker(config BreakerConfig) *Breaker {
	defaults := DefaultBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = defaults.Cooldown
	}
	return &Breaker{
		config:   config,
		logger:   slog.Default().With("component", "breaker"),
		circuits: make(map[string]*circuit),
	}
}

// Allow checks whether a call to the dependency may proceed.
// Returns nil to proceed or a *CircuitOpenError when the call must be
// rejected. Transitions open circuits to half-open once the cooldown has
// elapsed, admitting exactly one trial call.
func (b *Breaker) Allow(dependency string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.getOrCreate(dependency)

	switch c.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(c.openedAt) >= b.config.Cooldown {
			c.state = StateHalfOpen
			c.probing = true
			b.logger.Info("circuit half-open, allowing trial call", "dependency", dependency)
			return nil
		}
		return &CircuitOpenError{
			Dependency: dependency,
			OpenedAt:   c.openedAt,
			RetryAfter: c.openedAt.Add(b.config.Cooldown),
		}

	case StateHalfOpen:
		if !c.probing {
			c.probing = true
			return nil
		}
		// A trial call is already in flight
		return &CircuitOpenError{
			Dependency: dependency,
			OpenedAt:   c.openedAt,
			RetryAfter: c.openedAt.Add(b.config.Cooldown),
		}

	default:
		return nil
	}
}

// RecordSuccess records a successful call. Resets the failure counter while
// closed and closes the circuit after a successful half-open trial.
func (b *Breaker) RecordSuccess(dependency string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.getOrCreate(dependency)

	switch c.state {
	case StateClosed:
		c.failures = 0
	case StateHalfOpen:
		c.state = StateClosed
		c.failures = 0
		c.probing = false
		b.logger.Info("circuit closed after successful trial", "dependency", dependency)
	}
}

// RecordFailure records a failed call. Opens the circuit when the
// consecutive-failure threshold is reached, and reopens it when a half-open
// trial fails. The cooldown timer starts the instant the circuit opens.
func (b *Breaker) RecordFailure(dependency string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.getOrCreate(dependency)

	switch c.state {
	case StateClosed:
		c.failures++
		if c.failures >= b.config.FailureThreshold {
			c.state = StateOpen
			c.openedAt = time.Now()
			b.logger.Warn("circuit opened",
				"dependency", dependency,
				"failures", c.failures,
				"cooldown", b.config.Cooldown)
		}
	case StateHalfOpen:
		c.state = StateOpen
		c.openedAt = time.Now()
		c.probing = false
		b.logger.Warn("trial call failed, circuit reopened", "dependency", dependency)
	}
}

// State returns the current circuit state for a dependency. A dependency
// that has never been called reports closed. An open circuit whose cooldown
// has elapsed reports half-open so callers consulting state alone do not
// skip the dependency past its recovery window.
func (b *Breaker) State(dependency string) CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[dependency]
	if !ok {
		return StateClosed
	}
	if c.state == StateOpen && time.Since(c.openedAt) >= b.config.Cooldown {
		return StateHalfOpen
	}
	return c.state
}

func (b *Breaker) getOrCreate(dependency string) *circuit {
	c, ok := b.circuits[dependency]
	if !ok {
		c = &circuit{state: StateClosed}
		b.circuits[dependency] = c
	}
	return c
}
