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
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/citesearch/core"
)

// Executor composes the retry loop and the circuit breaker into a single
// wrapper so calling code reads as a flat sequence of remote calls with
// resilience applied uniformly. One Executor serves all dependencies; calls
// are keyed by dependency name.
type Executor struct {
	breaker     *Breaker
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxAttempts sets the retry attempt cap. Default is 3.
func WithMaxAttempts(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the base backoff delay. Default is 200ms.
func WithBaseDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.baseDelay = d
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExecutor creates an executor around the given breaker.
func NewExecutor(breaker *Breaker, opts ...ExecutorOption) *Executor {
	e := &Executor{
		breaker:     breaker,
		maxAttempts: 3,
		baseDelay:   200 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do runs op through the breaker and the retry loop.
//
// Every attempt first asks the breaker for admission; a rejected attempt
// returns *CircuitOpenError without touching the network. Each attempt's
// outcome feeds the breaker: transient and permanent upstream failures count
// toward opening it, successes reset it. Only transient failures are retried.
func (e *Executor) Do(ctx context.Context, dependency string, op func(ctx context.Context) error) error {
	attempt := func() error {
		if err := e.breaker.Allow(dependency); err != nil {
			e.logger.Debug("call rejected by open circuit", "dependency", dependency)
			return err
		}

		err := op(ctx)
		if err == nil {
			e.breaker.RecordSuccess(dependency)
			return nil
		}

		if core.IsTransient(err) || core.IsPermanent(err) {
			e.breaker.RecordFailure(dependency)
		}
		return err
	}

	return Retry(ctx, attempt, e.maxAttempts, e.baseDelay)
}

// State reports the current circuit state for a dependency.
func (e *Executor) State(dependency string) CircuitState {
	return e.breaker.State(dependency)
}

// RecordFailure counts a failure that happened outside Do, such as a fan-out
// evaluation that timed out before its individual call returned.
func (e *Executor) RecordFailure(dependency string) {
	e.breaker.RecordFailure(dependency)
}
