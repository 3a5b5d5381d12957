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
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCircuitOpen indicates a call was rejected without a network attempt
	// because the dependency's circuit is open.
	ErrCircuitOpen = errors.New("circuit open")

	// ErrInvalidMaxAttempts indicates a retry was requested with a
	// non-positive attempt cap.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

// CircuitOpenError reports a fast-rejected call with enough detail for
// callers to decide when to try again.
type CircuitOpenError struct {
	Dependency string
	OpenedAt   time.Time
	RetryAfter time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s until %s", e.Dependency, e.RetryAfter.Format(time.RFC3339))
}

// Unwrap makes errors.Is(err, ErrCircuitOpen) work.
func (e *CircuitOpenError) Unwrap() error {
	return ErrCircuitOpen
}
