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


package pipeline

import "github.com/poiesic/citesearch/resilience"

// Mode is the pipeline configuration selected for a request.
type Mode int

const (
	// ModeFull runs every stage.
	ModeFull Mode = iota

	// ModeNoAgents runs search only, with similarity-score ordering and the
	// deterministic renderer in place of the generative stages.
	ModeNoAgents

	// ModeSearchFailed is terminal: the search dependency itself is
	// unavailable and no result can be produced.
	ModeSearchFailed
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeNoAgents:
		return "no-agents"
	case ModeSearchFailed:
		return "search-failed"
	default:
		return "unknown"
	}
}

// DegradationPolicy maps per-dependency circuit states to a pipeline mode.
// It is a pure function of the states passed in; the coordinator evaluates
// it at stage transitions rather than polling continuously.
type DegradationPolicy struct{}

// Decide selects the pipeline mode. An open search circuit is terminal; any
// open agent-stage circuit drops the request to the no-agents pipeline. A
// half-open circuit counts as available so the trial call can probe recovery.
func (DegradationPolicy) Decide(search, filter, rank, format resilience.CircuitState) Mode {
	if search == resilience.StateOpen {
		return ModeSearchFailed
	}
	if filter == resilience.StateOpen || rank == resilience.StateOpen || format == resilience.StateOpen {
		return ModeNoAgents
	}
	return ModeFull
}
