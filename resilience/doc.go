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


// Package resilience wraps remote calls with bounded retries and a
// per-dependency circuit breaker.
//
// Retry performs exponential backoff with jitter and retries only failures
// classified transient. Breaker is a closed/open/half-open state machine
// keyed by dependency name. Executor composes the two so the search pipeline
// reads as a flat call sequence.
package resilience
