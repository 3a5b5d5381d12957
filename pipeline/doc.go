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


// Package pipeline contains the search coordinator: the stateless
// orchestrator that fans one query across the semantic search service and
// the generative filter, rank, and format stages.
//
// Every remote arrow goes through the resilience executor and consults the
// cache first. When an agent-stage circuit is open the degradation policy
// drops the request to the no-agents pipeline (similarity ordering plus the
// deterministic renderer); only an unavailable search dependency is terminal.
package pipeline
