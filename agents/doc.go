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


// Package agents implements the generative stages of the citation pipeline:
// Filter judges per-chunk relevance, Rank orders the surviving chunks, and
// Format renders the final citation block.
//
// Every stage degrades rather than fails. A chunk the filter cannot judge is
// kept unverified, a malformed rank permutation falls back to input order,
// and a failed format call falls back to the deterministic basic renderer.
package agents
