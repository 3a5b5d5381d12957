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


// Package cache provides the TTL cache that fronts the search service and
// the generative agent stages.
//
// Keys are deterministic BLAKE2b digests of a stage name plus the normalized
// parameters that affect that stage's output, so two equivalent requests hit
// the same entries while any parameter change misses. Values are encoded in
// the MUS format through serializers generated by cmd/musgen.
//
// The Store interface has one production backend (cache/badger) which also
// runs fully in memory for tests.
package cache
