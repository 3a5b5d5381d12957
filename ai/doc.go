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


// Package ai provides the abstraction over the generative text-completion
// service used by the agent stages.
//
// The single Generator interface issues one completion request per call with
// no conversation memory, which keeps every stage a pure function of its
// inputs. Two implementation sub-packages exist:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//     through langchaingo
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Production constructors return the Generator interface to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert on call counts.
package ai
