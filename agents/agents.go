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


package agents

import (
	"context"

	"github.com/poiesic/citesearch/ai"
	"github.com/poiesic/citesearch/core"
)

// Dependency names for circuit breaker accounting. Each stage gets its own
// breaker; the stages call the same generative service with different prompts
// but fail independently.
const (
	FilterDependency = "filter"
	RankDependency   = "rank"
	FormatDependency = "format"
)

// Executor wraps a remote call with retry and circuit breaker accounting,
// keyed by dependency name. resilience.Executor satisfies this.
type Executor interface {
	Do(ctx context.Context, dependency string, op func(ctx context.Context) error) error
}

// generate issues one completion through the executor when one is wired,
// directly otherwise. Transport failures are classified transient so they
// count toward the stage's breaker; parse failures happen downstream and
// never do.
func generate(ctx context.Context, exec Executor, dependency string, generator ai.Generator,
	systemPrompt, userPrompt string, opts ai.GenerateOptions) (string, error) {
	if exec == nil {
		return generator.Generate(ctx, systemPrompt, userPrompt, opts)
	}

	var response string
	err := exec.Do(ctx, dependency, func(ctx context.Context) error {
		r, genErr := generator.Generate(ctx, systemPrompt, userPrompt, opts)
		if genErr != nil {
			return core.Transient(genErr)
		}
		response = r
		return nil
	})
	return response, err
}
