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
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/citesearch/ai"
	"github.com/poiesic/citesearch/cache"
	"github.com/poiesic/citesearch/core"
)

const (
	defaultFilterConcurrency = 20
	defaultCallTimeout       = 5 * time.Second
)

// Filter evaluates chunk relevance against the query, one generative call per
// chunk. Chunks whose evaluation fails for any reason are kept with the
// permissive default verdict and marked unverified; the filter never drops
// data it could not judge.
type Filter struct {
	generator    ai.Generator
	pool         *ants.Pool
	store        cache.Store
	cacheTTL     time.Duration
	executor     Executor
	systemPrompt string
	callTimeout  time.Duration
	stageTimeout time.Duration
	logger       *slog.Logger
}

// FilterOption configures a Filter.
type FilterOption func(*Filter) error

// WithFilterConcurrency sets the worker pool size for parallel chunk
// evaluation. Default is 20.
func WithFilterConcurrency(size int) FilterOption {
	return func(f *Filter) error {
		if size < 1 {
			size = 1
		}
		if f.pool != nil {
			f.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		f.pool = pool
		return nil
	}
}

// WithFilterTimeout sets the per-chunk evaluation timeout.
// Default is 5 seconds.
func WithFilterTimeout(timeout time.Duration) FilterOption {
	return func(f *Filter) error {
		if timeout <= 0 {
			return errors.New("filter timeout must be positive")
		}
		f.callTimeout = timeout
		return nil
	}
}

// WithFilterStageTimeout bounds a whole Run call. Evaluations still pending
// at the deadline resolve to the permissive default verdict, so the stage
// budget holds regardless of chunk count or pool pressure. Zero (the
// default) leaves Run bounded only by the per-call timeout and the caller's
// context.
func WithFilterStageTimeout(timeout time.Duration) FilterOption {
	return func(f *Filter) error {
		if timeout < 0 {
			return errors.New("filter stage timeout must not be negative")
		}
		f.stageTimeout = timeout
		return nil
	}
}

// WithFilterCache wires a verdict cache. Cached verdicts skip the
// generative call entirely; only model-produced verdicts are cached.
func WithFilterCache(store cache.Store) FilterOption {
	return func(f *Filter) error {
		f.store = store
		return nil
	}
}

// WithFilterCacheTTL overrides the verdict cache entry lifetime.
func WithFilterCacheTTL(ttl time.Duration) FilterOption {
	return func(f *Filter) error {
		if ttl <= 0 {
			return errors.New("filter cache TTL must be positive")
		}
		f.cacheTTL = ttl
		return nil
	}
}

// WithFilterResilience routes each evaluation call through the executor so
// failures count toward the filter stage's circuit breaker.
func WithFilterResilience(exec Executor) FilterOption {
	return func(f *Filter) error {
		f.executor = exec
		return nil
	}
}

// WithFilterLogger sets a custom logger.
func WithFilterLogger(logger *slog.Logger) FilterOption {
	return func(f *Filter) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFilter creates a filter agent.
func NewFilter(generator ai.Generator, opts ...FilterOption) (*Filter, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	pool, err := ants.NewPool(defaultFilterConcurrency)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		generator:    generator,
		pool:         pool,
		cacheTTL:     cache.TTLVerdict,
		systemPrompt: filterSystemPrompt(),
		callTimeout:  defaultCallTimeout,
		logger:       slog.Default().With("component", "filter-agent"),
	}

	for _, opt := range opts {
		if optErr := opt(f); optErr != nil {
			f.Release()
			return nil, optErr
		}
	}
	return f, nil
}

// Release releases the worker pool. The filter should not be used after
// calling Release.
func (f *Filter) Release() {
	if f.pool != nil {
		f.pool.Release()
	}
}

// Run evaluates every chunk in parallel and returns the chunks that passed
// the relevance threshold, in input order. Output never exceeds input.
func (f *Filter) Run(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]core.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	f.logger.Info("filtering chunks", "count", len(chunks), "threshold", query.MinRelevance)

	if f.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.stageTimeout)
		defer cancel()
	}

	verdicts := make([]core.AgentVerdict, len(chunks))
	unverified := make([]bool, len(chunks))

	var wg sync.WaitGroup
	for i := range chunks {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			verdicts[i], unverified[i] = f.evaluate(ctx, query, &chunks[i])
		}
		if err := f.pool.Submit(task); err != nil {
			// Pool unavailable, evaluate on the calling goroutine.
			task()
		}
	}
	wg.Wait()

	kept := make([]core.Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		if unverified[i] {
			chunk.Unverified = true
			chunk.RelevanceScore = chunk.SimilarityScore
			kept = append(kept, chunk)
			continue
		}
		verdict := verdicts[i]
		if verdict.Relevant && verdict.Confidence >= query.MinRelevance {
			chunk.AgentFiltered = true
			chunk.RelevanceScore = verdict.Confidence
			kept = append(kept, chunk)
		} else {
			f.logger.Debug("filtered out chunk",
				"chunk", chunk.ID, "confidence", verdict.Confidence)
		}
	}

	f.logger.Info("filtering complete", "in", len(chunks), "out", len(kept))
	return kept, nil
}

// evaluate produces the verdict for one chunk. The second return value
// reports whether the verdict was defaulted rather than model-produced.
func (f *Filter) evaluate(ctx context.Context, query *core.Query, chunk *core.Chunk) (core.AgentVerdict, bool) {
	var key string
	if f.store != nil {
		key = cache.VerdictKey(query, chunk.ID)
		if data, hit, err := f.store.Get(ctx, key); err == nil && hit {
			if verdict, err := cache.UnmarshalVerdict(data); err == nil {
				return *verdict, false
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	response, err := generate(callCtx, f.executor, FilterDependency, f.generator,
		f.systemPrompt, filterUserPrompt(query.Text, query.Context, *chunk),
		ai.GenerateOptions{Temperature: 0.1, MaxTokens: 200, JSONMode: true})
	if err != nil {
		f.logger.Warn("chunk evaluation failed", "chunk", chunk.ID, "err", err)
		return core.PermissiveVerdict("evaluation failed"), true
	}

	verdict, err := parseVerdict(response)
	if err != nil {
		f.logger.Warn("unparseable verdict", "chunk", chunk.ID, "err", err)
		return core.PermissiveVerdict("unparseable verdict"), true
	}

	if f.store != nil {
		if err := f.store.Set(ctx, key, cache.MarshalVerdict(&verdict), f.cacheTTL); err != nil {
			f.logger.Warn("verdict cache write failed", "err", err)
		}
	}
	return verdict, false
}

type verdictResponse struct {
	Relevant   *bool    `json:"relevant"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

func parseVerdict(response string) (core.AgentVerdict, error) {
	cleaned := ai.CleanJSONResponse(response)

	var vr verdictResponse
	if err := json.Unmarshal([]byte(cleaned), &vr); err != nil {
		return core.AgentVerdict{}, err
	}
	if vr.Relevant == nil || vr.Confidence == nil {
		return core.AgentVerdict{}, errors.New("verdict missing required fields")
	}

	confidence := *vr.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return core.AgentVerdict{
		Relevant:   *vr.Relevant,
		Confidence: confidence,
		Reasoning:  vr.Reasoning,
	}, nil
}
