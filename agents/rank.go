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
	"time"

	"github.com/poiesic/citesearch/ai"
	"github.com/poiesic/citesearch/cache"
	"github.com/poiesic/citesearch/core"
)

// Rank reorders chunks by importance with a single generative call over the
// whole batch. Anything short of a complete valid permutation falls back to
// the input order, so ranking can degrade but never lose or duplicate chunks.
type Rank struct {
	generator    ai.Generator
	store        cache.Store
	cacheTTL     time.Duration
	executor     Executor
	systemPrompt string
	callTimeout  time.Duration
	logger       *slog.Logger
}

// RankOption configures a Rank.
type RankOption func(*Rank) error

// WithRankTimeout sets the ranking call timeout. Default is 5 seconds.
func WithRankTimeout(timeout time.Duration) RankOption {
	return func(r *Rank) error {
		if timeout <= 0 {
			return errors.New("rank timeout must be positive")
		}
		r.callTimeout = timeout
		return nil
	}
}

// WithRankCache wires a rank-order cache keyed by query and chunk id set.
func WithRankCache(store cache.Store) RankOption {
	return func(r *Rank) error {
		r.store = store
		return nil
	}
}

// WithRankCacheTTL overrides the rank-order cache entry lifetime.
func WithRankCacheTTL(ttl time.Duration) RankOption {
	return func(r *Rank) error {
		if ttl <= 0 {
			return errors.New("rank cache TTL must be positive")
		}
		r.cacheTTL = ttl
		return nil
	}
}

// WithRankResilience routes the ranking call through the executor so
// failures count toward the rank stage's circuit breaker.
func WithRankResilience(exec Executor) RankOption {
	return func(r *Rank) error {
		r.executor = exec
		return nil
	}
}

// WithRankLogger sets a custom logger.
func WithRankLogger(logger *slog.Logger) RankOption {
	return func(r *Rank) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRank creates a rank agent.
func NewRank(generator ai.Generator, opts ...RankOption) (*Rank, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	r := &Rank{
		generator:    generator,
		cacheTTL:     cache.TTLRank,
		systemPrompt: rankSystemPrompt(),
		callTimeout:  defaultCallTimeout,
		logger:       slog.Default().With("component", "rank-agent"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run returns the chunks with 1-based ranks assigned. A single chunk is
// ranked without a generative call.
func (r *Rank) Run(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]core.RankedChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) == 1 {
		return []core.RankedChunk{{Chunk: chunks[0], Rank: 1}}, nil
	}

	ids := chunkIDs(chunks)

	var key string
	if r.store != nil {
		key = cache.RankKey(query, ids)
		if data, hit, err := r.store.Get(ctx, key); err == nil && hit {
			if order, err := cache.UnmarshalRankOrder(data); err == nil {
				if validPermutation(order.Positions, len(chunks)) {
					return applyOrder(chunks, order.Positions), nil
				}
			}
		}
	}

	r.logger.Info("ranking chunks", "count", len(chunks))

	positions, err := r.rankOnce(ctx, query, chunks)
	if err != nil {
		r.logger.Warn("ranking failed, keeping input order", "err", err)
		return identityOrder(chunks), nil
	}

	if r.store != nil {
		order := core.RankOrder{Positions: positions}
		if err := r.store.Set(ctx, key, cache.MarshalRankOrder(&order), r.cacheTTL); err != nil {
			r.logger.Warn("rank cache write failed", "err", err)
		}
	}
	return applyOrder(chunks, positions), nil
}

func (r *Rank) rankOnce(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]int, error) {
	userPrompt, err := rankUserPrompt(query.Text, query.Context, chunks)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	response, err := generate(callCtx, r.executor, RankDependency, r.generator,
		r.systemPrompt, userPrompt,
		ai.GenerateOptions{Temperature: 0.2, MaxTokens: 500, JSONMode: true})
	if err != nil {
		return nil, err
	}
	return parseRankOrder(response, len(chunks))
}

type rankResponse struct {
	RankedIDs []int  `json:"ranked_ids"`
	Reasoning string `json:"reasoning"`
}

func parseRankOrder(response string, count int) ([]int, error) {
	cleaned := ai.CleanJSONResponse(response)

	var rr rankResponse
	if err := json.Unmarshal([]byte(cleaned), &rr); err != nil {
		return nil, err
	}
	if !validPermutation(rr.RankedIDs, count) {
		return nil, core.ErrMalformedOutput
	}
	return rr.RankedIDs, nil
}

// validPermutation reports whether positions is a complete permutation of
// [0, count). Wrong length, duplicates, and out-of-range ids all fail.
func validPermutation(positions []int, count int) bool {
	if len(positions) != count {
		return false
	}
	seen := make([]bool, count)
	for _, p := range positions {
		if p < 0 || p >= count || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func applyOrder(chunks []core.Chunk, positions []int) []core.RankedChunk {
	ranked := make([]core.RankedChunk, len(positions))
	for i, p := range positions {
		ranked[i] = core.RankedChunk{Chunk: chunks[p], Rank: i + 1}
	}
	return ranked
}

func identityOrder(chunks []core.Chunk) []core.RankedChunk {
	ranked := make([]core.RankedChunk, len(chunks))
	for i, chunk := range chunks {
		ranked[i] = core.RankedChunk{Chunk: chunk, Rank: i + 1}
	}
	return ranked
}

func chunkIDs(chunks []core.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
	}
	return ids
}
