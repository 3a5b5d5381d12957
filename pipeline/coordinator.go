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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/citesearch/agents"
	"github.com/poiesic/citesearch/cache"
	"github.com/poiesic/citesearch/core"
	"github.com/poiesic/citesearch/resilience"
)

// SearchDependency is the search service's circuit breaker key.
const SearchDependency = "search"

const (
	noResultsMessage   = "No results found. Try refining your query."
	allFilteredMessage = "No relevant citations found after filtering. Try broadening your query."
)

// SearchClient issues one semantic search query and returns a bounded
// candidate set.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]core.Chunk, error)
}

// FilterStage judges per-chunk relevance and returns the surviving chunks.
type FilterStage interface {
	Run(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]core.Chunk, error)
}

// RankStage orders chunks by importance with 1-based ranks.
type RankStage interface {
	Run(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]core.RankedChunk, error)
}

// FormatStage renders ranked chunks as the final citation block.
type FormatStage interface {
	Run(ctx context.Context, query *core.Query, chunks []core.RankedChunk) (string, error)
}

// Coordinator drives one query through search, filter, rank, and format. It
// is stateless across requests; recoverable failures produce a degraded
// result rather than an error. Only an unavailable search dependency is
// terminal.
type Coordinator struct {
	search    SearchClient
	filter    FilterStage
	rank      RankStage
	format    FormatStage
	executor  *resilience.Executor
	store     cache.Store
	searchTTL time.Duration
	resultTTL time.Duration
	policy    DegradationPolicy
	monitor   PipelineMonitor
	logger    *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithCache wires the result and search-stage cache.
func WithCache(store cache.Store) Option {
	return func(c *Coordinator) error {
		c.store = store
		return nil
	}
}

// WithCacheTTLs overrides the search-stage and result cache entry lifetimes.
func WithCacheTTLs(search, result time.Duration) Option {
	return func(c *Coordinator) error {
		if search <= 0 || result <= 0 {
			return errors.New("cache TTLs must be positive")
		}
		c.searchTTL = search
		c.resultTTL = result
		return nil
	}
}

// WithMonitor sets a pipeline monitor. Default is a no-op monitor.
func WithMonitor(monitor PipelineMonitor) Option {
	return func(c *Coordinator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		c.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a coordinator over the given stages.
func NewCoordinator(
	search SearchClient,
	filter FilterStage,
	rank RankStage,
	format FormatStage,
	executor *resilience.Executor,
	opts ...Option,
) (*Coordinator, error) {
	if search == nil {
		return nil, ErrSearchClientRequired
	}
	if filter == nil {
		return nil, ErrFilterStageRequired
	}
	if rank == nil {
		return nil, ErrRankStageRequired
	}
	if format == nil {
		return nil, ErrFormatStageRequired
	}
	if executor == nil {
		return nil, ErrExecutorRequired
	}

	c := &Coordinator{
		search:    search,
		filter:    filter,
		rank:      rank,
		format:    format,
		executor:  executor,
		searchTTL: cache.TTLSearch,
		resultTTL: cache.TTLResult,
		monitor:   &noopMonitor{},
		logger:    slog.Default().With("component", "coordinator"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Execute runs the full pipeline for one query.
//
// Validation failures and an unavailable search dependency return errors;
// everything else degrades into a result with Degraded set. The result is
// cached keyed on the query and every response-shaping parameter, so an
// identical request inside the TTL costs no remote calls.
func (c *Coordinator) Execute(ctx context.Context, query *core.Query) (*core.SearchResult, error) {
	start := time.Now()

	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	c.monitor.Start(query.Text)

	if c.store != nil {
		key := cache.ResultKey(query)
		if data, hit, err := c.store.Get(ctx, key); err == nil && hit {
			if result, err := cache.UnmarshalSearchResult(data); err == nil {
				result.ElapsedMs = time.Since(start).Milliseconds()
				c.monitor.CacheHit(key)
				c.monitor.Finish(result)
				return result, nil
			}
		}
	}

	candidates, err := c.searchCandidates(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSearchUnavailable, err)
	}
	c.monitor.AfterSearch(candidates)

	if len(candidates) == 0 {
		return c.finish(ctx, query, nil, noResultsMessage, core.DegradedNone, start), nil
	}

	degraded := core.DegradedNone
	chunks := candidates

	// Filter stage.
	if query.FilterEnabled {
		if c.mode() == ModeNoAgents {
			degraded = core.DegradedNoAgents
			c.monitor.StageSkipped("filter")
		} else {
			filtered, ferr := c.filter.Run(ctx, query, chunks)
			if ferr != nil {
				c.logger.Warn("filter stage failed, passing candidates through", "err", ferr)
				degraded = core.DegradedNoAgents
			} else {
				chunks = filtered
			}
			c.monitor.AfterFilter(chunks)
		}
	}

	if len(chunks) == 0 {
		return c.finish(ctx, query, nil, allFilteredMessage, degraded, start), nil
	}

	if ctx.Err() != nil {
		return c.bestEffort(ctx, query, chunks, start), nil
	}

	// Rank stage.
	var ranked []core.RankedChunk
	if degraded == core.DegradedNone && c.mode() == ModeFull {
		ranked, err = c.rank.Run(ctx, query, chunks)
		if err != nil {
			c.logger.Warn("rank stage failed, keeping similarity order", "err", err)
			degraded = core.DegradedNoAgents
			ranked = similarityOrder(chunks)
		}
	} else {
		degraded = core.DegradedNoAgents
		c.monitor.StageSkipped("rank")
		ranked = similarityOrder(chunks)
	}
	c.monitor.AfterRank(ranked)

	ranked = truncate(ranked, query.MaxResults)
	ranked = dedupeBySource(ranked)
	c.monitor.AfterDedupe(ranked)

	if ctx.Err() != nil {
		result := c.finish(ctx, query, ranked,
			agents.RenderBasic(ranked, query.IncludeContext), core.DegradedNoAgents, start)
		return result, nil
	}

	// Format stage.
	var formatted string
	if degraded == core.DegradedNone && c.mode() == ModeFull {
		formatted, err = c.format.Run(ctx, query, ranked)
		if err != nil {
			c.logger.Warn("format stage failed, using basic renderer", "err", err)
			degraded = core.DegradedNoAgents
			formatted = agents.RenderBasic(ranked, query.IncludeContext)
		}
	} else {
		degraded = core.DegradedNoAgents
		c.monitor.StageSkipped("format")
		formatted = agents.RenderBasic(ranked, query.IncludeContext)
	}

	return c.finish(ctx, query, ranked, formatted, degraded, start), nil
}

// State reports the circuit state of one of the pipeline's dependencies.
func (c *Coordinator) State(dependency string) resilience.CircuitState {
	return c.executor.State(dependency)
}

// Dependencies lists the breaker keys the pipeline maintains.
func Dependencies() []string {
	return []string{
		SearchDependency,
		agents.FilterDependency,
		agents.RankDependency,
		agents.FormatDependency,
	}
}

func (c *Coordinator) mode() Mode {
	return c.policy.Decide(
		c.executor.State(SearchDependency),
		c.executor.State(agents.FilterDependency),
		c.executor.State(agents.RankDependency),
		c.executor.State(agents.FormatDependency),
	)
}

// searchCandidates fetches up to 2x maxResults chunks so filtering has room
// to discard, consulting the search-stage cache first.
func (c *Coordinator) searchCandidates(ctx context.Context, query *core.Query) ([]core.Chunk, error) {
	limit := 2 * query.MaxResults

	var key string
	if c.store != nil {
		key = cache.SearchKey(query, limit)
		if data, hit, err := c.store.Get(ctx, key); err == nil && hit {
			if list, err := cache.UnmarshalChunkList(data); err == nil {
				return list.Chunks, nil
			}
		}
	}

	var chunks []core.Chunk
	err := c.executor.Do(ctx, SearchDependency, func(ctx context.Context) error {
		result, searchErr := c.search.Search(ctx, query.Text, limit)
		if searchErr != nil {
			return searchErr
		}
		chunks = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		list := core.ChunkList{Chunks: chunks}
		if err := c.store.Set(ctx, key, cache.MarshalChunkList(&list), c.searchTTL); err != nil {
			c.logger.Warn("search cache write failed", "err", err)
		}
	}
	return chunks, nil
}

// bestEffort assembles a result from whatever the pipeline had when the
// request deadline ran out.
func (c *Coordinator) bestEffort(ctx context.Context, query *core.Query, chunks []core.Chunk, start time.Time) *core.SearchResult {
	ranked := dedupeBySource(truncate(similarityOrder(chunks), query.MaxResults))
	return c.finish(ctx, query, ranked,
		agents.RenderBasic(ranked, query.IncludeContext), core.DegradedNoAgents, start)
}

func (c *Coordinator) finish(ctx context.Context, query *core.Query, ranked []core.RankedChunk,
	formatted string, degraded core.DegradedMode, start time.Time) *core.SearchResult {
	result := &core.SearchResult{
		Query:           query.Text,
		Count:           len(ranked),
		Chunks:          ranked,
		FormattedOutput: formatted,
		ElapsedMs:       time.Since(start).Milliseconds(),
		Degraded:        degraded,
	}

	if c.store != nil {
		if err := c.store.Set(ctx, cache.ResultKey(query), cache.MarshalSearchResult(result), c.resultTTL); err != nil {
			c.logger.Warn("result cache write failed", "err", err)
		}
	}

	c.monitor.Finish(result)
	return result
}

func truncate(ranked []core.RankedChunk, max int) []core.RankedChunk {
	if len(ranked) <= max {
		return ranked
	}
	return ranked[:max]
}
