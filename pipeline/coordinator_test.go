package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/citesearch/agents"
	cachebadger "github.com/poiesic/citesearch/cache/badger"
	"github.com/poiesic/citesearch/core"
	"github.com/poiesic/citesearch/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	chunks []core.Chunk
	err    error
	calls  int
}

func (s *stubSearch) Search(ctx context.Context, query string, limit int) ([]core.Chunk, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

type stubFilter struct {
	out   []core.Chunk
	err   error
	calls int
	hook  func()
}

func (s *stubFilter) Run(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]core.Chunk, error) {
	s.calls++
	if s.hook != nil {
		s.hook()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.out != nil {
		return s.out, nil
	}
	return chunks, nil
}

type stubRank struct {
	err   error
	calls int
}

func (s *stubRank) Run(ctx context.Context, query *core.Query, chunks []core.Chunk) ([]core.RankedChunk, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	ranked := make([]core.RankedChunk, len(chunks))
	for i, chunk := range chunks {
		ranked[i] = core.RankedChunk{Chunk: chunk, Rank: i + 1}
	}
	return ranked, nil
}

type stubFormat struct {
	text  string
	err   error
	calls int
}

func (s *stubFormat) Run(ctx context.Context, query *core.Query, chunks []core.RankedChunk) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func fastExecutor(breaker *resilience.Breaker) *resilience.Executor {
	return resilience.NewExecutor(breaker,
		resilience.WithMaxAttempts(1),
		resilience.WithBaseDelay(time.Millisecond))
}

func candidateChunks(n int) []core.Chunk {
	chunks := make([]core.Chunk, n)
	for i := range chunks {
		chunks[i] = core.Chunk{
			ID:   fmt.Sprintf("c%d", i),
			Text: fmt.Sprintf("passage %d", i),
			Source: core.Source{
				Title:    fmt.Sprintf("Paper %d", i),
				Year:     2020 + i%3,
				Citation: fmt.Sprintf("Author %d (2020)", i),
				ItemKey:  fmt.Sprintf("KEY%d", i),
			},
			SimilarityScore: 1.0 - float64(i)*0.1,
			RelevanceScore:  1.0 - float64(i)*0.1,
		}
	}
	return chunks
}

func pipelineQuery() *core.Query {
	return &core.Query{
		Text:           "bail reform recidivism",
		MaxResults:     10,
		Style:          core.StyleAPA,
		FilterEnabled:  true,
		MinRelevance:   0.7,
		IncludeContext: true,
	}
}

func TestCoordinatorConstructorValidation(t *testing.T) {
	exec := fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig()))
	search := &stubSearch{}
	filter := &stubFilter{}
	rank := &stubRank{}
	format := &stubFormat{}

	_, err := NewCoordinator(nil, filter, rank, format, exec)
	assert.ErrorIs(t, err, ErrSearchClientRequired)
	_, err = NewCoordinator(search, nil, rank, format, exec)
	assert.ErrorIs(t, err, ErrFilterStageRequired)
	_, err = NewCoordinator(search, filter, nil, format, exec)
	assert.ErrorIs(t, err, ErrRankStageRequired)
	_, err = NewCoordinator(search, filter, rank, nil, exec)
	assert.ErrorIs(t, err, ErrFormatStageRequired)
	_, err = NewCoordinator(search, filter, rank, format, nil)
	assert.ErrorIs(t, err, ErrExecutorRequired)
}

// Scenario: five candidates, filter keeps three.
func TestExecuteFilterNarrowsResults(t *testing.T) {
	candidates := candidateChunks(5)
	kept := make([]core.Chunk, 3)
	copy(kept, candidates[:3])
	for i := range kept {
		kept[i].AgentFiltered = true
	}

	search := &stubSearch{chunks: candidates}
	filter := &stubFilter{out: kept}
	rank := &stubRank{}
	format := &stubFormat{text: "formatted block"}

	c, err := NewCoordinator(search, filter, rank, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, core.DegradedNone, result.Degraded)
	assert.Equal(t, "bail reform recidivism", result.Query)
	assert.Contains(t, result.FormattedOutput, "formatted block")
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, 1, filter.calls)
	assert.Equal(t, 1, rank.calls)
	assert.Equal(t, 1, format.calls)

	for i, rc := range result.Chunks {
		assert.Equal(t, i+1, rc.Rank)
	}
}

// Scenario: empty search result is a valid zero-count response, not an error.
func TestExecuteEmptySearchResult(t *testing.T) {
	search := &stubSearch{}
	filter := &stubFilter{}
	rank := &stubRank{}
	format := &stubFormat{}

	c, err := NewCoordinator(search, filter, rank, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.Zero(t, result.Count)
	assert.Empty(t, result.Chunks)
	assert.Contains(t, result.FormattedOutput, "No results found")
	assert.Zero(t, filter.calls)
	assert.Zero(t, rank.calls)
	assert.Zero(t, format.calls)
}

// Scenario: filter circuit open drops the request to the no-agents pipeline.
func TestExecuteDegradesWhenFilterCircuitOpen(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{FailureThreshold: 1, Cooldown: time.Minute})
	breaker.RecordFailure(agents.FilterDependency)

	chunks := candidateChunks(4)
	// Shuffle similarity so ordering is observable.
	chunks[0].SimilarityScore = 0.2
	chunks[3].SimilarityScore = 0.95

	search := &stubSearch{chunks: chunks}
	filter := &stubFilter{}
	rank := &stubRank{}
	format := &stubFormat{text: "should not be used"}

	c, err := NewCoordinator(search, filter, rank, format, fastExecutor(breaker))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.Equal(t, core.DegradedNoAgents, result.Degraded)
	assert.Zero(t, filter.calls)
	assert.Zero(t, rank.calls)
	assert.Zero(t, format.calls)

	// Similarity order, highest first.
	assert.Equal(t, "c3", result.Chunks[0].Chunk.ID)
	for _, rc := range result.Chunks {
		assert.False(t, rc.Chunk.AgentFiltered)
	}
	assert.Contains(t, result.FormattedOutput, "CITATION RESULTS")
}

// Scenario: stop-word-only and empty queries fail validation before any
// remote call.
func TestExecuteValidationFailsFast(t *testing.T) {
	search := &stubSearch{chunks: candidateChunks(2)}
	c, err := NewCoordinator(search, &stubFilter{}, &stubRank{}, &stubFormat{},
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	for _, text := range []string{"", "the a an"} {
		query := pipelineQuery()
		query.Text = text
		_, execErr := c.Execute(context.Background(), query)
		assert.ErrorIs(t, execErr, core.ErrInvalidQuery, "query %q", text)
	}
	assert.Zero(t, search.calls)
}

func TestExecuteSearchUnavailableIsTerminal(t *testing.T) {
	search := &stubSearch{err: core.Transient(errors.New("connection refused"))}
	c, err := NewCoordinator(search, &stubFilter{}, &stubRank{}, &stubFormat{},
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), pipelineQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSearchUnavailable)
}

func TestExecuteSearchCircuitOpenRejectsFast(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{FailureThreshold: 1, Cooldown: time.Minute})
	breaker.RecordFailure(SearchDependency)

	search := &stubSearch{chunks: candidateChunks(2)}
	c, err := NewCoordinator(search, &stubFilter{}, &stubRank{}, &stubFormat{}, fastExecutor(breaker))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Execute(context.Background(), pipelineQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSearchUnavailable)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Zero(t, search.calls, "open circuit must reject without a network attempt")
}

func TestExecuteAllChunksFiltered(t *testing.T) {
	search := &stubSearch{chunks: candidateChunks(4)}
	filter := &stubFilter{out: []core.Chunk{}}
	rank := &stubRank{}
	format := &stubFormat{}

	c, err := NewCoordinator(search, filter, rank, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.Zero(t, result.Count)
	assert.Contains(t, result.FormattedOutput, "No relevant citations found after filtering")
	assert.Zero(t, rank.calls)
	assert.Zero(t, format.calls)
}

func TestExecuteTruncatesToMaxResults(t *testing.T) {
	search := &stubSearch{chunks: candidateChunks(8)}
	c, err := NewCoordinator(search, &stubFilter{}, &stubRank{}, &stubFormat{text: "ok"},
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	query := pipelineQuery()
	query.MaxResults = 3

	result, err := c.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.LessOrEqual(t, result.Count, query.MaxResults)
	for i, rc := range result.Chunks {
		assert.Equal(t, i+1, rc.Rank)
	}
}

func TestExecuteDedupesBySource(t *testing.T) {
	chunks := candidateChunks(10)
	for i := range chunks {
		chunks[i].Source = core.Source{Title: "Same Paper", Year: 2020, ItemKey: "SAME"}
	}

	search := &stubSearch{chunks: chunks}
	c, err := NewCoordinator(search, &stubFilter{}, &stubRank{}, &stubFormat{text: "ok"},
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Count, 3, "one source may contribute at most 3 chunks")
}

func TestExecuteRankFailureFallsBackToSimilarityOrder(t *testing.T) {
	search := &stubSearch{chunks: candidateChunks(3)}
	rank := &stubRank{err: errors.New("rank stage broke")}
	format := &stubFormat{text: "unused"}

	c, err := NewCoordinator(search, &stubFilter{}, rank, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.Equal(t, core.DegradedNoAgents, result.Degraded)
	assert.Equal(t, 3, result.Count)
	assert.Zero(t, format.calls, "degraded pipeline must not call the format agent")
	assert.Contains(t, result.FormattedOutput, "CITATION RESULTS")
}

func TestExecuteFormatFailureUsesBasicRenderer(t *testing.T) {
	search := &stubSearch{chunks: candidateChunks(2)}
	format := &stubFormat{err: errors.New("format stage broke")}

	c, err := NewCoordinator(search, &stubFilter{}, &stubRank{}, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(context.Background(), pipelineQuery())
	require.NoError(t, err)

	assert.Equal(t, core.DegradedNoAgents, result.Degraded)
	assert.NotEmpty(t, result.FormattedOutput)
	assert.Contains(t, result.FormattedOutput, "Citation:")
}

func TestExecuteDeadlineReturnsBestEffort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	search := &stubSearch{chunks: candidateChunks(4)}
	filter := &stubFilter{hook: cancel}
	rank := &stubRank{}
	format := &stubFormat{text: "unused"}

	c, err := NewCoordinator(search, filter, rank, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())))
	require.NoError(t, err)

	result, err := c.Execute(ctx, pipelineQuery())
	require.NoError(t, err)

	assert.Equal(t, core.DegradedNoAgents, result.Degraded)
	assert.NotEmpty(t, result.FormattedOutput)
	assert.Zero(t, rank.calls, "stages after the deadline must be abandoned")
	assert.Zero(t, format.calls)
}

func TestExecuteCacheIdempotence(t *testing.T) {
	store, err := cachebadger.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	search := &stubSearch{chunks: candidateChunks(4)}
	filter := &stubFilter{}
	rank := &stubRank{}
	format := &stubFormat{text: "formatted block"}

	c, err := NewCoordinator(search, filter, rank, format,
		fastExecutor(resilience.NewBreaker(resilience.DefaultBreakerConfig())),
		WithCache(store))
	require.NoError(t, err)

	query := pipelineQuery()

	first, err := c.Execute(context.Background(), query)
	require.NoError(t, err)

	searchCalls, filterCalls := search.calls, filter.calls
	rankCalls, formatCalls := rank.calls, format.calls

	second, err := c.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, searchCalls, search.calls, "cached result must cost zero search calls")
	assert.Equal(t, filterCalls, filter.calls)
	assert.Equal(t, rankCalls, rank.calls)
	assert.Equal(t, formatCalls, format.calls)

	// Identical except elapsed time.
	assert.Equal(t, first.Query, second.Query)
	assert.Equal(t, first.Count, second.Count)
	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Equal(t, first.FormattedOutput, second.FormattedOutput)
	assert.Equal(t, first.Degraded, second.Degraded)
}

func TestDependencies(t *testing.T) {
	deps := Dependencies()
	assert.Equal(t, []string{"search", "filter", "rank", "format"}, deps)
}
