package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/citesearch/ai"
	"github.com/poiesic/citesearch/ai/mock"
	cachebadger "github.com/poiesic/citesearch/cache/badger"
	"github.com/poiesic/citesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeChunks() []core.Chunk {
	return []core.Chunk{
		{ID: "c0", Text: "first", SimilarityScore: 0.9},
		{ID: "c1", Text: "second", SimilarityScore: 0.8},
		{ID: "c2", Text: "third", SimilarityScore: 0.7},
	}
}

func TestRankRequiresGenerator(t *testing.T) {
	_, err := NewRank(nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestRankAppliesPermutation(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.QueueResponse(`{"ranked_ids": [2, 0, 1], "reasoning": "third chunk is strongest"}`)

	rank, err := NewRank(generator)
	require.NoError(t, err)

	ranked, err := rank.Run(context.Background(), testQuery(), threeChunks())
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, "c2", ranked[0].Chunk.ID)
	assert.Equal(t, "c0", ranked[1].Chunk.ID)
	assert.Equal(t, "c1", ranked[2].Chunk.ID)
	for i, rc := range ranked {
		assert.Equal(t, i+1, rc.Rank)
	}
}

func TestRankSingleChunkSkipsGeneration(t *testing.T) {
	generator := mock.NewMockGenerator()
	rank, err := NewRank(generator)
	require.NoError(t, err)

	ranked, err := rank.Run(context.Background(), testQuery(), threeChunks()[:1])
	require.NoError(t, err)

	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Zero(t, generator.CallCount())
}

func TestRankEmptyInput(t *testing.T) {
	generator := mock.NewMockGenerator()
	rank, err := NewRank(generator)
	require.NoError(t, err)

	ranked, err := rank.Run(context.Background(), testQuery(), nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRankMalformedFallsBackToInputOrder(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "chunk two is best"},
		{name: "wrong length", response: `{"ranked_ids": [0, 1]}`},
		{name: "duplicate id", response: `{"ranked_ids": [0, 1, 1]}`},
		{name: "out of range", response: `{"ranked_ids": [0, 1, 7]}`},
		{name: "negative id", response: `{"ranked_ids": [0, 1, -1]}`},
		{name: "empty object", response: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := mock.NewMockGenerator()
			generator.QueueResponse(tt.response)

			rank, err := NewRank(generator)
			require.NoError(t, err)

			ranked, err := rank.Run(context.Background(), testQuery(), threeChunks())
			require.NoError(t, err)

			require.Len(t, ranked, 3)
			for i, rc := range ranked {
				assert.Equal(t, threeChunks()[i].ID, rc.Chunk.ID)
				assert.Equal(t, i+1, rc.Rank)
			}
		})
	}
}

func TestRankGeneratorErrorFallsBack(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("model unavailable")
	}

	rank, err := NewRank(generator)
	require.NoError(t, err)

	ranked, err := rank.Run(context.Background(), testQuery(), threeChunks())
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, "c0", ranked[0].Chunk.ID)
}

func TestRankCacheSkipsGeneration(t *testing.T) {
	store, err := cachebadger.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	generator := mock.NewMockGenerator()
	generator.QueueResponse(`{"ranked_ids": [1, 2, 0]}`)

	rank, err := NewRank(generator, WithRankCache(store))
	require.NoError(t, err)

	query := testQuery()

	first, err := rank.Run(context.Background(), query, threeChunks())
	require.NoError(t, err)
	assert.Equal(t, 1, generator.CallCount())

	second, err := rank.Run(context.Background(), query, threeChunks())
	require.NoError(t, err)
	assert.Equal(t, 1, generator.CallCount(), "cached order should skip generation")

	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, first[i].Chunk.ID, second[i].Chunk.ID)
	}
}

func TestValidPermutation(t *testing.T) {
	assert.True(t, validPermutation([]int{0}, 1))
	assert.True(t, validPermutation([]int{2, 0, 1}, 3))
	assert.False(t, validPermutation([]int{0, 1}, 3))
	assert.False(t, validPermutation([]int{0, 0, 1}, 3))
	assert.False(t, validPermutation([]int{0, 1, 3}, 3))
	assert.False(t, validPermutation(nil, 1))
}
