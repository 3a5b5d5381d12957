package pipeline

import (
	"testing"

	"github.com/poiesic/citesearch/core"
	"github.com/stretchr/testify/assert"
)

func rankedFromSource(itemKey string, scores ...float64) []core.RankedChunk {
	ranked := make([]core.RankedChunk, len(scores))
	for i, score := range scores {
		ranked[i] = core.RankedChunk{
			Chunk: core.Chunk{
				ID:             itemKey + "-" + string(rune('a'+i)),
				Source:         core.Source{Title: "Paper " + itemKey, Year: 2020, ItemKey: itemKey},
				RelevanceScore: score,
			},
			Rank: i + 1,
		}
	}
	return ranked
}

func TestDedupeCapsChunksPerSource(t *testing.T) {
	ranked := rankedFromSource("A", 0.9, 0.8, 0.7, 0.6, 0.5)

	result := dedupeBySource(ranked)

	assert.Len(t, result, 3)
	// Highest-relevance chunks survive.
	assert.Equal(t, 0.9, result[0].Chunk.RelevanceScore)
	assert.Equal(t, 0.8, result[1].Chunk.RelevanceScore)
	assert.Equal(t, 0.7, result[2].Chunk.RelevanceScore)
}

func TestDedupeKeepsDistinctSources(t *testing.T) {
	ranked := append(rankedFromSource("A", 0.9, 0.8), rankedFromSource("B", 0.95, 0.3)...)

	result := dedupeBySource(ranked)

	assert.Len(t, result, 4)
	// Incoming order stands even when a later chunk scores higher.
	assert.Equal(t, "A-a", result[0].Chunk.ID)
	assert.Equal(t, "B-a", result[2].Chunk.ID)
}

func TestDedupePreservesIncomingOrder(t *testing.T) {
	// The caller decides the order, whether a rank agent or raw similarity
	// produced it. Dedupe only removes a source's surplus chunks; relevance
	// decides which members of an over-represented source survive, not
	// where the survivors land.
	ranked := []core.RankedChunk{
		{Chunk: core.Chunk{ID: "A-a", Source: core.Source{ItemKey: "A"}, RelevanceScore: 0.2}, Rank: 1},
		{Chunk: core.Chunk{ID: "B-a", Source: core.Source{ItemKey: "B"}, RelevanceScore: 0.9}, Rank: 2},
		{Chunk: core.Chunk{ID: "A-b", Source: core.Source{ItemKey: "A"}, RelevanceScore: 0.8}, Rank: 3},
		{Chunk: core.Chunk{ID: "A-c", Source: core.Source{ItemKey: "A"}, RelevanceScore: 0.7}, Rank: 4},
		{Chunk: core.Chunk{ID: "A-d", Source: core.Source{ItemKey: "A"}, RelevanceScore: 0.6}, Rank: 5},
	}

	result := dedupeBySource(ranked)

	ids := make([]string, len(result))
	for i, rc := range result {
		ids[i] = rc.Chunk.ID
		assert.Equal(t, i+1, rc.Rank)
	}
	// A-a is the source's lowest-relevance member past the cap, so it goes;
	// the rest keep their positions.
	assert.Equal(t, []string{"B-a", "A-b", "A-c", "A-d"}, ids)
}

func TestDedupeReassignsContiguousRanks(t *testing.T) {
	ranked := rankedFromSource("A", 0.9, 0.8, 0.7, 0.6)

	result := dedupeBySource(ranked)

	for i, rc := range result {
		assert.Equal(t, i+1, rc.Rank)
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	assert.Empty(t, dedupeBySource(nil))
}

func TestDedupeGroupsByTitleYearWithoutItemKey(t *testing.T) {
	ranked := rankedFromSource("A", 0.9, 0.8, 0.7, 0.6)
	for i := range ranked {
		ranked[i].Chunk.Source.ItemKey = ""
	}

	result := dedupeBySource(ranked)
	assert.Len(t, result, 3)
}

func TestSimilarityOrder(t *testing.T) {
	chunks := []core.Chunk{
		{ID: "low", SimilarityScore: 0.3},
		{ID: "high", SimilarityScore: 0.9},
		{ID: "mid", SimilarityScore: 0.6},
	}

	ranked := similarityOrder(chunks)

	assert.Equal(t, "high", ranked[0].Chunk.ID)
	assert.Equal(t, "mid", ranked[1].Chunk.ID)
	assert.Equal(t, "low", ranked[2].Chunk.ID)
	for i, rc := range ranked {
		assert.Equal(t, i+1, rc.Rank)
	}
	// Input order untouched.
	assert.Equal(t, "low", chunks[0].ID)
}
