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
	"sort"

	"github.com/poiesic/citesearch/core"
)

// maxChunksPerSource caps how many passages one paper may contribute, so a
// single source cannot crowd out the result set.
const maxChunksPerSource = 3

// dedupeBySource keeps at most maxChunksPerSource highest-relevance chunks
// per source key and reassigns contiguous 1-based ranks. Incoming order is
// preserved: the caller has already ranked the slice, whether by the rank
// stage or by raw similarity, and dedupe must not undo that.
func dedupeBySource(ranked []core.RankedChunk) []core.RankedChunk {
	if len(ranked) == 0 {
		return ranked
	}

	groups := make(map[string][]int)
	for i, rc := range ranked {
		key := rc.Chunk.Source.Key()
		groups[key] = append(groups[key], i)
	}

	drop := make(map[int]bool)
	for _, idxs := range groups {
		if len(idxs) <= maxChunksPerSource {
			continue
		}
		// Keep the group's highest-relevance members, drop the rest.
		byScore := make([]int, len(idxs))
		copy(byScore, idxs)
		sort.SliceStable(byScore, func(i, j int) bool {
			return ranked[byScore[i]].Chunk.RelevanceScore > ranked[byScore[j]].Chunk.RelevanceScore
		})
		for _, idx := range byScore[maxChunksPerSource:] {
			drop[idx] = true
		}
	}

	kept := make([]core.RankedChunk, 0, len(ranked))
	for i, rc := range ranked {
		if drop[i] {
			continue
		}
		rc.Rank = len(kept) + 1
		kept = append(kept, rc)
	}
	return kept
}

// similarityOrder ranks chunks by raw similarity score, highest first. Used
// when the generative stages are skipped.
func similarityOrder(chunks []core.Chunk) []core.RankedChunk {
	sorted := make([]core.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SimilarityScore > sorted[j].SimilarityScore
	})

	ranked := make([]core.RankedChunk, len(sorted))
	for i, chunk := range sorted {
		ranked[i] = core.RankedChunk{Chunk: chunk, Rank: i + 1}
	}
	return ranked
}
