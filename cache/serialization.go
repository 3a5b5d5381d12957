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


package cache

import (
	"github.com/poiesic/citesearch/core"
)

// MarshalChunkList serializes a ChunkList to bytes.
func MarshalChunkList(list *core.ChunkList) []byte {
	buf := make([]byte, core.ChunkListMUS.Size(*list))
	core.ChunkListMUS.Marshal(*list, buf)
	return buf
}

// UnmarshalChunkList deserializes a ChunkList from bytes.
func UnmarshalChunkList(data []byte) (*core.ChunkList, error) {
	list, _, err := core.ChunkListMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	for i := range list.Chunks {
		canonicalSource(&list.Chunks[i].Source)
	}
	return &list, nil
}

// MarshalVerdict serializes an AgentVerdict to bytes.
func MarshalVerdict(verdict *core.AgentVerdict) []byte {
	buf := make([]byte, core.AgentVerdictMUS.Size(*verdict))
	core.AgentVerdictMUS.Marshal(*verdict, buf)
	return buf
}

// UnmarshalVerdict deserializes an AgentVerdict from bytes.
func UnmarshalVerdict(data []byte) (*core.AgentVerdict, error) {
	verdict, _, err := core.AgentVerdictMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &verdict, nil
}

// MarshalRankOrder serializes a RankOrder to bytes.
func MarshalRankOrder(order *core.RankOrder) []byte {
	buf := make([]byte, core.RankOrderMUS.Size(*order))
	core.RankOrderMUS.Marshal(*order, buf)
	return buf
}

// UnmarshalRankOrder deserializes a RankOrder from bytes.
func UnmarshalRankOrder(data []byte) (*core.RankOrder, error) {
	order, _, err := core.RankOrderMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarshalSearchResult serializes a SearchResult to bytes.
func MarshalSearchResult(result *core.SearchResult) []byte {
	buf := make([]byte, core.SearchResultMUS.Size(*result))
	core.SearchResultMUS.Marshal(*result, buf)
	return buf
}

// UnmarshalSearchResult deserializes a SearchResult from bytes.
func UnmarshalSearchResult(data []byte) (*core.SearchResult, error) {
	result, _, err := core.SearchResultMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	for i := range result.Chunks {
		canonicalSource(&result.Chunks[i].Chunk.Source)
	}
	return &result, nil
}

// canonicalSource folds the two encodings of "no authors" into one. The MUS
// decoder materializes empty slices as non-nil, which would make a cached
// result compare unequal to a freshly built one.
func canonicalSource(s *core.Source) {
	if len(s.Authors) == 0 {
		s.Authors = nil
	}
}
