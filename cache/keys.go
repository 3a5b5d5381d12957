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
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/citesearch/core"
)

// Stage names used as key prefixes. Keeping the prefix readable makes cache
// contents inspectable during debugging.
const (
	StageSearch = "search"
	StageFilter = "filter"
	StageRank   = "rank"
	StageFormat = "format"
	StageResult = "result"
)

// stageKey builds a cache key from a stage name and the canonical string of
// every parameter that affects that stage's output. The canonical string is
// digested so keys stay bounded regardless of query length.
func stageKey(stage string, parts ...string) string {
	canonical := stage + "\x1f" + strings.Join(parts, "\x1f")
	return fmt.Sprintf("%s:%016x", stage, uint64(core.KeyFromContent(canonical)))
}

// SearchKey keys raw search results by normalized query text and requested
// candidate limit.
func SearchKey(query *core.Query, limit int) string {
	return stageKey(StageSearch,
		core.NormalizeQueryText(query.Text),
		strconv.Itoa(limit))
}

// VerdictKey keys one chunk's filter verdict. The verdict depends on the
// query, the intent context, the relevance threshold and the chunk itself.
func VerdictKey(query *core.Query, chunkID string) string {
	return stageKey(StageFilter,
		core.NormalizeQueryText(query.Text),
		query.Context,
		strconv.FormatFloat(query.MinRelevance, 'f', 4, 64),
		chunkID)
}

// RankKey keys a rank permutation by query, context and the identity of the
// chunk set being ordered.
func RankKey(query *core.Query, chunkIDs []string) string {
	parts := []string{
		core.NormalizeQueryText(query.Text),
		query.Context,
	}
	return stageKey(StageRank, append(parts, chunkIDs...)...)
}

// FormatKey keys formatted output by citation style, context inclusion and
// the identity of the ranked chunk set.
func FormatKey(query *core.Query, chunkIDs []string) string {
	parts := []string{
		string(query.Style),
		strconv.FormatBool(query.IncludeContext),
	}
	return stageKey(StageFormat, append(parts, chunkIDs...)...)
}

// ResultKey keys the assembled SearchResult by every response-shaping
// parameter of the query.
func ResultKey(query *core.Query) string {
	return stageKey(StageResult,
		core.NormalizeQueryText(query.Text),
		query.Context,
		strconv.Itoa(query.MaxResults),
		string(query.Style),
		strconv.FormatBool(query.FilterEnabled),
		strconv.FormatFloat(query.MinRelevance, 'f', 4, 64),
		strconv.FormatBool(query.IncludeContext))
}
