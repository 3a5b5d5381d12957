package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// Key is a deterministic identifier derived from content.
// Cache keys and chunk digests are Keys.
type Key uint64

// KeyFromContent generates a deterministic Key from text using BLAKE2b hashing.
// Identical content always produces the identical Key.
func KeyFromContent(text string) Key {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Key(binary.LittleEndian.Uint64(sum))
}

// CitationStyle identifies a supported citation format.
type CitationStyle string

const (
	StyleAPA      CitationStyle = "APA"
	StyleMLA      CitationStyle = "MLA"
	StyleChicago  CitationStyle = "Chicago"
	StyleBluebook CitationStyle = "Bluebook"
)

// CitationStyles lists every supported citation style.
var CitationStyles = []CitationStyle{StyleAPA, StyleMLA, StyleChicago, StyleBluebook}

// Valid reports whether the style is one of the supported citation styles.
func (s CitationStyle) Valid() bool {
	for _, known := range CitationStyles {
		if s == known {
			return true
		}
	}
	return false
}

// DegradedMode indicates which reduced pipeline produced a result.
type DegradedMode string

const (
	// DegradedNone means the full pipeline ran.
	DegradedNone DegradedMode = "NONE"
	// DegradedNoAgents means generative stages were skipped and the result
	// was assembled from raw search order with deterministic formatting.
	DegradedNoAgents DegradedMode = "NO_AGENTS"
	// DegradedSearchOnly means the search dependency itself was unavailable.
	// This mode is terminal and never appears in a successful result.
	DegradedSearchOnly DegradedMode = "SEARCH_ONLY"
)

// Query is a validated citation search request. It is immutable once built;
// stages read it but never write it.
type Query struct {
	Text           string
	Context        string
	MaxResults     int
	Style          CitationStyle
	FilterEnabled  bool
	MinRelevance   float64
	IncludeContext bool
}

// Source describes the provenance of a chunk. Many chunks may share one
// source (same paper, different passages).
type Source struct {
	Title    string
	Authors  []string
	Year     int
	Citation string
	ItemKey  string // external catalog key, may be empty
}

// Key returns the grouping identity of the source: the external catalog key
// when present, otherwise a content digest of title and year.
func (s *Source) Key() string {
	if s.ItemKey != "" {
		return s.ItemKey
	}
	return s.Title + "|" + strconv.Itoa(s.Year)
}

// Chunk is a retrieved passage of source text. SimilarityScore comes from the
// search service; RelevanceScore, AgentFiltered and Unverified are assigned by
// the filter stage. Chunks are owned by a single request and never shared.
type Chunk struct {
	ID              string
	Text            string
	Source          Source
	SimilarityScore float64
	RelevanceScore  float64
	AgentFiltered   bool
	Unverified      bool // verdict was defaulted rather than produced by the model
}

// AgentVerdict is the filter stage's judgment for a single chunk.
type AgentVerdict struct {
	Relevant   bool
	Confidence float64
	Reasoning  string
}

// PermissiveVerdict is the verdict assumed when a chunk could not be
// evaluated. It biases toward keeping data rather than losing it.
func PermissiveVerdict(reason string) AgentVerdict {
	return AgentVerdict{Relevant: true, Confidence: 0.5, Reasoning: reason}
}

// RankedChunk is a chunk with its final 1-based rank.
type RankedChunk struct {
	Chunk Chunk
	Rank  int
}

// SearchResult is the assembled response for one query.
type SearchResult struct {
	Query           string
	Count           int
	Chunks          []RankedChunk
	FormattedOutput string
	ElapsedMs       int64
	Degraded        DegradedMode
}

// ChunkList wraps a chunk slice so raw search results can be cached as a
// single serialized value.
type ChunkList struct {
	Chunks []Chunk
}

// RankOrder is a cached rank permutation: Positions[i] holds the input index
// of the chunk placed at rank i+1.
type RankOrder struct {
	Positions []int
}
