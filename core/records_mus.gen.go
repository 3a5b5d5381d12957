// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

var (
	slice1mLkUxptcbj6bjrrHTtiBQΞΞ = ord.NewSliceSer[Chunk](ChunkMUS)
	slice2zLAi61IedfJcljUuBMINwΞΞ = ord.NewSliceSer[RankedChunk](RankedChunkMUS)
	slicekkLpΣΣfΣEqBaL2CdIFkxXQΞΞ = ord.NewSliceSer[int](varint.Int)
	sliceΣTvhtUPΣuBct7CxdmokvmQΞΞ = ord.NewSliceSer[string](ord.String)
)

var KeyMUS = keyMUS{}

type keyMUS struct{}

func (s keyMUS) Marshal(v Key, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s keyMUS) Unmarshal(bs []byte) (v Key, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Key(tmp)
	return
}

func (s keyMUS) Size(v Key) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s keyMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var CitationStyleMUS = citationStyleMUS{}

type citationStyleMUS struct{}

func (s citationStyleMUS) Marshal(v CitationStyle, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s citationStyleMUS) Unmarshal(bs []byte) (v CitationStyle, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = CitationStyle(tmp)
	return
}

func (s citationStyleMUS) Size(v CitationStyle) (size int) {
	return ord.String.Size(string(v))
}

func (s citationStyleMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var DegradedModeMUS = degradedModeMUS{}

type degradedModeMUS struct{}

func (s degradedModeMUS) Marshal(v DegradedMode, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s degradedModeMUS) Unmarshal(bs []byte) (v DegradedMode, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = DegradedMode(tmp)
	return
}

func (s degradedModeMUS) Size(v DegradedMode) (size int) {
	return ord.String.Size(string(v))
}

func (s degradedModeMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var SourceMUS = sourceMUS{}

type sourceMUS struct{}

func (s sourceMUS) Marshal(v Source, bs []byte) (n int) {
	n = ord.String.Marshal(v.Title, bs)
	n += sliceΣTvhtUPΣuBct7CxdmokvmQΞΞ.Marshal(v.Authors, bs[n:])
	n += varint.Int.Marshal(v.Year, bs[n:])
	n += ord.String.Marshal(v.Citation, bs[n:])
	return n + ord.String.Marshal(v.ItemKey, bs[n:])
}

func (s sourceMUS) Unmarshal(bs []byte) (v Source, n int, err error) {
	v.Title, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Authors, n1, err = sliceΣTvhtUPΣuBct7CxdmokvmQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Year, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Citation, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ItemKey, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s sourceMUS) Size(v Source) (size int) {
	size = ord.String.Size(v.Title)
	size += sliceΣTvhtUPΣuBct7CxdmokvmQΞΞ.Size(v.Authors)
	size += varint.Int.Size(v.Year)
	size += ord.String.Size(v.Citation)
	return size + ord.String.Size(v.ItemKey)
}

func (s sourceMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = sliceΣTvhtUPΣuBct7CxdmokvmQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += SourceMUS.Marshal(v.Source, bs[n:])
	n += varint.Float64.Marshal(v.SimilarityScore, bs[n:])
	n += varint.Float64.Marshal(v.RelevanceScore, bs[n:])
	n += ord.Bool.Marshal(v.AgentFiltered, bs[n:])
	return n + ord.Bool.Marshal(v.Unverified, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = SourceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SimilarityScore, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.RelevanceScore, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.AgentFiltered, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Unverified, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.Text)
	size += SourceMUS.Size(v.Source)
	size += varint.Float64.Size(v.SimilarityScore)
	size += varint.Float64.Size(v.RelevanceScore)
	size += ord.Bool.Size(v.AgentFiltered)
	return size + ord.Bool.Size(v.Unverified)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = SourceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	return
}

var AgentVerdictMUS = agentVerdictMUS{}

type agentVerdictMUS struct{}

func (s agentVerdictMUS) Marshal(v AgentVerdict, bs []byte) (n int) {
	n = ord.Bool.Marshal(v.Relevant, bs)
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	return n + ord.String.Marshal(v.Reasoning, bs[n:])
}

func (s agentVerdictMUS) Unmarshal(bs []byte) (v AgentVerdict, n int, err error) {
	v.Relevant, n, err = ord.Bool.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Reasoning, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s agentVerdictMUS) Size(v AgentVerdict) (size int) {
	size = ord.Bool.Size(v.Relevant)
	size += varint.Float64.Size(v.Confidence)
	return size + ord.String.Size(v.Reasoning)
}

func (s agentVerdictMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.Bool.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var RankedChunkMUS = rankedChunkMUS{}

type rankedChunkMUS struct{}

func (s rankedChunkMUS) Marshal(v RankedChunk, bs []byte) (n int) {
	n = ChunkMUS.Marshal(v.Chunk, bs)
	return n + varint.Int.Marshal(v.Rank, bs[n:])
}

func (s rankedChunkMUS) Unmarshal(bs []byte) (v RankedChunk, n int, err error) {
	v.Chunk, n, err = ChunkMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Rank, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s rankedChunkMUS) Size(v RankedChunk) (size int) {
	size = ChunkMUS.Size(v.Chunk)
	return size + varint.Int.Size(v.Rank)
}

func (s rankedChunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = ChunkMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}

var SearchResultMUS = searchResultMUS{}

type searchResultMUS struct{}

func (s searchResultMUS) Marshal(v SearchResult, bs []byte) (n int) {
	n = ord.String.Marshal(v.Query, bs)
	n += varint.Int.Marshal(v.Count, bs[n:])
	n += slice2zLAi61IedfJcljUuBMINwΞΞ.Marshal(v.Chunks, bs[n:])
	n += ord.String.Marshal(v.FormattedOutput, bs[n:])
	n += varint.Int64.Marshal(v.ElapsedMs, bs[n:])
	return n + DegradedModeMUS.Marshal(v.Degraded, bs[n:])
}

func (s searchResultMUS) Unmarshal(bs []byte) (v SearchResult, n int, err error) {
	v.Query, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Chunks, n1, err = slice2zLAi61IedfJcljUuBMINwΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FormattedOutput, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ElapsedMs, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Degraded, n1, err = DegradedModeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s searchResultMUS) Size(v SearchResult) (size int) {
	size = ord.String.Size(v.Query)
	size += varint.Int.Size(v.Count)
	size += slice2zLAi61IedfJcljUuBMINwΞΞ.Size(v.Chunks)
	size += ord.String.Size(v.FormattedOutput)
	size += varint.Int64.Size(v.ElapsedMs)
	return size + DegradedModeMUS.Size(v.Degraded)
}

func (s searchResultMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice2zLAi61IedfJcljUuBMINwΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DegradedModeMUS.Skip(bs[n:])
	n += n1
	return
}

var ChunkListMUS = chunkListMUS{}

type chunkListMUS struct{}

func (s chunkListMUS) Marshal(v ChunkList, bs []byte) (n int) {
	return slice1mLkUxptcbj6bjrrHTtiBQΞΞ.Marshal(v.Chunks, bs)
}

func (s chunkListMUS) Unmarshal(bs []byte) (v ChunkList, n int, err error) {
	v.Chunks, n, err = slice1mLkUxptcbj6bjrrHTtiBQΞΞ.Unmarshal(bs)
	return
}

func (s chunkListMUS) Size(v ChunkList) (size int) {
	return slice1mLkUxptcbj6bjrrHTtiBQΞΞ.Size(v.Chunks)
}

func (s chunkListMUS) Skip(bs []byte) (n int, err error) {
	n, err = slice1mLkUxptcbj6bjrrHTtiBQΞΞ.Skip(bs)
	return
}

var RankOrderMUS = rankOrderMUS{}

type rankOrderMUS struct{}

func (s rankOrderMUS) Marshal(v RankOrder, bs []byte) (n int) {
	return slicekkLpΣΣfΣEqBaL2CdIFkxXQΞΞ.Marshal(v.Positions, bs)
}

func (s rankOrderMUS) Unmarshal(bs []byte) (v RankOrder, n int, err error) {
	v.Positions, n, err = slicekkLpΣΣfΣEqBaL2CdIFkxXQΞΞ.Unmarshal(bs)
	return
}

func (s rankOrderMUS) Size(v RankOrder) (size int) {
	return slicekkLpΣΣfΣEqBaL2CdIFkxXQΞΞ.Size(v.Positions)
}

func (s rankOrderMUS) Skip(bs []byte) (n int, err error) {
	n, err = slicekkLpΣΣfΣEqBaL2CdIFkxXQΞΞ.Skip(bs)
	return
}
