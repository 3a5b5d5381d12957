package pipeline

import "github.com/poiesic/citesearch/core"

// PipelineMonitor provides hooks to observe one query's trip through the
// pipeline. Implement this interface to track intermediate stages and
// results.
type PipelineMonitor interface {
	Start(query string)
	CacheHit(key string)
	AfterSearch(chunks []core.Chunk)
	AfterFilter(chunks []core.Chunk)
	AfterRank(ranked []core.RankedChunk)
	AfterDedupe(ranked []core.RankedChunk)
	StageSkipped(stage string)
	Finish(result *core.SearchResult)
}

// noopMonitor is a no-op implementation of PipelineMonitor
type noopMonitor struct{}

var _ PipelineMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) CacheHit(_ string)                  {}
func (n *noopMonitor) AfterSearch(_ []core.Chunk)         {}
func (n *noopMonitor) AfterFilter(_ []core.Chunk)         {}
func (n *noopMonitor) AfterRank(_ []core.RankedChunk)     {}
func (n *noopMonitor) AfterDedupe(_ []core.RankedChunk)   {}
func (n *noopMonitor) StageSkipped(_ string)              {}
func (n *noopMonitor) Finish(_ *core.SearchResult)        {}
