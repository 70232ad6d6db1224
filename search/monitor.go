package search

import (
	"github.com/poiesic/quaero/core"
)

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to trace intermediate results, for example to
// explain why a hit was dropped.
type SearchMonitor interface {
	Start(query string, topK int)
	AfterEmbedding(dimension int)
	AfterVectorSearch(threshold float32, hits []*core.SearchHit)
	AfterRanking(decision Decision, hits []*core.SearchHit)
	Finish(hits []*core.SearchHit, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                            {}
func (n *noopMonitor) AfterEmbedding(_ int)                             {}
func (n *noopMonitor) AfterVectorSearch(_ float32, _ []*core.SearchHit) {}
func (n *noopMonitor) AfterRanking(_ Decision, _ []*core.SearchHit)     {}
func (n *noopMonitor) Finish(_ []*core.SearchHit, _ error)              {}
