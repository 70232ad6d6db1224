package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/search"
)

// explainMonitor prints what each retrieval stage did.
type explainMonitor struct {
	w     io.Writer
	query string
}

var _ search.SearchMonitor = (*explainMonitor)(nil)

func newExplainMonitor(w io.Writer) *explainMonitor {
	return &explainMonitor{w: w}
}

func (m *explainMonitor) Start(query string, topK int) {
	m.query = query
	fmt.Fprintf(m.w, "Query: %q (top %d)\n", query, topK)
}

func (m *explainMonitor) AfterEmbedding(dimension int) {
	fmt.Fprintf(m.w, "Embedded query (%d dimensions)\n", dimension)
}

func (m *explainMonitor) AfterVectorSearch(threshold float32, hits []*core.SearchHit) {
	fmt.Fprintf(m.w, "Vector search: %d hits at or above %0.3f\n", len(hits), threshold)
	for i, hit := range hits {
		fmt.Fprintf(m.w, "  %d: [%0.3f] %s\n", i, hit.Score, m.describe(hit))
	}
}

func (m *explainMonitor) AfterRanking(d search.Decision, hits []*core.SearchHit) {
	if d.Triggered {
		fmt.Fprintf(m.w, "Gap filter: top %0.3f, second %0.3f, gap %0.3f; kept %d, dropped %d\n",
			d.Top, d.Second, d.Gap, d.Kept, d.Dropped)
		return
	}
	fmt.Fprintf(m.w, "Gap filter: not applied; kept %d\n", d.Kept)
}

func (m *explainMonitor) Finish(hits []*core.SearchHit, err error) {
	if err != nil {
		fmt.Fprintf(m.w, "Search failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.w, "Returning %d hits\n\n", len(hits))
}

func (m *explainMonitor) describe(hit *core.SearchHit) string {
	if hit.Metadata == nil {
		return fmt.Sprintf("point %d", hit.PointID)
	}
	desc := fmt.Sprintf("%s chunk %d", hit.Metadata.Filename, hit.Metadata.ChunkIndex)
	if terms := search.MatchedTerms(hit.Metadata.Text, m.query); len(terms) > 0 {
		desc += " matches " + strings.Join(terms, ", ")
	}
	return desc
}
