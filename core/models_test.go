package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
}

func TestPointID(t *testing.T) {
	assert.Equal(t, PointID("doc-1", 0), PointID("doc-1", 0), "point ids must be stable")
	assert.NotEqual(t, PointID("doc-1", 0), PointID("doc-1", 1))
	assert.NotEqual(t, PointID("doc-1", 0), PointID("doc-2", 0))
	// "doc-1" chunk 10 must not collide with "doc-11" chunk 0 style inputs
	assert.NotEqual(t, PointID("doc-1", 10), PointID("doc-11", 0))
}

func TestRoundScore(t *testing.T) {
	assert.InDelta(t, 0.857, RoundScore(0.85714), 1e-6)
	assert.InDelta(t, 0.5, RoundScore(0.5), 1e-6)
	assert.InDelta(t, 0.0, RoundScore(0.0004), 1e-6)
}

func TestSourceFromHit(t *testing.T) {
	hit := &SearchHit{
		PointID: 7,
		Score:   0.71234,
		Metadata: &PointMetadata{
			DocumentID: "doc-1",
			Filename:   "a.txt",
			ChunkIndex: 2,
			Text:       "hello",
		},
	}

	src := SourceFromHit(hit)
	assert.Equal(t, "doc-1", src.DocumentID)
	assert.Equal(t, "a.txt", src.Filename)
	assert.Equal(t, 2, src.ChunkIndex)
	assert.Equal(t, "hello", src.Text)
	assert.InDelta(t, 0.712, src.SimilarityScore, 1e-6)

	// A hit without metadata still yields a source
	bare := SourceFromHit(&SearchHit{Score: 0.3})
	assert.Empty(t, bare.DocumentID)
	assert.InDelta(t, 0.3, bare.SimilarityScore, 1e-6)
}

func TestDocumentStateTerminal(t *testing.T) {
	assert.True(t, DocumentIndexed.Terminal())
	assert.True(t, DocumentFailed.Terminal())
	assert.False(t, DocumentReceived.Terminal())
	assert.False(t, DocumentEmbedding.Terminal())
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "accelerated", DeviceAccelerated.String())
	assert.Equal(t, "fallback", DeviceFallback.String())
	assert.Equal(t, "unknown", Device(0).String())
}
