package reembed

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

// BatchProcessor re-embeds pages of points and writes them back.
type BatchProcessor struct {
	store    storage.VectorStore
	embedder ai.Embedder
	retry    RetryPolicy
}

// NewBatchProcessor creates a new batch processor. Embedding calls are
// retried according to retry.
func NewBatchProcessor(store storage.VectorStore, embedder ai.Embedder, retry RetryPolicy) *BatchProcessor {
	return &BatchProcessor{
		store:    store,
		embedder: embedder,
		retry:    retry,
	}
}

// Process embeds the text of each point and upserts the points with their
// new, unit-length vectors. The input points are not modified.
func (bp *BatchProcessor) Process(ctx context.Context, points []*core.IndexedPoint) error {
	if len(points) == 0 {
		return nil
	}

	texts := make([]string, len(points))
	for i, p := range points {
		texts[i] = p.Metadata.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, bp.retry, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Permanent(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(points) {
		return fmt.Errorf("%w: expected %d embeddings, got %d", core.ErrEmbedding, len(points), len(embeddings))
	}

	updated := make([]*core.IndexedPoint, len(points))
	for i, p := range points {
		updated[i] = &core.IndexedPoint{
			ID:       p.ID,
			Vector:   core.NormalizeVector(embeddings[i]),
			Metadata: p.Metadata,
		}
	}

	if err := bp.store.Insert(ctx, updated...); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	return nil
}
