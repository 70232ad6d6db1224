package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)
	points := seedPoints(t, stores.Vectors, 3)

	embedder := scaledEmbedder()
	var seen []string
	inner := embedder.EmbedTextsFunc
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		seen = append(seen, texts...)
		return inner(ctx, texts)
	}

	bp := NewBatchProcessor(stores.Vectors, embedder, quickPolicy(1))
	require.NoError(t, bp.Process(ctx, points))

	assert.Equal(t, []string{"chunk 0", "chunk 1", "chunk 2"}, seen)
	assert.Equal(t, []float32{1, 0}, points[0].Vector, "input points are not modified")

	for _, p := range allPoints(t, stores.Vectors) {
		assert.InDeltaSlice(t, []float32{0.6, 0.8}, p.Vector, 1e-6)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	stores := setupTestStores(t)
	embedder := scaledEmbedder()
	bp := NewBatchProcessor(stores.Vectors, embedder, quickPolicy(1))

	require.NoError(t, bp.Process(context.Background(), nil))
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_RetriesEmbedding(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)
	points := seedPoints(t, stores.Vectors, 2)

	embedder := scaledEmbedder()
	inner := embedder.EmbedTextsFunc
	attempts := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("temporarily unavailable")
		}
		return inner(ctx, texts)
	}

	bp := NewBatchProcessor(stores.Vectors, embedder, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})
	require.NoError(t, bp.Process(ctx, points))
	assert.Equal(t, 3, attempts)
}

func TestBatchProcessor_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding keeps failing", func(t *testing.T) {
		stores := setupTestStores(t)
		points := seedPoints(t, stores.Vectors, 2)
		embedder := scaledEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.Join(core.ErrEmbedding, errors.New("down"))
		}

		err := NewBatchProcessor(stores.Vectors, embedder, quickPolicy(2)).Process(ctx, points)
		assert.ErrorIs(t, err, core.ErrEmbedding)
		assert.Equal(t, 2, embedder.CallCount())
	})

	t.Run("canceled context is not retried", func(t *testing.T) {
		stores := setupTestStores(t)
		points := seedPoints(t, stores.Vectors, 2)
		embedder := scaledEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, context.Canceled
		}

		err := NewBatchProcessor(stores.Vectors, embedder, quickPolicy(5)).Process(ctx, points)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("count mismatch", func(t *testing.T) {
		stores := setupTestStores(t)
		points := seedPoints(t, stores.Vectors, 2)
		embedder := scaledEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		}

		err := NewBatchProcessor(stores.Vectors, embedder, quickPolicy(1)).Process(ctx, points)
		assert.ErrorIs(t, err, core.ErrEmbedding)
	})

	t.Run("dimension change is rejected by the store", func(t *testing.T) {
		stores := setupTestStores(t)
		points := seedPoints(t, stores.Vectors, 2)
		embedder := scaledEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0, 0}, {0, 1, 0}}, nil
		}

		err := NewBatchProcessor(stores.Vectors, embedder, quickPolicy(1)).Process(ctx, points)
		assert.ErrorIs(t, err, core.ErrStore)
	})
}
