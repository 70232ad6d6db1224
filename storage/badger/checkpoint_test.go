package badger

import (
	"context"
	"testing"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRepository(t *testing.T) {
	ctx := context.Background()
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()
	repo := stores.Checkpoints

	got, err := repo.LoadCheckpoint(ctx, "reembed")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Name: "reembed", Cursor: "42", Processed: 100}))
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Name: "other", Cursor: "7", Processed: 1}))

	got, err = repo.LoadCheckpoint(ctx, "reembed")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "42", got.Cursor)
	assert.Equal(t, 100, got.Processed)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, repo.DeleteCheckpoint(ctx, "reembed"))
	got, err = repo.LoadCheckpoint(ctx, "reembed")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.LoadCheckpoint(ctx, "other")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Error(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{}), "name is required")
}
