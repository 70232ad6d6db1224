package badger

import (
	"context"
	"testing"

	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository(t *testing.T) {
	ctx := context.Background()
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()
	repo := stores.Documents

	doc := &core.Document{ID: "doc-1", Filename: "a.txt", State: core.DocumentReceived}
	require.NoError(t, repo.PutDocument(ctx, doc))
	assert.False(t, doc.ReceivedAt.IsZero())
	received := doc.ReceivedAt

	doc.State = core.DocumentFailed
	doc.FailedStage = core.StageEmbedding
	doc.Error = "boom"
	require.NoError(t, repo.PutDocument(ctx, doc))

	got, err := repo.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.DocumentFailed, got.State)
	assert.Equal(t, core.StageEmbedding, got.FailedStage)
	assert.Equal(t, "boom", got.Error)
	assert.True(t, received.Equal(got.ReceivedAt))

	require.NoError(t, repo.PutDocument(ctx, &core.Document{ID: "doc-0", State: core.DocumentIndexed}))
	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-0", docs[0].ID)
	assert.Equal(t, "doc-1", docs[1].ID)

	require.NoError(t, repo.DeleteDocument(ctx, "doc-1"))
	_, err = repo.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, repo.DeleteDocument(ctx, "doc-1"))
}

func TestDocumentRepository_Validation(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	err = stores.Documents.PutDocument(context.Background(), &core.Document{})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)

	err = stores.Documents.PutDocument(context.Background(), &core.Document{ID: "x", State: core.DocumentFailed})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestStores_Close(t *testing.T) {
	stores, err := NewMemoryStores(WithDimension(2))
	require.NoError(t, err)
	require.NoError(t, stores.Close())
	assert.True(t, stores.Backend.IsClosed())
	assert.NoError(t, stores.Close(), "closing twice is safe")
}
