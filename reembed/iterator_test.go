package reembed

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointIterator_ForEach(t *testing.T) {
	stores := setupTestStores(t)
	seedPoints(t, stores.Vectors, 7)

	var sizes []int
	var cursors []string
	ids := make(map[core.ID]bool)
	err := NewPointIterator(stores.Vectors, 3).ForEach(context.Background(), "", func(points []*core.IndexedPoint, next string) error {
		sizes = append(sizes, len(points))
		cursors = append(cursors, next)
		for _, p := range points {
			ids[p.ID] = true
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.NotEmpty(t, cursors[0])
	assert.NotEmpty(t, cursors[1])
	assert.Empty(t, cursors[2])
	assert.Len(t, ids, 7)
}

func TestPointIterator_StartsAtCursor(t *testing.T) {
	stores := setupTestStores(t)
	seedPoints(t, stores.Vectors, 7)
	it := NewPointIterator(stores.Vectors, 3)

	var second string
	_ = it.ForEach(context.Background(), "", func(_ []*core.IndexedPoint, next string) error {
		second = next
		return errors.New("stop")
	})
	require.NotEmpty(t, second)

	count := 0
	err := it.ForEach(context.Background(), second, func(points []*core.IndexedPoint, _ string) error {
		count += len(points)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestPointIterator_Empty(t *testing.T) {
	stores := setupTestStores(t)
	called := false
	err := NewPointIterator(stores.Vectors, 0).ForEach(context.Background(), "", func([]*core.IndexedPoint, string) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestPointIterator_StopsOnError(t *testing.T) {
	stores := setupTestStores(t)
	seedPoints(t, stores.Vectors, 7)
	errStop := errors.New("stop")

	calls := 0
	err := NewPointIterator(stores.Vectors, 2).ForEach(context.Background(), "", func([]*core.IndexedPoint, string) error {
		calls++
		return errStop
	})
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, calls)
}

func TestPointIterator_CanceledContext(t *testing.T) {
	stores := setupTestStores(t)
	seedPoints(t, stores.Vectors, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPointIterator(stores.Vectors, 2).ForEach(ctx, "", func([]*core.IndexedPoint, string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
