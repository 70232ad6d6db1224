package storage

import (
	"errors"
	"testing"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("search", cause)

	assert.ErrorIs(t, err, core.ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "vector store search: connection refused", err.Error())

	var se *StoreError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "search", se.Op)

	assert.Same(t, err, Wrap("insert", err), "already wrapped errors are kept")
	assert.NoError(t, Wrap("insert", nil))
}
