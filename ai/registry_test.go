package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry()

	caps, err := r.Resolve("bge-m3")
	require.NoError(t, err)
	assert.Equal(t, 1024, caps.Dimension)

	t.Run("case insensitive", func(t *testing.T) {
		caps, err := r.Resolve("BAAI/bge-m3")
		require.NoError(t, err)
		assert.Equal(t, 1024, caps.Dimension)
	})

	t.Run("ignores tag", func(t *testing.T) {
		caps, err := r.Resolve("nomic-embed-text:latest")
		require.NoError(t, err)
		assert.Equal(t, 768, caps.Dimension)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := r.Resolve("no-such-model")
		assert.ErrorIs(t, err, ErrUnknownModel)
	})
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Models())

	require.NoError(t, r.Register("Custom", ModelCapabilities{Dimension: 4, AcceleratedBatchSize: 2, FallbackBatchSize: 1}))
	assert.Equal(t, []string{"custom"}, r.Models())

	caps, err := r.Resolve("custom")
	require.NoError(t, err)
	assert.Equal(t, 2, caps.BatchSize(core.DeviceAccelerated))
	assert.Equal(t, 1, caps.BatchSize(core.DeviceFallback))

	err = r.Register("bad", ModelCapabilities{Dimension: 0, AcceleratedBatchSize: 1, FallbackBatchSize: 1})
	assert.ErrorIs(t, err, ErrInvalidCapabilities)

	err = r.Register("bad", ModelCapabilities{Dimension: 4})
	assert.ErrorIs(t, err, ErrInvalidCapabilities)

	err = r.Register("", ModelCapabilities{Dimension: 4, AcceleratedBatchSize: 1, FallbackBatchSize: 1})
	assert.ErrorIs(t, err, ErrInvalidCapabilities)
}

func TestDefaultRegistry_AllValid(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range r.Models() {
		caps, err := r.Resolve(name)
		require.NoError(t, err)
		assert.NoError(t, caps.Validate(), name)
		assert.Greater(t, caps.AcceleratedBatchSize, caps.FallbackBatchSize, name)
	}
}

func TestIsDeviceResourceError(t *testing.T) {
	assert.False(t, IsDeviceResourceError(nil))
	assert.True(t, IsDeviceResourceError(ErrDeviceResource))
	assert.True(t, IsDeviceResourceError(fmt.Errorf("embed: %w", ErrDeviceResource)))
	assert.True(t, IsDeviceResourceError(errors.New("CUDA error: out of memory")))
	assert.True(t, IsDeviceResourceError(errors.New("model requires more system memory: insufficient memory")))
	assert.False(t, IsDeviceResourceError(errors.New("connection refused")))
	assert.False(t, IsDeviceResourceError(assert.AnError))
}
