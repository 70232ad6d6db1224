package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarmupError(t *testing.T) {
	refused := errors.New("dial tcp: connection refused")

	split := NewConfig(WithEmbeddingHost("http://gpu:11434"), WithFallbackEmbeddingHost("http://cpu:11434"))
	err := WarmupError(split, refused)
	assert.ErrorIs(t, err, refused)
	assert.True(t, IsDeviceResourceError(err))

	single := NewConfig(WithEmbeddingHost("http://gpu:11434"))
	single.FallbackEmbeddingHost = single.EmbeddingHost
	err = WarmupError(single, refused)
	assert.ErrorIs(t, err, refused)
	assert.False(t, IsDeviceResourceError(err))
}
