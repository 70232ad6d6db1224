package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbedServer(t *testing.T, vector []float32, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if fail != nil && fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "llama runner: CUDA error: out of memory"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{vector}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434", serverURL("http://localhost:11434/v1"))
	assert.Equal(t, "http://localhost:11434", serverURL("http://localhost:11434/"))
}

func TestBackendLoader(t *testing.T) {
	var accelFail atomic.Bool
	accel := newEmbedServer(t, []float32{1, 0}, &accelFail)
	fallback := newEmbedServer(t, []float32{0, 1}, nil)

	cfg := ai.NewConfig(ai.WithEmbeddingHost(accel.URL), ai.WithFallbackEmbeddingHost(fallback.URL))
	loader, err := NewBackendLoader(cfg)
	require.NoError(t, err)

	b, err := loader(context.Background(), core.DeviceAccelerated)
	require.NoError(t, err)
	vectors, err := b.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {1, 0}}, vectors)

	b, err = loader(context.Background(), core.DeviceFallback)
	require.NoError(t, err)
	vectors, err = b.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}}, vectors)

	accelFail.Store(true)
	_, err = loader(context.Background(), core.DeviceAccelerated)
	require.Error(t, err)
	assert.True(t, ai.IsDeviceResourceError(err))
}

func TestGateway_StartsOnFallbackWhenAcceleratedHostIsDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	fallback := newEmbedServer(t, []float32{0, 2}, nil)

	registry := ai.NewRegistry()
	require.NoError(t, registry.Register("test", ai.ModelCapabilities{Dimension: 2, AcceleratedBatchSize: 4, FallbackBatchSize: 1}))

	t.Run("separate fallback host", func(t *testing.T) {
		cfg := ai.NewConfig(
			ai.WithEmbeddingHost(downURL),
			ai.WithFallbackEmbeddingHost(fallback.URL),
			ai.WithEmbeddingModel("test"),
		)
		loader, err := NewBackendLoader(cfg)
		require.NoError(t, err)

		gw, err := ai.NewGateway(context.Background(), loader, registry, "test")
		require.NoError(t, err)
		defer gw.Close()
		assert.Equal(t, core.DeviceFallback, gw.Device())

		v, err := gw.EmbedText(context.Background(), "hello")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v[1], 1e-6)
	})

	t.Run("no separate fallback host", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithEmbeddingHost(downURL), ai.WithEmbeddingModel("test"))
		cfg.FallbackEmbeddingHost = cfg.EmbeddingHost
		loader, err := NewBackendLoader(cfg)
		require.NoError(t, err)

		_, err = ai.NewGateway(context.Background(), loader, registry, "test")
		assert.ErrorIs(t, err, core.ErrEmbedding)
	})
}
