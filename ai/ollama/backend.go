package ollama

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Backend implements ai.EmbeddingBackend against one Ollama server.
type Backend struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ ai.EmbeddingBackend = (*Backend)(nil)

// serverURL converts a normalized OpenAI-compatible host back to the native API root.
func serverURL(host string) string {
	return strings.TrimSuffix(strings.TrimSuffix(host, "/v1"), "/")
}

func newBackend(host, model string) (*Backend, error) {
	client, err := ollama.New(
		ollama.WithServerURL(serverURL(host)),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return &Backend{
		embedder: embedder,
		logger:   slog.Default().With("component", "ollama-embedder", "host", host),
	}, nil
}

// NewBackendLoader returns an ai.BackendLoader mapping the accelerated device
// to config.EmbeddingHost and the fallback device to config.FallbackEmbeddingHost.
func NewBackendLoader(config *ai.Config) (ai.BackendLoader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return func(ctx context.Context, device core.Device) (ai.EmbeddingBackend, error) {
		host := config.EmbeddingHost
		if device == core.DeviceFallback {
			host = config.FallbackEmbeddingHost
		}
		backend, err := newBackend(host, config.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		if device == core.DeviceAccelerated {
			if _, err := backend.Embed(ctx, []string{"warmup"}); err != nil {
				return nil, ai.WarmupError(config, err)
			}
		}
		return backend, nil
	}, nil
}

// Embed generates raw vectors for texts.
func (b *Backend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		b.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}
