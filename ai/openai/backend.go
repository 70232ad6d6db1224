package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Backend implements ai.EmbeddingBackend against one OpenAI-compatible
// embedding endpoint.
type Backend struct {
	embedder embeddings.Embedder
	host     string
	logger   *slog.Logger
}

var _ ai.EmbeddingBackend = (*Backend)(nil)

func newBackend(host, model, token string) (*Backend, error) {
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
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
		host:     host,
		logger:   slog.Default().With("component", "openai-embedder", "host", host),
	}, nil
}

// NewBackendLoader returns an ai.BackendLoader that serves the accelerated
// device from config.EmbeddingHost and the fallback device from
// config.FallbackEmbeddingHost. The accelerated endpoint gets a warm-up
// request on load, so a server that cannot place the model, or cannot be
// reached while a separate fallback host exists, fails over at startup.
func NewBackendLoader(config *ai.Config) (ai.BackendLoader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	token := apiToken(config)

	return func(ctx context.Context, device core.Device) (ai.EmbeddingBackend, error) {
		host := config.EmbeddingHost
		if device == core.DeviceFallback {
			host = config.FallbackEmbeddingHost
		}
		backend, err := newBackend(host, config.EmbeddingModel, token)
		if err != nil {
			return nil, err
		}
		if device == core.DeviceAccelerated {
			if _, err := backend.Embed(ctx, []string{"warmup"}); err != nil {
				return nil, ai.WarmupError(config, err)
			}
		}
		backend.logger.Debug("embedding backend ready", "device", device)
		return backend, nil
	}, nil
}

// Embed generates raw vectors for texts. Normalization is left to the gateway.
func (b *Backend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	b.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		b.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}

// Close is a no-op; HTTP clients hold no device resources.
func (b *Backend) Close() error {
	return nil
}

func apiToken(config *ai.Config) string {
	if config.APIKey != "" {
		return config.APIKey
	}
	return "none"
}
