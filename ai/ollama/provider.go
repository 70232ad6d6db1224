package ollama

import (
	"context"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/ai/openai"
)

// Provider implements ai.AIProvider on Ollama servers.
type Provider struct {
	gateway    *ai.Gateway
	generator  ai.Generator
	classifier ai.Classifier
}

// NewProvider creates the gateway, generator and optional classifier.
// A nil registry uses ai.DefaultRegistry.
func NewProvider(ctx context.Context, config *ai.Config, registry *ai.Registry) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = ai.DefaultRegistry()
	}

	loader, err := NewBackendLoader(config)
	if err != nil {
		return nil, err
	}
	gateway, err := ai.NewGateway(ctx, loader, registry, config.EmbeddingModel,
		ai.WithGatewayRetryInterval(config.RetryInterval))
	if err != nil {
		return nil, err
	}

	generator, err := NewGenerator(config)
	if err != nil {
		_ = gateway.Close()
		return nil, err
	}

	p := &Provider{gateway: gateway, generator: generator}
	if config.ClassifierModel != "" {
		p.classifier, err = openai.NewClassifier(config)
		if err != nil {
			_ = gateway.Close()
			return nil, err
		}
	}
	return p, nil
}

// Embedder returns the embedding gateway.
func (p *Provider) Embedder() ai.Embedder { return p.gateway }

// Gateway returns the embedding gateway with its device state.
func (p *Provider) Gateway() *ai.Gateway { return p.gateway }

// Generator returns the chat generator.
func (p *Provider) Generator() ai.Generator { return p.generator }

// Classifier returns the model classifier, or nil when none is configured.
func (p *Provider) Classifier() ai.Classifier { return p.classifier }

// Close releases the embedding backend.
func (p *Provider) Close() error { return p.gateway.Close() }
