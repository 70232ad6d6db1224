// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/quaero/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the embedding gateway, generator and classifier instances.
type Provider struct {
	config     *ai.Config
	gateway    *ai.Gateway
	generator  *Generator
	classifier *Classifier
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use, and the embedding model
// is resolved in registry once. A nil registry uses ai.DefaultRegistry.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
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

	generator, err := newGenerator(config)
	if err != nil {
		_ = gateway.Close()
		return nil, err
	}

	p := &Provider{
		config:    config,
		gateway:   gateway,
		generator: generator,
		logger:    slog.Default().With("component", "openai-provider"),
	}

	// The model classifier is optional; callers fall back to rule-based classification.
	if config.ClassifierModel != "" {
		classifier, err := newClassifier(config)
		if err != nil {
			_ = gateway.Close()
			return nil, err
		}
		p.classifier = classifier
	}
	return p, nil
}

// Embedder returns the embedding gateway.
func (p *Provider) Embedder() ai.Embedder {
	return p.gateway
}

// Gateway returns the embedding gateway with its device state.
func (p *Provider) Gateway() *ai.Gateway {
	return p.gateway
}

// Generator returns the text generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Classifier returns the model classifier, or nil when no classifier model is configured.
func (p *Provider) Classifier() ai.Classifier {
	if p.classifier == nil {
		return nil
	}
	return p.classifier
}

// Close releases the embedding backend.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return p.gateway.Close()
}
