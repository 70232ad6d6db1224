package config

import (
	"github.com/poiesic/quaero/ai"
)

// AIConfig builds the provider configuration from the embedding, generation
// and classifier sections. The model classifier is configured only when
// classifier.kind is llm.
func (c *Config) AIConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.AcceleratedHost),
		ai.WithFallbackEmbeddingHost(c.Embedding.FallbackHost),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithGenerationHost(c.Generation.Host),
		ai.WithGenerationModel(c.Generation.Model),
		ai.WithAPIKey(c.Embedding.APIKey),
		ai.WithRetryInterval(c.Embedding.RetryInterval),
		ai.WithClassifierModel(""),
		ai.WithClassifierHost(""),
	)
	if c.Classifier.Kind == ClassifierLLM {
		host := c.Classifier.Host
		if host == "" {
			host = c.Generation.Host
		}
		cfg.ClassifierHost = host
		cfg.ClassifierModel = c.Classifier.Model
	}
	return cfg
}

// Registry returns the default model registry extended with the entries of
// embedding.registry.
func (c *Config) Registry() (*ai.Registry, error) {
	registry := ai.DefaultRegistry()
	for model, caps := range c.Embedding.Registry {
		if err := registry.Register(model, caps); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
