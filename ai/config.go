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


package ai

import (
	"errors"
	"strings"
	"time"
)

// DefaultRetryInterval is how long the embedding gateway stays on the
// fallback device before trying the accelerated one again.
const DefaultRetryInterval = 60 * time.Second

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL of the accelerated embedding service.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// FallbackEmbeddingHost serves the same embedding model on the fallback
	// device, typically a CPU-only server. Defaults to EmbeddingHost.
	FallbackEmbeddingHost string

	// GenerationHost is the base URL for answer generation.
	GenerationHost string

	// ClassifierHost is the base URL for model-backed document classification.
	ClassifierHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// It must be known to the model registry.
	// Example: "bge-m3", "nomic-embed-text"
	EmbeddingModel string

	// GenerationModel is the model used to answer queries.
	// Example: "mistral", "llama3.1"
	GenerationModel string

	// ClassifierModel is the model identifier to use for document classification.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ClassifierModel string

	// APIKey is sent to hosted OpenAI-compatible APIs. Local servers ignore it.
	APIKey string

	// RetryInterval is the minimum time spent on the fallback embedding
	// device before the accelerated device is retried.
	// Default: 60s
	RetryInterval time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the accelerated embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithFallbackEmbeddingHost sets the fallback embedding service host URL.
func WithFallbackEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.FallbackEmbeddingHost = host
	}
}

// WithGenerationHost sets the generation service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithClassifierHost sets the classifier service host URL.
func WithClassifierHost(host string) ConfigOption {
	return func(c *Config) {
		c.ClassifierHost = host
	}
}

// WithHost points every service at the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.FallbackEmbeddingHost = host
		c.GenerationHost = host
		c.ClassifierHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithClassifierModel sets the classifier model identifier.
func WithClassifierModel(model string) ConfigOption {
	return func(c *Config) {
		c.ClassifierModel = model
	}
}

// WithAPIKey sets the API key for hosted services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRetryInterval sets how long to wait before retrying the accelerated device.
func WithRetryInterval(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryInterval = d
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, every service uses the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:         defaultHost,
		FallbackEmbeddingHost: defaultHost,
		GenerationHost:        defaultHost,
		ClassifierHost:        defaultHost,
		EmbeddingModel:        "bge-m3",
		GenerationModel:       "mistral",
		ClassifierModel:       "qwen2.5:3b",
		RetryInterval:         DefaultRetryInterval,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	)
//
// Example with a CPU-only fallback server:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://gpu-box:11434/v1"),
//	    WithFallbackEmbeddingHost("http://localhost:11434/v1"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.FallbackEmbeddingHost == "" {
		c.FallbackEmbeddingHost = c.EmbeddingHost
	}
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.FallbackEmbeddingHost = withV1(c.FallbackEmbeddingHost)
	c.GenerationHost = withV1(c.GenerationHost)
	c.ClassifierHost = withV1(c.ClassifierHost)
	if c.RetryInterval == 0 {
		c.RetryInterval = DefaultRetryInterval
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GenerationHost == "" {
		return errors.New("ai config: GenerationHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.ClassifierModel != "" && c.ClassifierHost == "" {
		return errors.New("ai config: ClassifierHost is required when ClassifierModel is set")
	}
	if c.RetryInterval < 0 {
		return errors.New("ai config: RetryInterval must not be negative")
	}
	return nil
}
