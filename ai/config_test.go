package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.FallbackEmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ClassifierHost)
	assert.Equal(t, "bge-m3", cfg.EmbeddingModel)
	assert.Equal(t, "mistral", cfg.GenerationModel)
	assert.Equal(t, "qwen2.5:3b", cfg.ClassifierModel)
	assert.Equal(t, 60*time.Second, cfg.RetryInterval)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.FallbackEmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GenerationHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ClassifierHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://gpu:8080/v1"),
			WithFallbackEmbeddingHost("http://cpu:8080/v1"),
			WithGenerationHost("http://gen:9090/v1"),
			WithClassifierHost("http://classify:9191/v1"),
		)

		assert.Equal(t, "http://gpu:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://cpu:8080/v1", cfg.FallbackEmbeddingHost)
		assert.Equal(t, "http://gen:9090/v1", cfg.GenerationHost)
		assert.Equal(t, "http://classify:9191/v1", cfg.ClassifierHost)
	})

	t.Run("with custom models and key", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("nomic-embed-text"),
			WithGenerationModel("llama3.1"),
			WithClassifierModel("gpt-4o-mini"),
			WithAPIKey("secret"),
			WithRetryInterval(5*time.Second),
		)

		assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
		assert.Equal(t, "llama3.1", cfg.GenerationModel)
		assert.Equal(t, "gpt-4o-mini", cfg.ClassifierModel)
		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, 5*time.Second, cfg.RetryInterval)
	})
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"adds suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps suffix", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"keeps empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.in, GenerationHost: tt.in, ClassifierHost: tt.in}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.GenerationHost)
			assert.Equal(t, tt.want, cfg.ClassifierHost)
		})
	}

	t.Run("fallback defaults to embedding host", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://gpu:11434"}
		cfg.Normalize()
		assert.Equal(t, "http://gpu:11434/v1", cfg.FallbackEmbeddingHost)
		assert.Equal(t, DefaultRetryInterval, cfg.RetryInterval)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid default", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("classifier model optional", func(t *testing.T) {
		cfg := NewConfig(WithClassifierModel(""), WithClassifierHost(""))
		require.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = ""; c.FallbackEmbeddingHost = "" }, "EmbeddingHost is required"},
		{"missing generation host", func(c *Config) { c.GenerationHost = "" }, "GenerationHost is required"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel is required"},
		{"missing generation model", func(c *Config) { c.GenerationModel = "" }, "GenerationModel is required"},
		{"classifier without host", func(c *Config) { c.ClassifierHost = "" }, "ClassifierHost is required"},
		{"negative retry interval", func(c *Config) { c.RetryInterval = -time.Second }, "RetryInterval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
