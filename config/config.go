package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/quaero/ai"
	"gopkg.in/yaml.v3"
)

// Provider and store kinds accepted in the configuration.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	StoreBadger = "badger"
	StoreQdrant = "qdrant"

	ClassifierRegex = "regex"
	ClassifierLLM   = "llm"
)

// EmbeddingConfig configures the embedding gateway. Provider also selects
// the generation adapter.
type EmbeddingConfig struct {
	Provider        string                          `yaml:"provider"`
	AcceleratedHost string                          `yaml:"accelerated_host"`
	FallbackHost    string                          `yaml:"fallback_host"`
	Model           string                          `yaml:"model"`
	APIKey          string                          `yaml:"api_key"`
	RetryInterval   time.Duration                   `yaml:"retry_interval"`
	Registry        map[string]ai.ModelCapabilities `yaml:"registry,omitempty"`
}

// GenerationConfig configures answer generation.
type GenerationConfig struct {
	Host        string  `yaml:"host"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// StoreConfig selects the vector store.
type StoreConfig struct {
	Kind   string       `yaml:"kind"`
	Qdrant QdrantConfig `yaml:"qdrant"`
}

// ChunkingConfig configures how documents are split into chunks.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig holds the relevance thresholds.
type RetrievalConfig struct {
	BaseThreshold float32 `yaml:"base_threshold"`
	Dominance     float32 `yaml:"dominance"`
	Gap           float32 `yaml:"gap"`
	Cutoff        float32 `yaml:"cutoff"`
	TopK          int     `yaml:"top_k"`
}

// IngestionConfig sizes the ingestion worker pool.
type IngestionConfig struct {
	PoolSize  int `yaml:"pool_size"`  // Zero means half the CPUs
	QueueSize int `yaml:"queue_size"` // Zero means unbounded
}

// MemoryConfig bounds conversation memory.
type MemoryConfig struct {
	Capacity     int `yaml:"capacity"`
	HistoryTurns int `yaml:"history_turns"`
}

// ClassifierConfig selects the document classifier.
type ClassifierConfig struct {
	Kind  string `yaml:"kind"`
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// WatchConfig configures directory watching.
type WatchConfig struct {
	Extensions []string      `yaml:"extensions"`
	Rate       float64       `yaml:"rate"` // Files per second
	Debounce   time.Duration `yaml:"debounce"`
}

// Config is the root configuration.
type Config struct {
	DataDir    string           `yaml:"data_dir"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Store      StoreConfig      `yaml:"store"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
	Memory     MemoryConfig     `yaml:"memory"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Watch      WatchConfig      `yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir: "./data",
		Embedding: EmbeddingConfig{
			Provider:        ProviderOllama,
			AcceleratedHost: "http://localhost:11434",
			Model:           "bge-m3",
			RetryInterval:   60 * time.Second,
		},
		Generation: GenerationConfig{
			Host:        "http://localhost:11434",
			Model:       "mistral",
			Temperature: 0.7,
		},
		Store: StoreConfig{
			Kind: StoreBadger,
			Qdrant: QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "documents",
			},
		},
		Chunking: ChunkingConfig{Size: 1000, Overlap: 100},
		Retrieval: RetrievalConfig{
			BaseThreshold: 0.3,
			Dominance:     0.50,
			Gap:           0.08,
			Cutoff:        0.45,
			TopK:          5,
		},
		Ingestion:  IngestionConfig{QueueSize: 64},
		Memory:     MemoryConfig{Capacity: 20, HistoryTurns: 3},
		Classifier: ClassifierConfig{Kind: ClassifierRegex},
		Watch: WatchConfig{
			Extensions: []string{".txt", ".md", ".pdf"},
			Rate:       2,
			Debounce:   500 * time.Millisecond,
		},
	}
}

// Load reads a config from path on top of the defaults and then applies
// QUAERO_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values no component would accept.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: embedding.provider %q", ErrInvalidConfig, c.Embedding.Provider)
	}
	switch c.Store.Kind {
	case StoreBadger:
	case StoreQdrant:
		if c.Store.Qdrant.URL == "" {
			return fmt.Errorf("%w: store.qdrant.url is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: store.kind %q", ErrInvalidConfig, c.Store.Kind)
	}
	switch c.Classifier.Kind {
	case ClassifierRegex:
	case ClassifierLLM:
		if c.Classifier.Model == "" {
			return fmt.Errorf("%w: classifier.model is required for the llm classifier", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: classifier.kind %q", ErrInvalidConfig, c.Classifier.Kind)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	}
	if c.Chunking.Size <= 0 || c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking size %d, overlap %d", ErrInvalidConfig, c.Chunking.Size, c.Chunking.Overlap)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("%w: generation.temperature %v is outside [0, 2]", ErrInvalidConfig, c.Generation.Temperature)
	}
	if c.Ingestion.PoolSize < 0 || c.Ingestion.QueueSize < 0 {
		return fmt.Errorf("%w: ingestion sizes must not be negative", ErrInvalidConfig)
	}
	if c.Memory.Capacity < 1 {
		return fmt.Errorf("%w: memory.capacity must be at least 1", ErrInvalidConfig)
	}
	for model, caps := range c.Embedding.Registry {
		if err := caps.Validate(); err != nil {
			return fmt.Errorf("%w: registry entry %q: %w", ErrInvalidConfig, model, err)
		}
	}
	return nil
}

// Environment overrides, applied after the file.
const (
	EnvDataDir          = "QUAERO_DATA_DIR"
	EnvProvider         = "QUAERO_PROVIDER"
	EnvEmbeddingHost    = "QUAERO_EMBEDDING_HOST"
	EnvFallbackHost     = "QUAERO_FALLBACK_EMBEDDING_HOST"
	EnvEmbeddingModel   = "QUAERO_EMBEDDING_MODEL"
	EnvAPIKey           = "QUAERO_API_KEY"
	EnvLLMHost          = "QUAERO_LLM_HOST"
	EnvLLMModel         = "QUAERO_LLM_MODEL"
	EnvStore            = "QUAERO_STORE"
	EnvQdrantURL        = "QUAERO_QDRANT_URL"
	EnvQdrantAPIKey     = "QUAERO_QDRANT_API_KEY"
	EnvQdrantCollection = "QUAERO_QDRANT_COLLECTION"
	EnvChunkSize        = "QUAERO_CHUNK_SIZE"
	EnvChunkOverlap     = "QUAERO_CHUNK_OVERLAP"
	EnvTopK             = "QUAERO_TOP_K"
	EnvBaseThreshold    = "QUAERO_BASE_THRESHOLD"
	EnvRetryInterval    = "QUAERO_RETRY_INTERVAL"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvDataDir:          &cfg.DataDir,
		EnvProvider:         &cfg.Embedding.Provider,
		EnvEmbeddingHost:    &cfg.Embedding.AcceleratedHost,
		EnvFallbackHost:     &cfg.Embedding.FallbackHost,
		EnvEmbeddingModel:   &cfg.Embedding.Model,
		EnvAPIKey:           &cfg.Embedding.APIKey,
		EnvLLMHost:          &cfg.Generation.Host,
		EnvLLMModel:         &cfg.Generation.Model,
		EnvStore:            &cfg.Store.Kind,
		EnvQdrantURL:        &cfg.Store.Qdrant.URL,
		EnvQdrantAPIKey:     &cfg.Store.Qdrant.APIKey,
		EnvQdrantCollection: &cfg.Store.Qdrant.Collection,
	}
	for key, field := range strs {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		EnvChunkSize:    &cfg.Chunking.Size,
		EnvChunkOverlap: &cfg.Chunking.Overlap,
		EnvTopK:         &cfg.Retrieval.TopK,
	}
	for key, field := range ints {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
		}
		*field = n
	}

	if v, ok := lookup(EnvBaseThreshold); ok && v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvBaseThreshold, v)
		}
		cfg.Retrieval.BaseThreshold = float32(f)
	}
	if v, ok := lookup(EnvRetryInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, EnvRetryInterval, v)
		}
		cfg.Embedding.RetryInterval = d
	}
	return nil
}
