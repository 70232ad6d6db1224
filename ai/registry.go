package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/quaero/core"
)

// ModelCapabilities describes what the rest of the system needs to know
// about an embedding model.
type ModelCapabilities struct {
	// Dimension is the length of every vector the model produces.
	Dimension int `yaml:"dimension"`
	// AcceleratedBatchSize is the number of texts embedded per call on the accelerated device.
	AcceleratedBatchSize int `yaml:"accelerated_batch_size"`
	// FallbackBatchSize is the number of texts embedded per call on the fallback device.
	FallbackBatchSize int `yaml:"fallback_batch_size"`
}

// BatchSize returns the batch size to use on device.
func (c ModelCapabilities) BatchSize(device core.Device) int {
	if device == core.DeviceAccelerated {
		return c.AcceleratedBatchSize
	}
	return c.FallbackBatchSize
}

// Validate checks that every capability is positive.
func (c ModelCapabilities) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", ErrInvalidCapabilities)
	}
	if c.AcceleratedBatchSize <= 0 || c.FallbackBatchSize <= 0 {
		return fmt.Errorf("%w: batch sizes must be positive", ErrInvalidCapabilities)
	}
	if c.AcceleratedBatchSize <= c.FallbackBatchSize {
		return fmt.Errorf("%w: accelerated batch size must exceed the fallback batch size", ErrInvalidCapabilities)
	}
	return nil
}

// Registry maps embedding model names to their capabilities.
// It is populated at startup and read-only afterwards; it is not safe for
// concurrent registration.
type Registry struct {
	models map[string]ModelCapabilities
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]ModelCapabilities)}
}

// DefaultRegistry returns a registry preloaded with common local embedding models.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, caps := range map[string]ModelCapabilities{
		"bge-m3":                 {Dimension: 1024, AcceleratedBatchSize: 32, FallbackBatchSize: 8},
		"baai/bge-m3":            {Dimension: 1024, AcceleratedBatchSize: 32, FallbackBatchSize: 8},
		"nomic-embed-text":       {Dimension: 768, AcceleratedBatchSize: 64, FallbackBatchSize: 16},
		"embeddinggemma":         {Dimension: 768, AcceleratedBatchSize: 64, FallbackBatchSize: 16},
		"mxbai-embed-large":      {Dimension: 1024, AcceleratedBatchSize: 32, FallbackBatchSize: 8},
		"all-minilm":             {Dimension: 384, AcceleratedBatchSize: 128, FallbackBatchSize: 32},
		"text-embedding-3-small": {Dimension: 1536, AcceleratedBatchSize: 256, FallbackBatchSize: 64},
		"text-embedding-3-large": {Dimension: 3072, AcceleratedBatchSize: 128, FallbackBatchSize: 32},
	} {
		r.models[name] = caps
	}
	return r
}

// Register adds or replaces a model entry.
func (r *Registry) Register(model string, caps ModelCapabilities) error {
	if model == "" {
		return fmt.Errorf("%w: empty model name", ErrInvalidCapabilities)
	}
	if err := caps.Validate(); err != nil {
		return fmt.Errorf("model %q: %w", model, err)
	}
	r.models[strings.ToLower(model)] = caps
	return nil
}

// Resolve looks up a model's capabilities. Names are matched
// case-insensitively, and a tag suffix such as ":latest" is ignored when the
// tagged name is not registered.
func (r *Registry) Resolve(model string) (ModelCapabilities, error) {
	name := strings.ToLower(model)
	if caps, ok := r.models[name]; ok {
		return caps, nil
	}
	if base, _, found := strings.Cut(name, ":"); found {
		if caps, ok := r.models[base]; ok {
			return caps, nil
		}
	}
	return ModelCapabilities{}, fmt.Errorf("%w: %q", ErrUnknownModel, model)
}

// Models returns the registered model names in sorted order.
func (r *Registry) Models() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
