package ai

import (
	"context"

	"github.com/poiesic/quaero/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a unit-length vector embedding for a single text string.
	// Returns an error wrapping core.ErrEmbedding if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error wrapping core.ErrEmbedding if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingBackend is an embedding computation loaded on one device.
// Backends are owned by a Gateway, which decides when to load and release them.
type EmbeddingBackend interface {
	// Embed returns one raw (not necessarily normalized) vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases device resources. Calls already in flight may still complete.
	Close() error
}

// BackendLoader loads the embedding computation for a model on the given device.
// A device-resource failure should be reported with an error matching
// IsDeviceResourceError.
type BackendLoader func(ctx context.Context, device core.Device) (EmbeddingBackend, error)

// Generator produces text from a prompt using a language model.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate returns the model's completion for prompt at the given temperature.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Classifier detects the document type of extracted text and pulls
// structured fields out of it.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// Classify returns one of the DocumentType* constants.
	Classify(ctx context.Context, text string) (string, error)

	// ExtractFields returns the structured fields found for documentType.
	// Returns an empty map when the type has no field extractors.
	ExtractFields(ctx context.Context, text, documentType string) (map[string]string, error)
}

// TextExtractor turns a file into raw text.
type TextExtractor interface {
	// Extract returns the text content of the file at path.
	// An empty string with a nil error means the file contained no text.
	Extract(ctx context.Context, path string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the embedding gateway, generator and classifier,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// Classifier returns a model-backed document classifier.
	Classifier() Classifier

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
