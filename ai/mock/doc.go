// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.EmbeddingBackend,
// ai.Generator, ai.Classifier and ai.AIProvider for use in unit tests. The mocks
// allow tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embedding, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	gen := mock.NewMockGenerator("Paris")
//	gen.GenerateFunc = func(ctx context.Context, prompt string, temp float64) (string, error) {
//	    return "", errors.New("model offline")
//	}
//
//	// Driving an ai.Gateway without a model server
//	loader := mock.NewMockLoader(64)
//	gw, err := ai.NewGateway(ctx, loader.Load, registry, "test-model")
//
// # Default Behavior
//
//   - MockEmbedder: Returns bag-of-words hashed vectors, so texts sharing words are similar
//   - MockGenerator: Returns a canned response and records prompts
//   - MockClassifier: Labels everything GENERIC_DOCUMENT with no fields
//   - MockLoader: Hands out MockBackends per device and records loads
package mock
