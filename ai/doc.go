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


// Package ai provides abstractions for the model services used by Quaero.
//
// This package defines interfaces for text embeddings, answer generation and
// document classification, plus the embedding Gateway that owns device
// placement for the embedding model.
//
// # Design Principles
//
// The package is designed around a few key interfaces:
//
//   - Embedder: Generates unit-length vector embeddings from text
//   - EmbeddingBackend / BackendLoader: A model loaded on one device, and how to load it
//   - Generator: Produces an answer from a prompt
//   - Classifier: Detects a document's type and extracts structured fields
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Embedding Gateway
//
// Gateway is the single embedding entry point. The model is resolved once in
// a Registry, which supplies its vector dimension and per-device batch sizes.
// The gateway starts on the accelerated device, switches to the fallback
// device when a call fails with a device-resource error, and retries the
// accelerated device once RetryInterval has passed.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs (Ollama /v1, LocalAI, vLLM, hosted OpenAI)
//   - ai/ollama: The native Ollama API
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewGenerator, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(ctx, config, ai.DefaultRegistry())  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockGenerator)
// return CONCRETE types to enable test assertions and behavior injection.
//
//	gen := mock.NewMockGenerator("Paris")  // returns *mock.MockGenerator
//	count := gen.CallCount()               // test assertion
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(ctx, config, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.Generator().Generate(ctx, "Say hello", 0.7)
package ai
