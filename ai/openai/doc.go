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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (such as
// Ollama, LocalAI, or vLLM).
//
// Embeddings run through an ai.Gateway. The accelerated device is the
// server at Config.EmbeddingHost and the fallback device is the server at
// Config.FallbackEmbeddingHost, typically a CPU-only instance serving the
// same model.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://gpu-box:11434"),       // /v1 added automatically
//	    ai.WithFallbackEmbeddingHost("http://localhost:11434"),
//	    ai.WithGenerationModel("mistral"),
//	)
//
//	provider, err := openai.NewProvider(ctx, config, ai.DefaultRegistry())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//	answer, err := provider.Generator().Generate(ctx, "Say hello", 0.7)
package openai
