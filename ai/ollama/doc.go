// Package ollama provides AI services backed by the native Ollama API.
//
// Embeddings go through an ai.Gateway whose accelerated and fallback devices
// are two Ollama servers, typically a GPU host and a CPU-only host serving
// the same model. Generation uses the Ollama chat endpoint directly.
// Classification reuses the OpenAI-compatible classifier against the
// server's /v1 endpoint.
package ollama
