package ollama

import (
	"context"
	"log/slog"

	"github.com/poiesic/quaero/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator implements ai.Generator with the Ollama chat API.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates a generator for config.GenerationModel on config.GenerationHost.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := ollama.New(
		ollama.WithServerURL(serverURL(config.GenerationHost)),
		ollama.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}
	return &Generator{
		client: client,
		logger: slog.Default().With("component", "ollama-generator", "model", config.GenerationModel),
	}, nil
}

// Generate returns the model's completion of prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	answer, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(temperature))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return "", err
	}
	return answer, nil
}
