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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/quaero/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// Classifier implements ai.Classifier using OpenAI-compatible chat APIs in JSON mode.
type Classifier struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Classifier = (*Classifier)(nil)

type classification struct {
	DocumentType string `json:"document_type"`
}

type extraction struct {
	Fields map[string]string `json:"fields"`
}

// newClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newClassifier(config *ai.Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.ClassifierModel == "" {
		return nil, fmt.Errorf("ai config: ClassifierModel is required for the model classifier")
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(apiToken(config)),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}
	return newClassifierWithModel(client), nil
}

func newClassifierWithModel(client llms.Model) *Classifier {
	return &Classifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}
}

// NewClassifier creates a new model-backed classifier using the provided configuration.
//
// Returns ai.Classifier interface to enforce abstraction.
func NewClassifier(config *ai.Config) (ai.Classifier, error) {
	return newClassifier(config)
}

// Classify asks the model for the document type. Unknown answers map to
// ai.DocumentTypeGeneric.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	var result classification
	if err := c.complete(ctx, buildClassificationPrompt(), text, &result); err != nil {
		return "", err
	}
	if !ai.IsDocumentType(result.DocumentType) {
		c.logger.Debug("model returned unknown document type", "type", result.DocumentType)
		return ai.DocumentTypeGeneric, nil
	}
	return result.DocumentType, nil
}

// ExtractFields asks the model for the fields of documentType. Types without
// known fields return an empty map without calling the model.
func (c *Classifier) ExtractFields(ctx context.Context, text, documentType string) (map[string]string, error) {
	prompt := buildExtractionPrompt(documentType)
	if prompt == "" {
		return map[string]string{}, nil
	}

	var result extraction
	if err := c.complete(ctx, prompt, text, &result); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(result.Fields))
	for k, v := range result.Fields {
		if v != "" {
			fields[k] = v
		}
	}
	return fields, nil
}

// complete sends text under systemPrompt and decodes the JSON reply into out,
// retrying when the model returns malformed JSON.
func (c *Classifier) complete(ctx context.Context, systemPrompt, text string, out any) error {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(truncateText(text, maxClassifierRunes))},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return err
		}
		if len(response.Choices) < 1 {
			return fmt.Errorf("classifier returned no choices")
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), out); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		return nil
	}

	c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
	return lastErr
}
