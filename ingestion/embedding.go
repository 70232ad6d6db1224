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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
)

// embeddingProcessor generates one embedding per chunk.
type embeddingProcessor struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

func (ep *embeddingProcessor) stage() core.Stage { return core.StageEmbedding }

func (ep *embeddingProcessor) states() (core.DocumentState, core.DocumentState) {
	return core.DocumentEmbedding, core.DocumentEmbedded
}

// process embeds the chunk texts of the job.
func (ep *embeddingProcessor) process(ctx context.Context, j *job) error {
	texts := make([]string, len(j.chunks))
	for i, chunk := range j.chunks {
		texts[i] = chunk.Text
	}

	ep.logger.Debug("generating embeddings for chunks", "document_id", j.doc.ID, "chunks", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}

	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: embedding result mismatch. expected %d, received %d",
			core.ErrEmbedding, len(texts), len(embeddings))
	}
	j.vecs = embeddings
	return nil
}
