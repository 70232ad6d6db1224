package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/chunker"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

// extractionProcessor rejects documents whose text is empty.
type extractionProcessor struct{}

var _ processor = extractionProcessor{}

func (extractionProcessor) stage() core.Stage { return core.StageExtraction }

func (extractionProcessor) states() (core.DocumentState, core.DocumentState) {
	return core.DocumentExtracting, ""
}

func (extractionProcessor) process(_ context.Context, j *job) error {
	if strings.TrimSpace(j.text) == "" {
		return core.ErrExtractionEmpty
	}
	return nil
}

// classificationProcessor detects the document type and structured fields.
// It never fails: classifier errors degrade to a generic document.
type classificationProcessor struct {
	classifier ai.Classifier
	logger     *slog.Logger
}

var _ processor = (*classificationProcessor)(nil)

func (cp *classificationProcessor) stage() core.Stage { return "" }

func (cp *classificationProcessor) states() (core.DocumentState, core.DocumentState) {
	return "", ""
}

func (cp *classificationProcessor) process(ctx context.Context, j *job) (err error) {
	j.doc.DocumentType = ai.DocumentTypeGeneric
	j.fields = "{}"
	if cp.classifier == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			cp.logger.Warn("classifier panicked, treating as generic document", "document_id", j.doc.ID, "panic", r)
			j.doc.DocumentType = ai.DocumentTypeGeneric
			j.fields = "{}"
			err = nil
		}
	}()

	logger := cp.logger.With("document_id", j.doc.ID)
	documentType, err := cp.classifier.Classify(ctx, j.text)
	if err != nil {
		logger.Warn("classification failed, treating as generic document", "err", err)
		return nil
	}
	if !ai.IsDocumentType(documentType) {
		documentType = ai.DocumentTypeGeneric
	}
	j.doc.DocumentType = documentType

	fields, err := cp.classifier.ExtractFields(ctx, j.text, documentType)
	if err != nil {
		logger.Warn("field extraction failed", "document_type", documentType, "err", err)
		return nil
	}
	blob, err := storage.MarshalFields(fields)
	if err != nil {
		logger.Warn("failed to encode structured fields", "err", err)
		return nil
	}
	j.fields = blob
	logger.Debug("document classified", "document_type", documentType, "fields", len(fields))
	return nil
}

// chunkingProcessor splits the document text.
type chunkingProcessor struct {
	splitter  *chunker.Splitter
	chunkSize int
	overlap   int
}

var _ processor = (*chunkingProcessor)(nil)

func (cp *chunkingProcessor) stage() core.Stage { return core.StageChunking }

func (cp *chunkingProcessor) states() (core.DocumentState, core.DocumentState) {
	return "", core.DocumentChunked
}

func (cp *chunkingProcessor) process(_ context.Context, j *job) error {
	chunks, err := cp.splitter.Split(j.text, cp.chunkSize, cp.overlap)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks produced", core.ErrChunking)
	}
	j.chunks = chunks
	return nil
}

// storageProcessor writes one point per chunk.
type storageProcessor struct {
	store storage.VectorStore
}

var _ processor = (*storageProcessor)(nil)

func (sp *storageProcessor) stage() core.Stage { return core.StageStorage }

func (sp *storageProcessor) states() (core.DocumentState, core.DocumentState) {
	return "", ""
}

func (sp *storageProcessor) process(ctx context.Context, j *job) error {
	points := make([]*core.IndexedPoint, len(j.chunks))
	for i, chunk := range j.chunks {
		points[i] = &core.IndexedPoint{
			ID:     core.PointID(j.doc.ID, chunk.Index),
			Vector: j.vecs[i],
			Metadata: core.PointMetadata{
				DocumentID:       j.doc.ID,
				Filename:         j.doc.Filename,
				ChunkIndex:       chunk.Index,
				Text:             chunk.Text,
				ChunkSize:        chunk.Length,
				DocumentType:     j.doc.DocumentType,
				StructuredFields: j.fields,
				UploadDate:       j.doc.ReceivedAt,
			},
		}
	}
	// Replace rather than merge: a shorter re-ingestion must not leave the
	// old tail chunks behind.
	if err := sp.store.DeleteByDocument(ctx, j.doc.ID); err != nil {
		return err
	}
	if err := sp.store.Insert(ctx, points...); err != nil {
		if derr := sp.store.DeleteByDocument(ctx, j.doc.ID); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}
	return nil
}
