package ingestion

import (
	"errors"
	"fmt"

	"github.com/poiesic/quaero/core"
)

var (
	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrQueueFull is returned when the worker pool cannot accept more work.
	ErrQueueFull = errors.New("ingestion queue is full")

	// ErrPipelineClosed is returned when work is submitted after Release.
	ErrPipelineClosed = errors.New("ingestion pipeline is closed")

	// ErrInvalidRequest is returned for a request without a document ID.
	ErrInvalidRequest = errors.New("invalid ingestion request")

	// ErrStagePanicked wraps a panic recovered from an ingestion stage.
	ErrStagePanicked = errors.New("ingestion stage panicked")
)

// StageError reports the stage at which a document failed.
type StageError struct {
	DocumentID string
	Stage      core.Stage
	Err        error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("document %s failed at %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
