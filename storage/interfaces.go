package storage

import (
	"context"

	"github.com/poiesic/quaero/core"
)

// SearchOptions holds the optional parameters of VectorStore.Search.
type SearchOptions struct {
	ScoreThreshold    float32
	HasScoreThreshold bool
}

// SearchOption configures a single Search call.
type SearchOption func(*SearchOptions)

// WithScoreThreshold drops hits scoring below threshold before they are returned.
func WithScoreThreshold(threshold float32) SearchOption {
	return func(o *SearchOptions) {
		o.ScoreThreshold = threshold
		o.HasScoreThreshold = true
	}
}

// ApplySearchOptions folds opts into a SearchOptions value.
func ApplySearchOptions(opts ...SearchOption) SearchOptions {
	var o SearchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Scroller pages through every point in a store.
type Scroller interface {
	// Scroll returns up to limit points starting at cursor. An empty cursor
	// starts from the beginning. An empty next cursor means there are no
	// further pages.
	Scroll(ctx context.Context, cursor string, limit int) (points []*core.IndexedPoint, next string, err error)
}

// VectorStore persists indexed points and answers similarity queries.
// Implementations must be thread-safe and support concurrent access.
// Every error returned is a *StoreError.
type VectorStore interface {
	Scroller

	// Insert upserts points. Inserting a point whose ID already exists
	// replaces it. Points are written in batches of InsertBatchSize and
	// each batch is durable before the next one starts.
	Insert(ctx context.Context, points ...*core.IndexedPoint) error

	// Search returns up to topK hits ordered by descending cosine similarity.
	Search(ctx context.Context, vector []float32, topK int, opts ...SearchOption) ([]*core.SearchHit, error)

	// DeleteByDocument removes every point belonging to documentID.
	// Deleting an unknown document is not an error.
	DeleteByDocument(ctx context.Context, documentID string) error

	// ListDocuments aggregates the stored points per document,
	// sorted by filename and then document ID.
	ListDocuments(ctx context.Context) ([]*core.DocumentSummary, error)

	// Stats reports the point count, vector dimension and health of the collection.
	Stats(ctx context.Context) (*core.StoreStats, error)

	// Close releases resources held by the store.
	Close() error
}

// DocumentRepository tracks uploaded documents through ingestion.
type DocumentRepository interface {
	// PutDocument creates or replaces a document record.
	PutDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// ListDocuments returns every tracked document ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document record. Deleting an unknown ID is not an error.
	DeleteDocument(ctx context.Context, id string) error
}

// CheckpointRepository persists progress of resumable passes over the store.
type CheckpointRepository interface {
	// SaveCheckpoint persists checkpoint under its name.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint stored under name.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint stored under name.
	DeleteCheckpoint(ctx context.Context, name string) error
}
