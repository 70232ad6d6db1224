package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

const (
	// DefaultBaseThreshold is the minimum similarity a hit needs to be returned by the store.
	DefaultBaseThreshold float32 = 0.3

	// DefaultTopK is used when a caller passes a non-positive topK.
	DefaultTopK = 5
)

// Retriever finds the chunks most relevant to a query.
type Retriever struct {
	embedder      ai.Embedder
	store         storage.VectorStore
	ranker        Ranker
	baseThreshold float32
	monitor       SearchMonitor
	logger        *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithBaseThreshold sets the score threshold passed to the vector store.
// Default is DefaultBaseThreshold.
func WithBaseThreshold(threshold float32) Option {
	return func(r *Retriever) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: base threshold is %.3f", ErrInvalidThreshold, threshold)
		}
		r.baseThreshold = threshold
		return nil
	}
}

// WithMonitor sets the monitor used by Retrieve.
func WithMonitor(monitor SearchMonitor) Option {
	return func(r *Retriever) error {
		r.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder ai.Embedder, store storage.VectorStore, ranker Ranker, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if err := ranker.Validate(); err != nil {
		return nil, err
	}

	r := &Retriever{
		embedder:      embedder,
		store:         store,
		ranker:        ranker,
		baseThreshold: DefaultBaseThreshold,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever")

	return r, nil
}

// BaseThreshold returns the configured store-side score threshold.
func (r *Retriever) BaseThreshold() float32 {
	return r.baseThreshold
}

// Ranker returns the configured ranker.
func (r *Retriever) Ranker() Ranker {
	return r.ranker
}

// Retrieve returns up to topK hits for query, filtered by the base
// threshold and then by the ranker. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]*core.SearchHit, error) {
	return r.RetrieveWithMonitor(ctx, query, topK, r.monitor)
}

// RetrieveWithMonitor is Retrieve with a per-call monitor.
// The monitor receives callbacks at each stage of the retrieval.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) (hits []*core.SearchHit, err error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	monitor.Start(query, topK)
	defer func() { monitor.Finish(hits, err) }()

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	found, err := r.store.Search(ctx, embedding, topK, storage.WithScoreThreshold(r.baseThreshold))
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(r.baseThreshold, found)

	if len(found) == 0 {
		r.logger.Info("no hits above threshold", "threshold", r.baseThreshold, "top_k", topK)
		return []*core.SearchHit{}, nil
	}

	ranked, decision := r.ranker.Explain(found)
	monitor.AfterRanking(decision, ranked)
	if decision.Triggered {
		r.logger.Info("gap filtering applied",
			"top_score", decision.Top, "gap", decision.Gap, "kept", decision.Kept, "dropped", decision.Dropped)
	} else {
		r.logger.Debug("hits retrieved", "count", len(ranked), "top_score", decision.Top, "gap", decision.Gap)
	}
	return ranked, nil
}
