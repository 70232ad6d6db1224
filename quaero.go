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


package quaero

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/ai/ollama"
	"github.com/poiesic/quaero/ai/openai"
	"github.com/poiesic/quaero/classify"
	"github.com/poiesic/quaero/config"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/extract"
	"github.com/poiesic/quaero/ingestion"
	"github.com/poiesic/quaero/memory"
	"github.com/poiesic/quaero/query"
	"github.com/poiesic/quaero/reembed"
	"github.com/poiesic/quaero/search"
	"github.com/poiesic/quaero/storage"
	"github.com/poiesic/quaero/storage/badger"
	"github.com/poiesic/quaero/storage/qdrant"
)

// AllUsers passed to ClearMemory clears the history of every user.
const AllUsers = "*"

// Engine is the entry point for indexing documents and asking questions.
// It is safe for concurrent use.
type Engine struct {
	config    *config.Config
	provider  ai.AIProvider
	stores    *badger.Stores
	vectors   storage.VectorStore
	memory    memory.Store
	extractor ai.TextExtractor
	pipeline  *ingestion.Pipeline
	retriever *search.Retriever
	answers   *query.Orchestrator
	logger    *slog.Logger

	// baseLogger is handed to subcomponents, which add their own component key.
	baseLogger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig sets the configuration. Default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) error {
		if cfg == nil {
			cfg = config.Default()
		}
		e.config = cfg
		return nil
	}
}

// WithVectorStore replaces the badger vector store, for example with a
// Qdrant collection. The engine closes it on Close.
func WithVectorStore(store storage.VectorStore) Option {
	return func(e *Engine) error {
		if store == nil {
			return ErrStoresRequired
		}
		e.vectors = store
		return nil
	}
}

// WithMemory sets the conversation memory.
// Default is an in-memory store sized by the memory config section.
func WithMemory(store memory.Store) Option {
	return func(e *Engine) error {
		e.memory = store
		return nil
	}
}

// WithExtractor sets the text extractor used by IngestFile.
// Default is extract.New().
func WithExtractor(extractor ai.TextExtractor) Option {
	return func(e *Engine) error {
		e.extractor = extractor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New builds an engine on an existing provider and stores. The engine takes
// ownership of both and releases them on Close.
func New(provider ai.AIProvider, stores *badger.Stores, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if stores == nil {
		return nil, ErrStoresRequired
	}

	e := &Engine{
		config:    config.Default(),
		provider:  provider,
		stores:    stores,
		vectors:   stores.Vectors,
		extractor: extract.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.baseLogger = e.logger
	e.logger = e.logger.With("component", "engine")
	cfg := e.config

	if e.memory == nil {
		mem, err := memory.NewInMemory(memory.WithCapacity(cfg.Memory.Capacity))
		if err != nil {
			return nil, err
		}
		e.memory = mem
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithQueueSize(cfg.Ingestion.QueueSize),
		ingestion.WithChunkSize(cfg.Chunking.Size),
		ingestion.WithChunkOverlap(cfg.Chunking.Overlap),
		ingestion.WithLogger(e.baseLogger),
	}
	if cfg.Ingestion.PoolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Ingestion.PoolSize))
	}
	pipeline, err := ingestion.NewPipeline(e.vectors, stores.Documents, provider.Embedder(), e.classifier(), pipelineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	e.pipeline = pipeline

	ranker := search.Ranker{
		Dominance: cfg.Retrieval.Dominance,
		Gap:       cfg.Retrieval.Gap,
		Cutoff:    cfg.Retrieval.Cutoff,
	}
	e.retriever, err = search.NewRetriever(provider.Embedder(), e.vectors, ranker,
		search.WithBaseThreshold(cfg.Retrieval.BaseThreshold),
		search.WithLogger(e.baseLogger))
	if err != nil {
		pipeline.Release()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	e.answers, err = query.NewOrchestrator(e.retriever, provider.Generator(), e.memory,
		query.WithHistoryTurns(cfg.Memory.HistoryTurns),
		query.WithLogger(e.baseLogger))
	if err != nil {
		pipeline.Release()
		return nil, fmt.Errorf("failed to create query orchestrator: %w", err)
	}
	return e, nil
}

// Open builds the provider and stores described by cfg and returns an engine
// on them. The badger database lives under cfg.DataDir. With store kind
// qdrant the collection is created when missing.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var dimension int
	if g, ok := provider.(interface{ Gateway() *ai.Gateway }); ok {
		dimension = g.Gateway().Dimension()
	}

	var storeOpts []badger.Option
	if dimension > 0 {
		storeOpts = append(storeOpts, badger.WithDimension(dimension))
	}
	stores, err := badger.Open(filepath.Join(cfg.DataDir, "badger"), storeOpts...)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Store.Kind == config.StoreQdrant {
		remote, err := openQdrant(ctx, cfg, dimension)
		if err != nil {
			stores.Close()
			provider.Close()
			return nil, err
		}
		opts = append([]Option{WithVectorStore(remote)}, opts...)
	}

	e, err := New(provider, stores, append([]Option{WithConfig(cfg)}, opts...)...)
	if err != nil {
		stores.Close()
		provider.Close()
		return nil, err
	}
	return e, nil
}

// NewProvider creates the AI provider named by cfg.Embedding.Provider.
func NewProvider(ctx context.Context, cfg *config.Config) (ai.AIProvider, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	switch cfg.Embedding.Provider {
	case config.ProviderOllama:
		return ollama.NewProvider(ctx, cfg.AIConfig(), registry)
	case config.ProviderOpenAI:
		return openai.NewProvider(ctx, cfg.AIConfig(), registry)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Embedding.Provider)
	}
}

func openQdrant(ctx context.Context, cfg *config.Config, dimension int) (*qdrant.Store, error) {
	opts := []qdrant.Option{
		qdrant.WithAPIKey(cfg.Store.Qdrant.APIKey),
		qdrant.WithCollection(cfg.Store.Qdrant.Collection),
	}
	if dimension > 0 {
		opts = append(opts, qdrant.WithDimension(dimension))
	}
	remote, err := qdrant.New(cfg.Store.Qdrant.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant store: %w", err)
	}
	if err := remote.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	return remote, nil
}

// classifier picks the model classifier when one is configured and the
// rule-based classifier otherwise.
func (e *Engine) classifier() ai.Classifier {
	if e.config.Classifier.Kind == config.ClassifierLLM {
		if c := e.provider.Classifier(); c != nil {
			return c
		}
		e.logger.Warn("llm classifier requested but not available, using rules")
	}
	return classify.New()
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.config
}

// StartIngestion queues rawText for indexing as documentID and returns once
// the work is accepted. Progress and failures are reported by DocumentStatus.
func (e *Engine) StartIngestion(ctx context.Context, rawText, documentID, filename string) error {
	return e.pipeline.StartIngestion(ctx, ingestion.Request{
		DocumentID: documentID,
		Filename:   filename,
		Text:       rawText,
	})
}

// IngestFile extracts the text of the file at path and queues it for
// indexing. An empty documentID is replaced by a new UUID. The document ID
// is returned.
//
// Unsupported file types are rejected. Any other extraction failure is
// indexed as empty text, so the document ends up failed at extraction.
func (e *Engine) IngestFile(ctx context.Context, path, documentID string) (string, error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}
	text, err := e.extractor.Extract(ctx, path)
	if errors.Is(err, extract.ErrUnsupportedFormat) {
		return "", err
	}
	if err != nil {
		e.logger.Warn("text extraction failed", "path", path, "document_id", documentID, "err", err)
		text = ""
	}
	if err := e.StartIngestion(ctx, text, documentID, filepath.Base(path)); err != nil {
		return "", err
	}
	return documentID, nil
}

// Ask answers a question and returns the full result.
func (e *Engine) Ask(ctx context.Context, req query.Request) query.Result {
	if req.TopK <= 0 {
		req.TopK = e.config.Retrieval.TopK
	}
	return e.answers.Answer(ctx, req)
}

// Query answers queryText for userID. When no document is relevant enough
// the answer is query.NoResultsAnswer with no sources and a nil error.
func (e *Engine) Query(ctx context.Context, userID, queryText string, topK int, temperature float64) (string, []*core.Source, error) {
	result := e.Ask(ctx, query.Request{
		UserID:      userID,
		Query:       queryText,
		TopK:        topK,
		Temperature: temperature,
	})
	switch r := result.(type) {
	case query.Answered:
		return r.Answer, r.Sources, nil
	case query.NoResults:
		return r.Answer, []*core.Source{}, nil
	case query.Failed:
		return "", nil, r
	default:
		return "", nil, fmt.Errorf("unexpected query result %T", result)
	}
}

// Search runs retrieval only and reports each stage to monitor.
func (e *Engine) Search(ctx context.Context, queryText string, topK int, monitor search.SearchMonitor) ([]*core.SearchHit, error) {
	if topK <= 0 {
		topK = e.config.Retrieval.TopK
	}
	return e.retriever.RetrieveWithMonitor(ctx, queryText, topK, monitor)
}

// ListDocuments returns one summary per indexed document.
func (e *Engine) ListDocuments(ctx context.Context) ([]*core.DocumentSummary, error) {
	return e.vectors.ListDocuments(ctx)
}

// Documents returns every document known to the registry, including the
// ones still in progress or failed.
func (e *Engine) Documents(ctx context.Context) ([]*core.Document, error) {
	return e.stores.Documents.ListDocuments(ctx)
}

// DocumentStatus returns the ingestion state of a document.
// Returns storage.ErrNotFound for unknown IDs.
func (e *Engine) DocumentStatus(ctx context.Context, documentID string) (*core.Document, error) {
	return e.stores.Documents.GetDocument(ctx, documentID)
}

// DeleteDocument removes the points and the registry entry of a document.
// Deleting an unknown document is not an error.
func (e *Engine) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return core.ErrEmptyDocumentID
	}
	if err := e.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := e.stores.Documents.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}
	e.logger.Info("document deleted", "document_id", documentID)
	return nil
}

// ClearMemory drops the conversation history of userID, or of every user
// when userID is empty or AllUsers. It returns the number of turns dropped.
func (e *Engine) ClearMemory(userID string) int {
	if userID == "" || userID == AllUsers {
		return e.memory.ClearAll()
	}
	return e.memory.Clear(userID)
}

// MemoryStats reports how many turns each user has in memory.
func (e *Engine) MemoryStats() memory.Stats {
	return e.memory.Stats()
}

// Stats reports the vector store state.
func (e *Engine) Stats(ctx context.Context) (*core.StoreStats, error) {
	return e.vectors.Stats(ctx)
}

// Device reports the device the embedding gateway runs on. ok is false when
// the provider has no gateway.
func (e *Engine) Device() (device core.Device, ok bool) {
	g, ok := e.provider.(interface{ Gateway() *ai.Gateway })
	if !ok {
		return 0, false
	}
	return g.Gateway().Device(), true
}

// Reindex re-embeds every stored point with the current embedding model,
// writing progress to progress. An interrupted run resumes where it stopped.
// Queued ingestion finishes first.
func (e *Engine) Reindex(ctx context.Context, progress io.Writer) error {
	e.pipeline.Wait()
	r, err := reembed.NewReembedder(e.vectors, e.provider.Embedder(), reembed.DefaultConfig(), progress,
		reembed.WithCheckpoints(e.stores.Checkpoints),
		reembed.WithLogger(e.baseLogger))
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

// Wait blocks until queued ingestion work has finished.
func (e *Engine) Wait() {
	e.pipeline.Wait()
}

// Close waits for ingestion and releases the provider and stores.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.pipeline.Release()

		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
		if e.vectors != e.stores.Vectors {
			if err := e.vectors.Close(); err != nil {
				e.logger.Error("error closing vector store", "err", err)
			}
		}
		if err := e.stores.Close(); err != nil {
			e.logger.Error("error closing database", "err", err)
			e.closeErr = err
		}
	})
	return e.closeErr
}
