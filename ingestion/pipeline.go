package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/chunker"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

const (
	// DefaultQueueSize is the number of submissions allowed to wait for a worker.
	DefaultQueueSize = 64

	// DefaultChunkSize is the maximum chunk length in runes.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of runes shared by adjacent chunks.
	DefaultChunkOverlap = 100
)

// Request describes one document to ingest.
type Request struct {
	DocumentID string
	Filename   string
	Text       string
}

// Pipeline orchestrates the ingestion of documents into a vector store.
// Documents are processed concurrently on a bounded worker pool.
type Pipeline struct {
	store      storage.VectorStore
	documents  storage.DocumentRepository
	pool       *ants.Pool
	processors []processor
	logger     *slog.Logger

	poolSize     int
	queueSize    int
	nonBlocking  bool
	chunkSize    int
	chunkOverlap int
	splitter     *chunker.Splitter

	// mu orders the closed check against wg.Add so Release never races
	// a concurrent submission.
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithQueueSize sets how many submissions may block waiting for a free
// worker before further submissions fail with ErrQueueFull. Zero removes
// the limit. Default is DefaultQueueSize.
func WithQueueSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 0 {
			return fmt.Errorf("queue size must not be negative, got %d", size)
		}
		p.queueSize = size
		return nil
	}
}

// WithNonBlocking makes submissions fail with ErrQueueFull instead of
// waiting when every worker is busy.
func WithNonBlocking(nonBlocking bool) Option {
	return func(p *Pipeline) error {
		p.nonBlocking = nonBlocking
		return nil
	}
}

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return chunker.ErrInvalidChunkSize
		}
		p.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks in runes.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap < 0 {
			return chunker.ErrInvalidOverlap
		}
		p.chunkOverlap = overlap
		return nil
	}
}

// WithSplitter replaces the default text splitter.
func WithSplitter(splitter *chunker.Splitter) Option {
	return func(p *Pipeline) error {
		if splitter == nil {
			return errors.New("splitter must not be nil")
		}
		p.splitter = splitter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// antsLoggerAdapter adapts slog.Logger to the ants.Logger interface.
type antsLoggerAdapter struct {
	logger *slog.Logger
}

var _ ants.Logger = (*antsLoggerAdapter)(nil)

func (al *antsLoggerAdapter) Printf(format string, args ...any) {
	al.logger.Info(fmt.Sprintf(format, args...))
}

// NewPipeline creates a new ingestion pipeline. A nil classifier treats
// every document as generic.
func NewPipeline(
	store storage.VectorStore,
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	classifier ai.Classifier,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	p := &Pipeline{
		store:        store,
		documents:    documents,
		logger:       slog.Default(),
		poolSize:     poolSize,
		queueSize:    DefaultQueueSize,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.chunkOverlap >= p.chunkSize {
		return nil, chunker.ErrInvalidOverlap
	}
	if p.splitter == nil {
		splitter, err := chunker.New()
		if err != nil {
			return nil, err
		}
		p.splitter = splitter
	}
	p.logger = p.logger.With("component", "ingestion")

	embeddingProc, err := newEmbeddingProcessor(embedder, p.logger)
	if err != nil {
		return nil, err
	}
	p.processors = []processor{
		extractionProcessor{},
		&classificationProcessor{classifier: classifier, logger: p.logger.With("processor", "classification")},
		&chunkingProcessor{splitter: p.splitter, chunkSize: p.chunkSize, overlap: p.chunkOverlap},
		embeddingProc,
		&storageProcessor{store: store},
	}

	pool, err := ants.NewPool(p.poolSize,
		ants.WithMaxBlockingTasks(p.queueSize),
		ants.WithNonblocking(p.nonBlocking),
		ants.WithLogger(&antsLoggerAdapter{logger: p.logger}),
		ants.WithPanicHandler(func(v any) {
			// run recovers stage panics; this only catches failures outside it.
			p.logger.Error("ingestion worker panicked", "panic", v)
		}),
	)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// StartIngestion records the document as received and queues it for
// processing. It returns once the work is queued; the outcome is observable
// through the document repository.
func (p *Pipeline) StartIngestion(ctx context.Context, req Request) error {
	if !p.acquire() {
		return ErrPipelineClosed
	}
	doc, err := p.receive(ctx, req)
	if err != nil {
		p.wg.Done()
		return err
	}

	// The work outlives the caller's request.
	workCtx := context.WithoutCancel(ctx)
	err = p.pool.Submit(func() {
		defer p.wg.Done()
		_ = p.run(workCtx, doc, req.Text)
	})
	if err == nil {
		return nil
	}

	p.wg.Done()
	if derr := p.documents.DeleteDocument(ctx, doc.ID); derr != nil {
		p.logger.Warn("failed to drop rejected document", "document_id", doc.ID, "err", derr)
	}
	switch {
	case errors.Is(err, ants.ErrPoolOverload):
		return ErrQueueFull
	case errors.Is(err, ants.ErrPoolClosed):
		return ErrPipelineClosed
	default:
		return err
	}
}

// Ingest runs every stage synchronously and returns the final document.
// A stage failure is returned as a *StageError alongside the failed document.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*core.Document, error) {
	if !p.acquire() {
		return nil, ErrPipelineClosed
	}
	defer p.wg.Done()
	doc, err := p.receive(ctx, req)
	if err != nil {
		return nil, err
	}
	err = p.run(ctx, doc, req.Text)
	return doc, err
}

// Wait blocks until all queued and running documents have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release waits for in-flight work and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	p.pool.Release()
}

// Running returns the number of workers currently processing documents.
func (p *Pipeline) Running() int {
	return p.pool.Running()
}

// Waiting returns the number of submissions blocked waiting for a worker.
func (p *Pipeline) Waiting() int {
	return p.pool.Waiting()
}

// acquire registers one unit of in-flight work. It reports false once the
// pipeline is closed.
func (p *Pipeline) acquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

func (p *Pipeline) receive(ctx context.Context, req Request) (*core.Document, error) {
	if req.DocumentID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, core.ErrEmptyDocumentID)
	}
	doc := &core.Document{
		ID:         req.DocumentID,
		Filename:   req.Filename,
		State:      core.DocumentReceived,
		ReceivedAt: time.Now().UTC(),
	}
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("recording document: %w", err)
	}
	p.logger.Info("document received", "document_id", doc.ID, "filename", doc.Filename, "bytes", len(req.Text))
	return doc, nil
}

// run executes the stages in order, recording state transitions and the
// first failure. A panicking stage fails the document like an error would.
func (p *Pipeline) run(ctx context.Context, doc *core.Document, text string) (err error) {
	j := &job{doc: doc, text: text}
	var current core.Stage
	defer func() {
		if r := recover(); r != nil {
			err = p.fail(ctx, doc, current, fmt.Errorf("%w: %v", ErrStagePanicked, r))
		}
	}()
	for _, proc := range p.processors {
		current = proc.stage()
		before, after := proc.states()
		p.transition(ctx, doc, before)
		if err := proc.process(ctx, j); err != nil {
			return p.fail(ctx, doc, proc.stage(), err)
		}
		p.transition(ctx, doc, after)
	}

	doc.ChunkCount = len(j.chunks)
	p.transition(ctx, doc, core.DocumentIndexed)
	p.logger.Info("document indexed", "document_id", doc.ID, "chunks", doc.ChunkCount, "document_type", doc.DocumentType)
	return nil
}

// fail records the failure and drops any points the document still has,
// including those left by an earlier successful ingestion under the same ID.
func (p *Pipeline) fail(ctx context.Context, doc *core.Document, stage core.Stage, err error) error {
	p.logger.Error("document ingestion failed", "document_id", doc.ID, "stage", stage, "err", err)
	if derr := p.store.DeleteByDocument(ctx, doc.ID); derr != nil {
		p.logger.Warn("failed to drop points of failed document", "document_id", doc.ID, "err", derr)
	}
	doc.State = core.DocumentFailed
	doc.FailedStage = stage
	doc.Error = err.Error()
	if perr := p.documents.PutDocument(ctx, doc); perr != nil {
		p.logger.Warn("failed to record document failure", "document_id", doc.ID, "err", perr)
	}
	return &StageError{DocumentID: doc.ID, Stage: stage, Err: err}
}

// transition records a state change. Registry failures are logged only;
// they never stop ingestion.
func (p *Pipeline) transition(ctx context.Context, doc *core.Document, state core.DocumentState) {
	if state == "" {
		return
	}
	doc.State = state
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		p.logger.Warn("failed to record document state", "document_id", doc.ID, "state", state, "err", err)
	}
}
