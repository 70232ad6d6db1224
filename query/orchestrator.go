package query

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/memory"
	"github.com/tmc/langchaingo/prompts"
)

const (
	// DefaultHistoryTurns is the number of previous questions placed in the prompt.
	DefaultHistoryTurns = 3

	minHistoryTurns = 3
	maxHistoryTurns = 5
)

// Retriever finds the hits relevant to a question, already ranked.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]*core.SearchHit, error)
}

// Request is one question from one user.
type Request struct {
	UserID      string // Empty means memory.DefaultUserID
	Query       string
	TopK        int
	Temperature float64
}

// Orchestrator answers questions with retrieval-augmented generation.
type Orchestrator struct {
	retriever    Retriever
	generator    ai.Generator
	memory       memory.Store
	prompt       prompts.PromptTemplate
	historyTurns int
	logger       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithHistoryTurns sets how many previous questions are placed in the
// prompt. Values are clamped to [3, 5].
func WithHistoryTurns(n int) Option {
	return func(o *Orchestrator) error {
		o.historyTurns = min(max(n, minHistoryTurns), maxHistoryTurns)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new query orchestrator.
func NewOrchestrator(retriever Retriever, generator ai.Generator, store memory.Store, opts ...Option) (*Orchestrator, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if store == nil {
		return nil, ErrMemoryRequired
	}

	o := &Orchestrator{
		retriever:    retriever,
		generator:    generator,
		memory:       store,
		prompt:       newAnswerPrompt(),
		historyTurns: DefaultHistoryTurns,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "query")
	return o, nil
}

// Answer runs one question through retrieval and generation.
func (o *Orchestrator) Answer(ctx context.Context, req Request) Result {
	start := time.Now()
	userID := req.UserID
	if userID == "" {
		userID = memory.DefaultUserID
	}
	logger := o.logger.With("user_id", userID)

	if req.Temperature < 0 || req.Temperature > 2 {
		return Failed{Stage: StageRequest, Err: fmt.Errorf("%w: got %.2f", ErrInvalidTemperature, req.Temperature)}
	}

	history := o.memory.Get(userID)
	logger.Info("answering query", "top_k", req.TopK, "temperature", req.Temperature, "history_turns", len(history))

	hits, err := o.retriever.Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		logger.Error("retrieval failed", "err", err)
		return Failed{Stage: StageRetrieval, Err: err}
	}
	if len(hits) == 0 {
		logger.Warn("no relevant documents found")
		o.memory.Append(userID, core.ConversationTurn{User: req.Query, Assistant: NoResultsAnswer})
		return NoResults{Answer: NoResultsAnswer}
	}

	prompt, err := o.prompt.Format(map[string]any{
		"history_section": formatHistory(history, o.historyTurns),
		"context":         formatContext(hits),
		"question":        req.Query,
	})
	if err != nil {
		logger.Error("failed to render prompt", "err", err)
		return Failed{Stage: StagePrompt, Err: err}
	}

	answer, err := o.generator.Generate(ctx, prompt, req.Temperature)
	if err != nil {
		logger.Error("generation failed", "err", err)
		return Failed{Stage: StageGeneration, Err: fmt.Errorf("%w: %w", core.ErrGeneration, err)}
	}

	o.memory.Append(userID, core.ConversationTurn{User: req.Query, Assistant: answer})
	sources := DedupSources(hits)
	logger.Info("query answered",
		"hits", len(hits), "sources", len(sources), "answer_length", len(answer), "elapsed", time.Since(start))
	return Answered{Answer: answer, Sources: sources}
}

// DedupSources keeps the best-scoring hit of each document and returns
// the sources ordered by descending similarity.
func DedupSources(hits []*core.SearchHit) []*core.Source {
	best := make(map[string]*core.SearchHit, len(hits))
	order := make([]string, 0, len(hits))
	for _, hit := range hits {
		docID := ""
		if hit.Metadata != nil {
			docID = hit.Metadata.DocumentID
		}
		current, ok := best[docID]
		if !ok {
			order = append(order, docID)
		}
		if !ok || hit.Score > current.Score {
			best[docID] = hit
		}
	}

	sources := make([]*core.Source, 0, len(best))
	for _, docID := range order {
		sources = append(sources, core.SourceFromHit(best[docID]))
	}
	slices.SortStableFunc(sources, func(a, b *core.Source) int {
		return cmp.Compare(b.SimilarityScore, a.SimilarityScore)
	})
	return sources
}
