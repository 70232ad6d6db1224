package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/quaero/ai/mock"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever returns canned hits
type stubRetriever struct {
	hits  []*core.SearchHit
	err   error
	calls int
	topK  int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, topK int) ([]*core.SearchHit, error) {
	s.calls++
	s.topK = topK
	return s.hits, s.err
}

func hit(doc string, chunk int, score float32) *core.SearchHit {
	return &core.SearchHit{
		PointID: core.PointID(doc, chunk),
		Score:   score,
		Metadata: &core.PointMetadata{
			DocumentID: doc,
			Filename:   doc + ".pdf",
			ChunkIndex: chunk,
			Text:       doc + " passage " + string(rune('A'+chunk)),
		},
	}
}

func newTestOrchestrator(t *testing.T, r Retriever, g *mock.MockGenerator, opts ...Option) (*Orchestrator, *memory.InMemory) {
	t.Helper()
	mem, err := memory.NewInMemory()
	require.NoError(t, err)
	o, err := NewOrchestrator(r, g, mem, opts...)
	require.NoError(t, err)
	return o, mem
}

func TestNewOrchestrator(t *testing.T) {
	mem, err := memory.NewInMemory()
	require.NoError(t, err)
	gen := mock.NewMockGenerator("ok")
	ret := &stubRetriever{}

	t.Run("valid configuration", func(t *testing.T) {
		o, err := NewOrchestrator(ret, gen, mem)
		require.NoError(t, err)
		assert.Equal(t, DefaultHistoryTurns, o.historyTurns)
	})

	t.Run("history turns are clamped", func(t *testing.T) {
		for in, want := range map[int]int{0: 3, 3: 3, 4: 4, 5: 5, 9: 5} {
			o, err := NewOrchestrator(ret, gen, mem, WithHistoryTurns(in))
			require.NoError(t, err)
			assert.Equal(t, want, o.historyTurns, "input %d", in)
		}
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewOrchestrator(nil, gen, mem)
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewOrchestrator(ret, nil, mem)
		assert.Equal(t, ErrGeneratorRequired, err)
	})

	t.Run("nil memory", func(t *testing.T) {
		_, err := NewOrchestrator(ret, gen, nil)
		assert.Equal(t, ErrMemoryRequired, err)
	})
}

func TestAnswer_Answered(t *testing.T) {
	ret := &stubRetriever{hits: []*core.SearchHit{
		hit("contract", 1, 0.81234),
		hit("contract", 0, 0.62),
		hit("passport", 0, 0.7),
	}}
	gen := mock.NewMockGenerator("The contract ends in March.")
	o, mem := newTestOrchestrator(t, ret, gen)

	res := o.Answer(context.Background(), Request{UserID: "alice", Query: "When does the contract end?", TopK: 5, Temperature: 0.7})

	answered, ok := res.(Answered)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "The contract ends in March.", answered.Answer)
	assert.Equal(t, 5, ret.topK)

	require.Len(t, answered.Sources, 2)
	assert.Equal(t, "contract", answered.Sources[0].DocumentID)
	assert.Equal(t, 1, answered.Sources[0].ChunkIndex)
	assert.InDelta(t, 0.812, answered.Sources[0].SimilarityScore, 1e-6)
	assert.Equal(t, "passport", answered.Sources[1].DocumentID)

	prompt := gen.LastPrompt()
	assert.Contains(t, prompt, "[1] (contract.pdf - relevance: 81.23%)\ncontract passage B")
	assert.Contains(t, prompt, "[3] (passport.pdf - relevance: 70.00%)\npassport passage A")
	assert.Contains(t, prompt, "QUESTION: When does the contract end?")
	assert.NotContains(t, prompt, historyHeader)

	history := mem.Get("alice")
	require.Len(t, history, 1)
	assert.Equal(t, "When does the contract end?", history[0].User)
	assert.Equal(t, "The contract ends in March.", history[0].Assistant)
}

func TestAnswer_NoResultsSkipsGeneration(t *testing.T) {
	ret := &stubRetriever{}
	gen := mock.NewMockGenerator("should not be used")
	o, mem := newTestOrchestrator(t, ret, gen)

	res := o.Answer(context.Background(), Request{UserID: "alice", Query: "anything?", TopK: 5})

	noResults, ok := res.(NoResults)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, NoResultsAnswer, noResults.Answer)
	assert.Zero(t, gen.CallCount())

	history := mem.Get("alice")
	require.Len(t, history, 1)
	assert.Equal(t, NoResultsAnswer, history[0].Assistant)
}

func TestAnswer_HistoryHasOnlyRecentUserQuestions(t *testing.T) {
	ret := &stubRetriever{hits: []*core.SearchHit{hit("doc", 0, 0.9)}}
	gen := mock.NewMockGenerator("fresh answer")
	o, mem := newTestOrchestrator(t, ret, gen)

	for _, q := range []string{"first?", "second?", "third?", "fourth?"} {
		mem.Append("alice", core.ConversationTurn{User: q, Assistant: "SECRET " + q})
	}

	res := o.Answer(context.Background(), Request{UserID: "alice", Query: "fifth?"})
	require.IsType(t, Answered{}, res)

	prompt := gen.LastPrompt()
	assert.Contains(t, prompt, historyHeader+"1. second?\n2. third?\n3. fourth?\n")
	assert.NotContains(t, prompt, "first?")
	assert.NotContains(t, prompt, "SECRET")
}

func TestAnswer_DefaultUser(t *testing.T) {
	ret := &stubRetriever{hits: []*core.SearchHit{hit("doc", 0, 0.9)}}
	o, mem := newTestOrchestrator(t, ret, mock.NewMockGenerator("a"))

	o.Answer(context.Background(), Request{Query: "q"})
	assert.Len(t, mem.Get(memory.DefaultUserID), 1)
}

func TestAnswer_Failures(t *testing.T) {
	t.Run("retrieval", func(t *testing.T) {
		storeErr := errors.Join(core.ErrStore, errors.New("connection refused"))
		gen := mock.NewMockGenerator("a")
		o, mem := newTestOrchestrator(t, &stubRetriever{err: storeErr}, gen)

		res := o.Answer(context.Background(), Request{UserID: "alice", Query: "q"})
		failed, ok := res.(Failed)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, StageRetrieval, failed.Stage)
		assert.ErrorIs(t, failed, core.ErrStore)
		assert.Zero(t, gen.CallCount())
		assert.Nil(t, mem.Get("alice"))
	})

	t.Run("generation", func(t *testing.T) {
		gen := mock.NewMockGenerator("")
		gen.GenerateFunc = func(ctx context.Context, prompt string, temperature float64) (string, error) {
			return "", errors.New("model unavailable")
		}
		o, mem := newTestOrchestrator(t, &stubRetriever{hits: []*core.SearchHit{hit("doc", 0, 0.9)}}, gen)

		res := o.Answer(context.Background(), Request{UserID: "alice", Query: "q"})
		failed, ok := res.(Failed)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, StageGeneration, failed.Stage)
		assert.ErrorIs(t, failed, core.ErrGeneration)
		assert.Contains(t, failed.Error(), "model unavailable")
		assert.Nil(t, mem.Get("alice"))
	})

	t.Run("temperature", func(t *testing.T) {
		ret := &stubRetriever{}
		o, _ := newTestOrchestrator(t, ret, mock.NewMockGenerator("a"))

		res := o.Answer(context.Background(), Request{Query: "q", Temperature: 3})
		failed, ok := res.(Failed)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, StageRequest, failed.Stage)
		assert.ErrorIs(t, failed, ErrInvalidTemperature)
		assert.Zero(t, ret.calls)
	})
}

func TestDedupSources(t *testing.T) {
	sources := DedupSources([]*core.SearchHit{
		hit("a", 0, 0.5),
		hit("b", 2, 0.9),
		hit("a", 3, 0.95),
		hit("c", 0, 0.4),
		hit("b", 1, 0.6),
	})

	require.Len(t, sources, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sources[0].DocumentID, sources[1].DocumentID, sources[2].DocumentID})
	assert.Equal(t, 3, sources[0].ChunkIndex)
	assert.Equal(t, 2, sources[1].ChunkIndex)
	assert.Equal(t, "a.pdf", sources[0].Filename)
	assert.Empty(t, DedupSources(nil))
}

func TestFormatContext(t *testing.T) {
	ctx := formatContext([]*core.SearchHit{
		hit("a", 0, 0.5),
		{Score: 0.25},
	})
	parts := strings.Split(ctx, contextSeparator)
	require.Len(t, parts, 2)
	assert.Equal(t, "[1] (a.pdf - relevance: 50.00%)\na passage A", parts[0])
	assert.Equal(t, "[2] (unknown - relevance: 25.00%)\n", parts[1])
}

func TestFormatHistory(t *testing.T) {
	assert.Empty(t, formatHistory(nil, 3))

	turns := []core.ConversationTurn{{User: "one"}, {User: ""}, {User: "three"}}
	assert.Equal(t, historyHeader+"1. one\n3. three\n\n", formatHistory(turns, 3))
	assert.Equal(t, historyHeader+"2. three\n\n", formatHistory(turns, 2))
}
