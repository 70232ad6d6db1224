package search

import (
	"testing"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitsWithScores(scores ...float32) []*core.SearchHit {
	hits := make([]*core.SearchHit, len(scores))
	for i, s := range scores {
		hits[i] = &core.SearchHit{
			PointID:  core.ID(i + 1),
			Score:    s,
			Metadata: &core.PointMetadata{DocumentID: "doc", ChunkIndex: i},
		}
	}
	return hits
}

func scoresOf(hits []*core.SearchHit) []float32 {
	out := make([]float32, len(hits))
	for i, h := range hits {
		out[i] = h.Score
	}
	return out
}

func TestRanker_Rank(t *testing.T) {
	tests := []struct {
		name   string
		ranker Ranker
		scores []float32
		want   []float32
	}{
		{"empty input", DefaultRankerConfig(), nil, nil},
		{"single hit", DefaultRankerConfig(), []float32{0.31}, []float32{0.31}},
		{"no dominant hit", DefaultRankerConfig(), []float32{0.48, 0.35, 0.32}, []float32{0.48, 0.35, 0.32}},
		{"small gap", DefaultRankerConfig(), []float32{0.80, 0.75, 0.33}, []float32{0.80, 0.75, 0.33}},
		{"gap at threshold is not enough", Ranker{Dominance: 0.5, Gap: 0.25, Cutoff: 0.45}, []float32{0.75, 0.5, 0.31}, []float32{0.75, 0.5, 0.31}},
		{"dominant hit drops weak tail", DefaultRankerConfig(), []float32{0.82, 0.46, 0.40, 0.31}, []float32{0.82, 0.46}},
		{"scenario D keeps hits above cutoff", ConservativeRankerConfig(), []float32{0.70, 0.50}, []float32{0.70, 0.50}},
		{"conservative drops below cutoff", ConservativeRankerConfig(), []float32{0.70, 0.39, 0.35}, []float32{0.70}},
		{"top hit survives when cutoff is above it", Ranker{Dominance: 0.5, Gap: 0.1, Cutoff: 0.9}, []float32{0.7, 0.4}, []float32{0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := hitsWithScores(tt.scores...)
			got := tt.ranker.Rank(in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.InDeltaSlice(t, tt.want, scoresOf(got), 1e-6)
		})
	}
}

func TestRanker_NeverEmptiesNonEmptyInput(t *testing.T) {
	r := Ranker{Dominance: 0, Gap: 0, Cutoff: 1}
	for n := 1; n <= 5; n++ {
		scores := make([]float32, n)
		for i := range scores {
			scores[i] = 0.9 - float32(i)*0.1
		}
		got := r.Rank(hitsWithScores(scores...))
		require.NotEmpty(t, got)
		assert.InDelta(t, 0.9, got[0].Score, 1e-6)
	}
}

func TestRanker_DoesNotMutateInput(t *testing.T) {
	in := hitsWithScores(0.9, 0.41, 0.35)
	snapshot := append([]*core.SearchHit(nil), in...)

	got := DefaultRankerConfig().Rank(in)
	require.Len(t, got, 1)
	assert.Equal(t, snapshot, in)
	assert.Same(t, in[0], got[0])
}

func TestRanker_Explain(t *testing.T) {
	_, d := DefaultRankerConfig().Explain(hitsWithScores(0.82, 0.46, 0.40, 0.31))
	assert.True(t, d.Triggered)
	assert.InDelta(t, 0.82, d.Top, 1e-6)
	assert.InDelta(t, 0.46, d.Second, 1e-6)
	assert.InDelta(t, 0.36, d.Gap, 1e-6)
	assert.Equal(t, 2, d.Kept)
	assert.Equal(t, 2, d.Dropped)

	_, d = DefaultRankerConfig().Explain(hitsWithScores(0.48, 0.35))
	assert.False(t, d.Triggered)
	assert.Equal(t, 2, d.Kept)
	assert.Zero(t, d.Dropped)
}

func TestRanker_Validate(t *testing.T) {
	assert.NoError(t, DefaultRankerConfig().Validate())
	assert.NoError(t, ConservativeRankerConfig().Validate())
	assert.ErrorIs(t, Ranker{Dominance: 1.2}.Validate(), ErrInvalidThreshold)
	assert.ErrorIs(t, Ranker{Cutoff: -0.1}.Validate(), ErrInvalidThreshold)
}
