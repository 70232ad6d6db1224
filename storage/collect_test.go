package storage

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceScroller pages over a fixed slice using the index as cursor.
type sliceScroller struct {
	points []*core.IndexedPoint
	calls  int
	stall  bool
}

func (s *sliceScroller) Scroll(_ context.Context, cursor string, limit int) ([]*core.IndexedPoint, string, error) {
	s.calls++
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	if s.stall {
		return nil, "1", nil
	}
	end := min(start+limit, len(s.points))
	next := ""
	if end < len(s.points) {
		next = strconv.Itoa(end)
	}
	return s.points[start:end], next, nil
}

func point(doc, filename string, idx int, uploaded time.Time) *core.IndexedPoint {
	return &core.IndexedPoint{
		ID: core.PointID(doc, idx),
		Metadata: core.PointMetadata{
			DocumentID: doc,
			Filename:   filename,
			ChunkIndex: idx,
			UploadDate: uploaded,
		},
	}
}

func TestCollectDocuments(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	var points []*core.IndexedPoint
	for i := 0; i < 300; i++ {
		points = append(points, point("doc-b", "zeta.txt", i, late))
	}
	points = append(points,
		point("doc-a", "alpha.txt", 0, late),
		point("doc-a", "alpha.txt", 1, early),
		point("doc-c", "alpha.txt", 0, early),
	)
	s := &sliceScroller{points: points}

	docs, err := CollectDocuments(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, 2, s.calls, "walks past the first page")

	assert.Equal(t, "doc-a", docs[0].DocumentID)
	assert.Equal(t, 2, docs[0].ChunkCount)
	assert.True(t, early.Equal(docs[0].UploadDate))
	assert.Equal(t, "doc-c", docs[1].DocumentID)
	assert.Equal(t, "doc-b", docs[2].DocumentID)
	assert.Equal(t, 300, docs[2].ChunkCount)
}

func TestCollectDocuments_Empty(t *testing.T) {
	docs, err := CollectDocuments(context.Background(), &sliceScroller{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestScrollAll(t *testing.T) {
	t.Run("resumes from cursor", func(t *testing.T) {
		var points []*core.IndexedPoint
		for i := 0; i < 10; i++ {
			points = append(points, point("d", "f", i, time.Now()))
		}
		var seen []int
		err := ScrollAll(context.Background(), &sliceScroller{points: points}, "4", 3, func(page []*core.IndexedPoint, _ string) error {
			for _, p := range page {
				seen = append(seen, p.Metadata.ChunkIndex)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5, 6, 7, 8, 9}, seen)
	})

	t.Run("stalled cursor", func(t *testing.T) {
		err := ScrollAll(context.Background(), &sliceScroller{stall: true}, "1", 3, func([]*core.IndexedPoint, string) error { return nil })
		assert.ErrorIs(t, err, ErrScrollStalled)
	})

	t.Run("callback error stops iteration", func(t *testing.T) {
		boom := errors.New("boom")
		s := &sliceScroller{points: []*core.IndexedPoint{point("d", "f", 0, time.Now()), point("d", "f", 1, time.Now())}}
		err := ScrollAll(context.Background(), s, "", 1, func([]*core.IndexedPoint, string) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, s.calls)
	})
}
