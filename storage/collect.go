package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/poiesic/quaero/core"
)

// ScrollPageSize is the page size used when walking a whole store.
const ScrollPageSize = 256

// ErrScrollStalled is returned when a store hands back the cursor it was given.
var ErrScrollStalled = errors.New("scroll cursor did not advance")

// ScrollAll calls fn with every page of points in s, starting at cursor.
// fn receives the cursor of the page after the current one, which is empty
// on the last page. Iteration stops at the first error.
func ScrollAll(ctx context.Context, s Scroller, cursor string, pageSize int, fn func(points []*core.IndexedPoint, next string) error) error {
	if pageSize <= 0 {
		pageSize = ScrollPageSize
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		points, next, err := s.Scroll(ctx, cursor, pageSize)
		if err != nil {
			return err
		}
		if err := fn(points, next); err != nil {
			return err
		}
		if next == "" {
			return nil
		}
		if next == cursor {
			return fmt.Errorf("%w: %q", ErrScrollStalled, cursor)
		}
		cursor = next
	}
}

// CollectDocuments scrolls the whole store and aggregates points per
// document ID. The earliest upload date wins. Results are sorted by filename
// and then document ID.
func CollectDocuments(ctx context.Context, s Scroller) ([]*core.DocumentSummary, error) {
	byID := make(map[string]*core.DocumentSummary)
	err := ScrollAll(ctx, s, "", ScrollPageSize, func(points []*core.IndexedPoint, _ string) error {
		for _, p := range points {
			md := p.Metadata
			summary, ok := byID[md.DocumentID]
			if !ok {
				summary = &core.DocumentSummary{
					DocumentID: md.DocumentID,
					Filename:   md.Filename,
					UploadDate: md.UploadDate,
				}
				byID[md.DocumentID] = summary
			}
			summary.ChunkCount++
			if md.UploadDate.Before(summary.UploadDate) {
				summary.UploadDate = md.UploadDate
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*core.DocumentSummary, 0, len(byID))
	for _, summary := range byID {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Filename != out[j].Filename {
			return out[i].Filename < out[j].Filename
		}
		return out[i].DocumentID < out[j].DocumentID
	})
	return out, nil
}
