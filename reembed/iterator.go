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


package reembed

import (
	"context"

	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

const (
	// DefaultBatchSize is the default number of points fetched per page
	DefaultBatchSize = 100
)

// PointIterator walks every point of a store in pages.
type PointIterator struct {
	scroller  storage.Scroller
	batchSize int
}

// NewPointIterator creates a new point iterator.
// batchSize: number of points per page; non-positive values use DefaultBatchSize
func NewPointIterator(scroller storage.Scroller, batchSize int) *PointIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &PointIterator{
		scroller:  scroller,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each page starting at cursor. fn also receives the
// cursor of the following page, empty after the last one. Iteration stops
// on the first error from fn, and context cancellation is checked between
// pages.
func (it *PointIterator) ForEach(ctx context.Context, cursor string, fn func(points []*core.IndexedPoint, next string) error) error {
	return storage.ScrollAll(ctx, it.scroller, cursor, it.batchSize, func(points []*core.IndexedPoint, next string) error {
		if len(points) == 0 {
			return nil
		}
		return fn(points, next)
	})
}
