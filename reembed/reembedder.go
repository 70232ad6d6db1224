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
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

// CheckpointName is the key under which run progress is saved.
const CheckpointName = "reembed"

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of points to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of points)
	ReportInterval int

	// Retry bounds the retries of each embedding call
	Retry RetryPolicy
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		Retry: RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
		},
	}
}

// Reembedder orchestrates the reembedding of all points in a vector store.
type Reembedder struct {
	store       storage.VectorStore
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *PointIterator
	logger      *slog.Logger
}

// Option configures a Reembedder.
type Option func(*Reembedder) error

// WithCheckpoints enables resumable runs backed by repo.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(r *Reembedder) error {
		r.checkpoints = repo
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewReembedder(store storage.VectorStore, embedder ai.Embedder, config *Config, progress io.Writer, opts ...Option) (*Reembedder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Retry.MaxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	r := &Reembedder{
		store:     store,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(store, embedder, config.Retry),
		iterator:  NewPointIterator(store, config.BatchSize),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "reembed")
	return r, nil
}

// Run re-embeds every point in the store. If a checkpoint from an earlier,
// interrupted run exists, it resumes from there. The checkpoint is removed
// once the whole store has been processed.
func (r *Reembedder) Run(ctx context.Context) error {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read store stats: %w", err)
	}

	total := stats.PointCount
	if total == 0 {
		fmt.Fprintf(r.progress, "No points found in store (0 points)\n")
		return r.clearCheckpoint(ctx)
	}

	cursor, done, err := r.resumePoint(ctx)
	if err != nil {
		return err
	}
	if done > 0 {
		fmt.Fprintf(r.progress, "Resuming reembedding after %d points\n", done)
	}
	fmt.Fprintf(r.progress, "Starting reembedding of %d points (batch size: %d)\n", total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval, "points")
	tracker.Start(done)

	processed := done
	err = r.iterator.ForEach(ctx, cursor, func(points []*core.IndexedPoint, next string) error {
		if err := r.processor.Process(ctx, points); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(points)
		tracker.Update(processed)
		r.saveCheckpoint(ctx, next, processed)
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding stopped", "processed", processed, "err", err)
		return err
	}

	tracker.Finish()
	if err := r.clearCheckpoint(ctx); err != nil {
		return err
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d points in %v (%.1f points/sec)\n",
		tracker.Processed(), elapsed.Round(time.Second), float64(tracker.Processed())/max(elapsed.Seconds(), 1e-9))
	r.logger.Info("reembedding complete", "points", processed, "elapsed", elapsed)
	return nil
}

func (r *Reembedder) resumePoint(ctx context.Context) (string, int, error) {
	if r.checkpoints == nil {
		return "", 0, nil
	}
	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, CheckpointName)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint == nil {
		return "", 0, nil
	}
	r.logger.Info("resuming from checkpoint", "cursor", checkpoint.Cursor, "processed", checkpoint.Processed)
	return checkpoint.Cursor, checkpoint.Processed, nil
}

// saveCheckpoint records the cursor of the next page. Failures are logged;
// they only cost a longer resume.
func (r *Reembedder) saveCheckpoint(ctx context.Context, next string, processed int) {
	if r.checkpoints == nil || next == "" {
		return
	}
	err := r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		Name:      CheckpointName,
		Cursor:    next,
		Processed: processed,
	})
	if err != nil {
		r.logger.Warn("failed to save checkpoint", "cursor", next, "err", err)
	}
}

func (r *Reembedder) clearCheckpoint(ctx context.Context) error {
	if r.checkpoints == nil {
		return nil
	}
	if err := r.checkpoints.DeleteCheckpoint(ctx, CheckpointName); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}
