package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

// DefaultCollection names the point set reported by Stats.
const DefaultCollection = "documents"

// VectorStore implements storage.VectorStore on BadgerDB.
// Points live under point:<id> as mus-encoded records, with a docpt index for
// delete-by-document. Search is an exhaustive scan.
type VectorStore struct {
	backend    *Backend
	collection string
	logger     *slog.Logger

	mu        sync.RWMutex
	dimension int
}

var _ storage.VectorStore = (*VectorStore)(nil)

// Option configures a VectorStore.
type Option func(*VectorStore) error

// WithDimension fixes the vector dimension. Inserts and searches with any
// other dimension are rejected. Without it the dimension is taken from the
// first stored vector.
func WithDimension(dimension int) Option {
	return func(s *VectorStore) error {
		if dimension <= 0 {
			return fmt.Errorf("dimension must be positive, got %d", dimension)
		}
		s.dimension = dimension
		return nil
	}
}

// WithCollection sets the collection name reported by Stats.
func WithCollection(name string) Option {
	return func(s *VectorStore) error {
		if name == "" {
			return errors.New("collection name must not be empty")
		}
		s.collection = name
		return nil
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *VectorStore) error {
		s.logger = logger
		return nil
	}
}

// NewVectorStore creates a VectorStore on backend.
func NewVectorStore(backend *Backend, opts ...Option) (*VectorStore, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	s := &VectorStore{
		backend:    backend,
		collection: DefaultCollection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "badger-vector-store", "collection", s.collection)
	return s, nil
}

// Close is a no-op. The backend is closed by whoever opened it.
func (s *VectorStore) Close() error {
	return nil
}

// Insert upserts points in batches of storage.InsertBatchSize. Each batch
// is flushed to badger before the next one starts.
func (s *VectorStore) Insert(ctx context.Context, points ...*core.IndexedPoint) error {
	if err := s.checkOpen(); err != nil {
		return storage.Wrap("insert", err)
	}
	if len(points) == 0 {
		return nil
	}

	dimension := s.Dimension()
	if dimension == 0 && points[0] != nil {
		dimension = len(points[0].Vector)
	}
	for _, p := range points {
		if err := core.ValidatePoint(p); err != nil {
			return storage.Wrap("insert", err)
		}
		if len(p.Vector) != dimension {
			return storage.Wrap("insert", fmt.Errorf("%w: vector has %d dimensions, collection has %d",
				storage.ErrInvalidQuery, len(p.Vector), dimension))
		}
	}

	for start := 0; start < len(points); start += storage.InsertBatchSize {
		if err := ctx.Err(); err != nil {
			return storage.Wrap("insert", err)
		}
		end := min(start+storage.InsertBatchSize, len(points))
		if err := s.insertBatch(points[start:end]); err != nil {
			return storage.Wrap("insert", err)
		}
	}

	s.mu.Lock()
	if s.dimension == 0 {
		s.dimension = dimension
	}
	s.mu.Unlock()

	s.logger.Debug("points inserted", "count", len(points))
	return nil
}

func (s *VectorStore) insertBatch(points []*core.IndexedPoint) error {
	return s.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for _, p := range points {
			if err := wb.Set(makePointKey(p.ID), storage.MarshalPoint(p)); err != nil {
				return err
			}
			if err := wb.Set(makeDocPointKey(p.Metadata.DocumentID, p.ID), storage.MarshalID(p.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Search scans every point, scoring each with a dot product against vector.
// Stored vectors are unit length, so the dot product is the cosine similarity.
func (s *VectorStore) Search(ctx context.Context, vector []float32, topK int, opts ...storage.SearchOption) ([]*core.SearchHit, error) {
	if err := s.checkOpen(); err != nil {
		return nil, storage.Wrap("search", err)
	}
	if len(vector) == 0 {
		return nil, storage.Wrap("search", fmt.Errorf("%w: %w", storage.ErrInvalidQuery, core.ErrEmptyVector))
	}
	if topK <= 0 {
		return nil, storage.Wrap("search", fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK))
	}
	if dimension := s.Dimension(); dimension != 0 && len(vector) != dimension {
		return nil, storage.Wrap("search", fmt.Errorf("%w: query has %d dimensions, collection has %d",
			storage.ErrInvalidQuery, len(vector), dimension))
	}
	options := storage.ApplySearchOptions(opts...)

	var hits []*core.SearchHit
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(pointPrefix)
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var point *core.IndexedPoint
			err := iter.Item().Value(func(val []byte) error {
				var err error
				point, err = storage.UnmarshalPoint(val)
				return err
			})
			if err != nil {
				return err
			}

			score := core.DotProduct(vector, point.Vector)
			if options.HasScoreThreshold && score < options.ScoreThreshold {
				continue
			}
			hits = append(hits, &core.SearchHit{
				PointID:  point.ID,
				Score:    score,
				Metadata: &point.Metadata,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap("search", err)
	}

	// Stable so equal scores keep key order.
	slices.SortStableFunc(hits, func(a, b *core.SearchHit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteByDocument removes all points of documentID along with their index entries.
func (s *VectorStore) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := s.checkOpen(); err != nil {
		return storage.Wrap("delete", err)
	}
	if documentID == "" {
		return storage.Wrap("delete", core.ErrEmptyDocumentID)
	}

	var indexKeys [][]byte
	var ids []core.ID
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = makePartialDocPointKey(documentID)
		iterOpts.PrefetchValues = false
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var id core.ID
			err := item.Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			indexKeys = append(indexKeys, item.KeyCopy(nil))
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return storage.Wrap("delete", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return storage.Wrap("delete", err)
	}

	err = s.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for i, id := range ids {
			if err := wb.Delete(makePointKey(id)); err != nil {
				return err
			}
			if err := wb.Delete(indexKeys[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Wrap("delete", err)
	}

	s.logger.Info("document points deleted", "document_id", documentID, "count", len(ids))
	return nil
}

// Scroll returns up to limit points in ID order starting at cursor. The
// cursor is the decimal ID of the first point to return.
func (s *VectorStore) Scroll(ctx context.Context, cursor string, limit int) ([]*core.IndexedPoint, string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, "", storage.Wrap("scroll", err)
	}
	if limit <= 0 {
		limit = storage.ScrollPageSize
	}

	start := []byte(pointPrefix)
	if cursor != "" {
		id, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, "", storage.Wrap("scroll", fmt.Errorf("%w: bad cursor %q", storage.ErrInvalidQuery, cursor))
		}
		start = makePointKey(core.ID(id))
	}

	var points []*core.IndexedPoint
	var next string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(pointPrefix)
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Seek(start); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if len(points) == limit {
				next = strconv.FormatUint(uint64(pointIDFromKey(item.Key())), 10)
				return nil
			}
			err := item.Value(func(val []byte) error {
				point, err := storage.UnmarshalPoint(val)
				if err != nil {
					return err
				}
				points = append(points, point)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, "", storage.Wrap("scroll", err)
	}
	return points, next, nil
}

// ListDocuments aggregates stored points per document.
func (s *VectorStore) ListDocuments(ctx context.Context) ([]*core.DocumentSummary, error) {
	docs, err := storage.CollectDocuments(ctx, s)
	if err != nil {
		return nil, storage.Wrap("list documents", err)
	}
	return docs, nil
}

// Stats counts the stored points.
func (s *VectorStore) Stats(ctx context.Context) (*core.StoreStats, error) {
	if err := s.checkOpen(); err != nil {
		return nil, storage.Wrap("stats", err)
	}

	stats := &core.StoreStats{
		Collection:      s.collection,
		VectorDimension: s.Dimension(),
		Health:          core.HealthHealthy,
	}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(pointPrefix)
		iterOpts.PrefetchValues = false
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if stats.PointCount == 0 && stats.VectorDimension == 0 {
				err := iter.Item().Value(func(val []byte) error {
					point, err := storage.UnmarshalPoint(val)
					if err != nil {
						return err
					}
					stats.VectorDimension = len(point.Vector)
					return nil
				})
				if err != nil {
					return err
				}
			}
			stats.PointCount++
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap("stats", err)
	}
	return stats, nil
}

// Dimension returns the configured or inferred vector dimension, or 0 if unknown.
func (s *VectorStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

func (s *VectorStore) checkOpen() error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}
