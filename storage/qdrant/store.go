package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
	lcqdrant "github.com/tmc/langchaingo/vectorstores/qdrant"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "documents"

// ErrUnexpectedStatus is returned when Qdrant answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected qdrant response")

// Store implements storage.VectorStore over the Qdrant REST API.
// It holds no state besides its configuration and is safe for concurrent use.
type Store struct {
	baseURL    *url.URL
	apiKey     string
	collection string
	dimension  int
	logger     *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(s *Store) error {
		s.apiKey = key
		return nil
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) Option {
	return func(s *Store) error {
		if name == "" {
			return errors.New("collection name must not be empty")
		}
		s.collection = name
		return nil
	}
}

// WithDimension sets the vector size used by EnsureCollection.
func WithDimension(dimension int) Option {
	return func(s *Store) error {
		if dimension <= 0 {
			return fmt.Errorf("dimension must be positive, got %d", dimension)
		}
		s.dimension = dimension
		return nil
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// New creates a Store for the Qdrant server at rawURL.
func New(rawURL string, opts ...Option) (*Store, error) {
	if rawURL == "" {
		return nil, errors.New("qdrant url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}
	s := &Store{
		baseURL:    u,
		collection: DefaultCollection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "qdrant-vector-store", "collection", s.collection)
	return s, nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// EnsureCollection creates the collection with cosine distance when it does
// not exist yet. It requires WithDimension.
func (s *Store) EnsureCollection(ctx context.Context) error {
	body, status, err := s.do(ctx, http.MethodGet, nil, "collections", s.collection)
	if err != nil {
		return storage.Wrap("ensure collection", err)
	}
	body.Close()
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return storage.Wrap("ensure collection", fmt.Errorf("%w: status %d", ErrUnexpectedStatus, status))
	}

	if s.dimension <= 0 {
		return storage.Wrap("ensure collection", errors.New("vector dimension is required to create a collection"))
	}
	payload := createCollectionBody{Vectors: vectorParams{Size: s.dimension, Distance: "Cosine"}}
	if err := s.call(ctx, http.MethodPut, payload, nil, "collections", s.collection); err != nil {
		return storage.Wrap("ensure collection", err)
	}
	s.logger.Info("collection created", "dimension", s.dimension)
	return nil
}

// Close is a no-op. The store holds no connections of its own.
func (s *Store) Close() error {
	return nil
}

// Insert upserts points in batches of storage.InsertBatchSize. Each request
// waits for Qdrant to apply the batch.
func (s *Store) Insert(ctx context.Context, points ...*core.IndexedPoint) error {
	for _, p := range points {
		if err := core.ValidatePoint(p); err != nil {
			return storage.Wrap("insert", err)
		}
	}

	for start := 0; start < len(points); start += storage.InsertBatchSize {
		end := min(start+storage.InsertBatchSize, len(points))
		batch := make([]restPoint, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, restPoint{ID: uint64(p.ID), Vector: p.Vector, Payload: p.Metadata})
		}
		if err := s.call(ctx, http.MethodPut, upsertBody{Points: batch}, nil, "collections", s.collection, "points"); err != nil {
			return storage.Wrap("insert", err)
		}
	}
	if len(points) > 0 {
		s.logger.Debug("points upserted", "count", len(points))
	}
	return nil
}

// Search runs a nearest-neighbour query. A score threshold is applied by Qdrant.
func (s *Store) Search(ctx context.Context, vector []float32, topK int, opts ...storage.SearchOption) ([]*core.SearchHit, error) {
	if len(vector) == 0 {
		return nil, storage.Wrap("search", fmt.Errorf("%w: %w", storage.ErrInvalidQuery, core.ErrEmptyVector))
	}
	if topK <= 0 {
		return nil, storage.Wrap("search", fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK))
	}
	options := storage.ApplySearchOptions(opts...)

	payload := searchBody{Vector: vector, Limit: topK, WithPayload: true}
	if options.HasScoreThreshold {
		threshold := options.ScoreThreshold
		payload.ScoreThreshold = &threshold
	}

	var response searchResponse
	if err := s.call(ctx, http.MethodPost, payload, &response, "collections", s.collection, "points", "search"); err != nil {
		return nil, storage.Wrap("search", err)
	}

	hits := make([]*core.SearchHit, 0, len(response.Result))
	for _, r := range response.Result {
		md := r.Payload
		hits = append(hits, &core.SearchHit{PointID: core.ID(r.ID), Score: r.Score, Metadata: &md})
	}
	return hits, nil
}

// DeleteByDocument deletes every point whose payload document_id matches.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return storage.Wrap("delete", core.ErrEmptyDocumentID)
	}
	payload := deleteBody{Filter: filter{Must: []fieldCondition{{Key: "document_id", Match: matchValue{Value: documentID}}}}}
	if err := s.call(ctx, http.MethodPost, payload, nil, "collections", s.collection, "points", "delete"); err != nil {
		return storage.Wrap("delete", err)
	}
	s.logger.Info("document points deleted", "document_id", documentID)
	return nil
}

// Scroll pages through the collection. The cursor is Qdrant's
// next_page_offset rendered as a decimal point ID.
func (s *Store) Scroll(ctx context.Context, cursor string, limit int) ([]*core.IndexedPoint, string, error) {
	if limit <= 0 {
		limit = storage.ScrollPageSize
	}
	payload := scrollBody{Limit: limit, WithPayload: true, WithVector: true}
	if cursor != "" {
		offset, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, "", storage.Wrap("scroll", fmt.Errorf("%w: bad cursor %q", storage.ErrInvalidQuery, cursor))
		}
		payload.Offset = &offset
	}

	var response scrollResponse
	if err := s.call(ctx, http.MethodPost, payload, &response, "collections", s.collection, "points", "scroll"); err != nil {
		return nil, "", storage.Wrap("scroll", err)
	}

	points := make([]*core.IndexedPoint, 0, len(response.Result.Points))
	for _, p := range response.Result.Points {
		points = append(points, &core.IndexedPoint{ID: core.ID(p.ID), Vector: p.Vector, Metadata: p.Payload})
	}
	next := ""
	if response.Result.NextPageOffset != nil {
		next = strconv.FormatUint(*response.Result.NextPageOffset, 10)
	}
	return points, next, nil
}

// ListDocuments scrolls the collection and aggregates points per document.
func (s *Store) ListDocuments(ctx context.Context) ([]*core.DocumentSummary, error) {
	docs, err := storage.CollectDocuments(ctx, s)
	if err != nil {
		return nil, storage.Wrap("list documents", err)
	}
	return docs, nil
}

// Stats reads the collection info.
func (s *Store) Stats(ctx context.Context) (*core.StoreStats, error) {
	var response collectionResponse
	if err := s.call(ctx, http.MethodGet, nil, &response, "collections", s.collection); err != nil {
		return nil, storage.Wrap("stats", err)
	}
	return &core.StoreStats{
		Collection:      s.collection,
		PointCount:      response.Result.PointsCount,
		VectorDimension: response.Result.Config.Params.Vectors.Size,
		Health:          healthFromStatus(response.Result.Status),
	}, nil
}

func healthFromStatus(status string) core.StoreHealth {
	switch status {
	case "green":
		return core.HealthHealthy
	case "yellow", "grey":
		return core.HealthDegraded
	default:
		return core.HealthUnavailable
	}
}

func (s *Store) do(ctx context.Context, method string, payload any, path ...string) (io.ReadCloser, int, error) {
	u := s.baseURL.JoinPath(path...)
	return lcqdrant.DoRequest(ctx, *u, s.apiKey, method, payload)
}

// call performs a request and decodes a 2xx response into out when out is non-nil.
func (s *Store) call(ctx context.Context, method string, payload, out any, path ...string) error {
	body, status, err := s.do(ctx, method, payload, path...)
	if err != nil {
		return err
	}
	defer body.Close()

	if status < 200 || status > 299 {
		buf := new(bytes.Buffer)
		_, _ = io.Copy(buf, io.LimitReader(body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, status, bytes.TrimSpace(buf.Bytes()))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
