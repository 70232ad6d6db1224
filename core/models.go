package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed points.
// It is derived from content with BLAKE2b so that re-indexing is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PointID returns the identifier of the point holding chunk chunkIndex of a document.
func PointID(documentID string, chunkIndex int) ID {
	return IDFromContent(documentID + ":" + strconv.Itoa(chunkIndex))
}

// DocumentState is the lifecycle state of an uploaded document.
type DocumentState string

const (
	DocumentReceived   DocumentState = "received"
	DocumentExtracting DocumentState = "extracting"
	DocumentChunked    DocumentState = "chunked"
	DocumentEmbedding  DocumentState = "embedding"
	DocumentEmbedded   DocumentState = "embedded"
	DocumentIndexed    DocumentState = "indexed"
	DocumentFailed     DocumentState = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s DocumentState) Terminal() bool {
	return s == DocumentIndexed || s == DocumentFailed
}

// Stage names an ingestion stage. It is recorded on failed documents.
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageChunking   Stage = "chunking"
	StageEmbedding  Stage = "embedding"
	StageStorage    Stage = "storage"
)

// Document tracks one uploaded document through ingestion.
type Document struct {
	ID           string
	Filename     string
	State        DocumentState
	FailedStage  Stage  // Set only when State is DocumentFailed
	Error        string // Failure message, if any
	DocumentType string
	ChunkCount   int
	ReceivedAt   time.Time
	UpdatedAt    time.Time
}

// Chunk is a bounded text span produced by splitting a document.
type Chunk struct {
	Index  int
	Text   string
	Length int // Byte length of Text
}

// PointMetadata is the payload stored alongside every vector.
type PointMetadata struct {
	DocumentID       string    `json:"document_id"`
	Filename         string    `json:"filename"`
	ChunkIndex       int       `json:"chunk_index"`
	Text             string    `json:"text"`
	ChunkSize        int       `json:"chunk_size"`
	DocumentType     string    `json:"document_type"`
	StructuredFields string    `json:"structured_fields"`
	UploadDate       time.Time `json:"upload_date"`
}

// IndexedPoint is a vector plus metadata as held by a vector store.
type IndexedPoint struct {
	ID       ID
	Vector   []float32
	Metadata PointMetadata
}

// SearchHit is a single similarity search result.
type SearchHit struct {
	PointID  ID
	Score    float32 // Cosine similarity
	Metadata *PointMetadata
}

// Source is a deduplicated, per-document reference returned with an answer.
type Source struct {
	Filename        string
	DocumentID      string
	SimilarityScore float32
	ChunkIndex      int
	Text            string
}

// SourceFromHit builds a Source from a search hit, rounding the score to three decimals.
func SourceFromHit(hit *SearchHit) *Source {
	src := &Source{SimilarityScore: RoundScore(hit.Score)}
	if hit.Metadata != nil {
		src.Filename = hit.Metadata.Filename
		src.DocumentID = hit.Metadata.DocumentID
		src.ChunkIndex = hit.Metadata.ChunkIndex
		src.Text = hit.Metadata.Text
	}
	return src
}

// RoundScore rounds a similarity score to three decimal places.
func RoundScore(score float32) float32 {
	return float32(math.Round(float64(score)*1000) / 1000)
}

// DocumentSummary aggregates the indexed points of one document.
type DocumentSummary struct {
	DocumentID string
	Filename   string
	ChunkCount int
	UploadDate time.Time
}

// StoreHealth describes vector store reachability.
type StoreHealth string

const (
	HealthHealthy     StoreHealth = "healthy"
	HealthDegraded    StoreHealth = "degraded"
	HealthUnavailable StoreHealth = "unavailable"
)

// StoreStats reports the size and status of a vector collection.
type StoreStats struct {
	Collection      string
	PointCount      int
	VectorDimension int
	Health          StoreHealth
}

// ConversationTurn is one user utterance paired with the system's answer.
type ConversationTurn struct {
	User      string
	Assistant string
	At        time.Time
}

// Device identifies where embeddings are computed.
type Device int

const (
	// DeviceAccelerated is the preferred, faster compute device.
	DeviceAccelerated Device = iota + 1
	// DeviceFallback is the slower general-purpose device.
	DeviceFallback
)

func (d Device) String() string {
	switch d {
	case DeviceAccelerated:
		return "accelerated"
	case DeviceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Checkpoint records how far a long-running pass over the store has progressed.
type Checkpoint struct {
	Name      string    `json:"name"`
	Cursor    string    `json:"cursor"` // Scroll cursor of the next unprocessed page
	Processed int       `json:"processed"`
	UpdatedAt time.Time `json:"updated_at"`
}
