package storage

import (
	"testing"
	"time"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	// Continuation bit set with no following byte.
	_, err = UnmarshalID([]byte{0x80})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalPoint(t *testing.T) {
	uploaded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	point := &core.IndexedPoint{
		ID:     core.PointID("doc-1", 3),
		Vector: []float32{0.6, 0.8},
		Metadata: core.PointMetadata{
			DocumentID:       "doc-1",
			Filename:         "a.txt",
			ChunkIndex:       3,
			Text:             "hello",
			ChunkSize:        5,
			DocumentType:     "GENERIC_DOCUMENT",
			StructuredFields: `{"total":"10"}`,
			UploadDate:       uploaded,
		},
	}

	data := MarshalPoint(point)
	decoded, err := UnmarshalPoint(data)
	require.NoError(t, err)
	assert.Equal(t, point.ID, decoded.ID)
	assert.Equal(t, point.Vector, decoded.Vector)
	assert.Equal(t, "doc-1", decoded.Metadata.DocumentID)
	assert.Equal(t, "a.txt", decoded.Metadata.Filename)
	assert.Equal(t, 3, decoded.Metadata.ChunkIndex)
	assert.Equal(t, "hello", decoded.Metadata.Text)
	assert.Equal(t, 5, decoded.Metadata.ChunkSize)
	assert.Equal(t, "GENERIC_DOCUMENT", decoded.Metadata.DocumentType)
	assert.Equal(t, `{"total":"10"}`, decoded.Metadata.StructuredFields)
	assert.True(t, uploaded.Equal(decoded.Metadata.UploadDate))

	_, err = UnmarshalPoint(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrSerializationFailed)
	_, err = UnmarshalPoint(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalPoint_TimestampPrecision(t *testing.T) {
	uploaded := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	point := &core.IndexedPoint{ID: 1, Vector: []float32{1}, Metadata: core.PointMetadata{DocumentID: "doc", UploadDate: uploaded}}

	decoded, err := UnmarshalPoint(MarshalPoint(point))
	require.NoError(t, err)
	assert.True(t, uploaded.Truncate(time.Microsecond).Equal(decoded.Metadata.UploadDate))
}

func TestMarshalDocument(t *testing.T) {
	received := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &core.Document{
		ID:           "doc-1",
		Filename:     "report.pdf",
		State:        core.DocumentFailed,
		FailedStage:  core.StageEmbedding,
		Error:        "connection refused",
		DocumentType: "INVOICE",
		ChunkCount:   4,
		ReceivedAt:   received,
		UpdatedAt:    received.Add(time.Second),
	}

	data := MarshalDocument(doc)
	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, decoded.ID)
	assert.Equal(t, doc.Filename, decoded.Filename)
	assert.Equal(t, core.DocumentFailed, decoded.State)
	assert.Equal(t, core.StageEmbedding, decoded.FailedStage)
	assert.Equal(t, doc.Error, decoded.Error)
	assert.Equal(t, doc.DocumentType, decoded.DocumentType)
	assert.Equal(t, 4, decoded.ChunkCount)
	assert.True(t, received.Equal(decoded.ReceivedAt))
	assert.True(t, doc.UpdatedAt.Equal(decoded.UpdatedAt))

	_, err = UnmarshalDocument(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalCheckpoint(t *testing.T) {
	checkpoint := &core.Checkpoint{
		Name:      "reembed",
		Cursor:    "00000000000000ff",
		Processed: 250,
		UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data := MarshalCheckpoint(checkpoint)
	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, checkpoint.Name, decoded.Name)
	assert.Equal(t, checkpoint.Cursor, decoded.Cursor)
	assert.Equal(t, 250, decoded.Processed)
	assert.True(t, checkpoint.UpdatedAt.Equal(decoded.UpdatedAt))

	_, err = UnmarshalCheckpoint([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalFields(t *testing.T) {
	blob, err := MarshalFields(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", blob)

	blob, err = MarshalFields(map[string]string{"fiscal_code": "RSSMRA80A01H501U"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fiscal_code":"RSSMRA80A01H501U"}`, blob)

	fields, err := UnmarshalFields(blob)
	require.NoError(t, err)
	assert.Equal(t, "RSSMRA80A01H501U", fields["fiscal_code"])

	fields, err = UnmarshalFields("")
	require.NoError(t, err)
	assert.Empty(t, fields)
}
