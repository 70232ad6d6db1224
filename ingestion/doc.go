// Package ingestion turns uploaded document text into indexed points.
//
// A Pipeline runs each document through a fixed sequence of stages:
//   - extraction check: empty text fails the document immediately
//   - classification: best-effort document type and structured fields
//   - chunking: overlapping, size-bounded text spans
//   - embedding: one unit vector per chunk
//   - storage: points with metadata written to the vector store
//
// Work runs on a bounded ants worker pool. Submissions block while the pool
// is saturated, up to a configurable number of waiting submissions, after
// which they are rejected with ErrQueueFull. Every state change is recorded
// in a storage.DocumentRepository so failures can be inspected later.
// A failure only affects the document it belongs to.
package ingestion
