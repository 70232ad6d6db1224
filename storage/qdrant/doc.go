// Package qdrant implements storage.VectorStore against a Qdrant server over
// its REST API.
//
// Requests go through langchaingo's qdrant.DoRequest, which adds wait=true so
// every write is applied before the call returns. Point payloads use the same
// field names as the embedded badger store, so collections can be moved
// between the two by scrolling one and inserting into the other.
//
//	store, err := qdrant.New("http://localhost:6333", qdrant.WithDimension(1024))
//	if err != nil { ... }
//	if err := store.EnsureCollection(ctx); err != nil { ... }
package qdrant
