package badger

import (
	"github.com/poiesic/quaero/storage"
)

// Stores bundles the repositories sharing one badger backend.
type Stores struct {
	Vectors     storage.VectorStore
	Documents   storage.DocumentRepository
	Checkpoints storage.CheckpointRepository
	Backend     *Backend
}

// Open opens (creating if needed) a badger database at path and builds
// every repository on it. opts configure the vector store.
func Open(path string, opts ...Option) (*Stores, error) {
	return open(path, false, opts...)
}

func open(path string, inMemory bool, opts ...Option) (*Stores, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	vectors, err := NewVectorStore(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	documents, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Stores{
		Vectors:     vectors,
		Documents:   documents,
		Checkpoints: NewCheckpointRepository(backend),
		Backend:     backend,
	}, nil
}

// Close closes the shared backend.
func (s *Stores) Close() error {
	if s.Backend.IsClosed() {
		return nil
	}
	return s.Backend.Close()
}
