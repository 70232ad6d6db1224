package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &DocumentRepository{backend: backend}, nil
}

// PutDocument creates or replaces a document record. UpdatedAt is refreshed
// and ReceivedAt is set on first write when missing.
func (r *DocumentRepository) PutDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	// Timestamps are stored at microsecond precision.
	now := time.Now().UTC().Truncate(time.Microsecond)
	if doc.ReceivedAt.IsZero() {
		doc.ReceivedAt = now
	}
	doc.ReceivedAt = doc.ReceivedAt.Truncate(time.Microsecond)
	doc.UpdatedAt = now

	value := storage.MarshalDocument(doc)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey(doc.ID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			doc, err = storage.UnmarshalDocument(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns every document record in ID order.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var docs []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				doc, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document record.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeDocumentKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
