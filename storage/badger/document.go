package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &DocumentRepository{backend: backend}, nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close releases repository resources. The backend is closed separately.
func (r *DocumentRepository) Close() error {
	return nil
}

// Create stores a new document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.DocumentID)
		existing, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		if doc.UploadedAt.IsZero() {
			doc.UploadedAt = time.Now().UTC()
		}

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}

		dateKey := makeDocumentDateKey(doc.UploadedAt, doc.DocumentID)
		if err := tx.Set(dateKey, []byte(doc.DocumentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return doc, err
}

// Get retrieves a document by id.
func (r *DocumentRepository) Get(ctx context.Context, documentID string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDocument(tx, makeDocumentKey(documentID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// List retrieves all documents ordered by upload time, newest first.
func (r *DocumentRepository) List(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Reverse iterator over the date index gives newest first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialDocumentDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(documentDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var documentID string
			if err := iter.Item().Value(func(val []byte) error {
				documentID = string(val)
				return nil
			}); err != nil {
				return err
			}

			doc, err := r.readDocument(tx, makeDocumentKey(documentID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// Update applies the set fields of update to an existing document.
func (r *DocumentRepository) Update(ctx context.Context, documentID string, update core.DocumentUpdate) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(documentID)
		doc, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if update.Status != nil && *update.Status != doc.Status {
			if err := core.ValidateTransition(doc.Status, *update.Status); err != nil {
				return err
			}
		}

		update.Apply(doc)

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		result = doc
		return tx.Commit()
	}, true)

	return result, err
}

// Delete removes a document record and its date index entry.
func (r *DocumentRepository) Delete(ctx context.Context, documentID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(documentID)
		doc, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		dateKey := makeDocumentDateKey(doc.UploadedAt, doc.DocumentID)
		if err := tx.Delete(dateKey); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// BeginAttempt atomically registers a new ingestion attempt for doc.
// Concurrent attempts for the same id are serialized by BadgerDB's
// transaction conflict detection; the loser observes the winner's lease.
func (r *DocumentRepository) BeginAttempt(ctx context.Context, doc *core.Document) (*core.Document, error) {
	doc.Status = core.StatusUploading
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.DocumentID)
		existing, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status.InFlight() {
				return storage.ErrLeaseHeld
			}
			// Reclaim a terminal record for re-ingestion; the stale
			// date index entry goes with it.
			oldDateKey := makeDocumentDateKey(existing.UploadedAt, existing.DocumentID)
			if err := tx.Delete(oldDateKey); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		dateKey := makeDocumentDateKey(doc.UploadedAt, doc.DocumentID)
		if err := tx.Set(dateKey, []byte(doc.DocumentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if errors.Is(err, badger.ErrConflict) {
		err = storage.ErrLeaseHeld
	}
	return doc, err
}

// readDocument reads a document record from the transaction.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
