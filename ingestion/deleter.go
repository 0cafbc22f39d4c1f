package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docvault/storage"
	"github.com/poiesic/docvault/vector"
)

// Deleter removes a document from both stores: vectors first, metadata
// second. If the metadata delete fails after the vectors are gone, the
// residual state is a record with zero vectors, and a full retry completes
// the job; the reverse order could orphan vectors with no owning record.
type Deleter struct {
	documents storage.DocumentRepository
	store     vector.Store
	logger    *slog.Logger
}

// NewDeleter creates a deletion coordinator over the given stores.
func NewDeleter(documents storage.DocumentRepository, store vector.Store) (*Deleter, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	return &Deleter{
		documents: documents,
		store:     store,
		logger:    slog.Default().With("component", "deletion"),
	}, nil
}

// Delete removes every trace of the document. Returns storage.ErrNotFound
// for an unknown id, with no side effects. Safe to retry in full after any
// partial failure; the vector delete is idempotent.
func (d *Deleter) Delete(ctx context.Context, documentID string) error {
	if _, err := d.documents.Get(ctx, documentID); err != nil {
		return err
	}

	if err := d.store.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting vectors for %s: %w", documentID, err)
	}

	if err := d.documents.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("deleting metadata for %s: %w", documentID, err)
	}

	d.logger.Info("document deleted", "document_id", documentID)
	return nil
}
