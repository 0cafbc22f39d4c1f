package storage

import (
	"context"

	"github.com/poiesic/docvault/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository

	// Create stores a new document record.
	// Returns ErrDuplicateKey if the document id already exists.
	Create(ctx context.Context, doc *core.Document) (*core.Document, error)

	// Get retrieves a document by id.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, documentID string) (*core.Document, error)

	// List retrieves all documents ordered by upload time, newest first.
	List(ctx context.Context) ([]*core.Document, error)

	// Update applies the set fields of update to an existing document.
	// Status changes are checked against the lifecycle state machine.
	// Returns ErrNotFound if the document doesn't exist.
	Update(ctx context.Context, documentID string, update core.DocumentUpdate) (*core.Document, error)

	// Delete removes a document record.
	// Returns ErrNotFound if the document doesn't exist.
	Delete(ctx context.Context, documentID string) error

	// BeginAttempt atomically registers a new ingestion attempt for doc.
	// A missing record is created; a record in a terminal state is
	// reclaimed for re-ingestion. Returns ErrLeaseHeld when an attempt
	// is already in flight (status uploading or processing).
	BeginAttempt(ctx context.Context, doc *core.Document) (*core.Document, error)
}
