// Package vector defines the vector index contract and the batching writer
// that feeds it during ingestion.
package vector

import (
	"context"

	"github.com/poiesic/docvault/core"
)

// Store is the durable vector index. Implementations must be thread-safe.
type Store interface {
	// Upsert inserts or replaces records by id and returns the number of
	// records written. Re-upserting an existing id replaces it.
	Upsert(ctx context.Context, records []core.VectorRecord) (int, error)

	// DeleteByDocument removes every record whose metadata carries the
	// given document id. Deleting an absent document is a no-op success.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Query returns up to limit records nearest to the given embedding,
	// best match first.
	Query(ctx context.Context, embedding []float32, limit int) ([]core.SearchResult, error)

	// CountByDocument reports how many records exist for the document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// Close releases the underlying index.
	Close() error
}
