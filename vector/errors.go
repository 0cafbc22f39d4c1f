package vector

import "errors"

var (
	// ErrStoreRequired indicates a Writer was constructed without a Store.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrInvalidBatchSize indicates a non-positive batch size.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrUpsertFailed indicates a batch could not be written after
	// exhausting retries.
	ErrUpsertFailed = errors.New("vector upsert failed")

	// ErrEmptyEmbedding indicates a query was attempted with an empty
	// embedding.
	ErrEmptyEmbedding = errors.New("empty query embedding")
)
