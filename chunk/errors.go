package chunk

import "errors"

var (
	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates a negative overlap or one that is
	// not smaller than the chunk size.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")
)
