package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyContent indicates a document that yielded no extractable text.
	ErrEmptyContent = errors.New("document has no extractable content")

	// ErrConcurrentIngestion indicates an ingestion attempt for a document
	// that already has one in flight.
	ErrConcurrentIngestion = errors.New("ingestion already in progress")
)

// Stage identifies where in the pipeline a failure occurred.
type Stage string

// Pipeline stages, in execution order.
const (
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StageEmbed    Stage = "embed"
	StageStore    Stage = "store"
	StageFinalize Stage = "finalize"
)

// StageError reports a pipeline failure together with the stage that
// produced it. The same text is recorded on the document's error status.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
