package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// DocumentStatus tracks a document through its ingestion lifecycle.
type DocumentStatus int

const (
	// StatusUploading is set at intake, before extraction has started.
	StatusUploading DocumentStatus = iota + 1
	// StatusProcessing is set while the ingestion pipeline is running.
	StatusProcessing
	// StatusCompleted is the terminal success state.
	StatusCompleted
	// StatusError is the terminal failure state for an ingestion attempt.
	StatusError
)

// String returns the lowercase status name used in persisted records and logs.
func (s DocumentStatus) String() string {
	switch s {
	case StatusUploading:
		return "uploading"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// InFlight reports whether the status marks an active ingestion attempt.
// An in-flight status acts as an exclusive lease on the document ID.
func (s DocumentStatus) InFlight() bool {
	return s == StatusUploading || s == StatusProcessing
}

// Terminal reports whether the status ends an ingestion attempt.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Document is the metadata record for one ingested document.
// The record is created at intake, mutated only by the ingestion
// pipeline, and removed only by the deleter.
type Document struct {
	DocumentID    string
	Title         string
	Filename      string
	FileType      string
	FileSize      int64
	UploadedAt    time.Time
	ProcessedAt   time.Time // zero until status is completed
	Status        DocumentStatus
	ErrorMessage  string // set only when status is error
	ChunkCount    int    // set only on completion
	VectorCount   int    // set only on completion, equals ChunkCount
	ContentLength int    // length of the normalized text, set on completion
	Checksum      uint64 // blake2b-64 of the normalized text, set on completion
}

// NewDocumentID generates a unique document identifier.
func NewDocumentID() string {
	return fmt.Sprintf("doc-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// ChecksumFromContent derives a deterministic 64-bit checksum from text
// content using BLAKE2b. Identical content produces identical checksums,
// which makes re-ingestion of unchanged documents detectable.
func ChecksumFromContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Chunk is one bounded window of a document's normalized text. Chunks are
// ephemeral: they exist only within an ingestion run, and their only durable
// trace is the corresponding vector record.
type Chunk struct {
	SequenceIndex int    // 0-based position in the document
	Content       string // window text with the document-context prefix applied
}

// VectorMetadata is the metadata stored alongside each embedding in the
// vector index. Content is denormalized here so retrieval can return
// passages without a second lookup.
type VectorMetadata struct {
	DocumentID string
	Content    string
	Title      string
	FileType   string
	Timestamp  time.Time
}

// VectorRecord is the unit stored in the vector index.
type VectorRecord struct {
	ID        string // derived via VectorID, stable across re-ingestion
	Embedding []float32
	Metadata  VectorMetadata
}

// VectorID derives the deterministic vector record ID for a chunk.
// The fixed shape enables exact deletion and idempotent re-upsert.
func VectorID(documentID string, sequenceIndex int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, sequenceIndex)
}

// DocumentUpdate is a partial update to a Document. Only the fields the
// ingestion pipeline may mutate after creation are present; a nil field
// leaves the stored value untouched.
type DocumentUpdate struct {
	Status        *DocumentStatus
	ProcessedAt   *time.Time
	ErrorMessage  *string
	ChunkCount    *int
	VectorCount   *int
	ContentLength *int
	Checksum      *uint64
}

// Apply mutates doc with the update's non-nil fields.
func (u *DocumentUpdate) Apply(doc *Document) {
	if u.Status != nil {
		doc.Status = *u.Status
	}
	if u.ProcessedAt != nil {
		doc.ProcessedAt = *u.ProcessedAt
	}
	if u.ErrorMessage != nil {
		doc.ErrorMessage = *u.ErrorMessage
	}
	if u.ChunkCount != nil {
		doc.ChunkCount = *u.ChunkCount
	}
	if u.VectorCount != nil {
		doc.VectorCount = *u.VectorCount
	}
	if u.ContentLength != nil {
		doc.ContentLength = *u.ContentLength
	}
	if u.Checksum != nil {
		doc.Checksum = *u.Checksum
	}
}

// SearchResult is a retrieval match from the vector index.
type SearchResult struct {
	Record VectorRecord
	Score  float32
}
