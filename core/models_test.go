package core

import (
	"strings"
	"testing"
	"time"
)

func TestDocumentStatus_String(t *testing.T) {
	tests := []struct {
		status DocumentStatus
		want   string
	}{
		{StatusUploading, "uploading"},
		{StatusProcessing, "processing"},
		{StatusCompleted, "completed"},
		{StatusError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("DocumentStatus.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentStatus_InFlight(t *testing.T) {
	tests := []struct {
		status DocumentStatus
		want   bool
	}{
		{StatusUploading, true},
		{StatusProcessing, true},
		{StatusCompleted, false},
		{StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.InFlight(); got != tt.want {
				t.Errorf("InFlight() = %v, want %v", got, tt.want)
			}
			if got := tt.status.Terminal(); got == tt.want {
				t.Errorf("Terminal() = %v, want %v", got, !tt.want)
			}
		})
	}
}

func TestVectorID(t *testing.T) {
	got := VectorID("doc-123-abcd", 0)
	want := "doc-123-abcd-chunk-0"
	if got != want {
		t.Errorf("VectorID() = %v, want %v", got, want)
	}

	got = VectorID("doc-123-abcd", 42)
	want = "doc-123-abcd-chunk-42"
	if got != want {
		t.Errorf("VectorID() = %v, want %v", got, want)
	}
}

func TestNewDocumentID(t *testing.T) {
	id1 := NewDocumentID()
	id2 := NewDocumentID()

	if !strings.HasPrefix(id1, "doc-") {
		t.Errorf("NewDocumentID() = %v, want doc- prefix", id1)
	}
	if id1 == id2 {
		t.Errorf("NewDocumentID() produced duplicate IDs: %v", id1)
	}
}

func TestChecksumFromContent(t *testing.T) {
	c1 := ChecksumFromContent("some document text")
	c2 := ChecksumFromContent("some document text")
	c3 := ChecksumFromContent("different text")

	if c1 != c2 {
		t.Errorf("ChecksumFromContent() produced different checksums for same content: %d vs %d", c1, c2)
	}
	if c1 == c3 {
		t.Errorf("ChecksumFromContent() produced same checksum for different content")
	}
}

func TestDocumentUpdate_Apply(t *testing.T) {
	doc := &Document{
		DocumentID: "doc-1",
		Title:      "report",
		Status:     StatusProcessing,
	}

	status := StatusCompleted
	processedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chunkCount := 3
	vectorCount := 3
	contentLength := 4500

	update := &DocumentUpdate{
		Status:        &status,
		ProcessedAt:   &processedAt,
		ChunkCount:    &chunkCount,
		VectorCount:   &vectorCount,
		ContentLength: &contentLength,
	}
	update.Apply(doc)

	if doc.Status != StatusCompleted {
		t.Errorf("Apply() status = %v, want completed", doc.Status)
	}
	if !doc.ProcessedAt.Equal(processedAt) {
		t.Errorf("Apply() processedAt = %v, want %v", doc.ProcessedAt, processedAt)
	}
	if doc.ChunkCount != 3 || doc.VectorCount != 3 || doc.ContentLength != 4500 {
		t.Errorf("Apply() counts = %d/%d/%d, want 3/3/4500", doc.ChunkCount, doc.VectorCount, doc.ContentLength)
	}

	// Fields not present in the update stay untouched
	if doc.Title != "report" || doc.ErrorMessage != "" {
		t.Errorf("Apply() mutated fields outside the update")
	}
}

func TestDocumentMUS_RoundTrip(t *testing.T) {
	doc := Document{
		DocumentID:    "doc-1748779200000-1a2b3c4d",
		Title:         "quarterly report",
		Filename:      "quarterly report.pdf",
		FileType:      "pdf",
		FileSize:      102400,
		UploadedAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		ProcessedAt:   time.Date(2025, 6, 1, 10, 0, 5, 0, time.UTC),
		Status:        StatusCompleted,
		ChunkCount:    3,
		VectorCount:   3,
		ContentLength: 4500,
		Checksum:      ChecksumFromContent("quarterly report content"),
	}

	buf := make([]byte, DocumentMUS.Size(doc))
	DocumentMUS.Marshal(doc, buf)

	got, n, err := DocumentMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n != len(buf) {
		t.Errorf("Unmarshal() consumed %d bytes, want %d", n, len(buf))
	}
	if !got.UploadedAt.Equal(doc.UploadedAt) || !got.ProcessedAt.Equal(doc.ProcessedAt) {
		t.Errorf("round trip timestamps mismatch: got %v/%v", got.UploadedAt, got.ProcessedAt)
	}
	got.UploadedAt = doc.UploadedAt
	got.ProcessedAt = doc.ProcessedAt
	if got != doc {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}
