package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

func testRepo(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func testDocument(id string, uploadedAt time.Time) *core.Document {
	return &core.Document{
		DocumentID: id,
		Title:      "Test Document",
		Filename:   "test.txt",
		FileType:   "txt",
		FileSize:   128,
		UploadedAt: uploadedAt,
		Status:     core.StatusUploading,
	}
}

func TestDocumentCreateAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	uploaded := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testDocument("doc-1", uploaded))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.Equal(t, "Test Document", got.Title)
	assert.Equal(t, core.StatusUploading, got.Status)
	assert.True(t, got.UploadedAt.Equal(uploaded))
}

func TestDocumentCreateDuplicate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testDocument("doc-1", time.Now().UTC()))
	require.NoError(t, err)

	_, err = repo.Create(ctx, testDocument("doc-1", time.Now().UTC()))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDocumentCreateValidates(t *testing.T) {
	repo := testRepo(t)

	doc := testDocument("doc-1", time.Now().UTC())
	doc.Title = ""
	_, err := repo.Create(context.Background(), doc)
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestDocumentGetMissing(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Get(context.Background(), "doc-absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentListNewestFirst(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"doc-old", "doc-mid", "doc-new"} {
		_, err := repo.Create(ctx, testDocument(id, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-new", docs[0].DocumentID)
	assert.Equal(t, "doc-mid", docs[1].DocumentID)
	assert.Equal(t, "doc-old", docs[2].DocumentID)
}

func TestDocumentListEmpty(t *testing.T) {
	repo := testRepo(t)

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentUpdateLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testDocument("doc-1", time.Now().UTC()))
	require.NoError(t, err)

	processing := core.StatusProcessing
	_, err = repo.Update(ctx, "doc-1", core.DocumentUpdate{Status: &processing})
	require.NoError(t, err)

	completed := core.StatusCompleted
	processedAt := time.Now().UTC()
	chunkCount, vectorCount, contentLength := 3, 3, 4500
	updated, err := repo.Update(ctx, "doc-1", core.DocumentUpdate{
		Status:        &completed,
		ProcessedAt:   &processedAt,
		ChunkCount:    &chunkCount,
		VectorCount:   &vectorCount,
		ContentLength: &contentLength,
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, updated.Status)
	assert.Equal(t, 3, updated.ChunkCount)
	assert.Equal(t, 3, updated.VectorCount)
	assert.Equal(t, 4500, updated.ContentLength)
	assert.True(t, updated.ProcessedAt.Equal(processedAt))

	got, err := repo.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, got.Status)
}

func TestDocumentUpdateRejectsIllegalTransition(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testDocument("doc-1", time.Now().UTC()))
	require.NoError(t, err)

	// uploading -> completed skips processing
	completed := core.StatusCompleted
	_, err = repo.Update(ctx, "doc-1", core.DocumentUpdate{Status: &completed})
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestDocumentUpdateMissing(t *testing.T) {
	repo := testRepo(t)

	processing := core.StatusProcessing
	_, err := repo.Update(context.Background(), "doc-absent", core.DocumentUpdate{Status: &processing})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testDocument("doc-1", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "doc-1"))

	_, err = repo.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The date index entry is cleaned up with the record.
	docs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentDeleteMissing(t *testing.T) {
	repo := testRepo(t)

	err := repo.Delete(context.Background(), "doc-absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBeginAttemptCreatesRecord(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	doc := testDocument("doc-1", time.Time{})
	_, err := repo.BeginAttempt(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, core.StatusUploading, doc.Status)
	assert.False(t, doc.UploadedAt.IsZero())

	got, err := repo.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusUploading, got.Status)
}

func TestBeginAttemptRejectsInFlight(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.BeginAttempt(ctx, testDocument("doc-1", time.Now().UTC()))
	require.NoError(t, err)

	_, err = repo.BeginAttempt(ctx, testDocument("doc-1", time.Now().UTC()))
	assert.ErrorIs(t, err, storage.ErrLeaseHeld)

	processing := core.StatusProcessing
	_, err = repo.Update(ctx, "doc-1", core.DocumentUpdate{Status: &processing})
	require.NoError(t, err)

	_, err = repo.BeginAttempt(ctx, testDocument("doc-1", time.Now().UTC()))
	assert.ErrorIs(t, err, storage.ErrLeaseHeld)
}

func TestBeginAttemptReclaimsTerminalRecord(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.BeginAttempt(ctx, testDocument("doc-1", time.Now().UTC()))
	require.NoError(t, err)

	processing := core.StatusProcessing
	_, err = repo.Update(ctx, "doc-1", core.DocumentUpdate{Status: &processing})
	require.NoError(t, err)

	errStatus := core.StatusError
	msg := "embedding provider unavailable"
	_, err = repo.Update(ctx, "doc-1", core.DocumentUpdate{Status: &errStatus, ErrorMessage: &msg})
	require.NoError(t, err)

	// A failed record can be reclaimed by a fresh attempt.
	fresh := testDocument("doc-1", time.Now().UTC())
	_, err = repo.BeginAttempt(ctx, fresh)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusUploading, got.Status)
	assert.Empty(t, got.ErrorMessage)

	// No duplicate index entries left behind.
	docs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
