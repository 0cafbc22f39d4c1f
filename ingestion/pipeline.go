// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/chunk"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/retry"
	"github.com/poiesic/docvault/storage"
	"github.com/poiesic/docvault/vector"
)

// Pipeline defaults.
const (
	DefaultStageTimeout = 2 * time.Minute
	DefaultMaxAttempts  = 3
	DefaultRetryDelay   = 500 * time.Millisecond
)

// IngestRequest carries one document into the pipeline. DocumentID is
// generated when empty; Title falls back to Filename.
type IngestRequest struct {
	DocumentID string
	Title      string
	Filename   string
	FileType   string
	Data       []byte
}

// Pipeline drives a document through extraction, chunking, embedding and
// vector storage, keeping the metadata record's status in step. Documents
// are independent; distinct documents may be ingested concurrently.
type Pipeline struct {
	documents    storage.DocumentRepository
	store        vector.Store
	writer       *vector.Writer
	embedder     ai.Embedder
	extractor    extract.Extractor
	chunker      *chunk.Chunker
	pool         *ants.Pool
	stageTimeout time.Duration
	maxAttempts  int
	retryDelay   time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for async ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunker replaces the default chunker.
func WithChunker(chunker *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		p.chunker = chunker
		return nil
	}
}

// WithExtractor replaces the default file extractor.
func WithExtractor(extractor extract.Extractor) Option {
	return func(p *Pipeline) error {
		p.extractor = extractor
		return nil
	}
}

// WithStageTimeout bounds each external call (extraction, embedding,
// vector writes). Zero disables the bound.
func WithStageTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		p.stageTimeout = timeout
		return nil
	}
}

// WithRetry sets the retry policy for the embedding and vector store
// stages. Extraction and chunking are deterministic and never retried.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = delay
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given stores.
func NewPipeline(
	documents storage.DocumentRepository,
	store vector.Store,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.New()
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		documents:    documents,
		store:        store,
		embedder:     embedder,
		extractor:    extract.NewExtractor(),
		chunker:      chunker,
		pool:         pool,
		stageTimeout: DefaultStageTimeout,
		maxAttempts:  DefaultMaxAttempts,
		retryDelay:   DefaultRetryDelay,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// The writer shares the pipeline's retry policy.
	writer, err := vector.NewWriter(store, vector.WithRetry(p.maxAttempts, p.retryDelay))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.writer = writer

	return p, nil
}

// Ingest runs a document through every stage and returns the final record.
// A stage failure is recorded as status=error on the document and returned
// as a *StageError. Only one attempt may be in flight per document id.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*core.Document, error) {
	if req.DocumentID == "" {
		req.DocumentID = core.NewDocumentID()
	}
	if req.Title == "" {
		req.Title = req.Filename
	}

	doc := &core.Document{
		DocumentID: req.DocumentID,
		Title:      req.Title,
		Filename:   req.Filename,
		FileType:   req.FileType,
		FileSize:   int64(len(req.Data)),
		Status:     core.StatusUploading,
	}

	doc, err := p.documents.BeginAttempt(ctx, doc)
	if err != nil {
		if errors.Is(err, storage.ErrLeaseHeld) {
			return nil, fmt.Errorf("%w: %s", ErrConcurrentIngestion, req.DocumentID)
		}
		return nil, err
	}

	p.logger.Info("ingestion started",
		"document_id", doc.DocumentID, "filename", doc.Filename, "bytes", doc.FileSize)

	processing := core.StatusProcessing
	if doc, err = p.documents.Update(ctx, doc.DocumentID, core.DocumentUpdate{Status: &processing}); err != nil {
		return nil, p.fail(ctx, req.DocumentID, StageFinalize, err)
	}

	text, err := p.extract(ctx, req)
	if err != nil {
		return nil, p.fail(ctx, doc.DocumentID, StageExtract, err)
	}
	if text == "" {
		return nil, p.fail(ctx, doc.DocumentID, StageExtract, ErrEmptyContent)
	}

	chunks := p.chunker.ChunkDocument(doc.Title, text)
	if len(chunks) == 0 {
		return nil, p.fail(ctx, doc.DocumentID, StageChunk, ErrEmptyContent)
	}

	embeddings, err := p.embed(ctx, chunks)
	if err != nil {
		return nil, p.fail(ctx, doc.DocumentID, StageEmbed, err)
	}

	records := buildRecords(doc, chunks, embeddings)
	if err := p.flush(ctx, doc.DocumentID, records); err != nil {
		return nil, p.fail(ctx, doc.DocumentID, StageStore, err)
	}

	completed := core.StatusCompleted
	processedAt := time.Now().UTC()
	chunkCount := len(chunks)
	vectorCount := len(records)
	contentLength := len([]rune(text))
	checksum := core.ChecksumFromContent(text)
	doc, err = p.documents.Update(ctx, doc.DocumentID, core.DocumentUpdate{
		Status:        &completed,
		ProcessedAt:   &processedAt,
		ChunkCount:    &chunkCount,
		VectorCount:   &vectorCount,
		ContentLength: &contentLength,
		Checksum:      &checksum,
	})
	if err != nil {
		return nil, p.fail(ctx, req.DocumentID, StageFinalize, err)
	}

	p.logger.Info("ingestion completed",
		"document_id", doc.DocumentID, "chunks", chunkCount, "vectors", vectorCount)
	return doc, nil
}

// IngestAsync submits the request to the worker pool. Failures are logged;
// their durable trace is the document record's error status.
func (p *Pipeline) IngestAsync(req IngestRequest) error {
	return p.pool.Submit(func() {
		if _, err := p.Ingest(context.Background(), req); err != nil {
			p.logger.Error("async ingestion failed",
				"document_id", req.DocumentID, "filename", req.Filename, "err", err)
		}
	})
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) extract(ctx context.Context, req IngestRequest) (string, error) {
	stageCtx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.extractor.Extract(stageCtx, req.Data, req.FileType)
}

// embed converts chunk contents to vectors, retrying transient provider
// failures with bounded backoff.
func (p *Pipeline) embed(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	var embeddings [][]float32
	err := retry.Do(ctx, func() error {
		stageCtx, cancel := p.stageContext(ctx)
		defer cancel()

		result, err := p.embedder.EmbedTexts(stageCtx, texts)
		if err != nil {
			return err
		}
		if len(result) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(result), len(texts))
		}
		embeddings = result
		return nil
	}, p.maxAttempts, p.retryDelay)
	if err != nil {
		return nil, err
	}
	return embeddings, nil
}

// flush replaces the document's stored vectors with records. A reclaimed
// attempt may produce fewer chunks than the one it replaces, so prior
// vectors are cleared first; after a successful flush the stored id set is
// exactly chunk 0 through len(records)-1.
func (p *Pipeline) flush(ctx context.Context, documentID string, records []core.VectorRecord) error {
	stageCtx, cancel := p.stageContext(ctx)
	defer cancel()

	err := retry.Do(stageCtx, func() error {
		return p.store.DeleteByDocument(stageCtx, documentID)
	}, p.maxAttempts, p.retryDelay)
	if err != nil {
		return fmt.Errorf("clearing prior vectors: %w", err)
	}

	_, err = p.writer.Flush(stageCtx, records)
	return err
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}

// fail records the stage failure on the document and returns it as a
// *StageError. The status write survives a canceled stage context. If even
// that write fails, both errors surface rather than leaving the failure
// silent.
func (p *Pipeline) fail(ctx context.Context, documentID string, stage Stage, cause error) error {
	stageErr := &StageError{Stage: stage, Err: cause}
	p.logger.Error("ingestion failed",
		"document_id", documentID, "stage", string(stage), "err", cause)

	errStatus := core.StatusError
	msg := stageErr.Error()
	_, err := p.documents.Update(context.WithoutCancel(ctx), documentID, core.DocumentUpdate{
		Status:       &errStatus,
		ErrorMessage: &msg,
	})
	if err != nil {
		return errors.Join(stageErr, fmt.Errorf("recording failure status: %w", err))
	}
	return stageErr
}

// buildRecords pairs chunks with their embeddings positionally; ids are
// derived from the document id and chunk sequence.
func buildRecords(doc *core.Document, chunks []core.Chunk, embeddings [][]float32) []core.VectorRecord {
	records := make([]core.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = core.VectorRecord{
			ID:        core.VectorID(doc.DocumentID, c.SequenceIndex),
			Embedding: embeddings[i],
			Metadata: core.VectorMetadata{
				DocumentID: doc.DocumentID,
				Content:    c.Content,
				Title:      doc.Title,
				FileType:   doc.FileType,
				Timestamp:  doc.UploadedAt,
			},
		}
	}
	return records
}
