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

// Package chromem implements the vector store contract on chromem-go, an
// embeddable vector database with optional persistence.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/vector"
)

// DefaultCollection is the collection name used when none is given.
const DefaultCollection = "documents"

// Metadata keys on stored records. Chunk content lives in the record body,
// not the metadata map; readers see it re-attached on the way out.
const (
	metaKeyDocumentID = "documentId"
	metaKeyTitle      = "title"
	metaKeyFileType   = "fileType"
	metaKeyTimestamp  = "timestamp"
)

// Store is a chromem-go backed vector index.
type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	logger     *slog.Logger
}

var _ vector.Store = (*Store)(nil)

// Open creates or reopens a persistent store rooted at path.
func Open(path, collection string) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector database: %w", err)
	}
	return newStore(db, collection)
}

// OpenMemory creates an in-memory store, used in tests and throwaway runs.
func OpenMemory(collection string) (*Store, error) {
	return newStore(chromemgo.NewDB(), collection)
}

func newStore(db *chromemgo.DB, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	// Embeddings always arrive precomputed; the collection must never
	// reach for a provider on its own.
	c, err := db.GetOrCreateCollection(collection, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collection, err)
	}
	return &Store{
		db:         db,
		collection: c,
		logger:     slog.Default().With("component", "vector-store"),
	}, nil
}

func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("store accepts only precomputed embeddings")
}

// Upsert inserts or replaces records by id.
func (s *Store) Upsert(ctx context.Context, records []core.VectorRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	docs := make([]chromemgo.Document, len(records))
	for i, record := range records {
		docs[i] = chromemgo.Document{
			ID:        record.ID,
			Content:   record.Metadata.Content,
			Embedding: record.Embedding,
			Metadata: map[string]string{
				metaKeyDocumentID: record.Metadata.DocumentID,
				metaKeyTitle:      record.Metadata.Title,
				metaKeyFileType:   record.Metadata.FileType,
				metaKeyTimestamp:  record.Metadata.Timestamp.UTC().Format(time.RFC3339),
			},
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("upserting %d records: %w", len(records), err)
	}
	return len(records), nil
}

// DeleteByDocument removes every record tagged with documentID. Absent
// documents delete cleanly.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	where := map[string]string{metaKeyDocumentID: documentID}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("deleting vectors for %s: %w", documentID, err)
	}
	s.logger.Debug("vectors deleted", "document_id", documentID)
	return nil
}

// Query returns up to limit nearest records, best match first.
func (s *Store) Query(ctx context.Context, embedding []float32, limit int) ([]core.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, vector.ErrEmptyEmbedding
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromemgo.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}

	out := make([]core.SearchResult, len(results))
	for i, r := range results {
		out[i] = core.SearchResult{
			Record: core.VectorRecord{
				ID:        r.ID,
				Embedding: r.Embedding,
				Metadata:  s.metadataFromRecord(r.Metadata, r.Content),
			},
			Score: r.Similarity,
		}
	}
	return out, nil
}

// CountByDocument probes the deterministic id sequence for the document.
// Ids are dense from chunk 0, so the first miss ends the count.
func (s *Store) CountByDocument(ctx context.Context, documentID string) (int, error) {
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if _, err := s.collection.GetByID(ctx, core.VectorID(documentID, count)); err != nil {
			return count, nil
		}
		count++
	}
}

// Close is a no-op; chromem persists synchronously on write.
func (s *Store) Close() error {
	return nil
}

// metadataFromRecord rebuilds typed metadata from the stored map. A record
// whose timestamp does not parse keeps a zero Timestamp and is reported,
// not dropped; the remaining fields are still usable.
func (s *Store) metadataFromRecord(meta map[string]string, content string) core.VectorMetadata {
	ts, err := time.Parse(time.RFC3339, meta[metaKeyTimestamp])
	if err != nil {
		s.logger.Warn("stored record has unparsable timestamp",
			"document_id", meta[metaKeyDocumentID], "timestamp", meta[metaKeyTimestamp], "err", err)
	}
	return core.VectorMetadata{
		DocumentID: meta[metaKeyDocumentID],
		Content:    content,
		Title:      meta[metaKeyTitle],
		FileType:   meta[metaKeyFileType],
		Timestamp:  ts,
	}
}
