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


package docvault

import (
	"log/slog"
	"path/filepath"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/ai/openai"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/search"
	"github.com/poiesic/docvault/storage"
	"github.com/poiesic/docvault/storage/badger"
	"github.com/poiesic/docvault/vector"
	"github.com/poiesic/docvault/vector/chromem"
)

// Database composes the metadata store, the vector store and the embedding
// provider behind one handle. The metadata records live in BadgerDB under
// filePath; the vector index lives in a chromem database beside it.
type Database struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	vectorStore  vector.Store
	embedder     ai.Embedder
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	vectorPath string
	collection string
}

// WithAIConfig overrides the embedding provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithVectorPath places the vector index at a custom location.
// Default is a "vectors" directory beside the metadata store.
func WithVectorPath(path string) DatabaseOption {
	return func(o *databaseOptions) {
		o.vectorPath = path
	}
}

// WithCollection overrides the vector collection name.
func WithCollection(name string) DatabaseOption {
	return func(o *databaseOptions) {
		o.collection = name
	}
}

// NewDatabase opens (or creates) a document vault rooted at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:   ai.DefaultConfig(), // Default if not provided
		vectorPath: filepath.Join(filePath, "vectors"),
		collection: chromem.DefaultCollection,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Open vector store
	vectorStore, err := chromem.Open(options.vectorPath, options.collection)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create embedder with configured settings
	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		vectorStore.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		documentRepo: documentRepo,
		vectorStore:  vectorStore,
		embedder:     embedder,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.vectorStore.Close(); err != nil {
		db.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) VectorStore() vector.Store {
	return db.vectorStore
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documentRepo, db.vectorStore, db.embedder, opts...)
}

func (db *Database) NewDeleter() (*ingestion.Deleter, error) {
	return ingestion.NewDeleter(db.documentRepo, db.vectorStore)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.vectorStore, db.embedder, opts...)
}
