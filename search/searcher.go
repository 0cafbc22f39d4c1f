// Package search provides query-time retrieval over ingested documents.
//
// The Searcher embeds a query with the same model used at ingestion time and
// returns the nearest stored passages, each carrying the chunk text and its
// source document metadata.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/vector"
)

// DefaultLimit bounds a search when the caller passes a non-positive limit.
const DefaultLimit = 5

// Searcher provides semantic search over stored document chunks.
type Searcher struct {
	store    vector.Store
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store vector.Store, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search returns up to limit passages nearest to the query, best first.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	results, err := s.store.Query(ctx, embedding, limit)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	return results, nil
}
