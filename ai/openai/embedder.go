package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docvault/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder     embeddings.Embedder
	maxBatchSize int
	logger       *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:     embedder,
		maxBatchSize: config.MaxBatchSize,
		logger:       slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings.
// Inputs larger than the configured batch cap are split into sub-batches
// submitted sequentially; the results are reassembled in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.maxBatchSize {
		end := min(start+e.maxBatchSize, len(texts))

		vectors, err := e.embedder.EmbedDocuments(ctx, texts[start:end])
		if err != nil {
			e.logger.Error("failed to generate embeddings", "batch_start", start, "err", err)
			return nil, err
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", end-start, len(vectors))
		}
		result = append(result, vectors...)
	}

	return result, nil
}
