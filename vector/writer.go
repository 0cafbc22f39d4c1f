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

package vector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/retry"
)

// Writer defaults.
const (
	DefaultBatchSize   = 100
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
)

// Writer submits vector records to a Store in fixed-size ordered batches.
// Each batch is retried with bounded backoff; a batch that still fails stops
// the flush, leaving earlier batches in place.
type Writer struct {
	store       Store
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer) error

// WithBatchSize sets the number of records submitted per upsert call.
func WithBatchSize(size int) WriterOption {
	return func(w *Writer) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
		}
		w.batchSize = size
		return nil
	}
}

// WithRetry sets the per-batch retry policy.
func WithRetry(maxAttempts int, delay time.Duration) WriterOption {
	return func(w *Writer) error {
		if maxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		w.maxAttempts = maxAttempts
		w.retryDelay = delay
		return nil
	}
}

// WithWriterLogger sets the logger.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) error {
		w.logger = logger.With("component", "vector-writer")
		return nil
	}
}

// NewWriter creates a Writer over the given store.
func NewWriter(store Store, opts ...WriterOption) (*Writer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	w := &Writer{
		store:       store,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default().With("component", "vector-writer"),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Flush writes records in order, batch by batch, and returns the number of
// records durably written. On a batch failure the count covers only the
// batches that succeeded; those records are not rolled back.
func (w *Writer) Flush(ctx context.Context, records []core.VectorRecord) (int, error) {
	written := 0
	for start := 0; start < len(records); start += w.batchSize {
		end := min(start+w.batchSize, len(records))
		batch := records[start:end]

		err := retry.Do(ctx, func() error {
			_, err := w.store.Upsert(ctx, batch)
			return err
		}, w.maxAttempts, w.retryDelay)
		if err != nil {
			w.logger.Error("batch upsert failed",
				"batch_start", start, "batch_size", len(batch), "err", err)
			return written, fmt.Errorf("%w: batch starting at record %d: %w",
				ErrUpsertFailed, start, err)
		}

		written += len(batch)
		w.logger.Debug("batch upserted", "batch_start", start, "batch_size", len(batch))
	}
	return written, nil
}
