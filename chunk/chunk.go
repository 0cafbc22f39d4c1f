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

// Package chunk splits normalized document text into overlapping windows
// sized for embedding-model context limits.
//
// Windows slide forward by chunkSize - chunkOverlap characters, so every
// window except the first begins exactly chunkOverlap characters before the
// previous window's end. A window's end is pulled back to the coarsest
// separator boundary found in the latter half of its range, falling through
// paragraph break, line break, sentence end and space down to a plain
// character cut. Chunking is deterministic: the same text and configuration
// always yield the same sequence.
package chunk

import (
	"fmt"
	"strings"

	"github.com/poiesic/docvault/core"
)

// Defaults match the embedding context budget the pipeline was tuned for.
const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 400
)

// DefaultSeparators is the boundary priority tried coarsest to finest.
// The character-level cut is implicit and always terminates the search.
var DefaultSeparators = []string{"\n\n\n", "\n\n", "\n", ". ", " "}

// Chunker splits text into overlapping windows and attaches the
// document-context prefix.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the maximum characters per window.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size <= 0 {
			return fmt.Errorf("%w: chunk size %d", ErrInvalidChunkSize, size)
		}
		c.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the characters shared between consecutive windows.
func WithChunkOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return fmt.Errorf("%w: chunk overlap %d", ErrInvalidChunkOverlap, overlap)
		}
		c.chunkOverlap = overlap
		return nil
	}
}

// WithSeparators replaces the boundary priority list.
func WithSeparators(separators []string) Option {
	return func(c *Chunker) error {
		c.separators = separators
		return nil
	}
}

// New creates a Chunker with the given options applied over the defaults.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.chunkOverlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than size %d",
			ErrInvalidChunkOverlap, c.chunkOverlap, c.chunkSize)
	}
	return c, nil
}

// Split divides text into ordered overlapping windows. Whitespace-only input
// yields no windows. Sizes are measured in characters, not bytes.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var windows []string
	start := 0
	for {
		if start+c.chunkSize >= len(runes) {
			windows = append(windows, string(runes[start:]))
			return windows
		}
		end := c.windowEnd(runes, start)
		windows = append(windows, string(runes[start:end]))
		start = end - c.chunkOverlap
	}
}

// windowEnd finds where the window starting at start should close: the end
// of the last occurrence of the coarsest separator in the latter part of the
// window's range, or a hard character cut when no separator qualifies. The
// boundary never falls at or before start+chunkOverlap, which guarantees the
// next window starts strictly after this one.
func (c *Chunker) windowEnd(runes []rune, start int) int {
	limit := start + c.chunkSize
	minEnd := start + c.chunkSize/2
	if minEnd <= start+c.chunkOverlap {
		minEnd = start + c.chunkOverlap + 1
	}
	for _, sep := range c.separators {
		if at := lastIndexRunes(runes, []rune(sep), start, limit); at >= 0 {
			end := at + len([]rune(sep))
			if end >= minEnd {
				return end
			}
		}
	}
	return limit
}

// lastIndexRunes returns the index of the last occurrence of needle fully
// contained in runes[lo:hi], or -1.
func lastIndexRunes(runes, needle []rune, lo, hi int) int {
	if len(needle) == 0 || hi-lo < len(needle) {
		return -1
	}
	for i := hi - len(needle); i >= lo; i-- {
		match := true
		for j, r := range needle {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// ChunkDocument splits text and wraps each window in the document-context
// prefix. The prefix is applied after windowing, so it never participates in
// size or overlap arithmetic.
func (c *Chunker) ChunkDocument(title, text string) []core.Chunk {
	windows := c.Split(text)
	if len(windows) == 0 {
		return nil
	}
	chunks := make([]core.Chunk, len(windows))
	for i, window := range windows {
		chunks[i] = core.Chunk{
			SequenceIndex: i,
			Content:       fmt.Sprintf("Document: %s\n\n%s", title, window),
		}
	}
	return chunks
}
