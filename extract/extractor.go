// Package extract turns raw document bytes into normalized plain text.
//
// Extraction is an external capability from the pipeline's point of view:
// given bytes and a declared type, produce text or fail with a typed error.
// A supported file that yields no text (an image-only PDF, for example) is
// not a failure here; it returns an empty string, which the pipeline reports
// as an empty-content error rather than a silent success.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Supported file types.
const (
	TypeTXT  = "txt"
	TypeMD   = "md"
	TypePDF  = "pdf"
	TypeDOCX = "docx"
)

// Extractor produces normalized plain text from raw document bytes.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract converts data of the declared fileType into normalized text.
	// Returns ErrUnsupportedFormat for unknown types, ErrExtractionFailed
	// for unreadable content, and ("", nil) when the file is readable but
	// contains no extractable text.
	Extract(ctx context.Context, data []byte, fileType string) (string, error)
}

// FileExtractor dispatches to a per-format extraction routine based on the
// declared file type.
type FileExtractor struct {
	logger *slog.Logger
}

var _ Extractor = (*FileExtractor)(nil)

// NewExtractor creates an extractor supporting txt, md, pdf and docx input.
func NewExtractor() Extractor {
	return &FileExtractor{
		logger: slog.Default().With("component", "extractor"),
	}
}

// Extract converts data of the declared fileType into normalized text.
func (e *FileExtractor) Extract(ctx context.Context, data []byte, fileType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(fileType) {
	case TypeTXT, TypeMD:
		text, err = extractText(data)
	case TypePDF:
		text, err = extractPDF(data)
	case TypeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
	if err != nil {
		e.logger.Error("extraction failed", "file_type", fileType, "err", err)
		return "", err
	}

	text = Normalize(text)
	if text == "" {
		e.logger.Warn("no extractable text", "file_type", fileType, "bytes", len(data))
	}
	return text, nil
}

// Normalize collapses runs of spaces and tabs, trims whitespace around line
// breaks, and bounds consecutive blank lines so the chunker's separator
// hierarchy stays meaningful.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")

	// Cap blank-line runs at two (a "\n\n\n" separator at most)
	for strings.Contains(text, "\n\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n\n", "\n\n\n")
	}

	return strings.TrimSpace(text)
}
