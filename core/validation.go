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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - DocumentID, Title, Filename, FileType must not be empty
//   - FileSize must not be negative
//   - Status must be a known value
//
// NOT validated (populated on completion by the pipeline):
//   - ProcessedAt, ChunkCount, VectorCount, ContentLength, Checksum
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if doc.FileType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFileType)
	}

	if doc.FileSize < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidFileSize)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a valid value.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusUploading, StatusProcessing, StatusCompleted, StatusError:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// ValidateTransition checks that moving from one status to another is
// allowed by the lifecycle state machine:
//
//	uploading -> processing -> {completed | error}
//
// A document in the error state may be reclaimed by a fresh ingestion
// attempt, which re-enters processing.
func ValidateTransition(from, to DocumentStatus) error {
	ok := false
	switch from {
	case StatusUploading:
		ok = to == StatusProcessing || to == StatusError
	case StatusProcessing:
		ok = to == StatusCompleted || to == StatusError
	case StatusError:
		ok = to == StatusProcessing
	case StatusCompleted:
		ok = false
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
