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


// Package storage provides the metadata storage abstraction for docvault.
//
// This package defines the repository interface that decouples document
// record persistence from the ingestion and deletion coordinators. It allows
// different backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support and lifecycle management
//   - DocumentRepository: CRUD over document records plus the ingestion
//     lease operation BeginAttempt
//
// The repository owns the document lifecycle exclusively: status values move
// uploading -> processing -> {completed | error}, with error re-enterable by
// a fresh ingestion attempt. Vector records live in a separate store this
// package knows nothing about; cross-store consistency is the coordinators'
// concern.
//
// # Usage
//
// Create a repository instance:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo, err := badger.NewDocumentRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
