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


// Package ai provides the embedding abstraction used by the ingestion
// pipeline and the query path.
//
// The package defines the Embedder interface and its configuration. The
// embedding provider is treated as an external capability: the pipeline only
// relies on the contract that EmbedTexts is order-preserving and returns one
// fixed-dimension vector per input.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//     (OpenAI, Ollama, LocalAI, vLLM), with transparent splitting of large
//     inputs into provider-sized sub-batches.
//   - ai/mock: Deterministic test double for unit testing without external
//     dependencies.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder INTERFACE
// to enforce abstraction and prevent accidental coupling to concrete
// implementations.
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable test assertions and behavior injection via the mock's public fields
// (EmbedTextsFunc, CallCount, Reset).
package ai
