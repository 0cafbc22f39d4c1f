// Package ingestion provides pipeline orchestration for document processing.
//
// The Pipeline type drives a document through its full lifecycle:
//   - Registering the metadata record and acquiring the ingestion lease
//   - Extracting and chunking text
//   - Generating embeddings, with bounded retry
//   - Upserting vectors in ordered batches
//   - Finalizing the record as completed, or recording the failure
//
// The Deleter type removes documents from both stores in an order that
// keeps partial failures retryable. Distinct documents are processed
// concurrently via a worker pool; stages within one document run strictly
// in sequence.
package ingestion
