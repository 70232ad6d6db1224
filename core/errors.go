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

import "errors"

// Pipeline error taxonomy. Component errors wrap these so callers can use errors.Is.
var (
	// ErrExtractionEmpty indicates a document produced no text. It is terminal.
	ErrExtractionEmpty = errors.New("extracted text is empty")

	// ErrChunking indicates the chunker rejected its input.
	ErrChunking = errors.New("chunking failed")

	// ErrEmbedding indicates embedding generation failed for a non-device reason,
	// or both the original call and the fallback retry failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore indicates a vector store or network failure.
	ErrStore = errors.New("vector store failure")

	// ErrNoRelevantResults indicates retrieval found nothing above threshold.
	// It is an outcome, not a failure.
	ErrNoRelevantResults = errors.New("no relevant results")

	// ErrGeneration indicates the generation service failed.
	ErrGeneration = errors.New("generation failed")
)

// Domain validation errors
var (
	// ErrInvalidPoint indicates an IndexedPoint failed validation.
	ErrInvalidPoint = errors.New("invalid indexed point")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentID indicates the document identifier is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyVector indicates a point has no vector.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
