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

// Package storage defines the persistence contracts used by quaero.
//
// Two kinds of state are kept:
//
//   - VectorStore holds indexed points (a vector plus chunk metadata) and
//     answers nearest-neighbour queries. It is implemented by the embedded
//     BadgerDB adapter in storage/badger and by the Qdrant REST adapter in
//     storage/qdrant.
//   - DocumentRepository tracks each uploaded document through ingestion so
//     that failures stay observable after the fact. CheckpointRepository lets
//     long admin passes such as reindexing resume where they stopped.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	stores, err := badger.Open("/path/to/db")
//	vectors := stores.Vectors // storage.VectorStore
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Failures
//
// Every VectorStore failure is returned as a *StoreError, which unwraps to
// core.ErrStore and to the underlying cause:
//
//	if errors.Is(err, core.ErrStore) { ... }
//
// No operation retries internally.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package storage
