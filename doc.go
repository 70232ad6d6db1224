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

// Package quaero indexes documents into a vector store and answers questions
// about them with retrieval-augmented generation.
//
// An Engine ties the pieces together: the ingestion pipeline, the embedding
// gateway, the vector store, the gap-filtering retriever, conversation memory
// and the query orchestrator.
//
// # Opening an engine
//
//	cfg, err := config.Load("quaero.yaml")
//	if err != nil {
//	    return err
//	}
//	engine, err := quaero.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
// # Indexing and asking
//
//	if err := engine.StartIngestion(ctx, text, "doc-1", "report.txt"); err != nil {
//	    return err
//	}
//	engine.Wait()
//
//	answer, sources, err := engine.Query(ctx, "alice", "How much did revenue grow?", 5, 0.7)
//
// Ingestion is fire-and-forget. Its outcome, including the stage that
// failed, is available from DocumentStatus.
package quaero
