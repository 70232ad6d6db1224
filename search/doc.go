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


// Package search retrieves and ranks indexed chunks for a query.
//
// A Retriever embeds the query, asks the vector store for the nearest
// points above a base relevance threshold, and passes the hits through a
// Ranker. The Ranker applies gap filtering: when the best hit clearly
// dominates the runner-up, weaker hits below a secondary cutoff are
// dropped so they do not dilute the generation context.
//
// A SearchMonitor can observe each stage, which the CLI uses for its
// --explain output.
package search
