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

package ingestion

import (
	"context"

	"github.com/poiesic/quaero/core"
)

// job carries one document and its intermediate results through the stages.
type job struct {
	doc    *core.Document
	text   string
	fields string // JSON-encoded structured fields
	chunks []core.Chunk
	vecs   [][]float32
}

// processor is one step of document ingestion.
type processor interface {
	// stage names the step in failure records.
	stage() core.Stage

	// states returns the document states recorded before and after the step.
	// An empty state is not recorded.
	states() (before, after core.DocumentState)

	// process advances the job. A returned error fails the document.
	process(ctx context.Context, j *job) error
}
