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

package badger

import (
	"encoding/binary"

	"github.com/poiesic/quaero/core"
)

const (
	pointPrefix      = "point:"
	docPointPrefix   = "docpt:"
	documentPrefix   = "doc:"
	checkpointPrefix = "chkpt:"

	// docPointSep ends the document ID inside an index key. Document IDs may
	// contain ':' so the separator is a byte they cannot hold.
	docPointSep = 0x00
)

// makePointKey generates a key for a point by ID.
// Format: point:<8-byte big-endian id>, so keys iterate in ID order.
func makePointKey(id core.ID) []byte {
	buf := make([]byte, len(pointPrefix)+8)
	offset := copy(buf, pointPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// pointIDFromKey recovers the ID from a point key.
func pointIDFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(pointPrefix):]))
}

// makePartialDocPointKey generates the index prefix shared by all points of a document.
// Format: docpt:<documentID>\x00
func makePartialDocPointKey(documentID string) []byte {
	buf := make([]byte, 0, len(docPointPrefix)+len(documentID)+1)
	buf = append(buf, docPointPrefix...)
	buf = append(buf, documentID...)
	return append(buf, docPointSep)
}

// makeDocPointKey generates an index key linking a document to one of its points.
// Format: docpt:<documentID>\x00<8-byte big-endian point id>
func makeDocPointKey(documentID string, id core.ID) []byte {
	prefix := makePartialDocPointKey(documentID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDocumentKey generates a key for a document registry record.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// makeCheckpointKey generates a key for a named checkpoint.
func makeCheckpointKey(name string) []byte {
	return []byte(checkpointPrefix + name)
}
