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


// Package chunker splits extracted document text into overlapping passages.
//
// The Splitter tries a priority list of separators (paragraph break, line
// break, sentence terminator, space, character). Pieces still longer than the
// chunk size are split again with the remaining separators, and adjacent small
// pieces are merged back together until the next one would not fit. Every
// chunk after the first starts with up to overlap characters carried over from
// the end of the previous one.
//
// Lengths are measured in runes. Every produced chunk is at most chunkSize
// runes long. Overlap is best effort: when a separator boundary falls inside
// the overlap window the carried text can be shorter than requested.
package chunker
