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

import (
	"fmt"
	"time"
)

// ValidatePoint validates an IndexedPoint before it is written to a store.
//
// Validation rules:
//   - Vector must not be empty
//   - Metadata.DocumentID must not be empty
//   - Metadata.UploadDate must not be in the future
//
// NOT validated:
//   - ID (0 is a legal hash value)
//   - Text (chunks are trimmed but may legitimately be short)
func ValidatePoint(point *IndexedPoint) error {
	if point == nil {
		return fmt.Errorf("%w: point is nil", ErrInvalidPoint)
	}

	if len(point.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, ErrEmptyVector)
	}

	if point.Metadata.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, ErrEmptyDocumentID)
	}

	if !IsValidTimestamp(point.Metadata.UploadDate) {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if doc.State == DocumentFailed && doc.FailedStage == "" {
		return fmt.Errorf("%w: failed document without stage", ErrInvalidDocument)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
