package mock

import (
	"context"
	"sync"

	"github.com/poiesic/quaero/ai"
)

// MockClassifier is a test double for ai.Classifier.
type MockClassifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, returns ai.DocumentTypeGeneric.
	ClassifyFunc func(ctx context.Context, text string) (string, error)

	// ExtractFieldsFunc is called by ExtractFields if set.
	// If nil, returns an empty map.
	ExtractFieldsFunc func(ctx context.Context, text, documentType string) (map[string]string, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.Classifier = (*MockClassifier)(nil)

// NewMockClassifier creates a classifier that labels everything generic.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify returns the injected or default document type.
func (m *MockClassifier) Classify(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ClassifyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return ai.DocumentTypeGeneric, nil
}

// ExtractFields returns the injected or default field map.
func (m *MockClassifier) ExtractFields(ctx context.Context, text, documentType string) (map[string]string, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ExtractFieldsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, documentType)
	}
	return map[string]string{}, nil
}

// CallCount returns the number of times any method was called.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ClassifyFunc = nil
	m.ExtractFieldsFunc = nil
}
