package mock

import (
	"context"
	"sync"

	"github.com/poiesic/quaero/ai"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Response is returned.
	GenerateFunc func(ctx context.Context, prompt string, temperature float64) (string, error)

	// Response is the canned answer used when GenerateFunc is nil.
	Response string

	mu      sync.Mutex
	prompts []string
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a generator that always answers response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// Generate records the prompt and returns the configured answer.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, temperature)
	}
	return m.Response, nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded prompts and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.GenerateFunc = nil
}
