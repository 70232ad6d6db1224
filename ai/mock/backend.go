package mock

import (
	"context"
	"sync"

	"github.com/poiesic/quaero/ai"
	"github.com/poiesic/quaero/core"
)

// MockBackend is a test double for ai.EmbeddingBackend.
type MockBackend struct {
	// EmbedFunc is called by Embed if set.
	EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

	Device    core.Device
	Dimension int

	mu      sync.Mutex
	batches []int
	closed  bool
}

var _ ai.EmbeddingBackend = (*MockBackend)(nil)

// Embed returns bag-of-words vectors unless EmbedFunc is set.
func (b *MockBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	b.batches = append(b.batches, len(texts))
	fn := b.EmbedFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = BagOfWordsVector(t, b.Dimension)
	}
	return out, nil
}

// Close marks the backend closed.
func (b *MockBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Batches returns the size of every Embed call so far.
func (b *MockBackend) Batches() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.batches...)
}

// Closed reports whether Close was called.
func (b *MockBackend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// MockLoader hands out MockBackends and records every load.
type MockLoader struct {
	// LoadErr, when set for a device, is returned instead of a backend.
	LoadErr map[core.Device]error
	// Configure, if set, is applied to each new backend before it is returned.
	Configure func(*MockBackend)
	Dimension int

	mu     sync.Mutex
	loads  []core.Device
	latest map[core.Device]*MockBackend
}

// NewMockLoader returns a loader producing backends of the given dimension.
func NewMockLoader(dimension int) *MockLoader {
	return &MockLoader{
		LoadErr:   make(map[core.Device]error),
		Dimension: dimension,
		latest:    make(map[core.Device]*MockBackend),
	}
}

// Load implements ai.BackendLoader.
func (l *MockLoader) Load(_ context.Context, device core.Device) (ai.EmbeddingBackend, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, device)
	if err := l.LoadErr[device]; err != nil {
		return nil, err
	}
	b := &MockBackend{Device: device, Dimension: l.Dimension}
	if l.Configure != nil {
		l.Configure(b)
	}
	l.latest[device] = b
	return b, nil
}

// Loads returns the devices requested so far, in order.
func (l *MockLoader) Loads() []core.Device {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Device(nil), l.loads...)
}

// Backend returns the most recently loaded backend for device, or nil.
func (l *MockLoader) Backend(device core.Device) *MockBackend {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest[device]
}
