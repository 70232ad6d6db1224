package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/poiesic/quaero/core"
)

const (
	// DefaultCapacity is the number of turns kept per user.
	DefaultCapacity = 20

	// DefaultUserID is used for callers that do not identify a user.
	DefaultUserID = "default"
)

// Store holds conversation turns per user identity.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a turn to the end of the user's history, evicting the
	// oldest turns beyond capacity.
	Append(userID string, turn core.ConversationTurn)

	// Get returns a copy of the user's history, oldest first.
	Get(userID string) []core.ConversationTurn

	// Clear drops the user's history and returns the number of turns removed.
	Clear(userID string) int

	// ClearAll drops every history and returns the number of turns removed.
	ClearAll() int

	// Stats summarizes the stored histories.
	Stats() Stats
}

// Stats aggregates history sizes.
type Stats struct {
	Users      int
	TotalTurns int
	PerUser    map[string]int
}

// InMemory is a Store backed by a map guarded by a RWMutex.
type InMemory struct {
	capacity int

	mu        sync.RWMutex
	histories map[string][]core.ConversationTurn
}

var _ Store = (*InMemory)(nil)

// Option configures an InMemory store.
type Option func(*InMemory) error

// WithCapacity sets the maximum number of turns kept per user.
// Default is DefaultCapacity.
func WithCapacity(n int) Option {
	return func(m *InMemory) error {
		if n < 1 {
			return fmt.Errorf("capacity must be at least 1, got %d", n)
		}
		m.capacity = n
		return nil
	}
}

// NewInMemory creates an empty in-memory store.
func NewInMemory(opts ...Option) (*InMemory, error) {
	m := &InMemory{
		capacity:  DefaultCapacity,
		histories: make(map[string][]core.ConversationTurn),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Capacity returns the per-user turn limit.
func (m *InMemory) Capacity() int {
	return m.capacity
}

func (m *InMemory) Append(userID string, turn core.ConversationTurn) {
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.histories[userID], turn)
	if over := len(history) - m.capacity; over > 0 {
		// Copy so the evicted prefix can be collected.
		history = append([]core.ConversationTurn(nil), history[over:]...)
	}
	m.histories[userID] = history
}

func (m *InMemory) Get(userID string) []core.ConversationTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.histories[userID]
	if len(history) == 0 {
		return nil
	}
	out := make([]core.ConversationTurn, len(history))
	copy(out, history)
	return out
}

func (m *InMemory) Clear(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.histories[userID])
	delete(m.histories, userID)
	return n
}

func (m *InMemory) ClearAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, history := range m.histories {
		n += len(history)
	}
	clear(m.histories)
	return n
}

func (m *InMemory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{PerUser: make(map[string]int, len(m.histories))}
	for user, history := range m.histories {
		stats.PerUser[user] = len(history)
		stats.TotalTurns += len(history)
	}
	stats.Users = len(stats.PerUser)
	return stats
}
