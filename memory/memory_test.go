package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/quaero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(i int) core.ConversationTurn {
	return core.ConversationTurn{User: fmt.Sprintf("question %d", i), Assistant: fmt.Sprintf("answer %d", i)}
}

func TestNewInMemory(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, m.Capacity())

	m, err = NewInMemory(WithCapacity(5))
	require.NoError(t, err)
	assert.Equal(t, 5, m.Capacity())

	_, err = NewInMemory(WithCapacity(0))
	assert.Error(t, err)
}

func TestInMemory_AppendAndGet(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	assert.Nil(t, m.Get("alice"))

	m.Append("alice", turn(1))
	m.Append("alice", turn(2))
	m.Append("bob", turn(1))

	history := m.Get("alice")
	require.Len(t, history, 2)
	assert.Equal(t, "question 1", history[0].User)
	assert.Equal(t, "question 2", history[1].User)
	assert.False(t, history[0].At.IsZero())
	assert.Len(t, m.Get("bob"), 1)
}

func TestInMemory_KeepsGivenTimestamp(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.Append("alice", core.ConversationTurn{User: "q", Assistant: "a", At: at})
	assert.Equal(t, at, m.Get("alice")[0].At)
}

func TestInMemory_GetReturnsCopy(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	m.Append("alice", turn(1))
	history := m.Get("alice")
	history[0].User = "changed"

	assert.Equal(t, "question 1", m.Get("alice")[0].User)
}

func TestInMemory_EvictsOldestBeyondCapacity(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	for i := 1; i <= DefaultCapacity; i++ {
		m.Append("alice", turn(i))
	}
	require.Len(t, m.Get("alice"), DefaultCapacity)
	assert.Equal(t, "question 1", m.Get("alice")[0].User)

	m.Append("alice", turn(21))
	history := m.Get("alice")
	require.Len(t, history, DefaultCapacity)
	assert.Equal(t, "question 2", history[0].User)
	assert.Equal(t, "question 21", history[len(history)-1].User)

	for i := 22; i <= 60; i++ {
		m.Append("alice", turn(i))
	}
	history = m.Get("alice")
	require.Len(t, history, DefaultCapacity)
	assert.Equal(t, "question 41", history[0].User)
}

func TestInMemory_Clear(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	m.Append("alice", turn(1))
	m.Append("alice", turn(2))
	m.Append("bob", turn(1))

	assert.Equal(t, 2, m.Clear("alice"))
	assert.Nil(t, m.Get("alice"))
	assert.Len(t, m.Get("bob"), 1)
	assert.Zero(t, m.Clear("alice"))
	assert.Zero(t, m.Clear("nobody"))
}

func TestInMemory_ClearAll(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	m.Append("alice", turn(1))
	m.Append("alice", turn(2))
	m.Append("bob", turn(1))

	assert.Equal(t, 3, m.ClearAll())
	assert.Equal(t, Stats{PerUser: map[string]int{}}, m.Stats())
	assert.Zero(t, m.ClearAll())
}

func TestInMemory_Stats(t *testing.T) {
	m, err := NewInMemory(WithCapacity(3))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		m.Append("alice", turn(i))
	}
	m.Append("bob", turn(0))

	stats := m.Stats()
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 4, stats.TotalTurns)
	assert.Equal(t, map[string]int{"alice": 3, "bob": 1}, stats.PerUser)
}

func TestInMemory_ConcurrentUsers(t *testing.T) {
	m, err := NewInMemory()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		user := fmt.Sprintf("user-%d", u)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.Append(user, turn(i))
				_ = m.Get(user)
				_ = m.Stats()
			}
		}()
	}
	wg.Wait()

	stats := m.Stats()
	assert.Equal(t, 8, stats.Users)
	assert.Equal(t, 8*DefaultCapacity, stats.TotalTurns)
	for _, n := range stats.PerUser {
		assert.Equal(t, DefaultCapacity, n)
	}
}
