package persistence

import (
	"context"
	"sync"
	"sync/atomic"
)

type memoryState struct {
	mu     sync.RWMutex
	docs   map[string]map[string][]byte
	writes atomic.Int64
}

// Memory keeps documents in process. Useful for tests and demo runs.
type Memory struct {
	st     *memoryState
	userID string
}

func NewMemory() *Memory {
	return &Memory{
		st:     &memoryState{docs: map[string]map[string][]byte{}},
		userID: "default",
	}
}

func (m *Memory) ForUser(userID string) *Memory {
	return &Memory{st: m.st, userID: userOrDefault(userID)}
}

func (m *Memory) IsConfigured() bool { return true }

func (m *Memory) Load(ctx context.Context, doc string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()
	b, ok := m.st.docs[m.userID][doc]
	return cloneBytes(b), ok, nil
}

func (m *Memory) Save(ctx context.Context, doc string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	u := m.st.docs[m.userID]
	if u == nil {
		u = map[string][]byte{}
		m.st.docs[m.userID] = u
	}
	u[doc] = cloneBytes(body)
	m.st.writes.Add(1)
	return nil
}

// Writes counts every Save across all users.
func (m *Memory) Writes() int64 { return m.st.writes.Load() }

func (m *Memory) Close() error { return nil }
