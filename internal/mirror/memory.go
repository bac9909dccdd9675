package mirror

import (
	"context"
	"sync"
)

// Memory is the default in-process Mirror.
type Memory struct {
	mu     sync.RWMutex
	cap    int
	byUser map[string][]Entry
}

var _ Mirror = (*Memory)(nil)

// NewMemory creates an in-memory mirror holding at most cap entries per
// user. A non-positive cap falls back to 50.
func NewMemory(cap int) *Memory {
	if cap <= 0 {
		cap = 50
	}
	return &Memory{cap: cap, byUser: make(map[string][]Entry)}
}

// Prepend inserts e at the head of the user's list and trims to the cap.
func (m *Memory) Prepend(_ context.Context, userID string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]Entry{e}, m.byUser[userID]...)
	if len(list) > m.cap {
		list = list[:m.cap]
	}
	m.byUser[userID] = list
	return nil
}

// Recent returns up to limit entries, most recent first.
func (m *Memory) Recent(_ context.Context, userID string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byUser[userID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]Entry, limit)
	copy(out, list[:limit])
	return out, nil
}
