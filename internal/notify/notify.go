// Package notify is the single owner of user-facing error notifications.
// It debounces: at most one identical notification per user per time window,
// no matter how many call sites report the same failure in quick succession.
package notify

import (
	"sync"
	"time"
)

// Level classifies a notification for the client.
type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Notice is one pending user-facing notification.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Queue collects notices per user and suppresses duplicates within the
// window. Suppression is keyed on the exact message text.
type Queue struct {
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
	pending  map[string][]Notice
}

// NewQueue creates a Queue. A non-positive window disables deduplication.
func NewQueue(window time.Duration) *Queue {
	return &Queue{
		window:   window,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
		pending:  make(map[string][]Notice),
	}
}

// Push enqueues a notification for the user. It reports false when an
// identical message was already pushed within the window and was suppressed.
func (q *Queue) Push(userID string, level Level, message string) bool {
	now := q.now()
	key := userID + "\x00" + message

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.window > 0 {
		if seen, ok := q.lastSeen[key]; ok && now.Sub(seen) < q.window {
			return false
		}
	}
	q.lastSeen[key] = now
	q.pending[userID] = append(q.pending[userID], Notice{
		Level:   level,
		Message: message,
		At:      now,
	})
	q.pruneLocked(now)
	return true
}

// Drain returns and clears the user's pending notifications.
func (q *Queue) Drain(userID string) []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	notices := q.pending[userID]
	delete(q.pending, userID)
	return notices
}

// pruneLocked drops dedup records older than the window so the map does not
// grow with every distinct message ever pushed. Caller holds q.mu.
func (q *Queue) pruneLocked(now time.Time) {
	if q.window <= 0 {
		return
	}
	for key, seen := range q.lastSeen {
		if now.Sub(seen) >= q.window {
			delete(q.lastSeen, key)
		}
	}
}
