package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueAt(window time.Duration, start time.Time) (*Queue, *time.Time) {
	q := NewQueue(window)
	clock := start
	q.now = func() time.Time { return clock }
	return q, &clock
}

func TestPush_SuppressesDuplicateWithinWindow(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	q, clock := queueAt(3*time.Second, start)

	assert.True(t, q.Push("u1", LevelError, "cannot reach server"))
	assert.False(t, q.Push("u1", LevelError, "cannot reach server"))

	*clock = start.Add(time.Second)
	assert.False(t, q.Push("u1", LevelError, "cannot reach server"))

	notices := q.Drain("u1")
	require.Len(t, notices, 1)
	assert.Equal(t, "cannot reach server", notices[0].Message)
	assert.Equal(t, LevelError, notices[0].Level)
}

func TestPush_DifferentMessagesAreNotSuppressed(t *testing.T) {
	q, _ := queueAt(3*time.Second, time.Now())

	assert.True(t, q.Push("u1", LevelError, "cannot reach server"))
	assert.True(t, q.Push("u1", LevelError, "invalid coupon code"))

	assert.Len(t, q.Drain("u1"), 2)
}

func TestPush_WindowExpiryAllowsRepeat(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	q, clock := queueAt(3*time.Second, start)

	assert.True(t, q.Push("u1", LevelError, "cannot reach server"))
	*clock = start.Add(3 * time.Second)
	assert.True(t, q.Push("u1", LevelError, "cannot reach server"))

	assert.Len(t, q.Drain("u1"), 2)
}

func TestPush_UsersDoNotShareSuppression(t *testing.T) {
	q, _ := queueAt(3*time.Second, time.Now())

	assert.True(t, q.Push("u1", LevelError, "cannot reach server"))
	assert.True(t, q.Push("u2", LevelError, "cannot reach server"))
}

func TestPush_ZeroWindowDisablesDedup(t *testing.T) {
	q, _ := queueAt(0, time.Now())

	assert.True(t, q.Push("u1", LevelInfo, "order placed"))
	assert.True(t, q.Push("u1", LevelInfo, "order placed"))
}

func TestDrain_ClearsPending(t *testing.T) {
	q, _ := queueAt(time.Second, time.Now())

	q.Push("u1", LevelError, "cannot reach server")
	require.Len(t, q.Drain("u1"), 1)
	assert.Empty(t, q.Drain("u1"))
}
