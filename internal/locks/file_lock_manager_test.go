package locks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_FreshLock(t *testing.T) {
	m := NewManager(t.TempDir())
	outcome, stale, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)
	assert.False(t, stale)
}

func TestAcquire_AlreadyHeldBySelf(t *testing.T) {
	m := NewManager(t.TempDir())
	_, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)

	outcome, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHeldBySelf, outcome)
}

func TestAcquire_HeldByOtherTimesOutAfterPolling(t *testing.T) {
	m := NewManager(t.TempDir())
	_, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)

	start := time.Now()
	_, _, err = m.Acquire("/ws/main.go", "bob", 1)
	elapsed := time.Since(start)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "held by another owner")
	assert.GreaterOrEqual(t, elapsed, PollInterval, "Acquire must poll at least once before giving up")
}

func TestAcquire_ReclaimsStaleLock(t *testing.T) {
	m := NewManager(t.TempDir())
	lockPath := m.lockPath("/ws/main.go")
	require.NoError(t, atomicWriteJSON(lockPath, LockState{
		Owner:        "alice",
		Path:         "/ws/main.go",
		AcquiredAt:   time.Now().Unix() - int64(DefaultTimeoutSecs+DefaultGraceSecs+StalenessMarginSecs) - 1,
		LastActivity: time.Now().Unix() - int64(DefaultTimeoutSecs+DefaultGraceSecs+StalenessMarginSecs) - 1,
	}))

	outcome, _, err := m.Acquire("/ws/main.go", "bob", 0)
	require.NoError(t, err)
	assert.Equal(t, ReclaimedStale, outcome)
}

func TestRelease_WrongOwnerRejected(t *testing.T) {
	m := NewManager(t.TempDir())
	_, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)

	err = m.Release("/ws/main.go", "bob", 0)
	assert.Error(t, err)
}

func TestRelease_NoGrace_ThenReacquireSucceeds(t *testing.T) {
	m := NewManager(t.TempDir())
	_, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)
	require.NoError(t, m.Release("/ws/main.go", "alice", 0))

	outcome, _, err := m.Acquire("/ws/main.go", "bob", 0)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)
}

func TestRelease_WithGrace_SameOwnerReacquiresImmediately(t *testing.T) {
	m := NewManager(t.TempDir())
	_, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)
	require.NoError(t, m.Release("/ws/main.go", "alice", time.Second))

	outcome, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHeldBySelf, outcome)
}

func TestRelease_WithGrace_OtherOwnerWaitsOutTheGrace(t *testing.T) {
	m := NewManager(t.TempDir())
	_, _, err := m.Acquire("/ws/main.go", "alice", 0)
	require.NoError(t, err)
	require.NoError(t, m.Release("/ws/main.go", "alice", 0))

	lockPath := m.lockPath("/ws/main.go")
	now := time.Now().Unix()
	require.NoError(t, atomicWriteJSON(lockPath, LockState{
		Owner:        "alice",
		Path:         "/ws/main.go",
		AcquiredAt:   now,
		GraceUntil:   now + 1,
		LastActivity: now,
	}))

	start := time.Now()
	outcome, _, err := m.Acquire("/ws/main.go", "bob", 2)
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Equal(t, ReclaimedStale, outcome)
	assert.GreaterOrEqual(t, elapsed, PollInterval)
}

func TestCheckStaleRead(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.TrackRead("/ws/main.go", "alice"))

	stale, err := m.CheckStaleRead("/ws/main.go", "alice")
	require.NoError(t, err)
	assert.False(t, stale, "no lock exists yet, so the read cannot be stale")

	time.Sleep(1100 * time.Millisecond)
	_, _, err = m.Acquire("/ws/main.go", "bob", 0)
	require.NoError(t, err)

	stale, err = m.CheckStaleRead("/ws/main.go", "alice")
	require.NoError(t, err)
	assert.True(t, stale, "alice read before bob's lock was acquired")
}

func TestOwnerID_FallsBackWhenEmpty(t *testing.T) {
	m := NewManager(t.TempDir())
	outcome, _, err := m.Acquire("/ws/main.go", "", 0)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)

	outcome, _, err = m.Acquire("/ws/main.go", "", 0)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHeldBySelf, outcome)
}
