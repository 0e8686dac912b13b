package session

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_PopulatesIdentity(t *testing.T) {
	s := New("/workspace/root")
	snap := s.Snapshot()

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, os.Getpid(), snap.PID)
	assert.Equal(t, "/workspace/root", snap.Workspace)
	assert.False(t, snap.StartedAt.IsZero())
	assert.Empty(t, snap.ClientName)
}

func TestNew_GeneratesDistinctIDs(t *testing.T) {
	a := New("/a").Snapshot()
	b := New("/b").Snapshot()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSetClient_UpdatesSnapshot(t *testing.T) {
	s := New("/workspace/root")
	s.SetClient("some-editor", "1.2.3")

	snap := s.Snapshot()
	assert.Equal(t, "some-editor", snap.ClientName)
	assert.Equal(t, "1.2.3", snap.ClientVersion)
}
