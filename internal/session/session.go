// Package session tracks the minimal identity of one running Catenary
// instance, trimmed from original_source/src/session.rs: only the fields a
// `status` tool needs to answer "what am I" are kept. The full event
// broadcast log and the `list`/`monitor` terminal dashboards are out of
// scope per spec.md §1 and are not built.
package session

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Info is a session's identifying metadata.
type Info struct {
	ID            string
	PID           int
	Workspace     string
	StartedAt     time.Time
	ClientName    string
	ClientVersion string
}

// Session wraps Info behind a mutex so the MCP initialize handshake can
// fill in the client name/version after the session is created.
type Session struct {
	mu   sync.RWMutex
	info Info
}

// New starts a session for the given primary workspace root.
func New(workspace string) *Session {
	return &Session{info: Info{
		ID:        uuid.NewString(),
		PID:       os.Getpid(),
		Workspace: workspace,
		StartedAt: time.Now(),
	}}
}

// SetClient records the connected MCP client's name/version, learned from
// the initialize request.
func (s *Session) SetClient(name, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info.ClientName = name
	s.info.ClientVersion = version
}

// Snapshot returns a copy of the session's current info.
func (s *Session) Snapshot() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}
