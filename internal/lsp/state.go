package lsp

import (
	"sync"
	"time"

	"github.com/markwellsdev/catenary/internal/lsptypes"
)

// ServerState is a server's overall readiness, stored as an atomic int32 so
// reads never block on the client's other locks.
type ServerState int32

const (
	StateInitializing ServerState = 0
	StateIndexing     ServerState = 1
	StateReady        ServerState = 2
	StateDead         ServerState = 3
)

// ServerStateFromU8 decodes an atomic-stored state value; any value outside
// the known range maps to StateDead rather than panicking.
func ServerStateFromU8(v int32) ServerState {
	switch v {
	case 0:
		return StateInitializing
	case 1:
		return StateIndexing
	case 2:
		return StateReady
	default:
		return StateDead
	}
}

func (s ServerState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIndexing:
		return "indexing"
	case StateReady:
		return "ready"
	default:
		return "dead"
	}
}

// ProgressState is the last known state of one active $/progress token.
type ProgressState struct {
	Title      string
	Message    *string
	Percentage *uint32
	Started    time.Time
}

// ServerStatus is the status summary exposed for a single language server.
type ServerStatus struct {
	Language            string
	State               ServerState
	ProgressTitle       *string
	ProgressMessage     *string
	ProgressPercentage  *uint32
	UptimeSeconds       uint64
}

// ProgressTracker accumulates $/progress begin/report/end notifications for
// one LspClient. All methods take the tracker's own lock; callers never
// need to hold an outer lock while calling it.
type ProgressTracker struct {
	mu     sync.Mutex
	active map[any]*ProgressState
}

// NewProgressTracker returns an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{active: make(map[any]*ProgressState)}
}

// Update folds one $/progress notification into the tracker's state.
func (t *ProgressTracker) Update(params lsptypes.ProgressParams) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := params.Token.Key()
	switch params.Value.Kind {
	case lsptypes.ProgressBegin:
		t.active[key] = &ProgressState{
			Title:      params.Value.Title,
			Message:    params.Value.Message,
			Percentage: params.Value.Percentage,
			Started:    time.Now(),
		}
	case lsptypes.ProgressReport:
		if st, ok := t.active[key]; ok {
			if params.Value.Message != nil {
				st.Message = params.Value.Message
			}
			if params.Value.Percentage != nil {
				st.Percentage = params.Value.Percentage
			}
		}
	case lsptypes.ProgressEnd:
		delete(t.active, key)
	}
}

// IsBusy reports whether any progress token is currently active.
func (t *ProgressTracker) IsBusy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active) > 0
}

// Count returns the number of currently active progress tokens.
func (t *ProgressTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// PrimaryProgress returns the active progress with the lowest percentage
// (treating an absent percentage as 0), or nil if nothing is active.
func (t *ProgressTracker) PrimaryProgress() *ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()

	var best *ProgressState
	var bestPct uint32
	for _, st := range t.active {
		pct := uint32(0)
		if st.Percentage != nil {
			pct = *st.Percentage
		}
		if best == nil || pct < bestPct {
			best = st
			bestPct = pct
		}
	}
	return best
}

// Clear drops all tracked progress, e.g. after a reconnect.
func (t *ProgressTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[any]*ProgressState)
}
