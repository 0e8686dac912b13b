// Package locks implements filesystem advisory locks for files under
// concurrent edit by multiple MCP/LSP clients, grounded on
// original_source/src/lock.rs.
package locks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults grounded on lock.rs.
const (
	DefaultTimeoutSecs  = 180
	DefaultGraceSecs    = 30
	PollInterval        = 500 * time.Millisecond
	StalenessMarginSecs = 60
)

// AcquireOutcome is the result of attempting to acquire a lock.
type AcquireOutcome int

const (
	Acquired AcquireOutcome = iota
	AlreadyHeldBySelf
	HeldByOther
	ReclaimedStale
)

// LockState is the JSON payload written to the lock file.
type LockState struct {
	Owner        string `json:"owner"`
	Path         string `json:"path"`
	AcquiredAt   int64  `json:"acquired_at"`
	GraceUntil   int64  `json:"grace_until,omitempty"`
	LastActivity int64  `json:"last_activity"`
}

// readState is the per-reader JSON payload written to the reads directory,
// used to detect a reader that read a file before a writer's lock began.
type readState struct {
	ReadAt int64 `json:"read_at"`
}

// Manager tracks advisory locks for files under a root, one JSON file per
// locked path named by an FNV-1a hash of its canonical path.
type Manager struct {
	root    string
	ownerID string
}

// NewManager returns a Manager rooted at dir (cmd/catenary passes
// <user cache dir>/catenary; lock and read-tracking files live in its locks/
// and reads/ subdirectories). The owner identity, when the caller
// supplies none, is a process-stable UUID generated once and reused for
// every lock this instance takes (SPEC_FULL.md §10).
func NewManager(dir string) *Manager {
	return &Manager{root: dir, ownerID: uuid.NewString()}
}

// OwnerID returns the process-stable fallback owner identity.
func (m *Manager) OwnerID() string { return m.ownerID }

func unixNow() int64 { return time.Now().Unix() }

func fnv1aHash(s string) string {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return strconv.FormatUint(h, 16)
}

func (m *Manager) locksDir() string {
	return filepath.Join(m.root, "locks")
}

func (m *Manager) readsDir() string {
	return filepath.Join(m.root, "reads")
}

func (m *Manager) lockPath(targetPath string) string {
	return filepath.Join(m.locksDir(), fnv1aHash(targetPath)+".json")
}

func (m *Manager) readLockDir(targetPath string) string {
	return filepath.Join(m.readsDir(), fnv1aHash(targetPath))
}

func atomicWriteBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("locks: creating %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("locks: creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("locks: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("locks: closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("locks: renaming into place %s: %w", path, err)
	}
	return nil
}

func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("locks: marshaling %s: %w", path, err)
	}
	return atomicWriteBytes(path, data)
}

func readLockState(path string) (*LockState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var st LockState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("locks: decoding %s: %w", path, err)
	}
	return &st, nil
}

// reclaimable reports whether a lock held by someone else may be claimed:
// its grace period has passed, or its last recorded activity is older than
// the staleness threshold for a caller requesting timeoutSecs.
func (st *LockState) reclaimable(now int64, timeoutSecs int) bool {
	if st.GraceUntil > 0 && now >= st.GraceUntil {
		return true
	}
	threshold := st.LastActivity + int64(timeoutSecs) + int64(DefaultGraceSecs) + int64(StalenessMarginSecs)
	return now > threshold
}

// Acquire attempts to take the lock for targetPath, polling every
// PollInterval until either the lock is claimed or timeoutSecs elapses.
// owner identifies the caller; an empty string falls back to the manager's
// process-stable UUID. timeoutSecs defaults to DefaultTimeoutSecs when zero
// or negative. The second return value reports a stale read: the caller
// last read targetPath before this acquisition, so it should re-read before
// editing.
func (m *Manager) Acquire(targetPath, owner string, timeoutSecs int) (AcquireOutcome, bool, error) {
	if owner == "" {
		owner = m.ownerID
	}
	if timeoutSecs <= 0 {
		timeoutSecs = DefaultTimeoutSecs
	}

	deadline := time.Now().Add(time.Duration(timeoutSecs) * time.Second)
	lockPath := m.lockPath(targetPath)

	for {
		outcome, claimed, err := m.tryClaim(lockPath, targetPath, owner, timeoutSecs)
		if err != nil {
			return 0, false, err
		}
		if claimed {
			staleRead, err := m.CheckStaleRead(targetPath, owner)
			if err != nil {
				return 0, false, err
			}
			return outcome, staleRead, nil
		}
		if time.Now().After(deadline) {
			heldSecs := int64(timeoutSecs)
			if held, err := readLockState(lockPath); err == nil && held != nil {
				heldSecs = unixNow() - held.AcquiredAt
			}
			return 0, false, fmt.Errorf("locks: %s is held by another owner (held for %ds, gave up after %ds)", targetPath, heldSecs, timeoutSecs)
		}
		time.Sleep(PollInterval)
	}
}

// tryClaim makes a single atomic check-and-claim attempt on lockPath.
func (m *Manager) tryClaim(lockPath, targetPath, owner string, timeoutSecs int) (AcquireOutcome, bool, error) {
	existing, err := readLockState(lockPath)
	if err != nil {
		return 0, false, err
	}

	now := unixNow()
	outcome := Acquired
	acquiredAt := now
	switch {
	case existing == nil:
		outcome = Acquired
	case existing.Owner == owner:
		outcome = AlreadyHeldBySelf
		acquiredAt = existing.AcquiredAt
	case existing.reclaimable(now, timeoutSecs):
		outcome = ReclaimedStale
	default:
		return 0, false, nil
	}

	state := LockState{Owner: owner, Path: targetPath, AcquiredAt: acquiredAt, LastActivity: now}
	if err := atomicWriteJSON(lockPath, state); err != nil {
		return 0, false, err
	}
	return outcome, true, nil
}

// Release relinquishes targetPath if owner currently holds it. If grace is
// zero the lock file is unlinked immediately; otherwise it is rewritten
// with grace_until = now + grace, during which the same owner may
// re-acquire instantly while other owners must still wait it out.
func (m *Manager) Release(targetPath, owner string, grace time.Duration) error {
	if owner == "" {
		owner = m.ownerID
	}
	lockPath := m.lockPath(targetPath)
	existing, err := readLockState(lockPath)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.Owner != owner {
		return fmt.Errorf("locks: %s is held by a different owner", targetPath)
	}
	if grace <= 0 {
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("locks: releasing %s: %w", targetPath, err)
		}
		return nil
	}

	now := unixNow()
	state := LockState{
		Owner:        owner,
		Path:         targetPath,
		AcquiredAt:   existing.AcquiredAt,
		GraceUntil:   now + int64(grace/time.Second),
		LastActivity: now,
	}
	return atomicWriteJSON(lockPath, state)
}

// TrackRead records that reader read targetPath at the current time, for
// later staleness comparison against a writer's lock acquisition.
func (m *Manager) TrackRead(targetPath, reader string) error {
	dir := m.readLockDir(targetPath)
	path := filepath.Join(dir, fnv1aHash(reader)+".json")
	return atomicWriteJSON(path, readState{ReadAt: unixNow()})
}

// CheckStaleRead reports whether reader's last recorded read of targetPath
// happened before the current lock (if any) was acquired — meaning the
// reader may be operating on content a writer has since locked for edit.
func (m *Manager) CheckStaleRead(targetPath, reader string) (bool, error) {
	lockPath := m.lockPath(targetPath)
	lockState, err := readLockState(lockPath)
	if err != nil {
		return false, err
	}
	if lockState == nil {
		return false, nil
	}

	readPath := filepath.Join(m.readLockDir(targetPath), fnv1aHash(reader)+".json")
	data, err := os.ReadFile(readPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	var rs readState
	if err := json.Unmarshal(data, &rs); err != nil {
		return false, fmt.Errorf("locks: decoding read record %s: %w", readPath, err)
	}
	return rs.ReadAt < lockState.AcquiredAt, nil
}

// FileMtimeMillis returns path's modification time in Unix milliseconds,
// used by callers wanting to correlate a lock's acquisition time against
// on-disk changes.
func FileMtimeMillis(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("locks: stat %s: %w", path, err)
	}
	return info.ModTime().UnixMilli(), nil
}
