package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFromEnv(t *testing.T) {
	assert.Equal(t, ModeFsnotify, ModeFromEnv("fsnotify"))
	assert.Equal(t, ModeFsnotify, ModeFromEnv("inotify"))
	assert.Equal(t, ModeFsnotify, ModeFromEnv("NATIVE"))
	assert.Equal(t, ModeOff, ModeFromEnv(""))
	assert.Equal(t, ModeOff, ModeFromEnv("bogus"))
}

func TestShouldSkip(t *testing.T) {
	assert.True(t, shouldSkip("/ws/.git/HEAD"))
	assert.True(t, shouldSkip("/ws/node_modules/pkg/index.js"))
	assert.True(t, shouldSkip("/ws/vendor/lib/x.go"))
	assert.True(t, shouldSkip("/ws/target/debug/bin"))
	assert.False(t, shouldSkip("/ws/internal/bridge/handler.go"))
}

func TestWatcher_NotifiesOnFileWrite(t *testing.T) {
	root := t.TempDir()

	changed := make(chan string, 8)
	w, err := New([]string{root}, func(path string) { changed <- path }, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	target := filepath.Join(root, "watched.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0o644))

	select {
	case path := <-changed:
		assert.Equal(t, target, path)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher to observe the write")
	}
}

func TestWatcher_SkipsDotDirectories(t *testing.T) {
	root := t.TempDir()
	dotDir := filepath.Join(root, ".git")
	require.NoError(t, os.MkdirAll(dotDir, 0o755))

	changed := make(chan string, 8)
	w, err := New([]string{root}, func(path string) { changed <- path }, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dotDir, "HEAD"), []byte("ref"), 0o644))

	select {
	case path := <-changed:
		t.Fatalf("expected no notification for a dot-directory write, got %s", path)
	case <-time.After(500 * time.Millisecond):
	}
}
