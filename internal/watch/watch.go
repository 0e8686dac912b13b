// Package watch adapts the teacher's polling file watcher into an optional,
// strictly additive change reporter: spec.md §6 states that
// ensure_open-driven change detection needs no filesystem watcher at all, so
// this package only hands changed paths to a caller-supplied callback and
// never substitutes for ensure_open. The callback cmd/catenary installs logs
// each change at debug level and triggers nothing else.
package watch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Mode selects whether and how the watcher runs, mirroring the teacher's
// FILE_WATCHER_MODE env var (cmd/lsp-session-manager/polling_watcher.go).
type Mode string

const (
	ModeOff      Mode = "off"
	ModeFsnotify Mode = "fsnotify"
)

// ModeFromEnv parses CATENARY_WATCH, defaulting to ModeOff — the watcher is
// opt-in, never load-bearing.
func ModeFromEnv(value string) Mode {
	switch strings.ToLower(value) {
	case "fsnotify", "inotify", "native":
		return ModeFsnotify
	default:
		return ModeOff
	}
}

// ChangeFunc is invoked with the path of a file that changed on disk.
type ChangeFunc func(path string)

// Watcher recursively watches a set of roots via fsnotify and invokes
// onChange for create/write events on files and directories alike, skipping dot- and
// vendor directories the same way the teacher's polling scan did.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange ChangeFunc
	log      zerolog.Logger
	done     chan struct{}
}

// New starts watching roots. Returns nil and the error if fsnotify cannot be
// initialized (e.g. inotify instance limit reached); a root that fails to
// register is logged and skipped.
func New(roots []string, onChange ChangeFunc, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fs: fsw, onChange: onChange, log: log, done: make(chan struct{})}

	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			log.Warn().Err(err).Str("root", root).Msg("watch: failed to add root")
		}
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && shouldSkip(path) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if shouldSkip(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if w.onChange != nil {
					w.onChange(event.Name)
				}
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Debug().Err(err).Msg("watch: fsnotify error")
		}
	}
}

func shouldSkip(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") || part == "node_modules" || part == "vendor" || part == "target" {
			return true
		}
	}
	return false
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
