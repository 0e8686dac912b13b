// Package docsync tracks which documents are open with which language
// server and compares on-disk mtime/content to decide whether a textDocument
// notification needs to be sent before a tool request fires.
package docsync

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/markwellsdev/catenary/internal/lsptypes"
)

// extensionToLanguageID maps an extension to the LSP languageId sent on
// didOpen, grounded on original_source/src/bridge/document_manager.rs's
// detect_language_id table.
var extensionToLanguageID = map[string]string{
	"go":     "go",
	"py":     "python",
	"pyi":    "python",
	"rs":     "rust",
	"ts":     "typescript",
	"tsx":    "typescriptreact",
	"js":     "javascript",
	"jsx":    "javascriptreact",
	"c":      "c",
	"h":      "c",
	"cpp":    "cpp",
	"cc":     "cpp",
	"hpp":    "cpp",
	"java":   "java",
	"rb":     "ruby",
	"php":    "php",
	"lua":    "lua",
	"ex":     "elixir",
	"exs":    "elixir",
	"hs":     "haskell",
	"ml":     "ocaml",
	"zig":    "zig",
	"cs":     "csharp",
	"swift":  "swift",
	"kt":     "kotlin",
	"scala":  "scala",
	"toml":   "toml",
	"json":   "json",
	"yaml":   "yaml",
	"yml":    "yaml",
	"md":     "markdown",
}

// DetectLanguageID returns the LSP languageId for path's extension, or
// "plaintext" if unrecognized.
func DetectLanguageID(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if id, ok := extensionToLanguageID[ext]; ok {
		return id
	}
	return "plaintext"
}

// NotificationKind discriminates the one notification EnsureOpen asks the
// caller to send.
type NotificationKind int

const (
	NoNotification NotificationKind = iota
	OpenNotification
	ChangeNotification
)

// Notification is what EnsureOpen returns when a document needs to be
// (re)synced with the server before a request against it can proceed.
type Notification struct {
	Kind   NotificationKind
	Open   lsptypes.DidOpenTextDocumentParams
	Change lsptypes.DidChangeTextDocumentParams
}

type openDocument struct {
	uri         string
	version     int32
	mtime       time.Time
	size        int64
	content     string
	lastAccess  time.Time
}

// Manager tracks open documents for one language server connection.
type Manager struct {
	mu   sync.Mutex
	docs map[string]*openDocument // keyed by absolute path
}

// NewManager returns an empty document manager.
func NewManager() *Manager {
	return &Manager{docs: make(map[string]*openDocument)}
}

// PathToURI converts an absolute filesystem path to a file:// URI.
func PathToURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// URIForPath returns the URI Catenary would use for path, whether or not
// it's currently open.
func URIForPath(path string) string {
	return PathToURI(path)
}

// HasOpenDocuments reports whether any document is currently tracked open.
func (m *Manager) HasOpenDocuments() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs) > 0
}

// EnsureOpen compares the file's on-disk mtime and content against what was
// last synced to the server and returns the notification to send, if any.
// A file never seen before yields an Open notification; a file whose mtime
// is newer and whose content differs since last sync yields a Change notification with the
// full new content (whole-document replacement, per spec.md §4.4); an
// unchanged file yields NoNotification.
func (m *Manager) EnsureOpen(path string) (*Notification, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("docsync: stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docsync: reading %s: %w", path, err)
	}

	uri := PathToURI(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.docs[path]
	now := time.Now()

	if !exists {
		doc = &openDocument{uri: uri, version: 1, mtime: info.ModTime(), size: info.Size(), content: string(content), lastAccess: now}
		m.docs[path] = doc
		return &Notification{
			Kind: OpenNotification,
			Open: lsptypes.DidOpenTextDocumentParams{
				TextDocument: lsptypes.TextDocumentItem{
					URI:        uri,
					LanguageID: DetectLanguageID(path),
					Version:    1,
					Text:       string(content),
				},
			},
		}, nil
	}

	doc.lastAccess = now
	if !info.ModTime().After(doc.mtime) || doc.content == string(content) {
		return nil, nil
	}

	doc.version++
	doc.mtime = info.ModTime()
	doc.size = info.Size()
	doc.content = string(content)

	return &Notification{
		Kind: ChangeNotification,
		Change: lsptypes.DidChangeTextDocumentParams{
			TextDocument: lsptypes.VersionedTextDocumentIdentifier{URI: uri, Version: doc.version},
			ContentChanges: []lsptypes.TextDocumentContentChangeEvent{
				{Text: string(content)},
			},
		},
	}, nil
}

// Close forgets a document; the caller is responsible for sending the
// matching didClose notification to the server.
func (m *Manager) Close(path string) lsptypes.DidCloseTextDocumentParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	uri := PathToURI(path)
	delete(m.docs, path)
	return lsptypes.DidCloseTextDocumentParams{TextDocument: lsptypes.TextDocumentIdentifier{URI: uri}}
}

// StaleDocuments returns the paths of documents not accessed within idle,
// for the periodic cleanup task described in SPEC_FULL.md §5.9.
func (m *Manager) StaleDocuments(idle time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-idle)
	var stale []string
	for path, doc := range m.docs {
		if doc.lastAccess.Before(cutoff) {
			stale = append(stale, path)
		}
	}
	return stale
}
