package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForFile(t *testing.T) {
	lang, ok := LanguageForFile("/a/b/main.go")
	require.True(t, ok)
	assert.Equal(t, "go", lang)

	lang, ok = LanguageForFile("/a/b/Component.TSX")
	require.True(t, ok)
	assert.Equal(t, "typescript", lang)

	_, ok = LanguageForFile("/a/b/README")
	assert.False(t, ok)
}

func allConfiguredKeys() map[string]bool {
	keys := make(map[string]bool, len(extensionToLanguage)+len(filenameToLanguage))
	for _, lang := range extensionToLanguage {
		keys[lang] = true
	}
	for _, lang := range filenameToLanguage {
		keys[lang] = true
	}
	return keys
}

func TestDetectWorkspaceLanguages_FindsFilesAtAllowedDepth(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	nested := filepath.Join(root, "pkg", "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "script.py"), []byte("x = 1\n"), 0o644))

	found, err := DetectWorkspaceLanguages([]string{root}, allConfiguredKeys())
	require.NoError(t, err)
	assert.True(t, found["go"])
	assert.True(t, found["python"])
}

func TestDetectWorkspaceLanguages_SkipsVendorAndDotDirs(t *testing.T) {
	root := t.TempDir()
	vendorDir := filepath.Join(root, "vendor")
	require.NoError(t, os.MkdirAll(vendorDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vendorDir, "lib.rs"), []byte("fn main() {}\n"), 0o644))

	dotDir := filepath.Join(root, ".git")
	require.NoError(t, os.MkdirAll(dotDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dotDir, "config.lua"), []byte(""), 0o644))

	found, err := DetectWorkspaceLanguages([]string{root}, allConfiguredKeys())
	require.NoError(t, err)
	assert.False(t, found["rust"])
	assert.False(t, found["lua"])
}

func TestDetectWorkspaceLanguages_SkipsBeyondScanDepth(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "main.rb"), []byte(""), 0o644))

	found, err := DetectWorkspaceLanguages([]string{root}, allConfiguredKeys())
	require.NoError(t, err)
	assert.False(t, found["ruby"], "file beyond LanguageScanDepth must not be detected")
}

func TestDetectWorkspaceLanguages_MatchesKnownFilenames(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Dockerfile"), []byte("FROM scratch\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Makefile"), []byte("all:\n"), 0o644))

	found, err := DetectWorkspaceLanguages([]string{root}, allConfiguredKeys())
	require.NoError(t, err)
	assert.True(t, found["dockerfile"])
	assert.True(t, found["makefile"])
}

func TestDetectWorkspaceLanguages_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\n"), 0o644))
	generated := filepath.Join(root, "generated")
	require.NoError(t, os.MkdirAll(generated, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(generated, "out.rb"), []byte(""), 0o644))

	found, err := DetectWorkspaceLanguages([]string{root}, allConfiguredKeys())
	require.NoError(t, err)
	assert.False(t, found["ruby"], "files under a gitignored directory must not be detected")
}

func TestDetectWorkspaceLanguages_OnlyReportsConfiguredKeys(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "script.py"), []byte("x = 1\n"), 0o644))

	found, err := DetectWorkspaceLanguages([]string{root}, map[string]bool{"go": true})
	require.NoError(t, err)
	assert.True(t, found["go"])
	assert.False(t, found["python"])
}

func TestManager_GetClient_UnknownLanguageErrors(t *testing.T) {
	m := NewManager(map[string]ServerConfig{}, zerolog.Nop())
	_, err := m.GetClient(context.Background(), "cobol")
	assert.Error(t, err)
}

func TestManager_ActiveClients_EmptyInitially(t *testing.T) {
	m := NewManager(map[string]ServerConfig{"go": {Command: "gopls"}}, zerolog.Nop())
	assert.Empty(t, m.ActiveClients())
	assert.Empty(t, m.AllServerStatus())
}
