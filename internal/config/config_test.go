package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 300, cfg.IdleTimeoutSecs)
	assert.Equal(t, 180, cfg.Locks.TimeoutSecs)
	assert.Equal(t, 30, cfg.Locks.GraceSecs)
}

func TestMergeFile_OverlaysOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"
idle_timeout_secs = 60

[servers.go]
command = "gopls"
args = ["serve"]
`), 0o644))

	cfg := Defaults()
	require.NoError(t, mergeFile(&cfg, path))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 60, cfg.IdleTimeoutSecs)
	require.Contains(t, cfg.Servers, "go")
	assert.Equal(t, "gopls", cfg.Servers["go"].Command)
	assert.Equal(t, []string{"serve"}, cfg.Servers["go"].Args)
}

func TestMergeFile_MissingFileIsNoop(t *testing.T) {
	cfg := Defaults()
	err := mergeFile(&cfg, filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestMergeInto_LaterLayerWins(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "info"
	mergeInto(&cfg, Config{LogLevel: "warn"})
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestMergeInto_ZeroFieldsDoNotOverwrite(t *testing.T) {
	cfg := Defaults()
	cfg.IdleTimeoutSecs = 120
	mergeInto(&cfg, Config{})
	assert.Equal(t, 120, cfg.IdleTimeoutSecs, "an empty layer must not reset a previously set value")
}

func TestFindProjectConfig_WalksUpToAncestor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".catenary.toml"), []byte("log_level = \"debug\"\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, ok := findProjectConfig(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ".catenary.toml"), found)
}

func TestFindProjectConfig_NoneFound(t *testing.T) {
	_, ok := findProjectConfig(t.TempDir())
	assert.False(t, ok)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CATENARY_LOG_LEVEL", "error")
	t.Setenv("CATENARY_NOTIFY_SOCKET", "/tmp/catenary.sock")
	t.Setenv("CATENARY_IDLE_TIMEOUT_SECS", "45")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/tmp/catenary.sock", cfg.NotifySocket)
	assert.Equal(t, 45, cfg.IdleTimeoutSecs)
}

func TestApplyEnvOverrides_InvalidIdleTimeoutIgnored(t *testing.T) {
	t.Setenv("CATENARY_IDLE_TIMEOUT_SECS", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 300, cfg.IdleTimeoutSecs)
}

func TestLoad_ExplicitFileOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "explicit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "debug"`+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
