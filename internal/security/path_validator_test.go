package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRead_WithinRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main"), 0o644))

	v := New([]string{root})
	got, err := v.ValidateRead(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestValidateRead_OutsideRootRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	file := filepath.Join(outside, "secret.go")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	v := New([]string{root})
	_, err := v.ValidateRead(file)
	assert.Error(t, err)
}

func TestValidateWrite_OutsideRootRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	file := filepath.Join(outside, "secret.go")

	v := New([]string{root})
	_, err := v.ValidateWrite(file)
	assert.Error(t, err)
}

func TestValidateRead_RelativePathResolvedAgainstRoot(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "a.go")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	v := New([]string{root})
	got, err := v.ValidateRead(filepath.Join(root, "pkg", "..", "pkg", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestValidateWrite_RejectsExistingProjectCatenaryToml(t *testing.T) {
	root := t.TempDir()
	cfg := filepath.Join(root, ".catenary.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("idle_timeout = 300\n"), 0o644))

	v := New([]string{root})
	_, err := v.ValidateWrite(cfg)
	assert.Error(t, err)
}

func TestValidateWrite_RejectsNewProjectCatenaryToml(t *testing.T) {
	root := t.TempDir()
	cfg := filepath.Join(root, ".catenary.toml")

	v := New([]string{root})
	_, err := v.ValidateWrite(cfg)
	assert.Error(t, err, "a not-yet-created .catenary.toml under a root is still protected")
}

func TestValidateWrite_RejectsUserLevelConfig(t *testing.T) {
	root := t.TempDir()
	v := New([]string{root})

	userDir, err := os.UserConfigDir()
	require.NoError(t, err)
	userCfg := filepath.Join(userDir, "catenary", "config.toml")

	_, err = v.ValidateWrite(userCfg)
	assert.Error(t, err)
}

func TestValidateWrite_AllowsOtherRecognizedConfigFiles(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "package.json")
	require.NoError(t, os.WriteFile(pkg, []byte("{}"), 0o644))

	v := New([]string{root})
	got, err := v.ValidateWrite(pkg)
	require.NoError(t, err, "package.json is only discoverable for read, not protected from writes")
	assert.Equal(t, pkg, got)
}

func TestUpdateRoots_AddsNewlyAllowedRoot(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	file := filepath.Join(rootB, "b.go")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	v := New([]string{rootA})
	_, err := v.ValidateRead(file)
	assert.Error(t, err)

	v.UpdateRoots([]string{rootA, rootB})
	_, err = v.ValidateRead(file)
	assert.NoError(t, err)
}
