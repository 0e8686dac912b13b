package runtool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noLanguages([]string, map[string]bool) (map[string]bool, error) { return nil, nil }

func TestExecute_AllowedCommandSucceeds(t *testing.T) {
	root := t.TempDir()
	m := NewManager([]string{root}, []string{"echo"}, nil, noLanguages)

	out, err := m.Execute(context.Background(), RunInput{Command: "echo", Args: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Contains(t, out.Stdout, "hello")
}

func TestExecute_DisallowedCommandRejected(t *testing.T) {
	root := t.TempDir()
	m := NewManager([]string{root}, []string{"echo"}, nil, noLanguages)

	_, err := m.Execute(context.Background(), RunInput{Command: "rm", Args: []string{"-rf", "/"}})
	assert.Error(t, err)
}

func TestExecute_WildcardAllowsEverything(t *testing.T) {
	root := t.TempDir()
	m := NewManager([]string{root}, []string{"*"}, nil, noLanguages)

	out, err := m.Execute(context.Background(), RunInput{Command: "echo", Args: []string{"ok"}})
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "ok")
}

func TestExecute_PerLanguageAllowlist(t *testing.T) {
	root := t.TempDir()
	detectGo := func([]string, map[string]bool) (map[string]bool, error) { return map[string]bool{"go": true}, nil }
	m := NewManager([]string{root}, nil, map[string][]string{"go": {"echo"}}, detectGo)

	out, err := m.Execute(context.Background(), RunInput{Command: "echo", Args: []string{"via-go"}})
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "via-go")
}

func TestExecute_CwdOutsideRootsRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	m := NewManager([]string{root}, []string{"*"}, nil, noLanguages)

	_, err := m.Execute(context.Background(), RunInput{Command: "echo", Args: []string{"hi"}, Cwd: outside})
	assert.Error(t, err)
}

func TestExecute_DefaultsToFirstRoot(t *testing.T) {
	root := t.TempDir()
	m := NewManager([]string{root}, []string{"*"}, nil, noLanguages)

	out, err := m.Execute(context.Background(), RunInput{Command: "pwd"})
	require.NoError(t, err)
	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, resolvedRoot)
}

func TestExecute_OutputFileBypassesTruncationAndInlineText(t *testing.T) {
	root := t.TempDir()
	outFile := filepath.Join(root, "out.txt")
	m := NewManager([]string{root}, []string{"*"}, nil, noLanguages)

	out, err := m.Execute(context.Background(), RunInput{Command: "echo", Args: []string{"to-file"}, OutputFile: outFile})
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to-file")
}

func TestExecute_TimesOutLongRunningCommand(t *testing.T) {
	root := t.TempDir()
	m := NewManager([]string{root}, []string{"*"}, nil, noLanguages)

	out, err := m.Execute(context.Background(), RunInput{Command: "sleep", Args: []string{"5"}, TimeoutSec: 1})
	require.NoError(t, err)
	assert.True(t, out.TimedOut)
}

func TestDescribeAllowlist_IncludesGlobalAndLanguage(t *testing.T) {
	detectGo := func([]string, map[string]bool) (map[string]bool, error) { return map[string]bool{"go": true}, nil }
	m := NewManager(nil, []string{"echo"}, map[string][]string{"go": {"go test"}}, detectGo)

	desc := m.DescribeAllowlist(".")
	assert.Contains(t, desc, "echo")
	assert.Contains(t, desc, "go test")
}

func TestPrimaryRoot_DefaultsToDotWithNoRoots(t *testing.T) {
	m := NewManager(nil, nil, nil, nil)
	assert.Equal(t, ".", m.PrimaryRoot())
}

func TestPrimaryRoot_ReturnsFirstConfiguredRoot(t *testing.T) {
	m := NewManager([]string{"/workspace/a", "/workspace/b"}, nil, nil, nil)
	assert.Equal(t, "/workspace/a", m.PrimaryRoot())
}
