package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markwellsdev/catenary/internal/lsptypes"
)

func TestPositionToOffset_UTF8(t *testing.T) {
	content := "line one\nline two\n"
	offset, err := positionToOffset(content, lsptypes.Position{Line: 1, Character: 5}, lsptypes.PositionEncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, len("line one\n")+5, offset)
}

func TestPositionToOffset_UTF16SurrogatePairCountsAsTwoUnits(t *testing.T) {
	// U+1F600 (grinning face) is a surrogate pair in UTF-16 (2 code units)
	// but 4 bytes in UTF-8.
	content := "a\U0001F600b"
	offset, err := positionToOffset(content, lsptypes.Position{Line: 0, Character: 3}, lsptypes.PositionEncodingUTF16)
	require.NoError(t, err)
	assert.Equal(t, len("a\U0001F600"), offset, "character 3 should land right after the emoji, which is byte offset 5")
}

func TestPositionToOffset_UTF16MidSurrogatePairErrors(t *testing.T) {
	content := "a\U0001F600b"
	_, err := positionToOffset(content, lsptypes.Position{Line: 0, Character: 2}, lsptypes.PositionEncodingUTF16)
	assert.Error(t, err)
}

func TestPositionToOffset_LineOutOfRange(t *testing.T) {
	_, err := positionToOffset("only one line", lsptypes.Position{Line: 5, Character: 0}, lsptypes.PositionEncodingUTF8)
	assert.Error(t, err)
}

func TestApplyEditsToFile_AppliesBottomUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\nline three\n"), 0o644))

	edits := []lsptypes.TextEdit{
		{
			Range:   lsptypes.Range{Start: lsptypes.Position{Line: 0, Character: 0}, End: lsptypes.Position{Line: 0, Character: 4}},
			NewText: "LINE",
		},
		{
			Range:   lsptypes.Range{Start: lsptypes.Position{Line: 2, Character: 0}, End: lsptypes.Position{Line: 2, Character: 4}},
			NewText: "LINE",
		},
	}
	require.NoError(t, applyEditsToFile(path, edits, lsptypes.PositionEncodingUTF8))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LINE one\nline two\nLINE three\n", string(data))
}

func TestApplyEditsToFile_NoEditsIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("unchanged"), 0o644))

	require.NoError(t, applyEditsToFile(path, nil, lsptypes.PositionEncodingUTF8))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", string(data))
}

func TestUriToFilePath(t *testing.T) {
	path, err := uriToFilePath("file:///home/user/main.go")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/main.go", path)
}

func TestUriToFilePath_RejectsNonFileScheme(t *testing.T) {
	_, err := uriToFilePath("http://example.com/main.go")
	assert.Error(t, err)
}

func TestApplyWorkspaceEdit_AppliesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("bravo\n"), 0o644))

	edit := &lsptypes.WorkspaceEdit{
		Changes: map[string][]lsptypes.TextEdit{
			"file://" + pathA: {{
				Range:   lsptypes.Range{Start: lsptypes.Position{Line: 0, Character: 0}, End: lsptypes.Position{Line: 0, Character: 5}},
				NewText: "ALPHA",
			}},
			"file://" + pathB: {{
				Range:   lsptypes.Range{Start: lsptypes.Position{Line: 0, Character: 0}, End: lsptypes.Position{Line: 0, Character: 5}},
				NewText: "BRAVO",
			}},
		},
	}

	validate := func(p string) (string, error) { return p, nil }
	touched, err := applyWorkspaceEdit(edit, lsptypes.PositionEncodingUTF8, validate)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{pathA, pathB}, touched)

	dataA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA\n", string(dataA))

	dataB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, "BRAVO\n", string(dataB))
}

func TestApplyWorkspaceEdit_RejectsUnauthorizedPath(t *testing.T) {
	edit := &lsptypes.WorkspaceEdit{
		Changes: map[string][]lsptypes.TextEdit{
			"file:///outside/secret.txt": {{NewText: "x"}},
		},
	}
	validate := func(p string) (string, error) { return "", assert.AnError }
	_, err := applyWorkspaceEdit(edit, lsptypes.PositionEncodingUTF8, validate)
	assert.Error(t, err)
}
