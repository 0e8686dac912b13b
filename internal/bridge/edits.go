package bridge

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/markwellsdev/catenary/internal/lsptypes"
)

// positionToOffset converts an LSP Position to a byte offset into content,
// honoring the negotiated encoding: UTF-8 position encoding measures
// Character in bytes, so it's a direct sum; UTF-16 measures it in code
// units, requiring a surrogate-pair-aware walk. Grounded on
// handler.rs's position_to_offset.
func positionToOffset(content string, pos lsptypes.Position, encoding lsptypes.PositionEncodingKind) (int, error) {
	lineStart := 0
	line := uint32(0)
	for line < pos.Line {
		idx := indexByte(content[lineStart:], '\n')
		if idx < 0 {
			return 0, fmt.Errorf("bridge: position line %d exceeds document length", pos.Line)
		}
		lineStart += idx + 1
		line++
	}

	lineEnd := len(content)
	if idx := indexByte(content[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	lineText := content[lineStart:lineEnd]

	if encoding == lsptypes.PositionEncodingUTF8 {
		if int(pos.Character) > len(lineText) {
			return 0, fmt.Errorf("bridge: position character %d exceeds line length", pos.Character)
		}
		return lineStart + int(pos.Character), nil
	}

	offset := 0
	units := uint32(0)
	for offset < len(lineText) {
		if units == pos.Character {
			return lineStart + offset, nil
		}
		r, size := utf8.DecodeRuneInString(lineText[offset:])
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError || r2 != utf8.RuneError {
			units += 2
		} else {
			units++
		}
		offset += size
		if units > pos.Character {
			return 0, fmt.Errorf("bridge: position character %d lands inside a surrogate pair", pos.Character)
		}
	}
	if units == pos.Character {
		return lineStart + offset, nil
	}
	return 0, fmt.Errorf("bridge: position character %d exceeds line length", pos.Character)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// applyEditsToFile applies edits to the file at path, sorting them
// descending by start position so earlier offsets stay valid while later
// ones are rewritten, then writing the result back in one pass. Grounded
// on handler.rs's apply_edits_to_file.
func applyEditsToFile(path string, edits []lsptypes.TextEdit, encoding lsptypes.PositionEncodingKind) error {
	if len(edits) == 0 {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("bridge: reading %s for edit: %w", path, err)
	}
	content := string(data)

	sorted := append([]lsptypes.TextEdit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Range.Start.Line != sorted[j].Range.Start.Line {
			return sorted[i].Range.Start.Line > sorted[j].Range.Start.Line
		}
		return sorted[i].Range.Start.Character > sorted[j].Range.Start.Character
	})

	for _, edit := range sorted {
		start, err := positionToOffset(content, edit.Range.Start, encoding)
		if err != nil {
			return fmt.Errorf("bridge: applying edit to %s: %w", path, err)
		}
		end, err := positionToOffset(content, edit.Range.End, encoding)
		if err != nil {
			return fmt.Errorf("bridge: applying edit to %s: %w", path, err)
		}
		content = content[:start] + edit.NewText + content[end:]
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("bridge: writing %s: %w", path, err)
	}
	return nil
}

// applyWorkspaceEdit applies every file-targeted edit in edit, collecting
// edits per path from both the legacy Changes map and DocumentChanges
// (resource operations are skipped, per spec.md §1 Non-goals). validatePath
// resolves and authorizes each target path before it is written.
func applyWorkspaceEdit(edit *lsptypes.WorkspaceEdit, encoding lsptypes.PositionEncodingKind, validatePath func(string) (string, error)) ([]string, error) {
	byPath := make(map[string][]lsptypes.TextEdit)
	order := make([]string, 0)

	addEdits := func(uri string, edits []lsptypes.TextEdit) error {
		path, err := uriToFilePath(uri)
		if err != nil {
			return err
		}
		resolved, err := validatePath(path)
		if err != nil {
			return fmt.Errorf("bridge: workspace edit targets %s: %w", path, err)
		}
		if _, ok := byPath[resolved]; !ok {
			order = append(order, resolved)
		}
		byPath[resolved] = append(byPath[resolved], edits...)
		return nil
	}

	for uri, edits := range edit.Changes {
		if err := addEdits(uri, edits); err != nil {
			return nil, err
		}
	}
	for _, change := range edit.DocumentChanges {
		if change.IsResourceOp || change.TextDocument == nil {
			continue
		}
		if err := addEdits(change.TextDocument.URI, change.Edits); err != nil {
			return nil, err
		}
	}

	for _, path := range order {
		if err := applyEditsToFile(path, byPath[path], encoding); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func uriToFilePath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("bridge: invalid URI %q: %w", uri, err)
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", fmt.Errorf("bridge: unsupported URI scheme %q", u.Scheme)
	}
	return u.Path, nil
}
