package lsptypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGotoDefinitionResponse_UnmarshalJSON(t *testing.T) {
	var null GotoDefinitionResponse
	require.NoError(t, json.Unmarshal([]byte("null"), &null))
	assert.True(t, null.IsEmpty())

	var single GotoDefinitionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"uri":"file:///a.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}}}`), &single))
	require.Len(t, single.Locations, 1)
	assert.Equal(t, "file:///a.go", single.Locations[0].URI)

	var list GotoDefinitionResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"uri":"file:///a.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}}}]`), &list))
	require.Len(t, list.Locations, 1)

	var empty GotoDefinitionResponse
	require.NoError(t, json.Unmarshal([]byte(`[]`), &empty))
	assert.True(t, empty.IsEmpty())

	var links GotoDefinitionResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"targetUri":"file:///a.go","targetRange":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"targetSelectionRange":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}}}]`), &links))
	require.Len(t, links.LocationLinks, 1)
	assert.Equal(t, "file:///a.go", links.LocationLinks[0].TargetURI)
}

func TestDocumentSymbolResponse_UnmarshalJSON(t *testing.T) {
	var hierarchical DocumentSymbolResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Foo","kind":12,"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}},"selectionRange":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}]`), &hierarchical))
	require.Len(t, hierarchical.Hierarchical, 1)
	assert.Equal(t, "Foo", hierarchical.Hierarchical[0].Name)

	var flat DocumentSymbolResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Bar","kind":6,"location":{"uri":"file:///a.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}}]`), &flat))
	require.Len(t, flat.Flat, 1)
	assert.Equal(t, "Bar", flat.Flat[0].Name)

	var empty DocumentSymbolResponse
	require.NoError(t, json.Unmarshal([]byte(`[]`), &empty))
	assert.True(t, empty.IsEmpty())

	var null DocumentSymbolResponse
	require.NoError(t, json.Unmarshal([]byte("null"), &null))
	assert.True(t, null.IsEmpty())
}

func TestWorkspaceSymbolResponse_UnmarshalJSON(t *testing.T) {
	var resp WorkspaceSymbolResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Foo","kind":12,"location":{"uri":"file:///a.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}}]`), &resp))
	require.Len(t, resp.Symbols, 1)
	assert.Equal(t, "Foo", resp.Symbols[0].Name)

	var null WorkspaceSymbolResponse
	require.NoError(t, json.Unmarshal([]byte("null"), &null))
	assert.Empty(t, null.Symbols)
}

func TestCodeActionList_UnmarshalJSON_MixedCommandsAndActions(t *testing.T) {
	raw := `[
		{"title":"Organize imports","command":"organizeImports","arguments":["a"]},
		{"title":"Extract variable","kind":"refactor.extract","edit":{"changes":{}}}
	]`
	var list CodeActionList
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	require.Len(t, list, 2)

	assert.True(t, list[0].IsCommand)
	require.NotNil(t, list[0].Command)
	assert.Equal(t, "organizeImports", list[0].Command.Command)

	assert.False(t, list[1].IsCommand)
	assert.Equal(t, "refactor.extract", list[1].Kind)
	assert.NotNil(t, list[1].Edit)
}

func TestCodeActionList_UnmarshalJSON_Null(t *testing.T) {
	var list CodeActionList
	require.NoError(t, json.Unmarshal([]byte("null"), &list))
	assert.Nil(t, list)
}

func TestWorkspaceEdit_UnmarshalJSON_ChangesAndResourceOps(t *testing.T) {
	raw := `{
		"changes": {"file:///a.go": [{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"newText":"x"}]},
		"documentChanges": [
			{"textDocument":{"uri":"file:///b.go","version":2},"edits":[{"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":1}},"newText":"y"}]},
			{"kind":"rename","oldUri":"file:///c.go","newUri":"file:///d.go"}
		]
	}`
	var edit WorkspaceEdit
	require.NoError(t, json.Unmarshal([]byte(raw), &edit))

	require.Contains(t, edit.Changes, "file:///a.go")
	require.Len(t, edit.DocumentChanges, 2)

	assert.False(t, edit.DocumentChanges[0].IsResourceOp)
	require.NotNil(t, edit.DocumentChanges[0].TextDocument)
	assert.Equal(t, "file:///b.go", edit.DocumentChanges[0].TextDocument.URI)
	require.Len(t, edit.DocumentChanges[0].Edits, 1)

	assert.True(t, edit.DocumentChanges[1].IsResourceOp)
	assert.Equal(t, "rename", edit.DocumentChanges[1].Kind)
}

func TestCompletionResponse_UnmarshalJSON(t *testing.T) {
	var bare CompletionResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"label":"fmt.Println"}]`), &bare))
	require.Len(t, bare.Items, 1)
	assert.False(t, bare.IsIncomplete)

	var list CompletionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"isIncomplete":true,"items":[{"label":"fmt.Println"}]}`), &list))
	require.Len(t, list.Items, 1)
	assert.True(t, list.IsIncomplete)

	var null CompletionResponse
	require.NoError(t, json.Unmarshal([]byte("null"), &null))
	assert.Empty(t, null.Items)
}
