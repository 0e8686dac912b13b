// Package bridge implements Catenary's MCP tool surface: one handler
// method per tool, translating MCP inputs into typed LSP requests against
// the right language client and rendering the result back to text for the
// calling model. Grounded throughout on
// original_source/src/bridge/handler.rs and src/bridge/file_tools.rs.
package bridge

// PositionInput names a 0-indexed line/character position in a file.
type PositionInput struct {
	FilePath  string
	Line      uint32
	Character uint32
}

// FileInput names just a file, for whole-document operations.
type FileInput struct {
	FilePath string
}

// ReferencesInput extends PositionInput with the include-declaration flag.
type ReferencesInput struct {
	PositionInput
	IncludeDeclaration bool
}

// WorkspaceSymbolInput is the input to the workspace_symbols tool.
type WorkspaceSymbolInput struct {
	Query string
}

// CodeActionInput is the input to the code_actions tool.
type CodeActionInput struct {
	FilePath  string
	StartLine uint32
	StartChar uint32
	EndLine   uint32
	EndChar   uint32
}

// RenameInput is the input to the rename tool.
type RenameInput struct {
	PositionInput
	NewName string
	DryRun  bool
}

// FormattingInput is the input to the formatting tool.
type FormattingInput struct {
	FilePath     string
	TabSize      uint32
	InsertSpaces bool
}

// RangeFormattingInput extends FormattingInput with a range.
type RangeFormattingInput struct {
	FormattingInput
	StartLine uint32
	StartChar uint32
	EndLine   uint32
	EndChar   uint32
}

// CallHierarchyDirection selects which leg of call_hierarchy to fetch.
type CallHierarchyDirection string

const (
	CallHierarchyIncoming CallHierarchyDirection = "incoming"
	CallHierarchyOutgoing CallHierarchyDirection = "outgoing"
)

// CallHierarchyInput is the input to the call_hierarchy tool.
type CallHierarchyInput struct {
	PositionInput
	Direction CallHierarchyDirection
}

// TypeHierarchyDirection selects which leg of type_hierarchy to fetch.
type TypeHierarchyDirection string

const (
	TypeHierarchySupertypes TypeHierarchyDirection = "supertypes"
	TypeHierarchySubtypes   TypeHierarchyDirection = "subtypes"
)

// TypeHierarchyInput is the input to the type_hierarchy tool.
type TypeHierarchyInput struct {
	PositionInput
	Direction TypeHierarchyDirection
}

// ListDirectoryInput is the input to the list_directory tool.
type ListDirectoryInput struct {
	Path string
}

// DiagnosticsInput is the input to the diagnostics tool.
type DiagnosticsInput struct {
	FilePath string
}
