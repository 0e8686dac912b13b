package lsptypes

import "encoding/json"

// HoverParams/Hover — textDocument/hover.
type HoverParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

// GotoDefinitionParams covers definition/type_definition/implementation —
// all three share the same request shape in LSP.
type GotoDefinitionParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
	PartialResultParams
}

// GotoDefinitionResponse is either a list of Location or of LocationLink;
// servers vary, so the decoder fills whichever one the server sent and
// callers check which is non-empty.
type GotoDefinitionResponse struct {
	Locations     []Location
	LocationLinks []LocationLink
}

func (r GotoDefinitionResponse) IsEmpty() bool {
	return len(r.Locations) == 0 && len(r.LocationLinks) == 0
}

// UnmarshalJSON accepts null, a single Location, a Location[], or a
// LocationLink[] — servers vary in which shape they return.
func (r *GotoDefinitionResponse) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = GotoDefinitionResponse{}
		return nil
	}
	var single Location
	if err := json.Unmarshal(data, &single); err == nil && single.URI != "" {
		r.Locations = []Location{single}
		return nil
	}
	var locs []Location
	if err := json.Unmarshal(data, &locs); err == nil {
		if len(locs) == 0 || locs[0].URI != "" {
			r.Locations = locs
			return nil
		}
	}
	var links []LocationLink
	if err := json.Unmarshal(data, &links); err != nil {
		return err
	}
	r.LocationLinks = links
	return nil
}

// ReferenceContext toggles inclusion of the declaration site itself.
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// ReferenceParams — textDocument/references.
type ReferenceParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
	PartialResultParams
	Context ReferenceContext `json:"context"`
}

// DocumentSymbolParams — textDocument/documentSymbol.
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	WorkDoneProgressParams
	PartialResultParams
}

// DocumentSymbol is the hierarchical symbol shape.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           int              `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolInformation is the flat, legacy symbol shape some servers return
// instead of DocumentSymbol.
type SymbolInformation struct {
	Name     string   `json:"name"`
	Kind     int      `json:"kind"`
	Location Location `json:"location"`
}

// DocumentSymbolResponse holds whichever shape the server sent.
type DocumentSymbolResponse struct {
	Hierarchical []DocumentSymbol
	Flat         []SymbolInformation
}

func (r DocumentSymbolResponse) IsEmpty() bool {
	return len(r.Hierarchical) == 0 && len(r.Flat) == 0
}

// UnmarshalJSON distinguishes the hierarchical (DocumentSymbol) shape from
// the flat, legacy SymbolInformation shape by probing for "location".
func (r *DocumentSymbolResponse) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = DocumentSymbolResponse{}
		return nil
	}
	var probe []json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if len(probe) == 0 {
		return nil
	}
	var peek struct {
		Location json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(probe[0], &peek); err == nil && peek.Location != nil {
		var flat []SymbolInformation
		if err := json.Unmarshal(data, &flat); err != nil {
			return err
		}
		r.Flat = flat
		return nil
	}
	var nested []DocumentSymbol
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	r.Hierarchical = nested
	return nil
}

// WorkspaceSymbolParams — workspace/symbol.
type WorkspaceSymbolParams struct {
	Query string `json:"query"`
	WorkDoneProgressParams
	PartialResultParams
}

// WorkspaceSymbolResponse wraps workspace/symbol's result (flat list).
type WorkspaceSymbolResponse struct {
	Symbols []SymbolInformation
}

// UnmarshalJSON accepts null or a SymbolInformation[]. Some servers return
// the newer WorkspaceSymbol shape with a uri/location OneOf; Catenary only
// ever reads .Location, which both shapes marshal compatibly for reading.
func (r *WorkspaceSymbolResponse) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = WorkspaceSymbolResponse{}
		return nil
	}
	var symbols []SymbolInformation
	if err := json.Unmarshal(data, &symbols); err != nil {
		return err
	}
	r.Symbols = symbols
	return nil
}

// CodeActionContext carries diagnostics in range for codeAction requests.
type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Only        []string     `json:"only,omitempty"`
}

// CodeActionParams — textDocument/codeAction.
type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
	WorkDoneProgressParams
	PartialResultParams
}

// Command is an LSP command reference (title/command/arguments).
type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CodeAction is the richer action shape; Command is the legacy shape.
// A server's response is a mixed array of both.
type CodeAction struct {
	Title       string        `json:"title"`
	Kind        string        `json:"kind,omitempty"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
	Edit        *WorkspaceEdit `json:"edit,omitempty"`
	Command     *Command      `json:"command,omitempty"`
	IsCommand   bool          `json:"-"`
}

// CodeActionList decodes the mixed (CodeAction | Command)[] array
// textDocument/codeAction returns: a bare Command has a string "command"
// field at the top level, while a CodeAction nests its optional Command
// one level down under the same key.
type CodeActionList []CodeAction

func (l *CodeActionList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(CodeActionList, 0, len(raw))
	for _, item := range raw {
		var probe struct {
			Command json.RawMessage `json:"command"`
		}
		if err := json.Unmarshal(item, &probe); err != nil {
			return err
		}
		if len(probe.Command) > 0 && probe.Command[0] == '"' {
			var cmd Command
			if err := json.Unmarshal(item, &cmd); err != nil {
				return err
			}
			out = append(out, CodeAction{Title: cmd.Title, Command: &cmd, IsCommand: true})
			continue
		}
		var action CodeAction
		if err := json.Unmarshal(item, &action); err != nil {
			return err
		}
		out = append(out, action)
	}
	*l = out
	return nil
}

// RenameParams — textDocument/rename.
type RenameParams struct {
	TextDocumentPositionParams
	NewName string `json:"newName"`
	WorkDoneProgressParams
}

// DocumentChangeOperation is either a text-edit batch for one document or a
// create/rename/delete resource operation (the latter are not applied —
// spec.md §1 Non-goals excludes resource-operation support).
type DocumentChangeOperation struct {
	IsResourceOp bool
	Kind         string // "create" | "rename" | "delete", when IsResourceOp
	TextDocument *VersionedTextDocumentIdentifier
	Edits        []TextEdit
}

// WorkspaceEdit is the result of rename and some code actions.
type WorkspaceEdit struct {
	Changes         map[string][]TextEdit     `json:"changes,omitempty"`
	DocumentChanges []DocumentChangeOperation `json:"documentChanges,omitempty"`
}

// UnmarshalJSON decodes documentChanges' per-element union: a resource
// operation ({"kind": "create"|"rename"|"delete", ...}) or a
// TextDocumentEdit ({"textDocument": ..., "edits": [...]}). Resource
// operations are kept only for display — spec.md §1 Non-goals excludes
// applying them.
func (w *WorkspaceEdit) UnmarshalJSON(data []byte) error {
	var shape struct {
		Changes         map[string][]TextEdit `json:"changes"`
		DocumentChanges []json.RawMessage     `json:"documentChanges"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return err
	}
	w.Changes = shape.Changes
	for _, item := range shape.DocumentChanges {
		var probe struct {
			Kind         string `json:"kind"`
			TextDocument *VersionedTextDocumentIdentifier `json:"textDocument"`
			Edits        []TextEdit                       `json:"edits"`
		}
		if err := json.Unmarshal(item, &probe); err != nil {
			return err
		}
		if probe.Kind != "" {
			w.DocumentChanges = append(w.DocumentChanges, DocumentChangeOperation{
				IsResourceOp: true,
				Kind:         probe.Kind,
			})
			continue
		}
		w.DocumentChanges = append(w.DocumentChanges, DocumentChangeOperation{
			TextDocument: probe.TextDocument,
			Edits:        probe.Edits,
		})
	}
	return nil
}

// CompletionParams — textDocument/completion.
type CompletionParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
	PartialResultParams
}

type CompletionItem struct {
	Label         string `json:"label"`
	Kind          int    `json:"kind,omitempty"`
	Detail        string `json:"detail,omitempty"`
	Documentation any    `json:"documentation,omitempty"`
	InsertText    string `json:"insertText,omitempty"`
}

// CompletionResponse normalizes the CompletionItem[] | CompletionList union.
type CompletionResponse struct {
	Items        []CompletionItem
	IsIncomplete bool
}

// UnmarshalJSON accepts null, a bare CompletionItem[], or a CompletionList
// object ({isIncomplete, items}).
func (r *CompletionResponse) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = CompletionResponse{}
		return nil
	}
	var items []CompletionItem
	if err := json.Unmarshal(data, &items); err == nil {
		r.Items = items
		return nil
	}
	var list struct {
		IsIncomplete bool             `json:"isIncomplete"`
		Items        []CompletionItem `json:"items"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	r.Items = list.Items
	r.IsIncomplete = list.IsIncomplete
	return nil
}

// SignatureHelpParams — textDocument/signatureHelp.
type SignatureHelpParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
}

type ParameterInformation struct {
	Label string `json:"label"`
}

type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation any                    `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters,omitempty"`
}

type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature *uint32                `json:"activeSignature,omitempty"`
	ActiveParameter *uint32                `json:"activeParameter,omitempty"`
}

// DocumentFormattingParams — textDocument/formatting.
type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Options      FormattingOptions      `json:"options"`
	WorkDoneProgressParams
}

// DocumentRangeFormattingParams — textDocument/rangeFormatting.
type DocumentRangeFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Options      FormattingOptions      `json:"options"`
	WorkDoneProgressParams
}

// CallHierarchyPrepareParams — textDocument/prepareCallHierarchy.
type CallHierarchyPrepareParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
}

type CallHierarchyItem struct {
	Name           string `json:"name"`
	Kind           int    `json:"kind"`
	URI            string `json:"uri"`
	Range          Range  `json:"range"`
	SelectionRange Range  `json:"selectionRange"`
}

type CallHierarchyIncomingCallsParams struct {
	Item CallHierarchyItem `json:"item"`
	WorkDoneProgressParams
	PartialResultParams
}

type CallHierarchyIncomingCall struct {
	From       CallHierarchyItem `json:"from"`
	FromRanges []Range           `json:"fromRanges"`
}

type CallHierarchyOutgoingCallsParams struct {
	Item CallHierarchyItem `json:"item"`
	WorkDoneProgressParams
	PartialResultParams
}

type CallHierarchyOutgoingCall struct {
	To         CallHierarchyItem `json:"to"`
	FromRanges []Range           `json:"fromRanges"`
}

// TypeHierarchyPrepareParams — textDocument/prepareTypeHierarchy.
type TypeHierarchyPrepareParams struct {
	TextDocumentPositionParams
	WorkDoneProgressParams
}

type TypeHierarchyItem struct {
	Name           string `json:"name"`
	Kind           int    `json:"kind"`
	URI            string `json:"uri"`
	Range          Range  `json:"range"`
	SelectionRange Range  `json:"selectionRange"`
}

type TypeHierarchySupertypesParams struct {
	Item TypeHierarchyItem `json:"item"`
	WorkDoneProgressParams
	PartialResultParams
}

type TypeHierarchySubtypesParams struct {
	Item TypeHierarchyItem `json:"item"`
	WorkDoneProgressParams
	PartialResultParams
}
