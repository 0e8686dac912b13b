package bridge

import (
	"fmt"
	"strings"

	"github.com/markwellsdev/catenary/internal/lsptypes"
)

// formatHover renders a hover result as Markdown/plaintext followed by its
// range, or "No hover information available" when result is nil.
func formatHover(result *lsptypes.Hover) string {
	if result == nil {
		return "No hover information available"
	}
	if result.Range != nil {
		return fmt.Sprintf("%s\n\n(at %s)", result.Contents.Value, formatRange(*result.Range))
	}
	return result.Contents.Value
}

func formatRange(r lsptypes.Range) string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Character+1, r.End.Line+1, r.End.Character+1)
}

// formatLocations renders a flat location list as one "path:line:col" entry
// per line.
func formatLocations(locations []lsptypes.Location) string {
	if len(locations) == 0 {
		return "No locations found"
	}
	lines := make([]string, 0, len(locations))
	for _, loc := range locations {
		path, err := uriToFilePath(loc.URI)
		if err != nil {
			path = loc.URI
		}
		lines = append(lines, fmt.Sprintf("%s:%d:%d", path, loc.Range.Start.Line+1, loc.Range.Start.Character+1))
	}
	return strings.Join(lines, "\n")
}

// formatGotoResponse renders whichever shape a goto-definition-family
// response carried.
func formatGotoResponse(resp lsptypes.GotoDefinitionResponse) string {
	if resp.IsEmpty() {
		return "No definition found"
	}
	if len(resp.Locations) > 0 {
		return formatLocations(resp.Locations)
	}
	lines := make([]string, 0, len(resp.LocationLinks))
	for _, link := range resp.LocationLinks {
		path, err := uriToFilePath(link.TargetURI)
		if err != nil {
			path = link.TargetURI
		}
		lines = append(lines, fmt.Sprintf("%s:%d:%d", path, link.TargetRange.Start.Line+1, link.TargetRange.Start.Character+1))
	}
	return strings.Join(lines, "\n")
}

// formatDocumentSymbols renders whichever shape textDocument/documentSymbol
// returned.
func formatDocumentSymbols(resp lsptypes.DocumentSymbolResponse) string {
	if resp.IsEmpty() {
		return "No symbols found"
	}
	if len(resp.Hierarchical) > 0 {
		var b strings.Builder
		for _, sym := range resp.Hierarchical {
			formatNestedSymbol(&b, sym, 0)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	var b strings.Builder
	for _, sym := range resp.Flat {
		formatSymbolInfo(&b, sym)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSymbolInfo(b *strings.Builder, sym lsptypes.SymbolInformation) {
	path, err := uriToFilePath(sym.Location.URI)
	if err != nil {
		path = sym.Location.URI
	}
	fmt.Fprintf(b, "%s [%s] %s:%d:%d\n", sym.Name, symbolKindName(sym.Kind), path, sym.Location.Range.Start.Line+1, sym.Location.Range.Start.Character+1)
}

func formatNestedSymbol(b *strings.Builder, sym lsptypes.DocumentSymbol, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s [%s] %d:%d\n", indent, sym.Name, symbolKindName(sym.Kind), sym.Range.Start.Line+1, sym.Range.Start.Character+1)
	for _, child := range sym.Children {
		formatNestedSymbol(b, child, depth+1)
	}
}

// formatWorkspaceSymbols renders workspace/symbol results with their
// originating file, since unlike document symbols they span files.
func formatWorkspaceSymbols(resp lsptypes.WorkspaceSymbolResponse) string {
	if len(resp.Symbols) == 0 {
		return "No matching symbols found"
	}
	var b strings.Builder
	for _, sym := range resp.Symbols {
		formatSymbolInfo(&b, sym)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatCodeActions renders the mixed CodeAction/Command list, marking
// which ones have an edit ready to apply versus a server command.
func formatCodeActions(actions lsptypes.CodeActionList) string {
	if len(actions) == 0 {
		return "No code actions available"
	}
	lines := make([]string, 0, len(actions))
	for i, action := range actions {
		switch {
		case action.IsCommand:
			lines = append(lines, fmt.Sprintf("%d. %s (command: %s)", i+1, action.Title, action.Command.Command))
		case action.Edit != nil:
			lines = append(lines, fmt.Sprintf("%d. %s (edit available)", i+1, action.Title))
		default:
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, action.Title))
		}
	}
	return strings.Join(lines, "\n")
}

// formatWorkspaceEdit renders the set of files a workspace edit touches and
// how many edits each received, for dry-run rename previews.
func formatWorkspaceEdit(edit *lsptypes.WorkspaceEdit) string {
	if edit == nil {
		return "No changes"
	}
	var b strings.Builder
	for uri, edits := range edit.Changes {
		path, err := uriToFilePath(uri)
		if err != nil {
			path = uri
		}
		fmt.Fprintf(&b, "%s: %d edit(s)\n", path, len(edits))
	}
	for _, change := range edit.DocumentChanges {
		if change.IsResourceOp {
			fmt.Fprintf(&b, "(%s operation)\n", change.Kind)
			continue
		}
		if change.TextDocument == nil {
			continue
		}
		path, err := uriToFilePath(change.TextDocument.URI)
		if err != nil {
			path = change.TextDocument.URI
		}
		fmt.Fprintf(&b, "%s: %d edit(s)\n", path, len(change.Edits))
	}
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return "No changes"
	}
	return out
}

// formatCompletion renders completion items, one per line, noting whether
// the server signaled the list was incomplete.
func formatCompletion(resp lsptypes.CompletionResponse) string {
	if len(resp.Items) == 0 {
		return "No completions available"
	}
	lines := make([]string, 0, len(resp.Items)+1)
	for _, item := range resp.Items {
		if item.Detail != "" {
			lines = append(lines, fmt.Sprintf("%s — %s", item.Label, item.Detail))
		} else {
			lines = append(lines, item.Label)
		}
	}
	if resp.IsIncomplete {
		lines = append(lines, "(more results available)")
	}
	return strings.Join(lines, "\n")
}

// formatDiagnostics renders cached diagnostics for one document.
func formatDiagnostics(diagnostics []lsptypes.Diagnostic) string {
	if len(diagnostics) == 0 {
		return "No diagnostics"
	}
	lines := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		severity := diagnosticSeverityName(d.Severity)
		line := d.Range.Start.Line + 1
		col := d.Range.Start.Character + 1
		code := d.CodeString()
		source := d.Source
		if source == "" {
			source = "lsp"
		}
		if code == "" {
			lines = append(lines, fmt.Sprintf("%d:%d: [%s] %s: %s", line, col, severity, source, d.Message))
		} else {
			lines = append(lines, fmt.Sprintf("%d:%d: [%s] %s(%s): %s", line, col, severity, source, code, d.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func diagnosticSeverityName(s lsptypes.DiagnosticSeverity) string {
	switch s {
	case lsptypes.SeverityError:
		return "error"
	case lsptypes.SeverityWarning:
		return "warning"
	case lsptypes.SeverityInformation:
		return "info"
	case lsptypes.SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// formatSignatureHelp renders the active signature, marking the active
// parameter when known.
func formatSignatureHelp(help *lsptypes.SignatureHelp) string {
	if help == nil || len(help.Signatures) == 0 {
		return "No signature help available"
	}
	active := 0
	if help.ActiveSignature != nil && int(*help.ActiveSignature) < len(help.Signatures) {
		active = int(*help.ActiveSignature)
	}
	sig := help.Signatures[active]
	var b strings.Builder
	b.WriteString(sig.Label)
	if help.ActiveParameter != nil && int(*help.ActiveParameter) < len(sig.Parameters) {
		fmt.Fprintf(&b, "\nactive parameter: %s", sig.Parameters[*help.ActiveParameter].Label)
	}
	return b.String()
}

// formatTextEdits renders a flat TextEdit list as a unified-diff-like
// summary: one line per edit describing its range and replacement text.
func formatTextEdits(edits []lsptypes.TextEdit) string {
	if len(edits) == 0 {
		return "No changes"
	}
	lines := make([]string, 0, len(edits))
	for _, e := range edits {
		lines = append(lines, fmt.Sprintf("%s -> %q", formatRange(e.Range), e.NewText))
	}
	return strings.Join(lines, "\n")
}

// formatIncomingCalls renders callHierarchy/incomingCalls results.
func formatIncomingCalls(calls []lsptypes.CallHierarchyIncomingCall) string {
	if len(calls) == 0 {
		return "No incoming calls found"
	}
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		path, err := uriToFilePath(c.From.URI)
		if err != nil {
			path = c.From.URI
		}
		lines = append(lines, fmt.Sprintf("%s (%s:%d)", c.From.Name, path, c.From.Range.Start.Line+1))
	}
	return strings.Join(lines, "\n")
}

// formatOutgoingCalls renders callHierarchy/outgoingCalls results.
func formatOutgoingCalls(calls []lsptypes.CallHierarchyOutgoingCall) string {
	if len(calls) == 0 {
		return "No outgoing calls found"
	}
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		path, err := uriToFilePath(c.To.URI)
		if err != nil {
			path = c.To.URI
		}
		lines = append(lines, fmt.Sprintf("%s (%s:%d)", c.To.Name, path, c.To.Range.Start.Line+1))
	}
	return strings.Join(lines, "\n")
}

// formatTypeHierarchyItems renders prepare/supertypes/subtypes results.
func formatTypeHierarchyItems(items []lsptypes.TypeHierarchyItem) string {
	if len(items) == 0 {
		return "No related types found"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		path, err := uriToFilePath(item.URI)
		if err != nil {
			path = item.URI
		}
		lines = append(lines, fmt.Sprintf("%s (%s:%d)", item.Name, path, item.Range.Start.Line+1))
	}
	return strings.Join(lines, "\n")
}

// symbolKindName renders an LSP SymbolKind integer as its name; unknown
// values render as "symbol" rather than erroring, since servers
// occasionally send values outside the published enum.
func symbolKindName(kind int) string {
	names := map[int]string{
		1: "file", 2: "module", 3: "namespace", 4: "package", 5: "class",
		6: "method", 7: "property", 8: "field", 9: "constructor", 10: "enum",
		11: "interface", 12: "function", 13: "variable", 14: "constant",
		15: "string", 16: "number", 17: "boolean", 18: "array", 19: "object",
		20: "key", 21: "null", 22: "enum member", 23: "struct", 24: "event",
		25: "operator", 26: "type parameter",
	}
	if name, ok := names[kind]; ok {
		return name
	}
	return "symbol"
}
