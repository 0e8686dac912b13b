package bridge

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/markwellsdev/catenary/internal/docsync"
	"github.com/markwellsdev/catenary/internal/locks"
	"github.com/markwellsdev/catenary/internal/lsp"
	"github.com/markwellsdev/catenary/internal/lsptypes"
	"github.com/markwellsdev/catenary/internal/runtool"
	"github.com/markwellsdev/catenary/internal/security"
)

// completionLimit caps the number of completion items rendered, per
// spec.md §4.6.
const completionLimit = 50

// diagnosticsNudgeWait is how long the diagnostics tool waits for a fresh
// publish before falling back to whatever is cached, per handler.rs's
// short pre-read sleep ahead of format_diagnostics.
const diagnosticsNudgeWait = 100 * time.Millisecond

// defaultInactivityTimeout bounds the diagnostics wait machine when a tool
// caller doesn't request a longer one explicitly.
const defaultInactivityTimeout = 30 * time.Second

// Handler implements every MCP tool Catenary exposes, translating tool
// input into LSP requests against the right per-language client and
// formatting the result as text. Grounded on
// original_source/src/bridge/handler.rs's LspBridgeHandler.
type Handler struct {
	manager    *lsp.Manager
	validator  *security.Validator
	lockMgr    *locks.Manager
	runMgr     *runtool.Manager
	log        zerolog.Logger

	docsMu  sync.Mutex
	docsets map[string]*docsync.Manager // keyed by language
}

// New builds a Handler wired to the given subsystem managers.
func New(manager *lsp.Manager, validator *security.Validator, lockMgr *locks.Manager, runMgr *runtool.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		manager:   manager,
		validator: validator,
		lockMgr:   lockMgr,
		runMgr:    runMgr,
		log:       log,
		docsets:   make(map[string]*docsync.Manager),
	}
}

func (h *Handler) docsFor(language string) *docsync.Manager {
	h.docsMu.Lock()
	defer h.docsMu.Unlock()
	d, ok := h.docsets[language]
	if !ok {
		d = docsync.NewManager()
		h.docsets[language] = d
	}
	return d
}

// resolved bundles everything a position/file-based tool handler needs
// after input validation, document sync, and liveness checks.
type resolved struct {
	client *lsp.Client
	docs   *docsync.Manager
	path   string
	uri    string
}

// checkAlive reports an error naming the language if the client has died,
// per spec.md §7's "server is no longer running" surface.
func checkAlive(client *lsp.Client) error {
	if !client.IsAlive() {
		return fmt.Errorf("the %s language server is no longer running; the next tool call will respawn it", client.Language)
	}
	return nil
}

// resolve validates path, spawns/fetches the owning language client, and
// ensures the document is open and in sync with disk before a request is
// issued against it.
func (h *Handler) resolve(ctx context.Context, path string) (*resolved, error) {
	canonical, err := h.validator.ValidateRead(path)
	if err != nil {
		return nil, err
	}

	language, ok := lsp.LanguageForFile(canonical)
	if !ok {
		return nil, fmt.Errorf("bridge: no language server is configured for %s", canonical)
	}

	client, err := h.manager.GetClient(ctx, language)
	if err != nil {
		return nil, err
	}
	if err := checkAlive(client); err != nil {
		return nil, err
	}

	docs := h.docsFor(language)
	if err := h.ensureDocumentOpen(ctx, client, docs, canonical); err != nil {
		return nil, err
	}

	return &resolved{client: client, docs: docs, path: canonical, uri: docsync.URIForPath(canonical)}, nil
}

// ensureDocumentOpen drives EnsureOpen and sends whichever notification it
// asks for, grounded on handler.rs's ensure_document_open.
func (h *Handler) ensureDocumentOpen(ctx context.Context, client *lsp.Client, docs *docsync.Manager, path string) error {
	notif, err := docs.EnsureOpen(path)
	if err != nil {
		return err
	}
	if notif == nil {
		return nil
	}
	switch notif.Kind {
	case docsync.OpenNotification:
		return client.DidOpen(ctx, notif.Open)
	case docsync.ChangeNotification:
		return client.DidChange(ctx, notif.Change)
	}
	return nil
}

func position(p PositionInput) lsptypes.Position {
	return lsptypes.Position{Line: p.Line, Character: p.Character}
}

func textDocPos(uri string, p PositionInput) lsptypes.TextDocumentPositionParams {
	return lsptypes.TextDocumentPositionParams{
		TextDocument: lsptypes.TextDocumentIdentifier{URI: uri},
		Position:     position(p),
	}
}

// Hover implements the hover tool.
func (h *Handler) Hover(ctx context.Context, in PositionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.Hover(ctx, lsptypes.HoverParams{TextDocumentPositionParams: textDocPos(r.uri, in)})
	if err != nil {
		return "", err
	}
	return formatHover(result), nil
}

// Definition implements the definition tool.
func (h *Handler) Definition(ctx context.Context, in PositionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.Definition(ctx, lsptypes.GotoDefinitionParams{TextDocumentPositionParams: textDocPos(r.uri, in)})
	if err != nil {
		return "", err
	}
	return formatGotoResponse(result), nil
}

// TypeDefinition implements the type_definition tool.
func (h *Handler) TypeDefinition(ctx context.Context, in PositionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.TypeDefinition(ctx, lsptypes.GotoDefinitionParams{TextDocumentPositionParams: textDocPos(r.uri, in)})
	if err != nil {
		return "", err
	}
	return formatGotoResponse(result), nil
}

// Implementation implements the implementation tool.
func (h *Handler) Implementation(ctx context.Context, in PositionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.Implementation(ctx, lsptypes.GotoDefinitionParams{TextDocumentPositionParams: textDocPos(r.uri, in)})
	if err != nil {
		return "", err
	}
	return formatGotoResponse(result), nil
}

// References implements the references tool.
func (h *Handler) References(ctx context.Context, in ReferencesInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.References(ctx, lsptypes.ReferenceParams{
		TextDocumentPositionParams: textDocPos(r.uri, in.PositionInput),
		Context:                    lsptypes.ReferenceContext{IncludeDeclaration: in.IncludeDeclaration},
	})
	if err != nil {
		return "", err
	}
	return formatLocations(result), nil
}

// DocumentSymbols implements the document_symbols tool.
func (h *Handler) DocumentSymbols(ctx context.Context, in FileInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.DocumentSymbols(ctx, lsptypes.DocumentSymbolParams{
		TextDocument: lsptypes.TextDocumentIdentifier{URI: r.uri},
	})
	if err != nil {
		return "", err
	}
	return formatDocumentSymbols(result), nil
}

// WorkspaceSymbols implements the workspace_symbols tool, fanning the query
// out to every currently active language client and merging results, since
// Catenary multiplexes several servers rather than wrapping exactly one.
func (h *Handler) WorkspaceSymbols(ctx context.Context, in WorkspaceSymbolInput) (string, error) {
	clients := h.manager.ActiveClients()
	if len(clients) == 0 {
		return "No matching symbols found", nil
	}

	languages := make([]string, 0, len(clients))
	for lang := range clients {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	var merged lsptypes.WorkspaceSymbolResponse
	for _, lang := range languages {
		client := clients[lang]
		if err := checkAlive(client); err != nil {
			continue
		}
		result, err := client.WorkspaceSymbols(ctx, lsptypes.WorkspaceSymbolParams{Query: in.Query})
		if err != nil {
			h.log.Debug().Err(err).Str("language", lang).Msg("workspace symbol query failed")
			continue
		}
		merged.Symbols = append(merged.Symbols, result.Symbols...)
	}
	return formatWorkspaceSymbols(merged), nil
}

// CodeActions implements the code_actions tool, supplying currently cached
// diagnostics in range as context, per spec.md §4.6.
func (h *Handler) CodeActions(ctx context.Context, in CodeActionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	rng := lsptypes.Range{
		Start: lsptypes.Position{Line: in.StartLine, Character: in.StartChar},
		End:   lsptypes.Position{Line: in.EndLine, Character: in.EndChar},
	}
	diagnostics := diagnosticsInRange(r.client.GetDiagnostics(r.uri), rng)
	result, err := r.client.CodeActions(ctx, lsptypes.CodeActionParams{
		TextDocument: lsptypes.TextDocumentIdentifier{URI: r.uri},
		Range:        rng,
		Context:      lsptypes.CodeActionContext{Diagnostics: diagnostics},
	})
	if err != nil {
		return "", err
	}
	return formatCodeActions(result), nil
}

func diagnosticsInRange(all []lsptypes.Diagnostic, rng lsptypes.Range) []lsptypes.Diagnostic {
	var out []lsptypes.Diagnostic
	for _, d := range all {
		if d.Range.Start.Line >= rng.Start.Line && d.Range.End.Line <= rng.End.Line {
			out = append(out, d)
		}
	}
	return out
}

// Rename implements the rename tool: dry_run renders the edit without
// touching disk; otherwise the edit is applied and the document manager is
// told to resync so the next tool call observes the new content.
func (h *Handler) Rename(ctx context.Context, in RenameInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	edit, err := r.client.Rename(ctx, lsptypes.RenameParams{
		TextDocumentPositionParams: textDocPos(r.uri, in.PositionInput),
		NewName:                    in.NewName,
	})
	if err != nil {
		return "", err
	}
	if in.DryRun {
		return formatWorkspaceEdit(edit), nil
	}
	if edit == nil {
		return "No changes", nil
	}
	applied, err := applyWorkspaceEdit(edit, r.client.Encoding(), h.validator.ValidateWrite)
	if err != nil {
		return "", err
	}
	for _, path := range applied {
		if err := h.ensureDocumentOpen(ctx, r.client, r.docs, path); err != nil {
			h.log.Warn().Err(err).Str("path", path).Msg("failed to resync renamed file")
		}
	}
	return formatWorkspaceEdit(edit), nil
}

// Completion implements the completion tool, capping the item count.
func (h *Handler) Completion(ctx context.Context, in PositionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.Completion(ctx, lsptypes.CompletionParams{TextDocumentPositionParams: textDocPos(r.uri, in)})
	if err != nil {
		return "", err
	}
	if len(result.Items) > completionLimit {
		result.Items = result.Items[:completionLimit]
		result.IsIncomplete = true
	}
	return formatCompletion(result), nil
}

// Diagnostics implements the diagnostics tool: a short nudge wait gives a
// server that just finished indexing a chance to publish before the cache
// is read, grounded on handler.rs's handle_diagnostics.
func (h *Handler) Diagnostics(ctx context.Context, in DiagnosticsInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	select {
	case <-time.After(diagnosticsNudgeWait):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return formatDiagnostics(r.client.GetDiagnostics(r.uri)), nil
}

// SignatureHelp implements the signature_help tool.
func (h *Handler) SignatureHelp(ctx context.Context, in PositionInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	result, err := r.client.SignatureHelp(ctx, lsptypes.SignatureHelpParams{TextDocumentPositionParams: textDocPos(r.uri, in)})
	if err != nil {
		return "", err
	}
	return formatSignatureHelp(result), nil
}

func formattingOptions(tabSize uint32, insertSpaces bool) lsptypes.FormattingOptions {
	if tabSize == 0 {
		tabSize = 4
	}
	return lsptypes.FormattingOptions{TabSize: tabSize, InsertSpaces: insertSpaces}
}

// Formatting implements the formatting tool, applying the returned edits to
// disk and resyncing the document.
func (h *Handler) Formatting(ctx context.Context, in FormattingInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	edits, err := r.client.Formatting(ctx, lsptypes.DocumentFormattingParams{
		TextDocument: lsptypes.TextDocumentIdentifier{URI: r.uri},
		Options:      formattingOptions(in.TabSize, in.InsertSpaces),
	})
	if err != nil {
		return "", err
	}
	if err := applyEditsToFile(r.path, edits, r.client.Encoding()); err != nil {
		return "", err
	}
	if err := h.ensureDocumentOpen(ctx, r.client, r.docs, r.path); err != nil {
		h.log.Warn().Err(err).Str("path", r.path).Msg("failed to resync formatted file")
	}
	return formatTextEdits(edits), nil
}

// RangeFormatting implements the range_formatting tool.
func (h *Handler) RangeFormatting(ctx context.Context, in RangeFormattingInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	edits, err := r.client.RangeFormatting(ctx, lsptypes.DocumentRangeFormattingParams{
		TextDocument: lsptypes.TextDocumentIdentifier{URI: r.uri},
		Range: lsptypes.Range{
			Start: lsptypes.Position{Line: in.StartLine, Character: in.StartChar},
			End:   lsptypes.Position{Line: in.EndLine, Character: in.EndChar},
		},
		Options: formattingOptions(in.TabSize, in.InsertSpaces),
	})
	if err != nil {
		return "", err
	}
	if err := applyEditsToFile(r.path, edits, r.client.Encoding()); err != nil {
		return "", err
	}
	if err := h.ensureDocumentOpen(ctx, r.client, r.docs, r.path); err != nil {
		h.log.Warn().Err(err).Str("path", r.path).Msg("failed to resync formatted file")
	}
	return formatTextEdits(edits), nil
}

// CallHierarchy implements the call_hierarchy tool: prepare at the given
// position, then fetch incoming or outgoing calls for the first prepared
// item, per spec.md §4.6.
func (h *Handler) CallHierarchy(ctx context.Context, in CallHierarchyInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	items, err := r.client.PrepareCallHierarchy(ctx, lsptypes.CallHierarchyPrepareParams{TextDocumentPositionParams: textDocPos(r.uri, in.PositionInput)})
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "No call hierarchy item found at this position", nil
	}
	item := items[0]
	switch in.Direction {
	case CallHierarchyOutgoing:
		calls, err := r.client.OutgoingCalls(ctx, lsptypes.CallHierarchyOutgoingCallsParams{Item: item})
		if err != nil {
			return "", err
		}
		return formatOutgoingCalls(calls), nil
	default:
		calls, err := r.client.IncomingCalls(ctx, lsptypes.CallHierarchyIncomingCallsParams{Item: item})
		if err != nil {
			return "", err
		}
		return formatIncomingCalls(calls), nil
	}
}

// TypeHierarchy implements the type_hierarchy tool: prepare at the given
// position, then fetch supertypes or subtypes for the first prepared item.
func (h *Handler) TypeHierarchy(ctx context.Context, in TypeHierarchyInput) (string, error) {
	r, err := h.resolve(ctx, in.FilePath)
	if err != nil {
		return "", err
	}
	items, err := r.client.PrepareTypeHierarchy(ctx, lsptypes.TypeHierarchyPrepareParams{TextDocumentPositionParams: textDocPos(r.uri, in.PositionInput)})
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "No type hierarchy item found at this position", nil
	}
	item := items[0]
	switch in.Direction {
	case TypeHierarchySubtypes:
		subtypes, err := r.client.Subtypes(ctx, lsptypes.TypeHierarchySubtypesParams{Item: item})
		if err != nil {
			return "", err
		}
		return formatTypeHierarchyItems(subtypes), nil
	default:
		supertypes, err := r.client.Supertypes(ctx, lsptypes.TypeHierarchySupertypesParams{Item: item})
		if err != nil {
			return "", err
		}
		return formatTypeHierarchyItems(supertypes), nil
	}
}

// WaitForDiagnostics exposes the diagnostics wait machine to the notify
// path (internal/notify's ProcessFunc), snapshotting the generation before
// nudging the server with a save and waiting for it to settle.
func (h *Handler) WaitForDiagnostics(ctx context.Context, path string) ([]lsptypes.Diagnostic, error) {
	r, err := h.resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	baseline := r.client.DiagnosticsGeneration(r.uri)
	if err := r.client.DidSave(ctx, lsptypes.DidSaveTextDocumentParams{TextDocument: lsptypes.TextDocumentIdentifier{URI: r.uri}}); err != nil {
		return nil, err
	}
	result, err := r.client.WaitForDiagnosticsUpdate(ctx, r.uri, baseline, defaultInactivityTimeout)
	if err != nil {
		return nil, err
	}
	switch result {
	case lsp.DiagnosticsInactive:
		return nil, fmt.Errorf("lsp: server stopped responding")
	case lsp.DiagnosticsServerDied:
		return nil, fmt.Errorf("lsp: server is no longer running")
	}
	return r.client.GetDiagnostics(r.uri), nil
}

// ListDirectory implements the list_directory tool.
func (h *Handler) ListDirectory(in ListDirectoryInput) (string, error) {
	canonical, err := h.validator.ValidateRead(in.Path)
	if err != nil {
		return "", err
	}
	return listDirectory(canonical)
}

// Run implements the run tool.
func (h *Handler) Run(ctx context.Context, in runtool.RunInput) (runtool.RunOutput, error) {
	if in.Cwd != "" {
		canonical, err := h.validator.ValidateRead(in.Cwd)
		if err != nil {
			return runtool.RunOutput{}, err
		}
		in.Cwd = canonical
	}
	if in.OutputFile != "" {
		canonical, err := h.validator.ValidateWrite(in.OutputFile)
		if err != nil {
			return runtool.RunOutput{}, err
		}
		in.OutputFile = canonical
	}
	return h.runMgr.Execute(ctx, in)
}

// AcquireLock implements the lock tool's acquire operation. The bool result
// reports a stale read: the caller last read this file before the lock it
// just took was acquired, and should re-read before editing.
func (h *Handler) AcquireLock(path, owner string, timeoutSecs int) (locks.AcquireOutcome, bool, error) {
	canonical, err := h.validator.ValidateWrite(path)
	if err != nil {
		return 0, false, err
	}
	return h.lockMgr.Acquire(canonical, owner, timeoutSecs)
}

// ReleaseLock implements the lock tool's release operation. A zero grace
// releases immediately; a positive grace leaves the lock reclaimable by the
// same owner but not others until it elapses.
func (h *Handler) ReleaseLock(path, owner string, grace time.Duration) error {
	canonical, err := h.validator.ValidateWrite(path)
	if err != nil {
		return err
	}
	return h.lockMgr.Release(canonical, owner, grace)
}

// CleanIdleDocuments closes every document that has sat untouched past idle
// across all spawned language clients, freeing server-side memory for
// long-running sessions. Grounded on handler.rs's idle document sweep.
func (h *Handler) CleanIdleDocuments(ctx context.Context, idle time.Duration) {
	h.docsMu.Lock()
	docsets := make(map[string]*docsync.Manager, len(h.docsets))
	for lang, d := range h.docsets {
		docsets[lang] = d
	}
	h.docsMu.Unlock()

	clients := h.manager.ActiveClients()
	for lang, docs := range docsets {
		client, ok := clients[lang]
		if !ok || !client.IsAlive() {
			continue
		}
		for _, path := range docs.StaleDocuments(idle) {
			params := docs.Close(path)
			if err := client.DidClose(ctx, params); err != nil {
				h.log.Warn().Err(err).Str("path", path).Msg("failed to close idle document")
			}
		}
	}
}
