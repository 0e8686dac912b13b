// Package lsp implements the persistent, full-duplex JSON-RPC endpoint to
// one spawned language server, and the manager that owns one Client per
// detected language across a set of workspace roots.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/markwellsdev/catenary/internal/framing"
	"github.com/markwellsdev/catenary/internal/lsptypes"
)

// Timing constants grounded in original_source/src/lsp/client.rs.
const (
	RequestTimeout = 30 * time.Second
	WarmupPeriod   = 10 * time.Second
	readyGrace     = 3 * time.Second
)

const clientName = "catenary"

// retryableCode reports whether an LSP error code warrants a retry with a
// fresh request id rather than propagating to the caller.
func retryableCode(code int64) bool {
	return code == lsptypes.CodeContentModified || code == lsptypes.CodeRequestCancelled
}

// Client is a persistent connection to one spawned language server process.
type Client struct {
	Language string
	Command  string
	Args     []string

	mu               sync.RWMutex
	roots            []string
	cmd              *exec.Cmd
	conn             *jsonrpc2.Conn
	cancel           context.CancelFunc
	spawnedAt        time.Time
	encoding         lsptypes.PositionEncodingKind
	supportsFolders  bool
	serverInfo       *lsptypes.ServerInfo

	state atomic.Int32

	progress *ProgressTracker

	diagMu      sync.Mutex
	diagnostics map[string][]lsptypes.Diagnostic
	generation  map[string]uint64

	hasPublishedDiagnostics atomic.Bool

	lastActivity atomic.Int64 // unixnano

	log zerolog.Logger
}

// rwc adapts a stdin/stdout pipe pair to io.ReadWriteCloser.
type rwc struct {
	io.ReadCloser
	io.WriteCloser
}

func (c rwc) Close() error {
	werr := c.WriteCloser.Close()
	rerr := c.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Spawn starts the language server process and performs the JSON-RPC
// initialize handshake. The returned Client is ready to serve requests once
// this call returns successfully, though the server itself may still be
// indexing (see IsReady/WaitReady).
func Spawn(ctx context.Context, language, command string, args []string, roots []string, log zerolog.Logger) (*Client, error) {
	cmd := exec.Command(command, args...)
	if len(roots) > 0 {
		cmd.Dir = roots[0]
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdin pipe for %s: %w", language, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdout pipe for %s: %w", language, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stderr pipe for %s: %w", language, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsp: spawning %s (%s): %w", language, command, err)
	}

	connCtx, cancel := context.WithCancel(context.Background())

	c := &Client{
		Language:    language,
		Command:     command,
		Args:        args,
		roots:       append([]string(nil), roots...),
		cmd:         cmd,
		cancel:      cancel,
		spawnedAt:   time.Now(),
		encoding:    lsptypes.PositionEncodingUTF16,
		progress:    NewProgressTracker(),
		diagnostics: make(map[string][]lsptypes.Diagnostic),
		generation:  make(map[string]uint64),
		log:         log.With().Str("language", language).Int("pid", cmd.Process.Pid).Logger(),
	}
	c.state.Store(int32(StateInitializing))
	c.lastActivity.Store(time.Now().UnixNano())

	go c.drainStderr(stderr)

	stream := jsonrpc2.NewBufferedStream(rwc{ReadCloser: stdout, WriteCloser: stdin}, framing.Codec{})
	handler := jsonrpc2.HandlerWithError(c.handle)
	c.conn = jsonrpc2.NewConn(connCtx, stream, handler)

	go func() {
		<-c.conn.DisconnectNotify()
		c.state.Store(int32(StateDead))
	}()

	if err := c.initialize(ctx, roots); err != nil {
		c.shutdownProcess()
		return nil, err
	}

	return c, nil
}

func (c *Client) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		c.log.Debug().Str("stream", "stderr").Msg(scanner.Text())
	}
}

// handle serves notifications and server-initiated requests. Unknown
// notifications are ignored; unknown requests get MethodNotFound.
func (c *Client) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	c.lastActivity.Store(time.Now().UnixNano())

	switch req.Method {
	case "textDocument/publishDiagnostics":
		var params lsptypes.PublishDiagnosticsParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				c.log.Warn().Err(err).Msg("malformed publishDiagnostics")
				return nil, nil
			}
		}
		c.diagMu.Lock()
		c.diagnostics[params.URI] = params.Diagnostics
		c.generation[params.URI]++
		c.diagMu.Unlock()
		c.hasPublishedDiagnostics.Store(true)
		return nil, nil

	case "$/progress":
		var params lsptypes.ProgressParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err == nil {
				c.progress.Update(params)
				if c.state.Load() != int32(StateDead) {
					if c.progress.IsBusy() {
						c.state.Store(int32(StateIndexing))
					} else {
						c.state.Store(int32(StateReady))
					}
				}
			}
		}
		return nil, nil

	case "window/logMessage", "window/showMessage":
		var params struct {
			Message string `json:"message"`
		}
		if req.Params != nil {
			_ = json.Unmarshal(*req.Params, &params)
		}
		c.log.Debug().Str("method", req.Method).Msg(params.Message)
		return nil, nil

	case "window/workDoneProgress/create", "client/registerCapability", "client/unregisterCapability":
		return nil, nil

	case "workspace/configuration":
		var params struct {
			Items []json.RawMessage `json:"items"`
		}
		if req.Params != nil {
			_ = json.Unmarshal(*req.Params, &params)
		}
		result := make([]interface{}, len(params.Items))
		return result, nil

	case "workspace/workspaceFolders":
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.workspaceFoldersLocked(), nil

	case "workspace/applyEdit":
		return map[string]bool{"applied": false}, nil

	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: lsptypes.CodeMethodNotFound, Message: "method not found: " + req.Method}
	}
}

func (c *Client) workspaceFoldersLocked() []lsptypes.WorkspaceFolder {
	out := make([]lsptypes.WorkspaceFolder, 0, len(c.roots))
	for _, r := range c.roots {
		out = append(out, lsptypes.WorkspaceFolder{URI: pathToURI(r), Name: lastPathComponent(r)})
	}
	return out
}

func lastPathComponent(p string) string {
	p = strings.TrimRight(p, "/")
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

func pathToURI(p string) string {
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("lsp: invalid URI %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("lsp: unsupported URI scheme %q", u.Scheme)
	}
	return u.Path, nil
}

func (c *Client) initialize(ctx context.Context, roots []string) error {
	pid := os.Getpid()
	var rootURI *string
	folders := make([]lsptypes.WorkspaceFolder, 0, len(roots))
	for _, r := range roots {
		folders = append(folders, lsptypes.WorkspaceFolder{URI: pathToURI(r), Name: lastPathComponent(r)})
	}
	if len(roots) > 0 {
		u := pathToURI(roots[0])
		rootURI = &u
	}

	params := lsptypes.InitializeParams{
		ProcessID:        &pid,
		ClientInfo:       &lsptypes.ClientInfo{Name: clientName, Version: "1"},
		RootURI:          rootURI,
		WorkspaceFolders: folders,
		Capabilities: lsptypes.ClientCapabilities{
			General: lsptypes.GeneralClientCapabilities{
				PositionEncodings: []lsptypes.PositionEncodingKind{
					lsptypes.PositionEncodingUTF8,
					lsptypes.PositionEncodingUTF16,
				},
			},
			Workspace: lsptypes.WorkspaceClientCapabilities{
				WorkspaceFolders: true,
				Configuration:    true,
			},
			TextDocument: lsptypes.TextDocumentClientCapabilities{
				CodeAction: lsptypes.CodeActionClientCapabilities{
					ResolveSupport: &struct {
						Properties []string `json:"properties"`
					}{Properties: []string{"edit"}},
				},
			},
		},
	}

	var result lsptypes.InitializeResult
	if err := request[lsptypes.InitializeParams, lsptypes.InitializeResult](ctx, c, "initialize", params, &result); err != nil {
		return fmt.Errorf("lsp: initialize %s: %w", c.Language, err)
	}

	c.mu.Lock()
	if result.Capabilities.PositionEncoding != "" {
		c.encoding = result.Capabilities.PositionEncoding
	}
	c.supportsFolders = result.Capabilities.Workspace.WorkspaceFolders != nil &&
		result.Capabilities.Workspace.WorkspaceFolders.Supported
	c.serverInfo = result.ServerInfo
	c.mu.Unlock()

	if err := c.conn.Notify(ctx, "initialized", struct{}{}); err != nil {
		return fmt.Errorf("lsp: initialized notification for %s: %w", c.Language, err)
	}

	go func() {
		time.Sleep(readyGrace)
		if c.state.Load() == int32(StateInitializing) {
			c.state.Store(int32(StateReady))
		}
	}()

	return nil
}

// request performs conn.Call with retry-on-ContentModified/RequestCancelled,
// per spec.md §4.1.
func request[P any, R any](ctx context.Context, c *Client, method string, params P, result *R) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
		err := c.conn.Call(callCtx, method, params, result)
		cancel()
		if err == nil {
			return nil
		}
		if rpcErr, ok := err.(*jsonrpc2.Error); ok && retryableCode(rpcErr.Code) {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
			continue
		}
		return err
	}
	return lastErr
}

// notify sends a notification; no response is expected.
func (c *Client) notify(ctx context.Context, method string, params interface{}) error {
	return c.conn.Notify(ctx, method, params)
}

// IsAlive reports whether the child process and the RPC connection are
// both still usable.
func (c *Client) IsAlive() bool {
	return c.state.Load() != int32(StateDead)
}

// Encoding returns the negotiated position-encoding kind.
func (c *Client) Encoding() lsptypes.PositionEncodingKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.encoding
}

// SupportsWorkspaceFolders reports whether the server can have roots
// added/removed without a restart.
func (c *Client) SupportsWorkspaceFolders() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supportsFolders
}

// Uptime returns how long the process has been running.
func (c *Client) Uptime() time.Duration { return time.Since(c.spawnedAt) }

// IsWarmingUp reports whether the client is still inside its post-spawn
// grace window.
func (c *Client) IsWarmingUp() bool { return time.Since(c.spawnedAt) < WarmupPeriod }

// HasPublishedDiagnostics reports whether this server has ever sent a
// textDocument/publishDiagnostics notification.
func (c *Client) HasPublishedDiagnostics() bool { return c.hasPublishedDiagnostics.Load() }

// ServerState returns the client's current readiness state.
func (c *Client) ServerState() ServerState { return ServerStateFromU8(c.state.Load()) }

// IsReady reports whether the post-spawn grace period has elapsed, the
// server is alive, and its state is Ready.
func (c *Client) IsReady() bool {
	return time.Since(c.spawnedAt) >= readyGrace &&
		c.state.Load() == int32(StateReady)
}

// Status summarizes this client for the status/list tooling.
func (c *Client) Status() ServerStatus {
	st := ServerStatus{
		Language:      c.Language,
		State:         c.ServerState(),
		UptimeSeconds: uint64(c.Uptime().Seconds()),
	}
	if p := c.progress.PrimaryProgress(); p != nil {
		st.ProgressTitle = &p.Title
		st.ProgressMessage = p.Message
		st.ProgressPercentage = p.Percentage
	}
	return st
}

// Shutdown performs the LSP shutdown/exit handshake and releases the
// process. Safe to call more than once.
func (c *Client) Shutdown(ctx context.Context) error {
	if !c.IsAlive() {
		c.shutdownProcess()
		return nil
	}
	var none struct{}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = request[struct{}, struct{}](shutdownCtx, c, "shutdown", struct{}{}, &none)
	_ = c.notify(ctx, "exit", nil)
	c.state.Store(int32(StateDead))
	c.shutdownProcess()
	return nil
}

func (c *Client) shutdownProcess() {
	c.cancel()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_, _ = c.cmd.Process.Wait()
	}
}

// AddRoot adds a workspace root, notifying the server if it supports
// dynamic workspace folder changes.
func (c *Client) AddRoot(ctx context.Context, root string) error {
	c.mu.Lock()
	for _, r := range c.roots {
		if r == root {
			c.mu.Unlock()
			return nil
		}
	}
	c.roots = append(c.roots, root)
	supports := c.supportsFolders
	c.mu.Unlock()

	if !supports {
		return nil
	}
	return c.notify(ctx, "workspace/didChangeWorkspaceFolders", lsptypes.DidChangeWorkspaceFoldersParams{
		Event: lsptypes.WorkspaceFoldersChangeEvent{
			Added: []lsptypes.WorkspaceFolder{{URI: pathToURI(root), Name: lastPathComponent(root)}},
		},
	})
}

// RemoveRoot removes a workspace root, notifying the server if supported.
func (c *Client) RemoveRoot(ctx context.Context, root string) error {
	c.mu.Lock()
	found := false
	kept := c.roots[:0]
	for _, r := range c.roots {
		if r == root {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	c.roots = kept
	supports := c.supportsFolders
	c.mu.Unlock()

	if !found || !supports {
		return nil
	}
	return c.notify(ctx, "workspace/didChangeWorkspaceFolders", lsptypes.DidChangeWorkspaceFoldersParams{
		Event: lsptypes.WorkspaceFoldersChangeEvent{
			Removed: []lsptypes.WorkspaceFolder{{URI: pathToURI(root), Name: lastPathComponent(root)}},
		},
	})
}

// Roots returns a copy of the client's current workspace roots.
func (c *Client) Roots() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.roots...)
}

// --- Document sync ---

func (c *Client) DidOpen(ctx context.Context, params lsptypes.DidOpenTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didOpen", params)
}

func (c *Client) DidChange(ctx context.Context, params lsptypes.DidChangeTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didChange", params)
}

func (c *Client) DidSave(ctx context.Context, params lsptypes.DidSaveTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didSave", params)
}

func (c *Client) DidClose(ctx context.Context, params lsptypes.DidCloseTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didClose", params)
}

// --- Diagnostics cache ---

// GetDiagnostics returns the last diagnostics published for uri.
func (c *Client) GetDiagnostics(uri string) []lsptypes.Diagnostic {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return append([]lsptypes.Diagnostic(nil), c.diagnostics[uri]...)
}

// DiagnosticsGeneration returns the monotonically increasing publish
// counter for uri, used to detect fresh diagnostics after a change.
func (c *Client) DiagnosticsGeneration(uri string) uint64 {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return c.generation[uri]
}

// lastActivityAt returns the time of the last inbound notification/request
// of any method handled from the server.
func (c *Client) lastActivityAt() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// --- Typed request wrappers, grounded on original_source/src/lsp/client.rs ---

func (c *Client) Hover(ctx context.Context, params lsptypes.HoverParams) (*lsptypes.Hover, error) {
	var raw json.RawMessage
	if err := request[lsptypes.HoverParams, json.RawMessage](ctx, c, "textDocument/hover", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var result lsptypes.Hover
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("lsp: decoding hover result: %w", err)
	}
	return &result, nil
}

func (c *Client) Definition(ctx context.Context, params lsptypes.GotoDefinitionParams) (lsptypes.GotoDefinitionResponse, error) {
	var result lsptypes.GotoDefinitionResponse
	err := request[lsptypes.GotoDefinitionParams, lsptypes.GotoDefinitionResponse](ctx, c, "textDocument/definition", params, &result)
	return result, err
}

func (c *Client) TypeDefinition(ctx context.Context, params lsptypes.GotoDefinitionParams) (lsptypes.GotoDefinitionResponse, error) {
	var result lsptypes.GotoDefinitionResponse
	err := request[lsptypes.GotoDefinitionParams, lsptypes.GotoDefinitionResponse](ctx, c, "textDocument/typeDefinition", params, &result)
	return result, err
}

func (c *Client) Implementation(ctx context.Context, params lsptypes.GotoDefinitionParams) (lsptypes.GotoDefinitionResponse, error) {
	var result lsptypes.GotoDefinitionResponse
	err := request[lsptypes.GotoDefinitionParams, lsptypes.GotoDefinitionResponse](ctx, c, "textDocument/implementation", params, &result)
	return result, err
}

func (c *Client) References(ctx context.Context, params lsptypes.ReferenceParams) ([]lsptypes.Location, error) {
	var result []lsptypes.Location
	err := request[lsptypes.ReferenceParams, []lsptypes.Location](ctx, c, "textDocument/references", params, &result)
	return result, err
}

func (c *Client) DocumentSymbols(ctx context.Context, params lsptypes.DocumentSymbolParams) (lsptypes.DocumentSymbolResponse, error) {
	var result lsptypes.DocumentSymbolResponse
	err := request[lsptypes.DocumentSymbolParams, lsptypes.DocumentSymbolResponse](ctx, c, "textDocument/documentSymbol", params, &result)
	return result, err
}

func (c *Client) WorkspaceSymbols(ctx context.Context, params lsptypes.WorkspaceSymbolParams) (lsptypes.WorkspaceSymbolResponse, error) {
	var result lsptypes.WorkspaceSymbolResponse
	err := request[lsptypes.WorkspaceSymbolParams, lsptypes.WorkspaceSymbolResponse](ctx, c, "workspace/symbol", params, &result)
	return result, err
}

func (c *Client) CodeActions(ctx context.Context, params lsptypes.CodeActionParams) (lsptypes.CodeActionList, error) {
	var result lsptypes.CodeActionList
	err := request[lsptypes.CodeActionParams, lsptypes.CodeActionList](ctx, c, "textDocument/codeAction", params, &result)
	return result, err
}

func (c *Client) ResolveCodeAction(ctx context.Context, action lsptypes.CodeAction) (lsptypes.CodeAction, error) {
	var result lsptypes.CodeAction
	err := request[lsptypes.CodeAction, lsptypes.CodeAction](ctx, c, "codeAction/resolve", action, &result)
	return result, err
}

func (c *Client) Rename(ctx context.Context, params lsptypes.RenameParams) (*lsptypes.WorkspaceEdit, error) {
	var raw json.RawMessage
	if err := request[lsptypes.RenameParams, json.RawMessage](ctx, c, "textDocument/rename", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var edit lsptypes.WorkspaceEdit
	if err := json.Unmarshal(raw, &edit); err != nil {
		return nil, fmt.Errorf("lsp: decoding rename result: %w", err)
	}
	return &edit, nil
}

func (c *Client) Completion(ctx context.Context, params lsptypes.CompletionParams) (lsptypes.CompletionResponse, error) {
	var result lsptypes.CompletionResponse
	err := request[lsptypes.CompletionParams, lsptypes.CompletionResponse](ctx, c, "textDocument/completion", params, &result)
	return result, err
}

func (c *Client) SignatureHelp(ctx context.Context, params lsptypes.SignatureHelpParams) (*lsptypes.SignatureHelp, error) {
	var raw json.RawMessage
	if err := request[lsptypes.SignatureHelpParams, json.RawMessage](ctx, c, "textDocument/signatureHelp", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var result lsptypes.SignatureHelp
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("lsp: decoding signatureHelp result: %w", err)
	}
	return &result, nil
}

func (c *Client) Formatting(ctx context.Context, params lsptypes.DocumentFormattingParams) ([]lsptypes.TextEdit, error) {
	var result []lsptypes.TextEdit
	err := request[lsptypes.DocumentFormattingParams, []lsptypes.TextEdit](ctx, c, "textDocument/formatting", params, &result)
	return result, err
}

func (c *Client) RangeFormatting(ctx context.Context, params lsptypes.DocumentRangeFormattingParams) ([]lsptypes.TextEdit, error) {
	var result []lsptypes.TextEdit
	err := request[lsptypes.DocumentRangeFormattingParams, []lsptypes.TextEdit](ctx, c, "textDocument/rangeFormatting", params, &result)
	return result, err
}

func (c *Client) PrepareCallHierarchy(ctx context.Context, params lsptypes.CallHierarchyPrepareParams) ([]lsptypes.CallHierarchyItem, error) {
	var result []lsptypes.CallHierarchyItem
	err := request[lsptypes.CallHierarchyPrepareParams, []lsptypes.CallHierarchyItem](ctx, c, "textDocument/prepareCallHierarchy", params, &result)
	return result, err
}

func (c *Client) IncomingCalls(ctx context.Context, params lsptypes.CallHierarchyIncomingCallsParams) ([]lsptypes.CallHierarchyIncomingCall, error) {
	var result []lsptypes.CallHierarchyIncomingCall
	err := request[lsptypes.CallHierarchyIncomingCallsParams, []lsptypes.CallHierarchyIncomingCall](ctx, c, "callHierarchy/incomingCalls", params, &result)
	return result, err
}

func (c *Client) OutgoingCalls(ctx context.Context, params lsptypes.CallHierarchyOutgoingCallsParams) ([]lsptypes.CallHierarchyOutgoingCall, error) {
	var result []lsptypes.CallHierarchyOutgoingCall
	err := request[lsptypes.CallHierarchyOutgoingCallsParams, []lsptypes.CallHierarchyOutgoingCall](ctx, c, "callHierarchy/outgoingCalls", params, &result)
	return result, err
}

func (c *Client) PrepareTypeHierarchy(ctx context.Context, params lsptypes.TypeHierarchyPrepareParams) ([]lsptypes.TypeHierarchyItem, error) {
	var result []lsptypes.TypeHierarchyItem
	err := request[lsptypes.TypeHierarchyPrepareParams, []lsptypes.TypeHierarchyItem](ctx, c, "textDocument/prepareTypeHierarchy", params, &result)
	return result, err
}

func (c *Client) Supertypes(ctx context.Context, params lsptypes.TypeHierarchySupertypesParams) ([]lsptypes.TypeHierarchyItem, error) {
	var result []lsptypes.TypeHierarchyItem
	err := request[lsptypes.TypeHierarchySupertypesParams, []lsptypes.TypeHierarchyItem](ctx, c, "typeHierarchy/supertypes", params, &result)
	return result, err
}

func (c *Client) Subtypes(ctx context.Context, params lsptypes.TypeHierarchySubtypesParams) ([]lsptypes.TypeHierarchyItem, error) {
	var result []lsptypes.TypeHierarchyItem
	err := request[lsptypes.TypeHierarchySubtypesParams, []lsptypes.TypeHierarchyItem](ctx, c, "typeHierarchy/subtypes", params, &result)
	return result, err
}
