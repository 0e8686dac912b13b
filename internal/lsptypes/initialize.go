package lsptypes

// ClientInfo identifies Catenary to the spawned server.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// GeneralClientCapabilities carries the position-encoding negotiation (§6):
// Catenary advertises both kinds, preferring UTF-8.
type GeneralClientCapabilities struct {
	PositionEncodings []PositionEncodingKind `json:"positionEncodings,omitempty"`
}

// WorkspaceClientCapabilities advertises workspace-level client support; the
// workspaceFolders capability is carried as a plain bool field here rather
// than as a separate nested type.
type WorkspaceClientCapabilities struct {
	WorkspaceFolders bool                       `json:"workspaceFolders"`
	Configuration    bool                       `json:"configuration"`
	DidChangeWatchedFiles *struct {
		DynamicRegistration bool `json:"dynamicRegistration"`
	} `json:"didChangeWatchedFiles,omitempty"`
}

// CodeActionClientCapabilities advertises literal and resolve support.
type CodeActionClientCapabilities struct {
	CodeActionLiteralSupport *struct {
		CodeActionKind struct {
			ValueSet []string `json:"valueSet"`
		} `json:"codeActionKind"`
	} `json:"codeActionLiteralSupport,omitempty"`
	ResolveSupport *struct {
		Properties []string `json:"properties"`
	} `json:"resolveSupport,omitempty"`
}

// TextDocumentClientCapabilities is trimmed to the handful of fields
// Catenary actually needs to advertise.
type TextDocumentClientCapabilities struct {
	CodeAction CodeActionClientCapabilities `json:"codeAction"`
}

// ClientCapabilities is the capabilities object sent in InitializeParams.
type ClientCapabilities struct {
	General      GeneralClientCapabilities      `json:"general"`
	Workspace    WorkspaceClientCapabilities    `json:"workspace"`
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
}

// InitializeParams is the payload of the initialize request.
type InitializeParams struct {
	ProcessID             *int               `json:"processId"`
	ClientInfo            *ClientInfo        `json:"clientInfo,omitempty"`
	RootURI               *string            `json:"rootUri"`
	WorkspaceFolders      []WorkspaceFolder  `json:"workspaceFolders,omitempty"`
	Capabilities          ClientCapabilities `json:"capabilities"`
	InitializationOptions any                `json:"initializationOptions,omitempty"`
}

// WorkspaceFoldersServerCapabilities reports whether the server supports
// dynamic workspace folder changes without a restart.
type WorkspaceFoldersServerCapabilities struct {
	Supported           bool `json:"supported"`
	ChangeNotifications any  `json:"changeNotifications,omitempty"`
}

// ServerWorkspaceCapabilities is the workspace sub-object of
// ServerCapabilities.
type ServerWorkspaceCapabilities struct {
	WorkspaceFolders *WorkspaceFoldersServerCapabilities `json:"workspaceFolders,omitempty"`
}

// ServerCapabilities is trimmed to what Catenary inspects: position
// encoding negotiation and workspace-folder dynamic-change support. Unknown
// fields are preserved by callers that need them via raw re-decoding, but
// Catenary itself never needs the rest.
type ServerCapabilities struct {
	PositionEncoding PositionEncodingKind        `json:"positionEncoding,omitempty"`
	Workspace        ServerWorkspaceCapabilities `json:"workspace,omitempty"`
}

// ServerInfo identifies the spawned server, if it chooses to report it.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the response to the initialize request.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}
