// Package lsptypes defines the JSON-RPC envelope and the slice of LSP
// wire types Catenary's tool handlers actually exercise.
//
// There is no drop-in generated LSP types module anywhere in the retrieved
// reference set, so these are hand-rolled in the same spirit as the
// envelope types every JSON-RPC bridge in this codebase's lineage hand-rolls
// for itself (see cmd/lsp-session-manager's JSONRPCID for the precedent).
package lsptypes

import (
	"encoding/json"
	"fmt"
)

// ID is an LSP request/response identifier: either a JSON number or a
// JSON string. The zero value is "unset" (used for notifications).
type ID struct {
	name   string
	number int64
	isSet  bool
	isStr  bool
}

// NewIntID builds a numeric request ID.
func NewIntID(n int64) ID {
	return ID{number: n, isSet: true}
}

// NewStringID builds a string request ID.
func NewStringID(s string) ID {
	return ID{name: s, isSet: true, isStr: true}
}

// IsSet reports whether the ID carries a value (false for notifications).
func (id ID) IsSet() bool { return id.isSet }

// IsString reports whether the underlying value is a string.
func (id ID) IsString() bool { return id.isStr }

// Int64 returns the numeric value; zero if the ID is a string or unset.
func (id ID) Int64() int64 { return id.number }

// String renders the ID for logging.
func (id ID) String() string {
	if !id.isSet {
		return "<none>"
	}
	if id.isStr {
		return id.name
	}
	return fmt.Sprintf("%d", id.number)
}

// MarshalJSON renders a number, a string, or JSON null.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.isSet {
		return []byte("null"), nil
	}
	if id.isStr {
		return json.Marshal(id.name)
	}
	return json.Marshal(id.number)
}

// UnmarshalJSON accepts a number, a string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID{number: n, isSet: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID{name: s, isSet: true, isStr: true}
		return nil
	}
	return fmt.Errorf("lsptypes: id must be a number, string, or null: %s", data)
}

// RequestMessage is an outgoing or incoming LSP request.
type RequestMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// ResponseMessage is an LSP response, success or error.
type ResponseMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// NotificationMessage is an LSP notification (no id, no response expected).
type NotificationMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// ResponseError carries an LSP/JSON-RPC error.
type ResponseError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("lsp error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC / LSP error codes used by the bridge.
const (
	CodeMethodNotFound   = -32601
	CodeInvalidRequest   = -32600
	CodeInternalError    = -32603
	CodeContentModified  = -32801
	CodeRequestCancelled = -32800
)
