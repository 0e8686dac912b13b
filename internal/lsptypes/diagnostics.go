package lsptypes

import (
	"encoding/json"
	"strconv"
)

// DiagnosticSeverity mirrors the LSP severity enum.
type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is a single server-pushed diagnostic record.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     json.RawMessage    `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// CodeString returns the diagnostic code as a display string, whether the
// server sent it as a JSON number or a JSON string.
func (d Diagnostic) CodeString() string {
	if len(d.Code) == 0 {
		return ""
	}
	var n int64
	if err := json.Unmarshal(d.Code, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	var s string
	if err := json.Unmarshal(d.Code, &s); err == nil {
		return s
	}
	return ""
}

// PublishDiagnosticsParams is the payload of textDocument/publishDiagnostics.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     *int32       `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
