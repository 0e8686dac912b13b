// Package notify runs a Unix domain socket accepting {"file": "<path>"}
// requests from editor/hook integrations, driving a caller-supplied
// process function and returning its formatted diagnostics text — grounded
// on original_source/src/notify.rs.
package notify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/markwellsdev/catenary/internal/lsptypes"
)

// Request is the JSON payload a notify client sends.
type Request struct {
	File string `json:"file"`
}

// ProcessFunc resolves a file path to its current diagnostics, driving
// ensure_open/did_change/did_save and a diagnostics-wait-update under the
// hood. It returns the diagnostics to report back to the caller.
type ProcessFunc func(path string) ([]lsptypes.Diagnostic, error)

// Server accepts notify requests on a Unix domain socket.
type Server struct {
	socketPath string
	process    ProcessFunc
	log        zerolog.Logger
}

// NewServer builds a notify Server. process is called once per accepted
// connection's file request.
func NewServer(socketPath string, process ProcessFunc, log zerolog.Logger) *Server {
	return &Server{socketPath: socketPath, process: process, log: log}
}

// Start removes any stale socket file and begins accepting connections on a
// background goroutine, returning the listener at once; closing it stops the
// accept loop. Each connection is served on its own goroutine.
func (s *Server) Start() (net.Listener, error) {
	if _, err := os.Stat(s.socketPath); err == nil {
		if err := os.Remove(s.socketPath); err != nil {
			return nil, fmt.Errorf("notify: removing stale socket %s: %w", s.socketPath, err)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return nil, fmt.Errorf("notify: listening on %s: %w", s.socketPath, err)
	}

	go s.acceptLoop(ln)
	return ln, nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		s.log.Debug().Err(err).Msg("notify: reading request")
		return
	}

	var req Request
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &req); err != nil {
		fmt.Fprintf(conn, "error: invalid request: %s\n", err)
		return
	}

	diagnostics, err := s.process(req.File)
	if err != nil {
		fmt.Fprintf(conn, "error: %s\n", err)
		return
	}

	fmt.Fprintln(conn, FormatNotifyReply(diagnostics))
}

// FormatNotifyReply renders a notify connection's reply: empty when there
// are no diagnostics, otherwise "Diagnostics (N):" followed by one compact,
// two-space-indented line per diagnostic.
func FormatNotifyReply(diagnostics []lsptypes.Diagnostic) string {
	if len(diagnostics) == 0 {
		return ""
	}
	return fmt.Sprintf("Diagnostics (%d):\n%s", len(diagnostics), FormatDiagnosticsCompact(diagnostics))
}

// FormatDiagnosticsCompact renders diagnostics as 1-indexed, two-space
// indented "  line:col [severity] source(code): message" lines, one per
// diagnostic.
func FormatDiagnosticsCompact(diagnostics []lsptypes.Diagnostic) string {
	lines := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		severity := severityLabel(d.Severity)
		line := d.Range.Start.Line + 1
		col := d.Range.Start.Character + 1
		code := d.CodeString()
		if code == "" {
			lines = append(lines, fmt.Sprintf("  %d:%d [%s] %s: %s", line, col, severity, d.Source, d.Message))
		} else {
			lines = append(lines, fmt.Sprintf("  %d:%d [%s] %s(%s): %s", line, col, severity, d.Source, code, d.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func severityLabel(s lsptypes.DiagnosticSeverity) string {
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
