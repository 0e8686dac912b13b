// Package framing implements the Content-Length message framing used by
// every LSP child process, as a github.com/sourcegraph/jsonrpc2.ObjectCodec.
// jsonrpc2 ships its own VSCodeObjectCodec that does the same job; Codec
// exists as a separate, independently tested unit so the exact framing
// rules are pinned down rather than inherited implicitly.
package framing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Codec reads and writes JSON-RPC messages framed with a Content-Length
// header, matching the wire format every LSP server speaks.
type Codec struct{}

// WriteObject marshals obj to JSON and writes it with a Content-Length
// header. No trailing newline follows the body.
func (Codec) WriteObject(w io.Writer, obj interface{}) error {
	body, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadObject reads one Content-Length-framed message and decodes it into v.
// Header lines are matched case-insensitively; only Content-Length is
// consulted. The body is validated as UTF-8 before decoding.
func (c Codec) ReadObject(r *bufio.Reader, v interface{}) error {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			name := strings.ToLower(strings.TrimSpace(line[:idx]))
			value := strings.TrimSpace(line[idx+1:])
			if name == "content-length" {
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("framing: malformed Content-Length header %q: %w", value, err)
				}
				contentLength = n
			}
		}
	}
	if contentLength < 0 {
		return fmt.Errorf("framing: message has no Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("framing: reading body: %w", err)
	}
	if !utf8.Valid(body) {
		return fmt.Errorf("framing: message body is not valid UTF-8")
	}
	return json.Unmarshal(body, v)
}
