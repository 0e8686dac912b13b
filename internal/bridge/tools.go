package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/markwellsdev/catenary/internal/locks"
	"github.com/markwellsdev/catenary/internal/runtool"
)

func args(request mcp.CallToolRequest) map[string]any {
	out := make(map[string]any, len(request.Params.Arguments))
	for k, v := range request.Params.Arguments {
		out[k] = v
	}
	return out
}

func argString(a map[string]any, key, def string) string {
	if v, ok := a[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func argStringSlice(a map[string]any, key string) []string {
	v, ok := a[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argUint32(a map[string]any, key string) uint32 {
	if v, ok := a[key]; ok {
		switch n := v.(type) {
		case float64:
			return uint32(n)
		case int:
			return uint32(n)
		}
	}
	return 0
}

func argBool(a map[string]any, key string, def bool) bool {
	if v, ok := a[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func argInt(a map[string]any, key string, def int) int {
	if v, ok := a[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case string:
			var parsed int
			if _, err := fmt.Sscanf(n, "%d", &parsed); err == nil {
				return parsed
			}
		}
	}
	return def
}

func positionInput(a map[string]any) PositionInput {
	return PositionInput{
		FilePath:  argString(a, "file_path", ""),
		Line:      argUint32(a, "line"),
		Character: argUint32(a, "character"),
	}
}

func textResult(text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// Register builds and attaches every Catenary tool to s.
func Register(s *server.MCPServer, h *Handler) {
	s.AddTool(mcp.NewTool("hover",
		mcp.WithDescription("Get hover information (type, docs) at a position in a file"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.Hover(ctx, positionInput(args(request)))
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("definition",
		mcp.WithDescription("Go to the definition of the symbol at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.Definition(ctx, positionInput(args(request)))
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("type_definition",
		mcp.WithDescription("Go to the type definition of the symbol at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.TypeDefinition(ctx, positionInput(args(request)))
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("implementation",
		mcp.WithDescription("Find implementations of the symbol at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.Implementation(ctx, positionInput(args(request)))
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("references",
		mcp.WithDescription("Find references to the symbol at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
		mcp.WithBoolean("include_declaration", mcp.Description("Include the declaration site itself")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.References(ctx, ReferencesInput{
			PositionInput:      positionInput(a),
			IncludeDeclaration: argBool(a, "include_declaration", false),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("document_symbols",
		mcp.WithDescription("List symbols defined in a file"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.DocumentSymbols(ctx, FileInput{FilePath: argString(args(request), "file_path", "")})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("workspace_symbols",
		mcp.WithDescription("Search for symbols by name across the whole workspace"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Symbol name query")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.WorkspaceSymbols(ctx, WorkspaceSymbolInput{Query: argString(args(request), "query", "")})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("code_actions",
		mcp.WithDescription("List available code actions (quick fixes, refactors) in a range"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("start_line", mcp.Required(), mcp.Description("0-indexed start line")),
		mcp.WithNumber("start_character", mcp.Required(), mcp.Description("0-indexed start character")),
		mcp.WithNumber("end_line", mcp.Required(), mcp.Description("0-indexed end line")),
		mcp.WithNumber("end_character", mcp.Required(), mcp.Description("0-indexed end character")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.CodeActions(ctx, CodeActionInput{
			FilePath:  argString(a, "file_path", ""),
			StartLine: argUint32(a, "start_line"),
			StartChar: argUint32(a, "start_character"),
			EndLine:   argUint32(a, "end_line"),
			EndChar:   argUint32(a, "end_character"),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("rename",
		mcp.WithDescription("Rename the symbol at a position across the workspace"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
		mcp.WithString("new_name", mcp.Required(), mcp.Description("The new symbol name")),
		mcp.WithBoolean("dry_run", mcp.Description("Preview the edit without writing to disk (default true)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.Rename(ctx, RenameInput{
			PositionInput: positionInput(a),
			NewName:       argString(a, "new_name", ""),
			DryRun:        argBool(a, "dry_run", true),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("completion",
		mcp.WithDescription("Get completion suggestions at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.Completion(ctx, positionInput(args(request)))
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("diagnostics",
		mcp.WithDescription("Get current diagnostics (errors, warnings) for a file"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.Diagnostics(ctx, DiagnosticsInput{FilePath: argString(args(request), "file_path", "")})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("signature_help",
		mcp.WithDescription("Get function signature help at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.SignatureHelp(ctx, positionInput(args(request)))
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("formatting",
		mcp.WithDescription("Format an entire file"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("tab_size", mcp.Description("Tab width (default 4)")),
		mcp.WithBoolean("insert_spaces", mcp.Description("Use spaces instead of tabs")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.Formatting(ctx, FormattingInput{
			FilePath:     argString(a, "file_path", ""),
			TabSize:      argUint32(a, "tab_size"),
			InsertSpaces: argBool(a, "insert_spaces", true),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("range_formatting",
		mcp.WithDescription("Format a range within a file"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("start_line", mcp.Required(), mcp.Description("0-indexed start line")),
		mcp.WithNumber("start_character", mcp.Required(), mcp.Description("0-indexed start character")),
		mcp.WithNumber("end_line", mcp.Required(), mcp.Description("0-indexed end line")),
		mcp.WithNumber("end_character", mcp.Required(), mcp.Description("0-indexed end character")),
		mcp.WithNumber("tab_size", mcp.Description("Tab width (default 4)")),
		mcp.WithBoolean("insert_spaces", mcp.Description("Use spaces instead of tabs")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.RangeFormatting(ctx, RangeFormattingInput{
			FormattingInput: FormattingInput{
				FilePath:     argString(a, "file_path", ""),
				TabSize:      argUint32(a, "tab_size"),
				InsertSpaces: argBool(a, "insert_spaces", true),
			},
			StartLine: argUint32(a, "start_line"),
			StartChar: argUint32(a, "start_character"),
			EndLine:   argUint32(a, "end_line"),
			EndChar:   argUint32(a, "end_character"),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("call_hierarchy",
		mcp.WithDescription("Get incoming or outgoing calls for the function at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
		mcp.WithString("direction", mcp.Required(), mcp.Description("\"incoming\" or \"outgoing\"")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.CallHierarchy(ctx, CallHierarchyInput{
			PositionInput: positionInput(a),
			Direction:     CallHierarchyDirection(argString(a, "direction", "incoming")),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("type_hierarchy",
		mcp.WithDescription("Get supertypes or subtypes for the type at a position"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("0-indexed line number")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("0-indexed character offset")),
		mcp.WithString("direction", mcp.Required(), mcp.Description("\"supertypes\" or \"subtypes\"")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		text, err := h.TypeHierarchy(ctx, TypeHierarchyInput{
			PositionInput: positionInput(a),
			Direction:     TypeHierarchyDirection(argString(a, "direction", "supertypes")),
		})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("list_directory",
		mcp.WithDescription("List the contents of a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the directory")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := h.ListDirectory(ListDirectoryInput{Path: argString(args(request), "path", "")})
		return textResult(text, err)
	})

	s.AddTool(mcp.NewTool("acquire_lock",
		mcp.WithDescription("Acquire an advisory edit lock on a file, coordinating with other agents"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithString("owner", mcp.Description("Caller identity; defaults to a process-stable id")),
		mcp.WithNumber("timeout_secs", mcp.Description("Seconds to poll before giving up (default 180)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		outcome, staleRead, err := h.AcquireLock(argString(a, "file_path", ""), argString(a, "owner", ""), argInt(a, "timeout_secs", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text := describeLockOutcome(outcome)
		if staleRead {
			text += " (warning: this file changed since your last read — re-read before editing)"
		}
		return mcp.NewToolResultText(text), nil
	})

	s.AddTool(mcp.NewTool("release_lock",
		mcp.WithDescription("Release a previously acquired advisory edit lock"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute path to the file")),
		mcp.WithString("owner", mcp.Description("Caller identity; defaults to a process-stable id")),
		mcp.WithNumber("grace_secs", mcp.Description("Grace window during which this owner may instantly re-acquire (default 0, release immediately)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		grace := time.Duration(argInt(a, "grace_secs", 0)) * time.Second
		if err := h.ReleaseLock(argString(a, "file_path", ""), argString(a, "owner", ""), grace); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("released"), nil
	})

	s.AddTool(mcp.NewTool("run",
		mcp.WithDescription(h.runMgr.DescribeAllowlist(h.runMgr.PrimaryRoot())),
		mcp.WithString("command", mcp.Required(), mcp.Description("Program to execute, e.g. \"go\"")),
		mcp.WithArray("args", mcp.Description("Arguments, e.g. [\"test\", \"./...\"]")),
		mcp.WithString("cwd", mcp.Description("Working directory (defaults to the primary workspace root)")),
		mcp.WithNumber("timeout_secs", mcp.Description("Seconds before the command is killed (default 120)")),
		mcp.WithString("output_file", mcp.Description("Write output here instead of returning it inline")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a := args(request)
		out, err := h.Run(ctx, runtool.RunInput{
			Command:    argString(a, "command", ""),
			Args:       argStringSlice(a, "args"),
			Cwd:        argString(a, "cwd", ""),
			TimeoutSec: argInt(a, "timeout_secs", 0),
			OutputFile: argString(a, "output_file", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return textResult(describeRunOutput(out), nil)
	})
}

func describeLockOutcome(outcome locks.AcquireOutcome) string {
	switch outcome {
	case locks.Acquired:
		return "Lock acquired"
	case locks.AlreadyHeldBySelf:
		return "Lock refreshed (already held by this owner)"
	case locks.ReclaimedStale:
		return "Lock acquired (previous holder's lock was stale)"
	case locks.HeldByOther:
		return "Lock is held by another owner"
	default:
		return "Lock acquired"
	}
}

func describeRunOutput(out runtool.RunOutput) string {
	var result string
	if out.TimedOut {
		result += "TIMED OUT\n"
	}
	result += fmt.Sprintf("Exit code: %d\n", out.ExitCode)
	if out.Stdout != "" {
		result += fmt.Sprintf("stdout:\n%s\n", out.Stdout)
	}
	if out.Stderr != "" {
		result += fmt.Sprintf("stderr:\n%s\n", out.Stderr)
	}
	return result
}
