package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Broccolito/TidyFlow/internal/rstyle"
	"github.com/Broccolito/TidyFlow/internal/types"
)

// handleAppendRCode implements the append_r_code tool
func (ms *MCPServer) handleAppendRCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	code, fault := requireString(request, "code")
	if fault != nil {
		return faultResult(fault)
	}
	filename := request.GetString("filename", ms.session.PrimaryFile())
	filename = ensureRExtension(filename)
	ensureNewline := request.GetBool("ensure_trailing_newline", true)

	path, fault := ms.session.ResolvePath(filename)
	if fault != nil {
		return faultResult(fault)
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return faultResult(types.NewFault(types.CodeFileNotFound,
				fmt.Sprintf("File %s does not exist", filename),
				"Create the file first using create_r_file"))
		}
		return faultResult(types.NewFault(types.CodeAppendError,
			fmt.Sprintf("Failed to append code: %s", err)))
	}

	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if ensureNewline && code != "" && !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	content += code

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return faultResult(types.NewFault(types.CodeAppendError,
			fmt.Sprintf("Failed to append code: %s", err)))
	}

	return okResult(map[string]any{
		"filename":       filename,
		"lines_appended": lineCount(code),
		"total_lines":    lineCount(content),
	})
}

// handleWriteRCode implements the write_r_code tool
func (ms *MCPServer) handleWriteRCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	code, fault := requireString(request, "code")
	if fault != nil {
		return faultResult(fault)
	}
	filename := request.GetString("filename", ms.session.PrimaryFile())
	filename = ensureRExtension(filename)
	overwrite := request.GetBool("overwrite", false)
	useScaffold := request.GetBool("use_scaffold_header", true)

	path, fault := ms.session.ResolvePath(filename)
	if fault != nil {
		return faultResult(fault)
	}

	if _, err := os.Stat(path); err == nil && !overwrite {
		return faultResult(types.NewFault(types.CodeFileExists,
			fmt.Sprintf("File %s already exists", filename),
			"Set overwrite=true to replace",
			"Use append_r_code to add to existing file"))
	}

	// Skip the scaffold when the code already opens with its own header.
	content := code
	scaffolded := useScaffold && !strings.HasPrefix(strings.TrimSpace(code), "#")
	if scaffolded {
		content = rstyle.Scaffold + code
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return faultResult(types.NewFault(types.CodeWriteError,
			fmt.Sprintf("Failed to write code: %s", err)))
	}

	return okResult(map[string]any{
		"filename":      filename,
		"path":          path,
		"lines_written": lineCount(content),
		"scaffold_used": scaffolded,
	})
}
