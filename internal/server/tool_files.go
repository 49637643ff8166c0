package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Broccolito/TidyFlow/internal/rstyle"
	"github.com/Broccolito/TidyFlow/internal/types"
)

// handleCreateRFile implements the create_r_file tool
func (ms *MCPServer) handleCreateRFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	filename, fault := requireString(request, "filename")
	if fault != nil {
		return faultResult(fault)
	}
	filename = ensureRExtension(filename)
	overwrite := request.GetBool("overwrite", false)
	scaffold := request.GetBool("scaffold", true)

	path, fault := ms.session.ResolvePath(filename)
	if fault != nil {
		return faultResult(fault)
	}

	if _, err := os.Stat(path); err == nil && !overwrite {
		return faultResult(types.NewFault(types.CodeFileExists,
			fmt.Sprintf("File %s already exists", filename),
			"Set overwrite=true to replace",
			"Use a different filename"))
	}

	content := ""
	if scaffold {
		content = rstyle.Scaffold
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return faultResult(types.NewFault(types.CodeCreateError,
			fmt.Sprintf("Failed to create file: %s", err)))
	}

	return okResult(map[string]any{
		"filename":      filename,
		"path":          path,
		"scaffold_used": scaffold,
	})
}

// handleRenameRFile implements the rename_r_file tool
func (ms *MCPServer) handleRenameRFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	oldName, fault := requireString(request, "old_name")
	if fault != nil {
		return faultResult(fault)
	}
	newName, fault := requireString(request, "new_name")
	if fault != nil {
		return faultResult(fault)
	}
	oldName = ensureRExtension(oldName)
	newName = ensureRExtension(newName)
	overwrite := request.GetBool("overwrite", false)

	oldPath, oldFault := ms.session.ResolvePath(oldName)
	newPath, newFault := ms.session.ResolvePath(newName)
	if oldFault != nil || newFault != nil {
		return faultResult(types.NewFault(types.CodeUnsafePath,
			"File paths must be within working directory"))
	}

	if _, err := os.Stat(oldPath); errors.Is(err, os.ErrNotExist) {
		return faultResult(types.NewFault(types.CodeFileNotFound,
			fmt.Sprintf("File %s does not exist", oldName)))
	}

	if _, err := os.Stat(newPath); err == nil && !overwrite {
		return faultResult(types.NewFault(types.CodeFileExists,
			fmt.Sprintf("File %s already exists", newName),
			"Set overwrite=true to replace",
			"Use a different filename"))
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return faultResult(types.NewFault(types.CodeRenameError,
			fmt.Sprintf("Failed to rename file: %s", err)))
	}

	if ms.session.PrimaryFile() == oldName {
		ms.session.SetPrimaryFile(newName)
	}

	return okResult(map[string]any{
		"old_name":        oldName,
		"new_name":        newName,
		"primary_updated": ms.session.PrimaryFile() == newName,
	})
}

// handleSetPrimaryFile implements the set_primary_file tool
func (ms *MCPServer) handleSetPrimaryFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	filename, fault := requireString(request, "filename")
	if fault != nil {
		return faultResult(fault)
	}
	filename = ensureRExtension(filename)

	path, fault := ms.session.ResolvePath(filename)
	if fault != nil {
		return faultResult(fault)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return faultResult(types.NewFault(types.CodeFileNotFound,
			fmt.Sprintf("File %s does not exist", filename),
			"Create the file first using create_r_file"))
	}

	ms.session.SetPrimaryFile(filename)

	return okResult(map[string]any{
		"primary_file": filename,
	})
}

// handleListRFiles implements the list_r_files tool
func (ms *MCPServer) handleListRFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range []string{"*.R", "*.r"} {
		matches, err := filepath.Glob(filepath.Join(ms.session.Workdir(), pattern))
		if err != nil {
			return faultResult(types.NewFault(types.CodeListError,
				fmt.Sprintf("Failed to list R files: %s", err)))
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			name := filepath.Base(match)
			if !seen[name] {
				seen[name] = true
				files = append(files, name)
			}
		}
	}
	sort.Strings(files)
	if files == nil {
		files = []string{}
	}

	return okResult(map[string]any{
		"files":        files,
		"primary_file": ms.session.PrimaryFile(),
	})
}
