package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/Broccolito/TidyFlow/internal/tabular"
	"github.com/Broccolito/TidyFlow/internal/types"
)

type exportEntry struct {
	name  string
	size  int64
	mtime time.Time
	ext   string
}

// handleListExports implements the list_exports tool
func (ms *MCPServer) handleListExports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	pattern := request.GetString("glob", "*")
	sortBy := request.GetString("sort_by", "mtime")
	descending := request.GetBool("descending", true)
	limit := request.GetInt("limit", 200)

	// Glob patterns are matched lexically, so a ".." segment or an
	// absolute pattern would list files outside the working directory.
	if filepath.IsAbs(pattern) || strings.Contains(pattern, "..") {
		return faultResult(types.NewFault(types.CodeUnsafePath,
			fmt.Sprintf("Glob pattern %s is outside working directory", pattern)))
	}

	matches, err := filepath.Glob(filepath.Join(ms.session.Workdir(), pattern))
	if err != nil {
		return faultResult(types.NewFault(types.CodeListError,
			fmt.Sprintf("Failed to list files: %s", err)))
	}

	var entries []exportEntry
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		entries = append(entries, exportEntry{
			name:  filepath.Base(match),
			size:  info.Size(),
			mtime: info.ModTime(),
			ext:   filepath.Ext(match),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "size":
			less = entries[i].size < entries[j].size
		case "name":
			less = entries[i].name < entries[j].name
		default:
			less = entries[i].mtime.Before(entries[j].mtime)
		}
		if descending {
			return !less
		}
		return less
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	files := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		files = append(files, map[string]any{
			"name":      e.name,
			"size":      e.size,
			"mtime":     float64(e.mtime.UnixNano()) / float64(time.Second),
			"mtime_str": e.mtime.Format(time.RFC3339),
			"extension": e.ext,
		})
	}

	return okResult(map[string]any{
		"files":   files,
		"count":   len(files),
		"workdir": ms.session.Workdir(),
	})
}

// handleReadExport implements the read_export tool
func (ms *MCPServer) handleReadExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	name, fault := requireString(request, "name")
	if fault != nil {
		return faultResult(fault)
	}
	maxBytes := request.GetInt("max_bytes", 50000)
	asText := request.GetBool("as_text", true)
	encName := request.GetString("encoding", "utf-8")

	path, fault := ms.session.ResolvePath(name)
	if fault != nil {
		return faultResult(fault)
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return faultResult(types.NewFault(types.CodeFileNotFound,
			fmt.Sprintf("File %s does not exist", name)))
	}
	if err != nil {
		return faultResult(types.NewFault(types.CodeReadError,
			fmt.Sprintf("Failed to read file: %s", err)))
	}

	f, err := os.Open(path)
	if err != nil {
		return faultResult(types.NewFault(types.CodeReadError,
			fmt.Sprintf("Failed to read file: %s", err)))
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)))
	if err != nil {
		return faultResult(types.NewFault(types.CodeReadError,
			fmt.Sprintf("Failed to read file: %s", err)))
	}
	truncated := info.Size() > int64(maxBytes)

	if !asText {
		return okResult(map[string]any{
			"name":           name,
			"content_base64": base64.StdEncoding.EncodeToString(raw),
			"size":           info.Size(),
			"truncated":      truncated,
		})
	}

	content, err := decodeText(raw, encName)
	if err != nil {
		return faultResult(types.NewFault(types.CodeReadError,
			fmt.Sprintf("Failed to read file: %s", err)))
	}

	return okResult(map[string]any{
		"name":      name,
		"content":   content,
		"size":      info.Size(),
		"truncated": truncated,
		"encoding":  encName,
	})
}

// decodeText converts raw bytes from the named IANA charset to a string.
func decodeText(raw []byte, encName string) (string, error) {
	if encName == "" || strings.EqualFold(encName, "utf-8") || strings.EqualFold(encName, "utf8") {
		return string(raw), nil
	}
	enc, err := ianaindex.IANA.Encoding(encName)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unsupported encoding %q", encName)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// handlePreviewTable implements the preview_table tool
func (ms *MCPServer) handlePreviewTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	name, fault := requireString(request, "name")
	if fault != nil {
		return faultResult(fault)
	}
	delimiter := request.GetString("delimiter", ",")
	maxRows := request.GetInt("max_rows", 50)

	path, fault := ms.session.ResolvePath(name)
	if fault != nil {
		return faultResult(fault)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return faultResult(types.NewFault(types.CodeFileNotFound,
			fmt.Sprintf("File %s does not exist", name)))
	}

	comma := ','
	if delimiter != "" {
		comma = []rune(delimiter)[0]
	}

	preview, err := tabular.Read(path, comma, maxRows)
	if err != nil {
		if errors.Is(err, tabular.ErrEmpty) {
			return faultResult(types.NewFault(types.CodeEmptyFile, "File is empty"))
		}
		return faultResult(types.NewFault(types.CodePreviewError,
			fmt.Sprintf("Failed to preview table: %s", err)))
	}

	return okResult(map[string]any{
		"name":         name,
		"headers":      preview.Headers,
		"rows":         preview.Rows,
		"row_count":    len(preview.Rows),
		"column_count": len(preview.Headers),
		"truncated":    preview.Truncated,
	})
}
