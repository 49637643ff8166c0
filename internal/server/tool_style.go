package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Broccolito/TidyFlow/internal/rstyle"
)

// handleGgplotStyleCheck implements the ggplot_style_check tool. It works
// on plain script text and never needs a configured workdir.
func (ms *MCPServer) handleGgplotStyleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, fault := requireString(request, "code")
	if fault != nil {
		return faultResult(fault)
	}

	report := rstyle.Check(code)

	data := map[string]any{
		"original_code":   code,
		"optimized_code":  report.OptimizedCode,
		"changes_made":    report.Changes,
		"issues_detected": report.Issues,
		"suggestions":     report.Suggestions,
		"style_guide":     nil,
	}
	if len(report.Issues) > 0 {
		data["style_guide"] = rstyle.StyleGuide
	}

	return okResult(data)
}
