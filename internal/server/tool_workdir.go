package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleSetWorkdir implements the set_workdir tool
func (ms *MCPServer) handleSetWorkdir(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, fault := requireString(request, "path")
	if fault != nil {
		return faultResult(fault)
	}
	create := request.GetBool("create", true)

	data, fault := ms.session.SetWorkdir(path, create)
	if fault != nil {
		return faultResult(fault)
	}

	ms.logger.Info("working directory set", "workdir", data["workdir"])
	return okResult(data)
}

// handleGetState implements the get_state tool
func (ms *MCPServer) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return okResult(ms.session.Snapshot())
}
