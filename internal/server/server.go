// Package server wraps the mcp-go server with the tidyflow tool surface.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Broccolito/TidyFlow/internal/config"
	"github.com/Broccolito/TidyFlow/internal/session"
	"github.com/Broccolito/TidyFlow/internal/types"
)

// MCPServer wraps the mcp-go server with our business logic
type MCPServer struct {
	server  *server.MCPServer
	session *session.Manager
	cfg     *config.Config
	logger  *slog.Logger
}

// NewMCPServer creates and configures a new MCP server
func NewMCPServer(cfg *config.Config, sess *session.Manager, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	ms := &MCPServer{
		server:  mcpServer,
		session: sess,
		cfg:     cfg,
		logger:  logger,
	}

	ms.registerTools()

	return ms
}

// Server returns the underlying mcp-go server for serving
func (ms *MCPServer) Server() *server.MCPServer {
	return ms.server
}

// Serve starts the MCP server with stdio transport
func (ms *MCPServer) Serve() error {
	ms.logger.Info("Starting MCP server with stdio transport")
	return server.ServeStdio(ms.server)
}

// ServeHTTP starts the MCP server with HTTP/SSE transport on addr
func (ms *MCPServer) ServeHTTP(addr string) error {
	ms.logger.Info("Starting MCP server with HTTP/SSE transport", "address", addr)
	sseServer := server.NewSSEServer(ms.server,
		server.WithBaseURL("http://"+addr),
		server.WithStaticBasePath("/mcp"),
	)
	return sseServer.Start(addr)
}

type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// guard downgrades a panicking handler to an INTERNAL_ERROR envelope so a
// single bad request cannot take down the host loop.
func (ms *MCPServer) guard(name string, h toolHandler) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				ms.logger.Error("tool handler panicked", "tool", name, "panic", r)
				result, err = faultResult(types.NewFault(types.CodeInternalError,
					fmt.Sprintf("Internal error: %v", r)))
			}
		}()
		ms.logger.Debug("calling tool", "tool", name)
		return h(ctx, request)
	}
}

// envelopeResult serializes env as indented JSON text content.
func envelopeResult(env types.Envelope) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			`{"ok": false, "error": {"code": %q, "message": %q}}`,
			types.CodeInternalError, err.Error())), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func okResult(data map[string]any) (*mcp.CallToolResult, error) {
	return envelopeResult(types.OKEnvelope(data))
}

func faultResult(f *types.Fault) (*mcp.CallToolResult, error) {
	return envelopeResult(types.ErrEnvelope(f))
}

// requireString extracts a required string argument, reporting a missing
// or mistyped value as an INTERNAL_ERROR fault.
func requireString(request mcp.CallToolRequest, key string) (string, *types.Fault) {
	value, err := request.RequireString(key)
	if err != nil {
		return "", types.NewFault(types.CodeInternalError,
			fmt.Sprintf("Internal error: %s", err))
	}
	return value, nil
}

// ensureRExtension appends .R to filenames that carry neither .R nor .r.
func ensureRExtension(filename string) string {
	if strings.HasSuffix(filename, ".R") || strings.HasSuffix(filename, ".r") {
		return filename
	}
	return filename + ".R"
}

// lineCount counts lines the way the envelopes report them: a trailing
// newline does not start a new line.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
