// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gridthreat MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Grid Threat Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: score_snapshot ---
	s.AddTool(mcp.NewTool("score_snapshot",
		mcp.WithDescription("Score the threat of the invoking grid, or of every grid with a terminal device, in a snapshot."),
		mcp.WithString("snapshot", mcp.Description("Snapshot document path, or stored snapshot name when a snapshot backend is configured."), mcp.Required()),
		mcp.WithBoolean("multi_grid", mcp.Description("Score every grid that owns a terminal device. Defaults to the configured mode.")),
		mcp.WithNumber("cell_override", mcp.Description("Occupied-cell count to use for the invoking grid instead of walking it.")),
		mcp.WithString("profile", mcp.Description("Weight profile. Defaults to the configured profile."), mcp.Enum("standard", "compact")),
	), h.handleScoreSnapshot)

	// --- 2. Tool: count_cells ---
	s.AddTool(mcp.NewTool("count_cells",
		mcp.WithDescription("Count the occupied cells reachable from the terminal devices of each grid in a snapshot."),
		mcp.WithString("snapshot", mcp.Description("Snapshot document path, or stored snapshot name."), mcp.Required()),
		mcp.WithBoolean("multi_grid", mcp.Description("Count every grid that owns a terminal device.")),
		mcp.WithNumber("cell_override", mcp.Description("Count to report for the invoking grid instead of walking it.")),
	), h.handleCountCells)

	// --- 3. Tool: list_snapshots ---
	s.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the snapshots held by the configured snapshot store."),
	), h.handleListSnapshots)

	return s
}

// StartMCPServer starts the gridthreat MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, version string) error {
	s := NewMCPServer(baseCfg, version)
	return server.ServeStdio(s)
}
