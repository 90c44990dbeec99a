package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/gridthreat/core"
	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/huangsam/gridthreat/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// runConfig clones the base config and applies the request's run arguments.
func (h *toolHandler) runConfig(request mcp.CallToolRequest, profile string) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.SnapshotRef = request.GetString("snapshot", "")
	cfg.MultiGrid = request.GetBool("multi_grid", cfg.MultiGrid)
	if err := contract.RevalidateRun(cfg, profile, request.GetInt("cell_override", 0)); err != nil {
		return nil, err
	}
	if cfg.SnapshotRef == "" {
		return nil, fmt.Errorf("snapshot is required")
	}
	return cfg, nil
}

func (h *toolHandler) handleScoreSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.runConfig(request, request.GetString("profile", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	host, err := snapshot.LoadHost(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshot: %v", err)), nil
	}

	result, err := core.RunScore(ctx, cfg, host)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	report := schema.NewScoreReport(result, func(score float64) string {
		return contract.GetPlainLabel(score, cfg.LabelThresholds)
	})
	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCountCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.runConfig(request, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	host, err := snapshot.LoadHost(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshot: %v", err)), nil
	}

	result, err := core.RunCount(ctx, cfg, host)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("counting failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListSnapshots(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.baseCfg.SnapshotBackend == schema.NoneBackend || h.baseCfg.SnapshotBackend == "" {
		return mcp.NewToolResultError("no snapshot store configured: set --snapshot-backend"), nil
	}

	store, err := snapshot.NewSnapshotStore(h.baseCfg.SnapshotBackend, h.baseCfg.SnapshotDBConnect)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open snapshot store: %v", err)), nil
	}
	defer func() { _ = store.Close() }()

	infos, err := store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list snapshots: %v", err)), nil
	}
	if infos == nil {
		infos = []schema.SnapshotInfo{}
	}

	jsonData, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
