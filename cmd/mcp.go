package cmd

import (
	"github.com/huangsam/gridthreat/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the gridthreat MCP server",
	Long: `Launch an MCP server on stdio that allows AI agents to score snapshots,
count occupied cells and list stored snapshots via standard tools.

Tool calls start from the configured settings (config file, env, flags) and
may override the snapshot, multi-grid mode, cell override and profile.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr, so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, version)
	},
}
