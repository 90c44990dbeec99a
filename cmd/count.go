package cmd

import (
	"os"

	"github.com/huangsam/gridthreat/core"
	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/spf13/cobra"
)

// countCmd runs the grid walker only.
var countCmd = &cobra.Command{
	Use:   "count [snapshot]",
	Short: "Count the occupied cells reachable from each grid's devices.",
	Long: `Walk the occupied cells of a grid, starting from its terminal devices, and
print the count without scoring anything.

Every cell is counted once, whatever device or structure fills it. Cells
not connected to any device are not reached.

Examples:
  # Count the invoking grid
  gridthreat count outpost.yaml

  # Count every grid that owns a device, with a walker budget
  gridthreat count fleet.yaml --multi-grid --budget 50000`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		host, err := snapshot.LoadHost(cfg)
		if err != nil {
			contract.LogFatal("Cannot load snapshot", err)
		}
		if err := core.ExecuteCount(rootCtx, cfg, host, os.Stdout); err != nil {
			contract.LogFatal("Cannot count cells", err)
		}
	},
	PostRunE: func(_ *cobra.Command, _ []string) error {
		return stopProfiling()
	},
}
