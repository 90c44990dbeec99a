package cmd

import (
	"os"

	"github.com/huangsam/gridthreat/core"
	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/spf13/cobra"
)

// scoreCmd computes the threat score of a snapshot.
var scoreCmd = &cobra.Command{
	Use:   "score [snapshot]",
	Short: "Score the threat of the invoking grid or of every grid.",
	Long: `Compute the threat score of the grid that owns the invoking device.

The score adds up weighted terminal devices by category (antennas, beacons,
weapons, production, power and more), the occupied cell count reached by
walking the grid from its devices, and the size of its bounding box. The sum
is scaled by the grid size class, a static-grid factor and a global decay.

With --multi-grid every grid that owns a terminal device is scored, and the
total is the sum of the per-grid scores.

The snapshot argument is a document path (.yaml, .yml or .json, optionally
.zst compressed) unless a snapshot backend is configured, in which case it
names a stored snapshot.

Examples:
  # Score the invoking grid
  gridthreat score outpost.yaml

  # Score every grid with the compact profile
  gridthreat score fleet.json.zst --multi-grid --profile compact

  # Skip the walk when the cell count is already known
  gridthreat score outpost.yaml --cell-override 1200

  # Score a stored snapshot and export to Parquet
  gridthreat score outpost --snapshot-backend sqlite --output parquet --output-file scores.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		host, err := snapshot.LoadHost(cfg)
		if err != nil {
			contract.LogFatal("Cannot load snapshot", err)
		}
		if err := core.ExecuteScore(rootCtx, cfg, host, os.Stdout); err != nil {
			contract.LogFatal("Cannot score snapshot", err)
		}
	},
	PostRunE: func(_ *cobra.Command, _ []string) error {
		return stopProfiling()
	},
}
