package cmd

import (
	"os"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/outwriter"
	"github.com/spf13/cobra"
)

// weightsCmd displays the active weight table.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Display the category weights and tuning constants in effect",
	Long: `Show the weight table used for scoring: the selected profile's defaults
with any overrides from the config file applied.

No snapshot is read - this is purely informational.

Examples:
  # Show the standard profile
  gridthreat weights

  # Show the compact profile as a table
  gridthreat weights --profile compact --output table

  # Check custom weights from a config file
  gridthreat weights --config .gridthreat.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter(os.Stdout).WriteWeights(cfg); err != nil {
			contract.LogFatal("Cannot display weights", err)
		}
	},
}
