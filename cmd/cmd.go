// Package cmd defines the command-line interface for gridthreat.
package cmd

import (
	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or table or json or csv or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns (1-4)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log walker and scoring details to stderr")
	rootCmd.PersistentFlags().String("pprof", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.NoneBackend), "Snapshot store: sqlite or mysql or postgresql or none (read snapshot files)")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Run flags shared by scoreCmd, countCmd and weightsCmd. They are bound to
	// Viper in sharedSetup, once the running command is known.
	for _, c := range []*cobra.Command{scoreCmd, countCmd} {
		c.Flags().Bool("multi-grid", false, "Score every grid that owns a terminal device instead of the invoking one")
		c.Flags().Int("cell-override", 0, "Occupied-cell count for the invoking grid only; skips its walk, other grids in --multi-grid are still walked (0 = walk)")
		c.Flags().Int("budget", 0, "Instruction budget for the walker (0 = unlimited)")
	}
	for _, c := range []*cobra.Command{scoreCmd, weightsCmd} {
		c.Flags().String("profile", string(contract.DefaultProfile), "Weight profile: standard or compact")
		c.Flags().String("thresholds-override", "", "Label thresholds (format: 'critical:500,high:200,moderate:50')")
	}

	// Bind all flags of snapshotImportCmd to Viper
	snapshotImportCmd.Flags().String("name", "", "Store name for the snapshot (defaults to the file name)")
	if err := viper.BindPFlags(snapshotImportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot import flags", err)
	}

	// Bind all flags of snapshotMigrateCmd to Viper
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}
