package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/outwriter"
	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/huangsam/gridthreat/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNoStore is returned by snapshot subcommands when no store backend is configured.
var errNoStore = errors.New("snapshot commands need --snapshot-backend sqlite, mysql or postgresql")

// snapshotSetup loads minimal configuration needed for snapshot store operations.
// It skips scoring validation, so weights and thresholds are never parsed.
func snapshotSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ValidateBackend(cfg, input); err != nil {
		return err
	}
	if cfg.SnapshotBackend == schema.NoneBackend {
		return errNoStore
	}
	if err := contract.ValidateOutput(cfg, input); err != nil {
		return err
	}
	cfg.Verbose = input.Verbose
	contract.SetVerbose(cfg.Verbose)
	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(fn func(contract.SnapshotStore) error) error {
	store, err := snapshot.NewSnapshotStore(cfg.SnapshotBackend, cfg.SnapshotDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

// snapshotCmd focused on snapshot store management.
//
// Note: Snapshot subcommands use minimal initialization (snapshotSetup) instead of
// the full sharedSetup used by the scoring commands.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored snapshots in a SQL database",
	Long: `Manage snapshot documents kept in a SQL store, so that grids can be scored
by name instead of by file path.

Supported backends: SQLite, MySQL, PostgreSQL

Subcommands:
  import  - Validate a snapshot document and store it
  export  - Write a stored snapshot back to a document
  list    - List stored snapshots
  status  - Show store statistics and connection info
  delete  - Remove one stored snapshot
  clear   - Remove every stored snapshot
  migrate - Run database schema migrations

Examples:
  # Import a snapshot into the default SQLite store
  gridthreat snapshot import outpost.yaml --snapshot-backend sqlite

  # Score it by name
  gridthreat score outpost --snapshot-backend sqlite`,
}

// snapshotImportCmd stores a snapshot document.
var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a snapshot document and store it",
	Long: `Read a snapshot document, validate it against the snapshot schema and the
geometry checks, and store it under --name (or the file name without its
extensions). An existing snapshot with the same name is replaced.

Examples:
  gridthreat snapshot import bases/outpost.yaml.zst --snapshot-backend sqlite
  gridthreat snapshot import fleet.json --name fleet-2026 --snapshot-backend postgresql`,
	Args:    cobra.ExactArgs(1),
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		snap, err := snapshot.ReadFile(args[0])
		if err != nil {
			contract.LogFatal("Failed to read snapshot", err)
		}
		name := viper.GetString("name")
		if name == "" {
			name = snapshot.NameFromPath(args[0])
		}
		if err := withStore(func(store contract.SnapshotStore) error {
			return store.Save(name, snap)
		}); err != nil {
			contract.LogFatal("Failed to store snapshot", err)
		}
		fmt.Printf("Snapshot %s imported: %d grids, %d blocks.\n", name, len(snap.Structures), len(snap.Blocks))
	},
}

// snapshotExportCmd writes a stored snapshot to a document.
var snapshotExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Write a stored snapshot back to a document",
	Long: `Load a stored snapshot and write it as YAML or JSON, picking the format
from the file extension. A trailing .zst compresses the document.

Examples:
  gridthreat snapshot export outpost outpost.json --snapshot-backend sqlite
  gridthreat snapshot export outpost outpost.yaml.zst --snapshot-backend sqlite`,
	Args:    cobra.ExactArgs(2),
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		var snap schema.Snapshot
		if err := withStore(func(store contract.SnapshotStore) error {
			var err error
			snap, err = snapshot.LoadStored(store, args[0])
			return err
		}); err != nil {
			contract.LogFatal("Failed to load snapshot", err)
		}
		if err := snapshot.WriteFile(args[1], snap); err != nil {
			contract.LogFatal("Failed to write snapshot", err)
		}
		fmt.Printf("Snapshot %s exported to %s.\n", args[0], args[1])
	},
}

// snapshotListCmd lists stored snapshots.
var snapshotListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored snapshots",
	Args:    cobra.NoArgs,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		var infos []schema.SnapshotInfo
		if err := withStore(func(store contract.SnapshotStore) error {
			var err error
			infos, err = store.List()
			return err
		}); err != nil {
			contract.LogFatal("Failed to list snapshots", err)
		}
		if err := outwriter.NewOutWriter(os.Stdout).WriteSnapshots(infos, cfg); err != nil {
			contract.LogFatal("Failed to write snapshot list", err)
		}
	},
}

// snapshotStatusCmd shows store status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, connection state, number of stored snapshots and an
estimate of the space the snapshot tables use.

Examples:
  gridthreat snapshot status --snapshot-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		var status schema.StoreStatus
		if err := withStore(func(store contract.SnapshotStore) error {
			var err error
			status, err = store.GetStatus()
			return err
		}); err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter(os.Stdout).WriteStatus(status); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// snapshotDeleteCmd removes one stored snapshot.
var snapshotDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "Remove one stored snapshot",
	Args:    cobra.ExactArgs(1),
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := withStore(func(store contract.SnapshotStore) error {
			return store.Delete(args[0])
		}); err != nil {
			contract.LogFatal("Failed to delete snapshot", err)
		}
		fmt.Printf("Snapshot %s deleted.\n", args[0])
	},
}

// snapshotClearCmd removes every stored snapshot.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored snapshot",
	Long: `Delete every stored snapshot with its grids, blocks and weapon mod catalog.
The schema is kept.

WARNING: This action cannot be undone. Consider exporting snapshots first.

Examples:
  gridthreat snapshot clear --snapshot-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := withStore(func(store contract.SnapshotStore) error {
			return store.Clear()
		}); err != nil {
			contract.LogFatal("Failed to clear snapshots", err)
		}
		fmt.Println("Snapshots cleared successfully.")
	},
}

// snapshotMigrateCmd runs database migrations for the snapshot store.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.
Opening the store for any other command also migrates it to the latest version.

Examples:
  # Migrate to latest version (default)
  gridthreat snapshot migrate --snapshot-backend sqlite

  # Migrate to specific version
  gridthreat snapshot migrate --target-version 2 --snapshot-backend sqlite

  # Rollback to initial state
  gridthreat snapshot migrate --target-version 0 --snapshot-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		res, err := snapshot.MigrateSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		contract.LogDebug("migration finished", logrus.Fields{"from": res.From, "to": res.To})
		if !res.Changed {
			fmt.Printf("Snapshot store already at version %d.\n", res.To)
			return
		}
		fmt.Printf("Snapshot store migrated from version %d to %d.\n", res.From, res.To)
	},
}
