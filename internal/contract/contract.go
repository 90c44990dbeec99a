// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import "github.com/huangsam/gridthreat/schema"

// Structure is a read-only view of one grid owned by the host.
type Structure interface {
	// --- Identity ---

	ID() schema.StructureID
	Name() string

	// --- Geometry / Class ---

	SizeClass() schema.SizeClass
	IsStatic() bool

	// BoundingBox returns the world-space box enclosing the grid.
	BoundingBox() schema.Box

	// --- Cell Occupancy ---

	// CubeExists reports whether the grid has any block in the cell.
	CubeExists(c schema.Cell) bool

	// DeviceAt returns the terminal device occupying the cell, if any.
	// Cells filled by plain structure report false.
	DeviceAt(c schema.Cell) (schema.BlockID, bool)
}

// Host is the read-only view of the simulation the scorer runs inside.
// The host owns every structure and block; the scorer never mutates them.
type Host interface {
	// Self returns the device that invoked the scorer.
	Self() schema.Block

	// Blocks returns every terminal device across all connected grids.
	Blocks() []schema.Block

	// Structure looks up a grid by id.
	Structure(id schema.StructureID) (Structure, bool)
}

// WeaponMod is the capability surface of the external weapon mod.
type WeaponMod interface {
	// StaticLaunchers returns the definitions of fixed weapons managed by the mod.
	StaticLaunchers() []schema.DefinitionID

	// Turrets returns the definitions of turrets managed by the mod.
	Turrets() []schema.DefinitionID
}

// WeaponModProvider is implemented by hosts that can expose the weapon mod.
// Hosts without the mod simply do not implement it.
type WeaponModProvider interface {
	WeaponMod() (WeaponMod, error)
}

// SnapshotStore persists snapshot documents that stand in for the host.
type SnapshotStore interface {
	// Save writes a snapshot under name, replacing any previous one.
	Save(name string, snap schema.Snapshot) error

	// Load reads the snapshot stored under name.
	Load(name string) (schema.Snapshot, error)

	// List returns a summary of every stored snapshot, ordered by name.
	List() ([]schema.SnapshotInfo, error)

	// Delete removes the snapshot stored under name.
	Delete(name string) error

	// Clear removes every stored snapshot.
	Clear() error

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
