// Package schema has configs, models and constants for all parts of gridthreat.
package schema

import (
	"fmt"
	"math"
	"strings"
)

// StructureID identifies a grid owned by the host.
type StructureID int64

// BlockID identifies a terminal device. A device spanning several cells
// reports the same BlockID for each of them.
type BlockID int64

// Cell is a position on the integer lattice of a grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns the cell offset by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

// String renders the cell as "(x,y,z)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Neighbors holds the six axis-aligned offsets of the lattice.
var Neighbors = [6]Cell{
	{X: 1}, {Y: 1}, {Z: 1},
	{X: -1}, {Y: -1}, {Z: -1},
}

// Vec3 is a world-space position in meters.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Box is an axis-aligned bounding box in world space.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Diagonal returns the distance between the two corners of the box.
func (b Box) Diagonal() float64 {
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	dz := b.Max.Z - b.Min.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// DefinitionID is the block-type identity used by the host and the weapon mod.
type DefinitionID struct {
	TypeID    string `json:"type_id"`
	SubtypeID string `json:"subtype_id"`
}

// Key renders the definition as "TypeID/SubtypeID", the form used in modded block lists.
func (d DefinitionID) Key() string {
	return d.TypeID + "/" + d.SubtypeID
}

// typePrefix is the object builder prefix some hosts report on type ids.
const typePrefix = "MyObjectBuilder_"

// Normalize strips the object builder prefix from the type id, so that
// "MyObjectBuilder_Beacon/X" and "Beacon/X" name the same definition.
func (d DefinitionID) Normalize() DefinitionID {
	d.TypeID = strings.TrimPrefix(d.TypeID, typePrefix)
	return d
}

// ParseDefinitionID parses a "TypeID/SubtypeID" key.
func ParseDefinitionID(key string) (DefinitionID, error) {
	typeID, subtypeID, ok := strings.Cut(strings.TrimSpace(key), "/")
	if !ok || typeID == "" {
		return DefinitionID{}, fmt.Errorf("invalid block definition %q: expected TypeID/SubtypeID", key)
	}
	return DefinitionID{TypeID: typeID, SubtypeID: subtypeID}, nil
}

// Inventory is the volume state of an inventory-bearing block.
type Inventory struct {
	Current float64 `json:"current" yaml:"current"`
	Max     float64 `json:"max" yaml:"max"`
}

// FillRatio returns Current/Max and false when the capacity is zero or absent.
func (inv *Inventory) FillRatio() (float64, bool) {
	if inv == nil || inv.Max <= 0 {
		return 0, false
	}
	return inv.Current / inv.Max, true
}

// Block is a read-only view of one terminal device.
type Block struct {
	ID         BlockID      // Unique device identity
	Structure  StructureID  // Owning grid
	Name       string       // Display name, may be empty
	Definition DefinitionID // Block type identity
	Position   Cell         // Anchor cell on the owning grid
	Extent     Cell         // Occupied extent from Position; zero means 1x1x1
	Functional bool         // Built past the functional threshold
	Working    bool         // Functional, enabled and powered
	Inventory  *Inventory   // Nil for blocks without an inventory
	MaxOutput  float64      // Maximum power output in MW, power producers only
}

// Cells returns every lattice cell the block occupies.
func (b Block) Cells() []Cell {
	ex, ey, ez := max(b.Extent.X, 1), max(b.Extent.Y, 1), max(b.Extent.Z, 1)
	cells := make([]Cell, 0, ex*ey*ez)
	for x := range ex {
		for y := range ey {
			for z := range ez {
				cells = append(cells, b.Position.Add(Cell{X: x, Y: y, Z: z}))
			}
		}
	}
	return cells
}
