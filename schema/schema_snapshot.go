package schema

import "time"

// Snapshot is the document form of host state: every grid, its occupied
// cells, its terminal devices and the optional weapon mod catalog.
type Snapshot struct {
	Self       BlockID           `json:"self" yaml:"self"`
	Structures []StructureRecord `json:"structures" yaml:"structures"`
	Blocks     []BlockRecord     `json:"blocks" yaml:"blocks"`
	WeaponMod  *WeaponModRecord  `json:"weapon_mod,omitempty" yaml:"weapon_mod,omitempty"`
}

// StructureRecord describes one grid. Occupied cells come from Cells, from
// the inclusive ranges in Fill and from the cells of the grid's blocks.
type StructureRecord struct {
	ID     StructureID  `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Size   SizeClass    `json:"size" yaml:"size"`
	Static bool         `json:"static" yaml:"static"`
	Bounds BoundsRecord `json:"bounds" yaml:"bounds"`
	Cells  [][3]int     `json:"cells,omitempty" yaml:"cells,omitempty"`
	Fill   []CellRange  `json:"fill,omitempty" yaml:"fill,omitempty"`
}

// BoundsRecord is a world-space box as two corner triples.
type BoundsRecord struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

// Box converts the record to a Box.
func (b BoundsRecord) Box() Box {
	return Box{
		Min: Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
		Max: Vec3{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
	}
}

// CellRange is an inclusive box of occupied cells.
type CellRange struct {
	From [3]int `json:"from" yaml:"from"`
	To   [3]int `json:"to" yaml:"to"`
}

// BlockRecord describes one terminal device.
type BlockRecord struct {
	ID         BlockID     `json:"id" yaml:"id"`
	Structure  StructureID `json:"structure" yaml:"structure"`
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Type       string      `json:"type" yaml:"type"`
	Subtype    string      `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Position   [3]int      `json:"position" yaml:"position"`
	Extent     *[3]int     `json:"extent,omitempty" yaml:"extent,omitempty"`
	Functional *bool       `json:"functional,omitempty" yaml:"functional,omitempty"` // nil means functional
	Working    *bool       `json:"working,omitempty" yaml:"working,omitempty"`       // nil follows Functional
	Inventory  *Inventory  `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	MaxOutput  float64     `json:"max_output,omitempty" yaml:"max_output,omitempty"`
}

// Block converts the record to the read-only Block view.
func (r BlockRecord) Block() Block {
	functional := r.Functional == nil || *r.Functional
	working := functional
	if r.Working != nil {
		working = *r.Working
	}
	b := Block{
		ID:         r.ID,
		Structure:  r.Structure,
		Name:       r.Name,
		Definition: DefinitionID{TypeID: r.Type, SubtypeID: r.Subtype},
		Position:   Cell{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]},
		Functional: functional,
		Working:    working,
		Inventory:  r.Inventory,
		MaxOutput:  r.MaxOutput,
	}
	if r.Extent != nil {
		b.Extent = Cell{X: r.Extent[0], Y: r.Extent[1], Z: r.Extent[2]}
	}
	return b
}

// WeaponModRecord lists the definitions the weapon mod reports, as TypeID/SubtypeID keys.
type WeaponModRecord struct {
	StaticLaunchers []string `json:"static_launchers" yaml:"static_launchers"`
	Turrets         []string `json:"turrets" yaml:"turrets"`
}

// SnapshotInfo summarizes one stored snapshot.
type SnapshotInfo struct {
	Name       string    `json:"name"`
	Structures int       `json:"structures"`
	Blocks     int       `json:"blocks"`
	ImportedAt time.Time `json:"imported_at"`
}

// StoreStatus represents the status of the snapshot store.
type StoreStatus struct {
	Backend   string `json:"backend"`
	Connected bool   `json:"connected"`
	Snapshots int    `json:"snapshots"`
	SizeBytes int64  `json:"size_bytes"` // Approximate on MySQL and PostgreSQL
}
