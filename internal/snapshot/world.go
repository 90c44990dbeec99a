package snapshot

import (
	"fmt"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/zyedidia/generic/mapset"
)

// grid is the read-only view of one structure record.
type grid struct {
	rec      schema.StructureRecord
	occupied mapset.Set[schema.Cell]
	devices  map[schema.Cell]schema.BlockID
}

var _ contract.Structure = &grid{} // Compile-time check

func (g *grid) ID() schema.StructureID      { return g.rec.ID }
func (g *grid) Name() string                { return g.rec.Name }
func (g *grid) SizeClass() schema.SizeClass { return g.rec.Size }
func (g *grid) IsStatic() bool              { return g.rec.Static }
func (g *grid) BoundingBox() schema.Box     { return g.rec.Bounds.Box() }

func (g *grid) CubeExists(c schema.Cell) bool {
	return g.occupied.Has(c)
}

func (g *grid) DeviceAt(c schema.Cell) (schema.BlockID, bool) {
	id, ok := g.devices[c]
	return id, ok
}

// World is a Host backed by a snapshot document.
type World struct {
	self    schema.Block
	blocks  []schema.Block
	structs map[schema.StructureID]*grid
}

var _ contract.Host = &World{} // Compile-time check

// Self implements the Host interface.
func (w *World) Self() schema.Block { return w.self }

// Blocks implements the Host interface. Callers must not modify the result.
func (w *World) Blocks() []schema.Block { return w.blocks }

// Structure implements the Host interface.
func (w *World) Structure(id schema.StructureID) (contract.Structure, bool) {
	g, ok := w.structs[id]
	if !ok {
		return nil, false
	}
	return g, true
}

// modWorld is a World whose snapshot carries the weapon mod.
type modWorld struct {
	*World
	mod *weaponModCatalog
}

var _ contract.WeaponModProvider = &modWorld{} // Compile-time check

// WeaponMod implements the WeaponModProvider interface.
func (w *modWorld) WeaponMod() (contract.WeaponMod, error) {
	return w.mod, nil
}

type weaponModCatalog struct {
	launchers []schema.DefinitionID
	turrets   []schema.DefinitionID
}

var _ contract.WeaponMod = &weaponModCatalog{} // Compile-time check

func (c *weaponModCatalog) StaticLaunchers() []schema.DefinitionID { return c.launchers }
func (c *weaponModCatalog) Turrets() []schema.DefinitionID         { return c.turrets }

// NewWorld builds a host from a snapshot. The occupied cells of a structure are
// its listed cells, its fill ranges and every cell of its blocks. Hosts built
// from snapshots without a weapon_mod section do not expose the mod.
func NewWorld(snap schema.Snapshot) (contract.Host, error) {
	if err := Check(snap); err != nil {
		return nil, err
	}

	w := &World{
		blocks:  make([]schema.Block, 0, len(snap.Blocks)),
		structs: make(map[schema.StructureID]*grid, len(snap.Structures)),
	}
	for _, rec := range snap.Structures {
		g := &grid{
			rec:      rec,
			occupied: mapset.New[schema.Cell](),
			devices:  make(map[schema.Cell]schema.BlockID),
		}
		for _, c := range rec.Cells {
			g.occupied.Put(schema.Cell{X: c[0], Y: c[1], Z: c[2]})
		}
		for _, r := range rec.Fill {
			fillRange(g.occupied, r)
		}
		w.structs[rec.ID] = g
	}

	for _, rec := range snap.Blocks {
		b := rec.Block()
		g := w.structs[b.Structure]
		for _, c := range b.Cells() {
			if other, taken := g.devices[c]; taken {
				return nil, fmt.Errorf("blocks %d and %d overlap at %s on structure %d", other, b.ID, c, b.Structure)
			}
			g.devices[c] = b.ID
			g.occupied.Put(c)
		}
		w.blocks = append(w.blocks, b)
		if b.ID == snap.Self {
			w.self = b
		}
	}

	if snap.WeaponMod == nil {
		return w, nil
	}
	mod := &weaponModCatalog{
		launchers: parseDefinitions(snap.WeaponMod.StaticLaunchers),
		turrets:   parseDefinitions(snap.WeaponMod.Turrets),
	}
	return &modWorld{World: w, mod: mod}, nil
}

// fillRange marks every cell of an inclusive range as occupied.
func fillRange(occupied mapset.Set[schema.Cell], r schema.CellRange) {
	lo := schema.Cell{X: min(r.From[0], r.To[0]), Y: min(r.From[1], r.To[1]), Z: min(r.From[2], r.To[2])}
	hi := schema.Cell{X: max(r.From[0], r.To[0]), Y: max(r.From[1], r.To[1]), Z: max(r.From[2], r.To[2])}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				occupied.Put(schema.Cell{X: x, Y: y, Z: z})
			}
		}
	}
}

// parseDefinitions parses keys already checked by Check.
func parseDefinitions(keys []string) []schema.DefinitionID {
	defs := make([]schema.DefinitionID, 0, len(keys))
	for _, key := range keys {
		if def, err := schema.ParseDefinitionID(key); err == nil {
			defs = append(defs, def)
		}
	}
	return defs
}
