package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/huangsam/gridthreat/schema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed snapshot.schema.json
var schemaJSON string

const schemaURL = "snapshot.schema.json"

const (
	// maxFillCells caps the cells a single fill range or block extent may expand to.
	maxFillCells = 1 << 22
	// maxStructureCells caps the cells one structure expands to across its fill ranges and blocks.
	maxStructureCells = 1 << 24
)

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// ValidateDocument checks a JSON document against the snapshot schema.
func ValidateDocument(doc []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	return nil
}

// Check enforces the cross-references a schema cannot express: unique ids,
// blocks on known structures, a known invoking device and bounded fill ranges
// and block extents.
func Check(snap schema.Snapshot) error {
	var errs []error

	volumes := make(map[schema.StructureID]int64, len(snap.Structures))
	structures := make(map[schema.StructureID]struct{}, len(snap.Structures))
	for _, s := range snap.Structures {
		if _, dup := structures[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate structure id %d", s.ID))
		}
		structures[s.ID] = struct{}{}
		if _, ok := schema.ValidSizeClasses[s.Size]; !ok {
			errs = append(errs, fmt.Errorf("structure %d: invalid size %q", s.ID, s.Size))
		}
		for _, r := range s.Fill {
			n := rangeVolume(r)
			if n > maxFillCells {
				errs = append(errs, fmt.Errorf("structure %d: fill range %v..%v spans %d cells (max %d)", s.ID, r.From, r.To, n, maxFillCells))
				continue
			}
			volumes[s.ID] += n
		}
	}

	blocks := make(map[schema.BlockID]struct{}, len(snap.Blocks))
	for _, b := range snap.Blocks {
		if _, dup := blocks[b.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate block id %d", b.ID))
		}
		blocks[b.ID] = struct{}{}
		if _, ok := structures[b.Structure]; !ok {
			errs = append(errs, fmt.Errorf("block %d: unknown structure %d", b.ID, b.Structure))
		}
		n := extentVolume(b.Extent)
		if n > maxFillCells {
			errs = append(errs, fmt.Errorf("block %d: extent %v spans %d cells (max %d)", b.ID, *b.Extent, n, maxFillCells))
			continue
		}
		volumes[b.Structure] += n
	}
	for _, s := range snap.Structures {
		if n := volumes[s.ID]; n > maxStructureCells {
			errs = append(errs, fmt.Errorf("structure %d: fill ranges and blocks span %d cells (max %d)", s.ID, n, maxStructureCells))
			volumes[s.ID] = 0
		}
	}
	if _, ok := blocks[snap.Self]; !ok {
		errs = append(errs, fmt.Errorf("self: unknown block %d", snap.Self))
	}

	if snap.WeaponMod != nil {
		for _, key := range append(snap.WeaponMod.StaticLaunchers, snap.WeaponMod.Turrets...) {
			if _, err := schema.ParseDefinitionID(key); err != nil {
				errs = append(errs, fmt.Errorf("weapon_mod: %w", err))
			}
		}
	}

	return errors.Join(errs...)
}

// rangeVolume returns the number of cells in an inclusive range, in any corner order.
func rangeVolume(r schema.CellRange) int64 {
	n := int64(1)
	for i := range 3 {
		d := int64(r.To[i]) - int64(r.From[i])
		if d < 0 {
			d = -d
		}
		n *= d + 1
		if n > maxFillCells {
			return n
		}
	}
	return n
}

// extentVolume returns the number of cells a block extent covers. Absent or
// non-positive sides count as one cell, as they do when the block is placed.
func extentVolume(e *[3]int) int64 {
	n := int64(1)
	if e == nil {
		return n
	}
	for _, side := range e {
		n *= max(int64(side), 1)
		if n > maxFillCells {
			return n
		}
	}
	return n
}
