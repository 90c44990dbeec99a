package core

import (
	"maps"
	"slices"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/stack"
)

// CountOccupiedCells flood-fills a structure from the seed cells and returns
// the number of occupied cells it reaches. A terminal device spanning several
// cells counts once; every other occupied cell counts once.
//
// The host does not expose a block count, so this is a reachability count:
// occupied cells that are not 6-connected to a seed are not counted.
// Each popped coordinate charges the meter one instruction.
func CountOccupiedCells(s contract.Structure, seeds []schema.Cell, meter *Meter) (int, error) {
	visited := mapset.New[schema.Cell]()
	devices := mapset.New[schema.BlockID]()
	plain := 0

	work := stack.New[schema.Cell]()
	for _, seed := range seeds {
		work.Push(seed)
	}

	for work.Size() > 0 {
		c := work.Pop()
		if err := meter.Step(); err != nil {
			return 0, err
		}
		if visited.Has(c) || !s.CubeExists(c) {
			continue
		}
		visited.Put(c)
		for _, d := range schema.Neighbors {
			work.Push(c.Add(d))
		}
		if id, ok := s.DeviceAt(c); ok {
			devices.Put(id)
		} else {
			plain++
		}
	}

	return devices.Size() + plain, nil
}

// devicesByStructure buckets terminal devices by their owning structure.
func devicesByStructure(blocks []schema.Block) map[schema.StructureID][]schema.Block {
	buckets := make(map[schema.StructureID][]schema.Block)
	for _, b := range blocks {
		buckets[b.Structure] = append(buckets[b.Structure], b)
	}
	return buckets
}

// seedsOf returns the anchor cell of every device.
func seedsOf(blocks []schema.Block) []schema.Cell {
	seeds := make([]schema.Cell, 0, len(blocks))
	for _, b := range blocks {
		seeds = append(seeds, b.Position)
	}
	return seeds
}

// sortedStructureIDs returns the keys of buckets in ascending order.
func sortedStructureIDs(buckets map[schema.StructureID][]schema.Block) []schema.StructureID {
	return slices.Sorted(maps.Keys(buckets))
}

// CountPerStructure walks every structure that owns at least one terminal
// device, seeding each walk with the positions of that structure's devices.
// Structures without any terminal device are never discovered.
func CountPerStructure(host contract.Host, meter *Meter) (map[schema.StructureID]int, error) {
	return countEach(host, devicesByStructure(host.Blocks()), nil, meter)
}

// countEach walks every bucketed structure the host knows, in id order.
// Structures already present in known keep that count and are not walked.
func countEach(host contract.Host, buckets map[schema.StructureID][]schema.Block, known map[schema.StructureID]int, meter *Meter) (map[schema.StructureID]int, error) {
	counts := make(map[schema.StructureID]int, len(buckets))
	for _, id := range sortedStructureIDs(buckets) {
		s, ok := host.Structure(id)
		if !ok {
			continue
		}
		if n, ok := known[id]; ok {
			counts[id] = n
			continue
		}
		n, err := CountOccupiedCells(s, seedsOf(buckets[id]), meter)
		if err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, nil
}
