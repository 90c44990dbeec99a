package core

import (
	"fmt"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/weaponmod"
	"github.com/huangsam/gridthreat/schema"
	"github.com/sirupsen/logrus"
)

// Aggregator computes threat scores over a read-only host.
// It is single-use: the meter accumulates across calls.
type Aggregator struct {
	cfg     *contract.Config
	host    contract.Host
	weapons *weaponmod.Catalog
	meter   *Meter
}

// NewAggregator returns an aggregator bound to one host and one weapon catalog.
func NewAggregator(cfg *contract.Config, host contract.Host, weapons *weaponmod.Catalog) *Aggregator {
	return &Aggregator{
		cfg:     cfg,
		host:    host,
		weapons: weapons,
		meter:   NewMeter(cfg.Budget),
	}
}

// Instructions returns the instructions charged so far.
func (a *Aggregator) Instructions() int {
	return a.meter.Used()
}

// ScoreOne scores one structure from the devices it owns.
func (a *Aggregator) ScoreOne(id schema.StructureID) (schema.StructureScore, error) {
	s, ok := a.host.Structure(id)
	if !ok {
		return schema.StructureScore{}, fmt.Errorf("%w: %d", ErrUnknownStructure, id)
	}
	return a.score(s, devicesByStructure(a.host.Blocks())[id])
}

// ScoreSelf scores the structure of the invoking device.
func (a *Aggregator) ScoreSelf() (schema.StructureScore, error) {
	return a.ScoreOne(a.host.Self().Structure)
}

// ScoreAll scores every structure that owns at least one terminal device and
// returns the sum of their scores along with each one, ordered by id.
func (a *Aggregator) ScoreAll() (float64, []schema.StructureScore, error) {
	buckets := devicesByStructure(a.host.Blocks())
	var total float64
	scores := make([]schema.StructureScore, 0, len(buckets))
	for _, id := range sortedStructureIDs(buckets) {
		s, ok := a.host.Structure(id)
		if !ok {
			contract.LogDebug("skipping devices on unknown structure", logrus.Fields{"structure": id})
			continue
		}
		score, err := a.score(s, buckets[id])
		if err != nil {
			return 0, nil, err
		}
		total += score.Score
		scores = append(scores, score)
	}
	return total, scores, nil
}

// score combines the category subtotals of a structure with its count and size terms.
func (a *Aggregator) score(s contract.Structure, devices []schema.Block) (schema.StructureScore, error) {
	cells, fromOverride, err := a.occupiedCells(s, devices)
	if err != nil {
		return schema.StructureScore{}, err
	}

	breakdown := make(schema.Breakdown)
	for _, b := range devices {
		if err := a.tally(b, breakdown); err != nil {
			return schema.StructureScore{}, err
		}
	}

	t := a.cfg.Weights.Tuning
	if t.CellDivisor > 0 {
		breakdown.Add(schema.BreakdownBlocks, float64(cells)/t.CellDivisor)
	}
	if t.SizeDivisor > 0 {
		breakdown.Add(schema.BreakdownSize, s.BoundingBox().Diagonal()/t.SizeDivisor)
	}

	raw := breakdown.Sum()
	multiplier := Multiplier(t, s.SizeClass(), s.IsStatic())
	result := schema.StructureScore{
		ID:                s.ID(),
		Name:              s.Name(),
		SizeClass:         s.SizeClass(),
		Static:            s.IsStatic(),
		OccupiedCells:     cells,
		CellsFromOverride: fromOverride,
		Breakdown:         breakdown,
		Raw:               raw,
		Multiplier:        multiplier,
		Score:             raw * multiplier,
	}
	contract.LogDebug("structure scored", logrus.Fields{
		"structure": result.ID,
		"cells":     cells,
		"raw":       raw,
		"score":     result.Score,
	})
	return result, nil
}

// occupiedCells returns the cell count of a structure. The override replaces
// the walk for the structure of the invoking device only.
func (a *Aggregator) occupiedCells(s contract.Structure, devices []schema.Block) (int, bool, error) {
	if a.cfg.CellOverride > 0 && s.ID() == a.host.Self().Structure {
		return a.cfg.CellOverride, true, nil
	}
	n, err := CountOccupiedCells(s, seedsOf(devices), a.meter)
	return n, false, err
}

// tally adds one block's contribution to the breakdown. Non-functional blocks
// and blocks without a category contribute nothing.
func (a *Aggregator) tally(b schema.Block, breakdown schema.Breakdown) error {
	if err := a.meter.Step(); err != nil {
		return err
	}
	if !b.Functional {
		return nil
	}

	category := Classify(b.Definition, a.weapons)
	term, ok := categoryTerm(category)
	if !ok {
		return nil
	}

	w := a.cfg.Weights.Weight(category)
	base := w.For(a.cfg.IsModded(b.Definition))
	breakdown.Add(term, blockValue(w, base, b))

	if category == schema.CategoryPowerProducer && b.Working {
		if d := a.cfg.Weights.Tuning.OutputDivisor; d > 0 {
			breakdown.Add(schema.BreakdownPowerGen, b.MaxOutput/d)
		}
	}
	return nil
}
