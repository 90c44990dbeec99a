// Package core has core logic for walking grids and scoring threat.
package core

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/outwriter"
	"github.com/huangsam/gridthreat/internal/weaponmod"
	"github.com/huangsam/gridthreat/schema"
	"github.com/sirupsen/logrus"
)

// ExecutorFunc defines the function signature for executing a run against a host.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, host contract.Host, w io.Writer) error

// RunScore performs one scoring pass: it activates the weapon mod once, scores
// the invoking structure (or every structure in multi-grid mode) and measures
// the pass. Nothing is written to the host.
func RunScore(ctx context.Context, cfg *contract.Config, host contract.Host) (schema.ScoreResult, error) {
	start := time.Now()
	result := schema.ScoreResult{
		RunID:     uuid.NewString(),
		MultiGrid: cfg.MultiGrid,
		Profile:   cfg.Profile,
	}

	weapons := weaponmod.Activate(host)
	result.CapabilityAvailable = weapons.Available()
	if err := ctx.Err(); err != nil {
		return schema.ScoreResult{}, err
	}

	agg := NewAggregator(cfg, host, weapons)
	if cfg.MultiGrid {
		total, scores, err := agg.ScoreAll()
		if err != nil {
			return schema.ScoreResult{}, err
		}
		result.Total = total
		result.Structures = scores
	} else {
		score, err := agg.ScoreSelf()
		if err != nil {
			return schema.ScoreResult{}, err
		}
		result.Total = score.Score
		result.Structures = []schema.StructureScore{score}
	}

	result.Elapsed = time.Since(start)
	result.Instructions = agg.Instructions()
	contract.LogDebug("score run finished", logrus.Fields{
		"run_id":       result.RunID,
		"structures":   len(result.Structures),
		"instructions": result.Instructions,
		"elapsed":      result.Elapsed,
	})
	return result, ctx.Err()
}

// ExecuteScore runs one scoring pass and writes the report.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, host contract.Host, w io.Writer) error {
	result, err := RunScore(ctx, cfg, host)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter(w).WriteScore(result, cfg)
}

// RunCount walks every structure that owns a terminal device, or only the
// invoking structure when multi-grid mode is off. The override, when set,
// replaces the walk of the invoking structure.
func RunCount(ctx context.Context, cfg *contract.Config, host contract.Host) (schema.CountResult, error) {
	start := time.Now()
	meter := NewMeter(cfg.Budget)
	self := host.Self().Structure

	buckets := devicesByStructure(host.Blocks())
	if !cfg.MultiGrid {
		if _, ok := host.Structure(self); !ok {
			return schema.CountResult{}, fmt.Errorf("%w: %d", ErrUnknownStructure, self)
		}
		buckets = map[schema.StructureID][]schema.Block{self: buckets[self]}
	}
	known := make(map[schema.StructureID]int)
	if cfg.CellOverride > 0 {
		known[self] = cfg.CellOverride
	}

	counts, err := countEach(host, buckets, known, meter)
	if err != nil {
		return schema.CountResult{}, err
	}

	result := schema.CountResult{Counts: make([]schema.CellCount, 0, len(counts))}
	for _, id := range slices.Sorted(maps.Keys(counts)) {
		s, _ := host.Structure(id)
		result.Counts = append(result.Counts, schema.CellCount{ID: id, Name: s.Name(), Cells: counts[id]})
	}
	result.Elapsed = time.Since(start)
	result.Instructions = meter.Used()
	return result, ctx.Err()
}

// ExecuteCount runs the walker only and writes the per-structure cell counts.
// It serves as the main entry point for the 'count' command.
func ExecuteCount(ctx context.Context, cfg *contract.Config, host contract.Host, w io.Writer) error {
	result, err := RunCount(ctx, cfg, host)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter(w).WriteCounts(result, cfg)
}
