// Package parquet provides data structures and functions for exporting threat
// scores and cell counts to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/gridthreat/schema"
	"github.com/parquet-go/parquet-go"
)

// StructureScoreRow is one scored grid of one run.
// Term columns hold pre-multiplier subtotals, zero when the term is absent.
type StructureScoreRow struct {
	// RunID groups the rows of one invocation
	RunID string `parquet:"run_id,snappy"`

	// Profile is the weight profile the run used
	Profile string `parquet:"profile,snappy"`

	// StructureID is the host id of the grid
	StructureID int64 `parquet:"structure_id,snappy"`

	// Name is the display name of the grid (nullable)
	Name *string `parquet:"name,optional,snappy"`

	SizeClass         string `parquet:"size_class,snappy"`
	Static            bool   `parquet:"static,snappy"`
	OccupiedCells     int32  `parquet:"occupied_cells,snappy"`
	CellsFromOverride bool   `parquet:"cells_from_override,snappy"`

	Antenna     float64 `parquet:"term_antenna,snappy"`
	Beacon      float64 `parquet:"term_beacon,snappy"`
	Cargo       float64 `parquet:"term_cargo,snappy"`
	Controllers float64 `parquet:"term_controllers,snappy"`
	Gravity     float64 `parquet:"term_gravity,snappy"`
	Weapons     float64 `parquet:"term_weapons,snappy"`
	JumpDrives  float64 `parquet:"term_jumpdrives,snappy"`
	Mechanical  float64 `parquet:"term_mechanical,snappy"`
	Medical     float64 `parquet:"term_medical,snappy"`
	Production  float64 `parquet:"term_production,snappy"`
	Thrusters   float64 `parquet:"term_thrusters,snappy"`
	Tools       float64 `parquet:"term_tools,snappy"`
	PowerBlocks float64 `parquet:"term_powerblocks,snappy"`
	PowerGen    float64 `parquet:"term_powergen,snappy"`
	Blocks      float64 `parquet:"term_blocks,snappy"`
	Size        float64 `parquet:"term_size,snappy"`

	// Raw is the sum of all terms before the multiplier
	Raw float64 `parquet:"raw,snappy"`

	// Multiplier is the size class and mobility factor
	Multiplier float64 `parquet:"multiplier,snappy"`

	// Score is Raw * Multiplier
	Score float64 `parquet:"score,snappy"`

	// Label is the threat label of Score
	Label string `parquet:"label,snappy"`

	// WeaponModAvailable tells whether the weapon mod catalog was active
	WeaponModAvailable bool `parquet:"weapon_mod_available,snappy"`
}

// CellCountRow is the occupied-cell count of one grid.
type CellCountRow struct {
	StructureID int64   `parquet:"structure_id,snappy"`
	Name        *string `parquet:"name,optional,snappy"`
	Cells       int32   `parquet:"cells,snappy"`
}

// NewStructureScoreRow flattens one structure score into a row.
func NewStructureScoreRow(result schema.ScoreResult, s schema.StructureScore, label string) StructureScoreRow {
	b := s.Breakdown
	return StructureScoreRow{
		RunID:              result.RunID,
		Profile:            string(result.Profile),
		StructureID:        int64(s.ID),
		Name:               optionalString(s.Name),
		SizeClass:          string(s.SizeClass),
		Static:             s.Static,
		OccupiedCells:      int32(s.OccupiedCells),
		CellsFromOverride:  s.CellsFromOverride,
		Antenna:            b[schema.BreakdownAntenna],
		Beacon:             b[schema.BreakdownBeacon],
		Cargo:              b[schema.BreakdownCargo],
		Controllers:        b[schema.BreakdownControllers],
		Gravity:            b[schema.BreakdownGravity],
		Weapons:            b[schema.BreakdownWeapons],
		JumpDrives:         b[schema.BreakdownJumpDrives],
		Mechanical:         b[schema.BreakdownMechanical],
		Medical:            b[schema.BreakdownMedical],
		Production:         b[schema.BreakdownProduction],
		Thrusters:          b[schema.BreakdownThrusters],
		Tools:              b[schema.BreakdownTools],
		PowerBlocks:        b[schema.BreakdownPowerBlocks],
		PowerGen:           b[schema.BreakdownPowerGen],
		Blocks:             b[schema.BreakdownBlocks],
		Size:               b[schema.BreakdownSize],
		Raw:                s.Raw,
		Multiplier:         s.Multiplier,
		Score:              s.Score,
		Label:              label,
		WeaponModAvailable: result.CapabilityAvailable,
	}
}

// NewCellCountRow converts one cell count into a row.
func NewCellCountRow(c schema.CellCount) CellCountRow {
	return CellCountRow{
		StructureID: int64(c.ID),
		Name:        optionalString(c.Name),
		Cells:       int32(c.Cells),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteRows writes rows of any parquet-tagged struct type to w.
func WriteRows[T any](w io.Writer, rows []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteStructureScoresParquet writes structure score rows to a Parquet file.
func WriteStructureScoresParquet(data []StructureScoreRow, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error {
		return WriteRows(w, data)
	})
}

// WriteCellCountsParquet writes cell count rows to a Parquet file.
func WriteCellCountsParquet(data []CellCountRow, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error {
		return WriteRows(w, data)
	})
}

func writeFile(outputPath string, write func(io.Writer) error) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
