package schema

import "maps"

// CategoryWeight holds the scoring parameters of one category.
type CategoryWeight struct {
	Base       float64 `json:"base"`        // Flat weight per block, or the base of a fill-scaled weight
	Modded     float64 `json:"modded"`      // Weight for definitions in the modded list; 0 falls back to Base
	FillScaled bool    `json:"fill_scaled"` // Score is Base + Base*fill ratio
}

// For returns the base weight to apply to a block, honoring the modded override.
func (w CategoryWeight) For(modded bool) float64 {
	if modded && w.Modded > 0 {
		return w.Modded
	}
	return w.Base
}

// Tuning holds the combination constants of the score.
type Tuning struct {
	LargeFactor   float64 `json:"large_factor"`   // Multiplier for large grids
	SmallFactor   float64 `json:"small_factor"`   // Multiplier for small grids
	StaticFactor  float64 `json:"static_factor"`  // Extra multiplier for static grids
	GlobalFactor  float64 `json:"global_factor"`  // Uniform decay applied to every grid
	CellDivisor   float64 `json:"cell_divisor"`   // Occupied cells per point
	SizeDivisor   float64 `json:"size_divisor"`   // Diagonal meters per point; 0 disables the size term
	OutputDivisor float64 `json:"output_divisor"` // Power output per generation point; 0 disables generation
}

// WeightTable maps every category to its scoring parameters.
type WeightTable struct {
	Categories map[Category]CategoryWeight `json:"categories"`
	Tuning     Tuning                      `json:"tuning"`
}

// Weight returns the parameters of a category, zero when the table has none.
func (t WeightTable) Weight(c Category) CategoryWeight {
	return t.Categories[c]
}

// Clone returns a deep copy of the table.
func (t WeightTable) Clone() WeightTable {
	clone := t
	clone.Categories = make(map[Category]CategoryWeight, len(t.Categories))
	maps.Copy(clone.Categories, t.Categories)
	return clone
}

// DefaultTuning returns the combination constants shared by both profiles.
func DefaultTuning() Tuning {
	return Tuning{
		LargeFactor:   2.5,
		SmallFactor:   0.5,
		StaticFactor:  0.75,
		GlobalFactor:  0.70,
		CellDivisor:   100,
		SizeDivisor:   4,
		OutputDivisor: 10,
	}
}

// GetDefaultWeights returns the default weight table for a given profile.
func GetDefaultWeights(profile WeightProfile) WeightTable {
	switch profile {
	case CompactProfile:
		tuning := DefaultTuning()
		tuning.SizeDivisor = 0
		return WeightTable{
			Categories: map[Category]CategoryWeight{
				CategoryAntenna:       {Base: 4},
				CategoryBeacon:        {Base: 3, Modded: 6},
				CategoryCargo:         {Base: 0.5},
				CategoryWeapon:        {Base: 5},
				CategoryWeaponFixed:   {Base: 5},
				CategoryWeaponTurret:  {Base: 5},
				CategoryProduction:    {Base: 1.5, Modded: 3},
				CategoryThruster:      {Base: 1},
				CategoryTool:          {Base: 1},
				CategoryPowerProducer: {Base: 0},
			},
			Tuning: tuning,
		}
	default: // StandardProfile
		return WeightTable{
			Categories: map[Category]CategoryWeight{
				CategoryAntenna:       {Base: 4},
				CategoryBeacon:        {Base: 3},
				CategoryCargo:         {Base: 0.5, FillScaled: true},
				CategoryController:    {Base: 0.5},
				CategoryGravity:       {Base: 2},
				CategoryWeapon:        {Base: 20},
				CategoryWeaponFixed:   {Base: 20, FillScaled: true},
				CategoryWeaponTurret:  {Base: 30, FillScaled: true},
				CategoryJumpDrive:     {Base: 10},
				CategoryMechanical:    {Base: 1},
				CategoryMedical:       {Base: 10},
				CategoryProduction:    {Base: 3, FillScaled: true},
				CategoryThruster:      {Base: 2},
				CategoryTool:          {Base: 2, FillScaled: true},
				CategoryPowerProducer: {Base: 0.5},
			},
			Tuning: DefaultTuning(),
		}
	}
}

// DefaultModdedBlocks lists block definitions known to come from popular mods.
// Profiles with a Modded weight score these higher than their vanilla counterparts.
var DefaultModdedBlocks = []string{
	// Tracking beacon
	"MyObjectBuilder_Beacon/DetectionLargeBlockBeacon",
	"MyObjectBuilder_Beacon/DetectionSmallBlockBeacon",
	// Condensor
	"Refinery/Condensor",
	"Refinery/LargeCondensor",
	// Daily needs
	"Refinery/WRS",
	"Refinery/WRSSmall",
	"Assembler/CropGrower",
	"Refinery/Hydroponics",
	"Refinery/HydroponicsSmall",
	"Refinery/Hydroponics2",
	"Assembler/Kitchen",
	"Assembler/KitchenSmall",
	"Assembler/EmergencyRationsKitSmall",
	"Refinery/LargeBiomassEngine",
	"Refinery/SmallBiomassEngine",
}

// LabelThresholds maps a final score to a display label.
type LabelThresholds struct {
	Critical float64 `json:"critical"`
	High     float64 `json:"high"`
	Moderate float64 `json:"moderate"`
}

// DefaultLabelThresholds returns the label thresholds used when none are configured.
func DefaultLabelThresholds() LabelThresholds {
	return LabelThresholds{Critical: 500, High: 200, Moderate: 50}
}
