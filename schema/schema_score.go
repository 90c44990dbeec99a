package schema

import "time"

// Breakdown maps a report term to its pre-multiplier subtotal.
// Terms with no matching blocks are absent and read as zero.
type Breakdown map[BreakdownKey]float64

// Add accumulates v into key, skipping zero contributions.
func (b Breakdown) Add(key BreakdownKey, v float64) {
	if v == 0 {
		return
	}
	b[key] += v
}

// Sum returns the total of all terms.
func (b Breakdown) Sum() float64 {
	var sum float64
	for _, v := range b {
		sum += v
	}
	return sum
}

// StructureScore is the score of one grid.
type StructureScore struct {
	ID                StructureID `json:"id"`
	Name              string      `json:"name"`
	SizeClass         SizeClass   `json:"size_class"`
	Static            bool        `json:"static"`
	OccupiedCells     int         `json:"occupied_cells"`
	CellsFromOverride bool        `json:"cells_from_override"`
	Breakdown         Breakdown   `json:"breakdown"`
	Raw               float64     `json:"raw"`
	Multiplier        float64     `json:"multiplier"`
	Score             float64     `json:"score"`
}

// Contribution returns the term's share of the final score.
func (s StructureScore) Contribution(key BreakdownKey) float64 {
	return s.Breakdown[key] * s.Multiplier
}

// ScoreResult is the outcome of one invocation.
type ScoreResult struct {
	RunID               string           `json:"run_id"`
	MultiGrid           bool             `json:"multi_grid"`
	Profile             WeightProfile    `json:"profile"`
	Total               float64          `json:"total"`
	Structures          []StructureScore `json:"structures"`
	CapabilityAvailable bool             `json:"weapon_mod_available"`
	Elapsed             time.Duration    `json:"elapsed_ns"`
	Instructions        int              `json:"instructions"`
}

// ElapsedMs returns the elapsed time in fractional milliseconds.
func (r ScoreResult) ElapsedMs() float64 {
	return float64(r.Elapsed.Microseconds()) / 1000
}

// CellCount is the occupied-cell count of one grid.
type CellCount struct {
	ID    StructureID `json:"id"`
	Name  string      `json:"name"`
	Cells int         `json:"cells"`
}

// CountResult is the outcome of a walker-only invocation.
type CountResult struct {
	Counts       []CellCount   `json:"counts"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Instructions int           `json:"instructions"`
}

// ElapsedMs returns the elapsed time in fractional milliseconds.
func (r CountResult) ElapsedMs() float64 {
	return float64(r.Elapsed.Microseconds()) / 1000
}
