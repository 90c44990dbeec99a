package schema

// EnrichedStructureScore adds presentation data to a StructureScore.
type EnrichedStructureScore struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	StructureScore
}

// ScoreReport is the serialized form of a ScoreResult.
type ScoreReport struct {
	RunID              string                   `json:"run_id"`
	MultiGrid          bool                     `json:"multi_grid"`
	Profile            WeightProfile            `json:"profile"`
	Total              float64                  `json:"total"`
	TotalLabel         string                   `json:"total_label"`
	Structures         []EnrichedStructureScore `json:"structures"`
	WeaponModAvailable bool                     `json:"weapon_mod_available"`
	ElapsedMs          float64                  `json:"elapsed_ms"`
	Instructions       int                      `json:"instructions"`
}

// EnrichScores adds rank and label to a list of structure scores.
// Rank follows the input order.
func EnrichScores(scores []StructureScore, label func(float64) string) []EnrichedStructureScore {
	output := make([]EnrichedStructureScore, len(scores))
	for i, s := range scores {
		output[i] = EnrichedStructureScore{
			Rank:           i + 1,
			Label:          label(s.Score),
			StructureScore: s,
		}
	}
	return output
}

// NewScoreReport builds the serialized form of a result.
func NewScoreReport(result ScoreResult, label func(float64) string) ScoreReport {
	return ScoreReport{
		RunID:              result.RunID,
		MultiGrid:          result.MultiGrid,
		Profile:            result.Profile,
		Total:              result.Total,
		TotalLabel:         label(result.Total),
		Structures:         EnrichScores(result.Structures, label),
		WeaponModAvailable: result.CapabilityAvailable,
		ElapsedMs:          result.ElapsedMs(),
		Instructions:       result.Instructions,
	}
}
