// Package outwriter has output and writer logic.
package outwriter

import (
	"io"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
)

// OutWriter provides a unified interface for all output operations.
// Reports go to the output file when one is configured, otherwise to w.
type OutWriter struct {
	w io.Writer
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter(w io.Writer) *OutWriter {
	return &OutWriter{w: w}
}

// WriteScore prints a score result using the configured output format.
func (ow *OutWriter) WriteScore(result schema.ScoreResult, cfg *contract.Config) error {
	return WriteScoreResult(ow.w, result, cfg)
}

// WriteCounts prints cell counts using the configured output format.
func (ow *OutWriter) WriteCounts(result schema.CountResult, cfg *contract.Config) error {
	return WriteCountResult(ow.w, result, cfg)
}

// WriteWeights prints the active weight table using the configured output format.
func (ow *OutWriter) WriteWeights(cfg *contract.Config) error {
	return WriteWeightTable(ow.w, cfg)
}

// WriteSnapshots prints the stored snapshot summaries using the configured output format.
func (ow *OutWriter) WriteSnapshots(infos []schema.SnapshotInfo, cfg *contract.Config) error {
	return WriteSnapshotList(ow.w, infos, cfg)
}

// WriteStatus prints the snapshot store status.
func (ow *OutWriter) WriteStatus(status schema.StoreStatus) error {
	return WriteStoreStatus(ow.w, status)
}

// labelFunc returns the plain label function for the configured thresholds.
func labelFunc(cfg *contract.Config) func(float64) string {
	return func(score float64) string {
		return contract.GetPlainLabel(score, cfg.LabelThresholds)
	}
}

// displayLabel returns a colored label when colors are enabled.
func displayLabel(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score, cfg.LabelThresholds)
	}
	return contract.GetPlainLabel(score, cfg.LabelThresholds)
}
