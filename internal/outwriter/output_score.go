package outwriter

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/parquet"
	"github.com/huangsam/gridthreat/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrParquetNeedsFile is returned when parquet output has no file to write to.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

const topNTerms = 3

// WriteScoreResult outputs a score result, dispatching based on the output format configured.
func WriteScoreResult(w io.Writer, result schema.ScoreResult, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewScoreReport(result, labelFunc(cfg)))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeScoreCSV(w, result, cfg, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeScoreParquet(result, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.TableOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeScoreTable(w, result, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeScoreText(w, result, fmtFloat)
		}, "Wrote report")
	}
	return nil
}

// writeScoreText writes the plain report: the headline score, one line per
// non-zero term scaled by the multiplier, and the runtime trailer.
func writeScoreText(w io.Writer, result schema.ScoreResult, fmtFloat func(float64) string) error {
	var b strings.Builder
	if result.MultiGrid {
		fmt.Fprintf(&b, "Threat score: %s\n", fmtFloat(result.Total))
		for _, s := range result.Structures {
			fmt.Fprintf(&b, "Threat score for %s: %s\n", contract.DisplayName(s.Name, s.ID), fmtFloat(s.Score))
			writeTermLines(&b, s, fmtFloat)
		}
	} else {
		fmt.Fprintf(&b, "Grid threat score: %s\n", fmtFloat(result.Total))
		for _, s := range result.Structures {
			writeTermLines(&b, s, fmtFloat)
		}
	}
	fmt.Fprintf(&b, "Runtime: %.3fms, %d instrs\n", result.ElapsedMs(), result.Instructions)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTermLines(b *strings.Builder, s schema.StructureScore, fmtFloat func(float64) string) {
	for _, key := range schema.BreakdownOrder {
		if v, ok := s.Breakdown[key]; ok && v != 0 {
			fmt.Fprintf(b, " - %s: %s\n", key, fmtFloat(s.Contribution(key)))
		}
	}
}

// formatTopTerms names the terms that contribute most to a score.
func formatTopTerms(s schema.StructureScore) string {
	keys := make([]schema.BreakdownKey, 0, len(s.Breakdown))
	for _, key := range schema.BreakdownOrder {
		if s.Breakdown[key] > 0 {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "None"
	}
	slices.SortStableFunc(keys, func(a, b schema.BreakdownKey) int {
		return cmp.Compare(s.Breakdown[b], s.Breakdown[a])
	})

	parts := make([]string, 0, topNTerms)
	for _, key := range keys[:min(len(keys), topNTerms)] {
		parts = append(parts, string(key))
	}
	return strings.Join(parts, " > ")
}

// formatClass renders the size class and mobility of a grid.
func formatClass(s schema.StructureScore) string {
	if s.Static {
		return string(s.SizeClass) + "/static"
	}
	return string(s.SizeClass)
}

// writeScoreTable generates and writes the human-readable table.
func writeScoreTable(w io.Writer, result schema.ScoreResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	table.Header([]string{"Rank", "Grid", "Class", "Cells", "Raw", "Mult", "Score", "Label", "Top Terms"})

	// 2. Configure alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	nameWidth := GetMaxTableNameWidth(cfg)
	anyOverride := false
	var data [][]string
	for i, s := range result.Structures {
		cells := fmt.Sprintf(intFmt, s.OccupiedCells)
		if s.CellsFromOverride {
			cells += "*"
			anyOverride = true
		}
		data = append(data, []string{
			fmt.Sprintf(intFmt, i+1),
			contract.TruncateName(contract.DisplayName(s.Name, s.ID), nameWidth),
			formatClass(s),
			cells,
			fmtFloat(s.Raw),
			fmtFloat(s.Multiplier),
			fmtFloat(s.Score),
			displayLabel(s.Score, cfg),
			formatTopTerms(s),
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if anyOverride {
		if _, err := fmt.Fprintln(w, "* cell count taken from the override"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Total threat score: %s across %d grids (profile: %s)\n", fmtFloat(result.Total), len(result.Structures), result.Profile); err != nil {
		return err
	}
	mod := "unavailable"
	if result.CapabilityAvailable {
		mod = "available"
	}
	if _, err := fmt.Fprintf(w, "Scored in %.3fms with %d instrs. Weapon mod: %s\n", result.ElapsedMs(), result.Instructions, mod); err != nil {
		return err
	}
	return nil
}

// writeScoreCSV writes one row per structure with the pre-multiplier terms.
func writeScoreCSV(w io.Writer, result schema.ScoreResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"run_id", "structure_id", "name", "size_class", "static", "cells"}
	for _, key := range schema.BreakdownOrder {
		header = append(header, string(key))
	}
	header = append(header, "raw", "multiplier", "score", "label")

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range result.Structures {
			row := []string{
				result.RunID,
				fmt.Sprintf(intFmt, s.ID),
				s.Name,
				string(s.SizeClass),
				fmt.Sprintf("%t", s.Static),
				fmt.Sprintf(intFmt, s.OccupiedCells),
			}
			for _, key := range schema.BreakdownOrder {
				row = append(row, fmtFloat(s.Breakdown[key]))
			}
			row = append(row,
				fmtFloat(s.Raw),
				fmtFloat(s.Multiplier),
				fmtFloat(s.Score),
				contract.GetPlainLabel(s.Score, cfg.LabelThresholds),
			)
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeScoreParquet writes one row per structure to the configured output file.
func writeScoreParquet(result schema.ScoreResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return ErrParquetNeedsFile
	}
	rows := make([]parquet.StructureScoreRow, 0, len(result.Structures))
	for _, s := range result.Structures {
		rows = append(rows, parquet.NewStructureScoreRow(result, s, contract.GetPlainLabel(s.Score, cfg.LabelThresholds)))
	}
	if err := parquet.WriteStructureScoresParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}
