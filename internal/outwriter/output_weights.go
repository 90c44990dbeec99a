package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// weightsReport is the serialized form of the active weights.
type weightsReport struct {
	Profile         schema.WeightProfile   `json:"profile"`
	Weights         schema.WeightTable     `json:"weights"`
	ModdedBlocks    []string               `json:"modded_blocks"`
	LabelThresholds schema.LabelThresholds `json:"label_thresholds"`
}

// tuningRow pairs a tuning constant with its name.
type tuningRow struct {
	Name  string
	Value float64
}

func tuningRows(t schema.Tuning) []tuningRow {
	return []tuningRow{
		{"large_factor", t.LargeFactor},
		{"small_factor", t.SmallFactor},
		{"static_factor", t.StaticFactor},
		{"global_factor", t.GlobalFactor},
		{"cell_divisor", t.CellDivisor},
		{"size_divisor", t.SizeDivisor},
		{"output_divisor", t.OutputDivisor},
	}
}

// WriteWeightTable outputs the active weight table, dispatching based on the output format configured.
func WriteWeightTable(w io.Writer, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		report := weightsReport{
			Profile:         cfg.Profile,
			Weights:         cfg.Weights,
			ModdedBlocks:    cfg.SortedModdedBlocks(),
			LabelThresholds: cfg.LabelThresholds,
		}
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsCSV(w, cfg.Weights, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for weights")
	case schema.TableOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsTable(w, cfg, fmtFloat)
		}, "Wrote table")
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsText(w, cfg, fmtFloat)
		}, "Wrote weights")
	}
	return nil
}

// formatCategoryWeight renders a weight as its scoring formula.
func formatCategoryWeight(cw schema.CategoryWeight, fmtFloat func(float64) string) string {
	s := fmtFloat(cw.Base)
	if cw.FillScaled {
		s = fmt.Sprintf("%s + %s*fill", s, s)
	}
	if cw.Modded > 0 {
		s += fmt.Sprintf(" (modded %s)", fmtFloat(cw.Modded))
	}
	return s
}

func writeWeightsText(w io.Writer, cfg *contract.Config, fmtFloat func(float64) string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Weight profile: %s\n", cfg.Profile)
	for _, c := range schema.AllCategories {
		cw, ok := cfg.Weights.Categories[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, " - %s: %s\n", c, formatCategoryWeight(cw, fmtFloat))
	}
	b.WriteString("Tuning:\n")
	for _, r := range tuningRows(cfg.Weights.Tuning) {
		fmt.Fprintf(&b, " - %s: %s\n", r.Name, fmtFloat(r.Value))
	}
	fmt.Fprintf(&b, "Modded blocks: %d\n", len(cfg.ModdedBlocks))
	_, err := io.WriteString(w, b.String())
	return err
}

func writeWeightsTable(w io.Writer, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Base", "Modded", "Fill Scaled"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range schema.AllCategories {
		cw, ok := cfg.Weights.Categories[c]
		if !ok {
			continue
		}
		modded := "-"
		if cw.Modded > 0 {
			modded = fmtFloat(cw.Modded)
		}
		data = append(data, []string{string(c), fmtFloat(cw.Base), modded, fmt.Sprintf("%t", cw.FillScaled)})
	}
	for _, r := range tuningRows(cfg.Weights.Tuning) {
		data = append(data, []string{r.Name, fmtFloat(r.Value), "-", "-"})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Weight profile: %s, %d modded blocks\n", cfg.Profile, len(cfg.ModdedBlocks)); err != nil {
		return err
	}
	return nil
}

func writeWeightsCSV(w io.Writer, table schema.WeightTable, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, []string{"kind", "name", "base", "modded", "fill_scaled"}, func(csvWriter *csv.Writer) error {
		for _, c := range schema.AllCategories {
			cw, ok := table.Categories[c]
			if !ok {
				continue
			}
			record := []string{"category", string(c), fmtFloat(cw.Base), fmtFloat(cw.Modded), fmt.Sprintf("%t", cw.FillScaled)}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		for _, r := range tuningRows(table.Tuning) {
			if err := csvWriter.Write([]string{"tuning", r.Name, fmtFloat(r.Value), "", ""}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
