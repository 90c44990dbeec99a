package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/parquet"
	"github.com/huangsam/gridthreat/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCountResult outputs cell counts, dispatching based on the output format configured.
func WriteCountResult(w io.Writer, result schema.CountResult, cfg *contract.Config) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeCountCSV(w, result, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeCountParquet(result, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.TableOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeCountTable(w, result, cfg, intFmt)
		}, "Wrote table")
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeCountText(w, result)
		}, "Wrote report")
	}
	return nil
}

func writeCountText(w io.Writer, result schema.CountResult) error {
	var b strings.Builder
	for _, c := range result.Counts {
		fmt.Fprintf(&b, "Occupied cells for %s: %d\n", contract.DisplayName(c.Name, c.ID), c.Cells)
	}
	fmt.Fprintf(&b, "Runtime: %.3fms, %d instrs\n", result.ElapsedMs(), result.Instructions)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCountTable(w io.Writer, result schema.CountResult, cfg *contract.Config, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Grid", "Cells"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	total := 0
	var data [][]string
	for _, c := range result.Counts {
		total += c.Cells
		data = append(data, []string{
			fmt.Sprintf(intFmt, c.ID),
			contract.TruncateName(contract.DisplayName(c.Name, c.ID), nameWidth),
			fmt.Sprintf(intFmt, c.Cells),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Counted %d cells across %d grids in %.3fms with %d instrs\n", total, len(result.Counts), result.ElapsedMs(), result.Instructions); err != nil {
		return err
	}
	return nil
}

func writeCountCSV(w io.Writer, result schema.CountResult, intFmt string) error {
	return writeCSVWithHeader(w, []string{"structure_id", "name", "cells"}, func(csvWriter *csv.Writer) error {
		for _, c := range result.Counts {
			record := []string{fmt.Sprintf(intFmt, c.ID), c.Name, fmt.Sprintf(intFmt, c.Cells)}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeCountParquet(result schema.CountResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return ErrParquetNeedsFile
	}
	rows := make([]parquet.CellCountRow, 0, len(result.Counts))
	for _, c := range result.Counts {
		rows = append(rows, parquet.NewCellCountRow(c))
	}
	if err := parquet.WriteCellCountsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}
