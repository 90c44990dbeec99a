package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"

	"github.com/olekukonko/tablewriter"
)

const importedAtLayout = "2006-01-02 15:04:05"

// WriteSnapshotList outputs the stored snapshot summaries, dispatching based on the output format configured.
func WriteSnapshotList(w io.Writer, infos []schema.SnapshotInfo, cfg *contract.Config) error {
	if infos == nil {
		infos = []schema.SnapshotInfo{}
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, infos)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotCSV(w, infos)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for snapshot listings")
	case schema.TableOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotTable(w, infos)
		}, "Wrote table")
	default:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeSnapshotText(w, infos)
		}, "Wrote listing")
	}
	return nil
}

func writeSnapshotText(w io.Writer, infos []schema.SnapshotInfo) error {
	var b strings.Builder
	if len(infos) == 0 {
		b.WriteString("No stored snapshots.\n")
	}
	for _, info := range infos {
		fmt.Fprintf(&b, "%s: %d grids, %d blocks, imported %s\n",
			info.Name, info.Structures, info.Blocks, info.ImportedAt.Format(importedAtLayout))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSnapshotTable(w io.Writer, infos []schema.SnapshotInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Grids", "Blocks", "Imported"})

	data := make([][]string, 0, len(infos))
	for _, info := range infos {
		data = append(data, []string{
			info.Name,
			strconv.Itoa(info.Structures),
			strconv.Itoa(info.Blocks),
			info.ImportedAt.Format(importedAtLayout),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSnapshotCSV(w io.Writer, infos []schema.SnapshotInfo) error {
	return writeCSVWithHeader(w, []string{"name", "structures", "blocks", "imported_at"}, func(csvWriter *csv.Writer) error {
		for _, info := range infos {
			record := []string{
				info.Name,
				strconv.Itoa(info.Structures),
				strconv.Itoa(info.Blocks),
				info.ImportedAt.UTC().Format("2006-01-02T15:04:05Z"),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// WriteStoreStatus prints snapshot store status information.
func WriteStoreStatus(w io.Writer, status schema.StoreStatus) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Snapshot Backend: %s\n", status.Backend)
	fmt.Fprintf(&b, "Connected: %t\n", status.Connected)
	if status.Connected {
		fmt.Fprintf(&b, "Stored Snapshots: %d\n", status.Snapshots)
		fmt.Fprintf(&b, "Database Size: %d bytes\n", status.SizeBytes)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
