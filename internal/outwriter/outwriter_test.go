package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:          output,
		Precision:       3,
		Width:           120,
		UseColors:       false,
		Profile:         schema.StandardProfile,
		Weights:         schema.GetDefaultWeights(schema.StandardProfile),
		LabelThresholds: schema.DefaultLabelThresholds(),
		ModdedBlocks:    map[string]struct{}{"Beacon/DetectionLargeBlockBeacon": {}},
	}
}

func singleResult() schema.ScoreResult {
	return schema.ScoreResult{
		RunID:   "run-single",
		Profile: schema.StandardProfile,
		Total:   13.125,
		Structures: []schema.StructureScore{
			{
				ID:                1,
				Name:              "Frigate",
				SizeClass:         schema.LargeGrid,
				OccupiedCells:     50,
				CellsFromOverride: true,
				Breakdown: schema.Breakdown{
					schema.BreakdownAntenna: 4,
					schema.BreakdownBeacon:  3,
					schema.BreakdownBlocks:  0.5,
				},
				Raw:        7.5,
				Multiplier: 1.75,
				Score:      13.125,
			},
		},
		Elapsed:      1500 * time.Microsecond,
		Instructions: 42,
	}
}

func multiResult() schema.ScoreResult {
	return schema.ScoreResult{
		RunID:     "run-multi",
		MultiGrid: true,
		Profile:   schema.CompactProfile,
		Total:     600,
		Structures: []schema.StructureScore{
			{
				ID:         3,
				Name:       "Station",
				SizeClass:  schema.LargeGrid,
				Static:     true,
				Breakdown:  schema.Breakdown{schema.BreakdownWeapons: 400},
				Raw:        400,
				Multiplier: 1.3125,
				Score:      525,
			},
			{
				ID:         8,
				SizeClass:  schema.SmallGrid,
				Breakdown:  schema.Breakdown{schema.BreakdownThrusters: 200},
				Raw:        200,
				Multiplier: 0.375,
				Score:      75,
			},
		},
		CapabilityAvailable: true,
		Elapsed:             2 * time.Millisecond,
		Instructions:        900,
	}
}

func TestWriteScoreText_Single(t *testing.T) {
	var buf bytes.Buffer
	err := NewOutWriter(&buf).WriteScore(singleResult(), testConfig(schema.TextOut))
	require.NoError(t, err)

	expected := "Grid threat score: 13.125\n" +
		" - antenna: 7.000\n" +
		" - beacon: 5.250\n" +
		" - blocks: 0.875\n" +
		"Runtime: 1.500ms, 42 instrs\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteScoreText_OmitsZeroTerms(t *testing.T) {
	result := singleResult()
	result.Structures[0].Breakdown[schema.BreakdownCargo] = 0

	var buf bytes.Buffer
	require.NoError(t, NewOutWriter(&buf).WriteScore(result, testConfig(schema.TextOut)))
	assert.NotContains(t, buf.String(), "cargo")
	assert.NotContains(t, buf.String(), "weapons")
}

func TestWriteScoreText_Multi(t *testing.T) {
	var buf bytes.Buffer
	err := NewOutWriter(&buf).WriteScore(multiResult(), testConfig(schema.TextOut))
	require.NoError(t, err)

	expected := "Threat score: 600.000\n" +
		"Threat score for Station: 525.000\n" +
		" - weapons: 525.000\n" +
		"Threat score for grid-8: 75.000\n" +
		" - thrusters: 75.000\n" +
		"Runtime: 2.000ms, 900 instrs\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteScoreTable(t *testing.T) {
	var buf bytes.Buffer
	err := NewOutWriter(&buf).WriteScore(multiResult(), testConfig(schema.TableOut))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Station")
	assert.Contains(t, out, "large/static")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "Moderate")
	assert.Contains(t, out, "Total threat score: 600.000 across 2 grids (profile: compact)")
	assert.Contains(t, out, "Weapon mod: available")
	assert.NotContains(t, out, "override")
}

func TestWriteScoreTable_MarksOverride(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriter(&buf).WriteScore(singleResult(), testConfig(schema.TableOut)))

	out := buf.String()
	assert.Contains(t, out, "50*")
	assert.Contains(t, out, "* cell count taken from the override")
	assert.Contains(t, out, "Weapon mod: unavailable")
}

func TestWriteScoreJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriter(&buf).WriteScore(multiResult(), testConfig(schema.JSONOut)))

	var report schema.ScoreReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "run-multi", report.RunID)
	assert.True(t, report.MultiGrid)
	assert.Equal(t, "Critical", report.TotalLabel)
	require.Len(t, report.Structures, 2)
	assert.Equal(t, 1, report.Structures[0].Rank)
	assert.Equal(t, "Critical", report.Structures[0].Label)
	assert.Equal(t, "Moderate", report.Structures[1].Label)
	assert.InDelta(t, 400, report.Structures[0].Breakdown[schema.BreakdownWeapons], 1e-9)
	assert.InDelta(t, 2.0, report.ElapsedMs, 1e-9)
}

func TestWriteScoreCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriter(&buf).WriteScore(multiResult(), testConfig(schema.CSVOut)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "run_id,structure_id,name,size_class,static,cells,antenna,beacon"))
	assert.True(t, strings.HasSuffix(lines[0], "raw,multiplier,score,label"))
	assert.True(t, strings.HasPrefix(lines[1], "run-multi,3,Station,large,true,0,"))
	assert.Contains(t, lines[1], ",400.000,")
	assert.True(t, strings.HasSuffix(lines[1], ",525.000,Critical"))
	assert.True(t, strings.HasPrefix(lines[2], "run-multi,8,,small,false,0,"))
}

func TestWriteScoreParquet(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewOutWriter(&buf).WriteScore(multiResult(), testConfig(schema.ParquetOut))
		require.ErrorIs(t, err, ErrParquetNeedsFile)
		assert.Empty(t, buf.String())
	})

	t.Run("writes file", func(t *testing.T) {
		cfg := testConfig(schema.ParquetOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "scores.parquet")

		require.NoError(t, NewOutWriter(&bytes.Buffer{}).WriteScore(multiResult(), cfg))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}

func TestWriteScoreToOutputFile(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.txt")

	var buf bytes.Buffer
	require.NoError(t, NewOutWriter(&buf).WriteScore(singleResult(), cfg))
	assert.Empty(t, buf.String(), "report should go to the file, not the writer")

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Grid threat score: 13.125\n"))
}

func TestFormatTopTerms(t *testing.T) {
	tests := []struct {
		name      string
		breakdown schema.Breakdown
		expected  string
	}{
		{"empty", schema.Breakdown{}, "None"},
		{"single", schema.Breakdown{schema.BreakdownCargo: 1}, "cargo"},
		{
			"top three by value",
			schema.Breakdown{
				schema.BreakdownAntenna:   4,
				schema.BreakdownWeapons:   60,
				schema.BreakdownThrusters: 12,
				schema.BreakdownBlocks:    5,
			},
			"weapons > thrusters > blocks",
		},
		{
			"ties keep report order",
			schema.Breakdown{schema.BreakdownTools: 2, schema.BreakdownGravity: 2},
			"gravity > tools",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatTopTerms(schema.StructureScore{Breakdown: tt.breakdown}))
		})
	}
}

func TestWriteCounts(t *testing.T) {
	result := schema.CountResult{
		Counts: []schema.CellCount{
			{ID: 1, Name: "Base", Cells: 1200},
			{ID: 4, Cells: 9},
		},
		Elapsed:      250 * time.Microsecond,
		Instructions: 7000,
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteCounts(result, testConfig(schema.TextOut)))
		expected := "Occupied cells for Base: 1200\n" +
			"Occupied cells for grid-4: 9\n" +
			"Runtime: 0.250ms, 7000 instrs\n"
		assert.Equal(t, expected, buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteCounts(result, testConfig(schema.TableOut)))
		assert.Contains(t, buf.String(), "Counted 1209 cells across 2 grids")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteCounts(result, testConfig(schema.CSVOut)))
		assert.Equal(t, "structure_id,name,cells\n1,Base,1200\n4,,9\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteCounts(result, testConfig(schema.JSONOut)))
		var decoded schema.CountResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result.Counts, decoded.Counts)
	})

	t.Run("parquet requires output file", func(t *testing.T) {
		err := NewOutWriter(&bytes.Buffer{}).WriteCounts(result, testConfig(schema.ParquetOut))
		require.ErrorIs(t, err, ErrParquetNeedsFile)
	})
}

func TestWriteWeights(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteWeights(testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "Weight profile: standard\n")
		assert.Contains(t, out, " - antenna: 4.000\n")
		assert.Contains(t, out, " - cargo: 0.500 + 0.500*fill\n")
		assert.Contains(t, out, " - size_divisor: 4.000\n")
		assert.Contains(t, out, "Modded blocks: 1\n")
	})

	t.Run("text shows modded weight", func(t *testing.T) {
		cfg := testConfig(schema.TextOut)
		cfg.Profile = schema.CompactProfile
		cfg.Weights = schema.GetDefaultWeights(schema.CompactProfile)

		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteWeights(cfg))
		assert.Contains(t, buf.String(), " - beacon: 3.000 (modded 6.000)\n")
		assert.NotContains(t, buf.String(), " - gravity:")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteWeights(testConfig(schema.JSONOut)))
		var decoded weightsReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, schema.StandardProfile, decoded.Profile)
		assert.Equal(t, []string{"Beacon/DetectionLargeBlockBeacon"}, decoded.ModdedBlocks)
		assert.InDelta(t, 30, decoded.Weights.Categories[schema.CategoryWeaponTurret].Base, 1e-9)
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteWeights(testConfig(schema.CSVOut)))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, "kind,name,base,modded,fill_scaled", lines[0])
		assert.Equal(t, "category,antenna,4.000,0.000,false", lines[1])
		assert.Equal(t, "tuning,output_divisor,10.000,,", lines[len(lines)-1])
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		require.Error(t, NewOutWriter(&bytes.Buffer{}).WriteWeights(testConfig(schema.ParquetOut)))
	})
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 40, expected: 12},
		{width: 80, expected: 18},
		{width: 200, expected: 48},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg))
	}
}

func TestWriteSnapshots(t *testing.T) {
	imported := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	infos := []schema.SnapshotInfo{
		{Name: "outpost", Structures: 2, Blocks: 4, ImportedAt: imported},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteSnapshots(infos, testConfig(schema.TextOut)))
		assert.Equal(t, "outpost: 2 grids, 4 blocks, imported 2026-03-14 09:30:00\n", buf.String())
	})

	t.Run("text empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteSnapshots(nil, testConfig(schema.TextOut)))
		assert.Equal(t, "No stored snapshots.\n", buf.String())
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteSnapshots(infos, testConfig(schema.CSVOut)))
		assert.Equal(t, "name,structures,blocks,imported_at\noutpost,2,4,2026-03-14T09:30:00Z\n", buf.String())
	})

	t.Run("json empty is an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteSnapshots(nil, testConfig(schema.JSONOut)))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewOutWriter(&buf).WriteSnapshots(infos, testConfig(schema.TableOut)))
		assert.Contains(t, buf.String(), "outpost")
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		require.Error(t, NewOutWriter(&bytes.Buffer{}).WriteSnapshots(infos, testConfig(schema.ParquetOut)))
	})
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutWriter(&buf).WriteStatus(schema.StoreStatus{Backend: "sqlite", Connected: true, Snapshots: 3, SizeBytes: 8192}))
	assert.Equal(t, "Snapshot Backend: sqlite\nConnected: true\nStored Snapshots: 3\nDatabase Size: 8192 bytes\n", buf.String())

	buf.Reset()
	require.NoError(t, NewOutWriter(&buf).WriteStatus(schema.StoreStatus{Backend: "mysql"}))
	assert.Equal(t, "Snapshot Backend: mysql\nConnected: false\n", buf.String())
}
