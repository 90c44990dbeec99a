package snapshot

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "testdata/sample.yaml"

func loadSample(t *testing.T) schema.Snapshot {
	t.Helper()
	snap, err := ReadFile(samplePath)
	require.NoError(t, err)
	return snap
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path       string
		format     Format
		compressed bool
		wantErr    bool
	}{
		{"base.yaml", YAMLFormat, false, false},
		{"base.YML", YAMLFormat, false, false},
		{"base.json", JSONFormat, false, false},
		{"base.yaml.zst", YAMLFormat, true, false},
		{"dir/base.json.zst", JSONFormat, true, false},
		{"base.toml", "", false, true},
		{"base.zst", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, compressed, err := DetectFormat(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compressed, compressed)
		})
	}
}

func TestReadFile_Sample(t *testing.T) {
	snap := loadSample(t)

	assert.Equal(t, schema.BlockID(100), snap.Self)
	require.Len(t, snap.Structures, 2)
	assert.Equal(t, "Outpost", snap.Structures[0].Name)
	assert.True(t, snap.Structures[0].Static)
	assert.Equal(t, schema.SmallGrid, snap.Structures[1].Size)
	require.Len(t, snap.Blocks, 4)
	require.NotNil(t, snap.Blocks[1].Extent)
	assert.Equal(t, [3]int{2, 2, 2}, *snap.Blocks[1].Extent)
	require.NotNil(t, snap.Blocks[3].Inventory)
	assert.InDelta(t, 0.125, snap.Blocks[3].Inventory.Max, 1e-9)
	require.NotNil(t, snap.WeaponMod)
	assert.Equal(t, []string{"SmallMissileLauncher/CoilgunLauncher"}, snap.WeaponMod.StaticLaunchers)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	snap := loadSample(t)

	for _, name := range []string{"out.yaml", "out.json", "out.yaml.zst", "out.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, snap))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, snap, got)
		})
	}
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "out.txt"), schema.Snapshot{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecode_SchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ``},
		{"missing self", `structures: []
blocks: []`},
		{"unknown field", `self: 1
structures: []
blocks: []
extra: true`},
		{"bad size", `self: 1
structures:
  - {id: 1, size: huge, bounds: {min: [0, 0, 0], max: [1, 1, 1]}}
blocks:
  - {id: 1, structure: 1, type: Beacon, position: [0, 0, 0]}`},
		{"short position", `self: 1
structures:
  - {id: 1, size: large, bounds: {min: [0, 0, 0], max: [1, 1, 1]}}
blocks:
  - {id: 1, structure: 1, type: Beacon, position: [0, 0]}`},
		{"negative inventory", `self: 1
structures:
  - {id: 1, size: large, bounds: {min: [0, 0, 0], max: [1, 1, 1]}}
blocks:
  - {id: 1, structure: 1, type: CargoContainer, position: [0, 0, 0], inventory: {current: -1, max: 1}}`},
		{"zero extent", `self: 1
structures:
  - {id: 1, size: large, bounds: {min: [0, 0, 0], max: [1, 1, 1]}}
blocks:
  - {id: 1, structure: 1, type: Reactor, position: [0, 0, 0], extent: [0, 1, 1]}`},
		{"huge extent", `self: 1
structures:
  - {id: 1, size: large, bounds: {min: [0, 0, 0], max: [1, 1, 1]}}
blocks:
  - {id: 1, structure: 1, type: Reactor, position: [0, 0, 0], extent: [2097152, 2097152, 2097152]}`},
		{"bad mod key", `self: 1
structures:
  - {id: 1, size: large, bounds: {min: [0, 0, 0], max: [1, 1, 1]}}
blocks:
  - {id: 1, structure: 1, type: Beacon, position: [0, 0, 0]}
weapon_mod:
  turrets: [NoSlash]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), YAMLFormat)
			assert.Error(t, err)
		})
	}
}

func TestDecode_JSON(t *testing.T) {
	doc := `{
  "self": 7,
  "structures": [{"id": 1, "size": "small", "bounds": {"min": [0, 0, 0], "max": [1, 1, 1]}}],
  "blocks": [{"id": 7, "structure": 1, "type": "MyObjectBuilder_Beacon", "position": [0, 0, 0]}]
}`
	snap, err := Decode(strings.NewReader(doc), JSONFormat)
	require.NoError(t, err)
	assert.Equal(t, schema.BlockID(7), snap.Self)
	assert.Nil(t, snap.WeaponMod)
}

func TestCheck(t *testing.T) {
	base := func() schema.Snapshot {
		return schema.Snapshot{
			Self: 1,
			Structures: []schema.StructureRecord{
				{ID: 10, Size: schema.LargeGrid},
			},
			Blocks: []schema.BlockRecord{
				{ID: 1, Structure: 10, Type: "Beacon"},
			},
		}
	}

	require.NoError(t, Check(base()))

	tests := []struct {
		name   string
		mutate func(*schema.Snapshot)
		want   string
	}{
		{"duplicate structure", func(s *schema.Snapshot) {
			s.Structures = append(s.Structures, schema.StructureRecord{ID: 10, Size: schema.SmallGrid})
		}, "duplicate structure id 10"},
		{"invalid size", func(s *schema.Snapshot) {
			s.Structures[0].Size = "medium"
		}, "invalid size"},
		{"duplicate block", func(s *schema.Snapshot) {
			s.Blocks = append(s.Blocks, schema.BlockRecord{ID: 1, Structure: 10, Type: "Beacon"})
		}, "duplicate block id 1"},
		{"unknown structure", func(s *schema.Snapshot) {
			s.Blocks[0].Structure = 11
		}, "unknown structure 11"},
		{"unknown self", func(s *schema.Snapshot) {
			s.Self = 2
		}, "self: unknown block 2"},
		{"oversize fill", func(s *schema.Snapshot) {
			s.Structures[0].Fill = []schema.CellRange{{From: [3]int{0, 0, 0}, To: [3]int{1000, 1000, 1000}}}
		}, "fill range"},
		{"oversize extent", func(s *schema.Snapshot) {
			s.Blocks[0].Extent = &[3]int{2097152, 2097152, 2097152}
		}, "block 1: extent"},
		{"extent far past the cap", func(s *schema.Snapshot) {
			s.Blocks[0].Extent = &[3]int{1 << 30, 1 << 30, 1 << 30}
		}, "block 1: extent"},
		{"too many fill ranges", func(s *schema.Snapshot) {
			for i := range 5 {
				s.Structures[0].Fill = append(s.Structures[0].Fill, schema.CellRange{
					From: [3]int{0, 0, i * 4},
					To:   [3]int{1023, 1023, i*4 + 3},
				})
			}
		}, "structure 10: fill ranges and blocks span"},
		{"bad weapon key", func(s *schema.Snapshot) {
			s.WeaponMod = &schema.WeaponModRecord{Turrets: []string{"NoSlash"}}
		}, "weapon_mod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base()
			tt.mutate(&snap)
			err := Check(snap)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheck_JoinsErrors(t *testing.T) {
	snap := schema.Snapshot{
		Self:       9,
		Structures: []schema.StructureRecord{{ID: 1, Size: "tiny"}},
		Blocks:     []schema.BlockRecord{{ID: 1, Structure: 2, Type: "Beacon"}},
	}
	err := Check(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")
	assert.Contains(t, err.Error(), "unknown structure 2")
	assert.Contains(t, err.Error(), "unknown block 9")
}

func TestRangeVolume(t *testing.T) {
	assert.Equal(t, int64(1), rangeVolume(schema.CellRange{}))
	assert.Equal(t, int64(27), rangeVolume(schema.CellRange{From: [3]int{2, 2, 2}, To: [3]int{0, 0, 0}}))
	assert.Greater(t, rangeVolume(schema.CellRange{To: [3]int{1 << 20, 1 << 20, 1 << 20}}), int64(maxFillCells))
}

func TestExtentVolume(t *testing.T) {
	assert.Equal(t, int64(1), extentVolume(nil))
	assert.Equal(t, int64(6), extentVolume(&[3]int{1, 2, 3}))
	assert.Equal(t, int64(2), extentVolume(&[3]int{0, -4, 2}))
	assert.Greater(t, extentVolume(&[3]int{1 << 30, 1 << 30, 1 << 30}), int64(maxFillCells))
}

func TestNameFromPath(t *testing.T) {
	tests := map[string]string{
		"outpost.yaml":           "outpost",
		"bases/outpost.yaml.zst": "outpost",
		"/tmp/Frigate.Mk2.json":  "Frigate.Mk2",
		"carrier.JSON.ZST":       "carrier",
		"testdata/sample.yml":    "sample",
	}
	for path, expected := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, expected, NameFromPath(path))
		})
	}
}
