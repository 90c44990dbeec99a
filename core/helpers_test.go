package core

import (
	"testing"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// testConfig returns a validated-looking config for a profile with default settings.
func testConfig(profile schema.WeightProfile) *contract.Config {
	return &contract.Config{
		Profile:         profile,
		Weights:         schema.GetDefaultWeights(profile),
		ModdedBlocks:    map[string]struct{}{},
		LabelThresholds: schema.DefaultLabelThresholds(),
		Precision:       2,
		Output:          schema.TextOut,
	}
}

// newHost builds a host from an in-memory snapshot.
func newHost(t testing.TB, snap schema.Snapshot) contract.Host {
	t.Helper()
	host, err := snapshot.NewWorld(snap)
	require.NoError(t, err)
	return host
}

// sampleHost loads the shared two-grid snapshot.
func sampleHost(t testing.TB) contract.Host {
	t.Helper()
	snap, err := snapshot.ReadFile("../internal/snapshot/testdata/sample.yaml")
	require.NoError(t, err)
	return newHost(t, snap)
}

// testGrid is a Structure over explicit cell sets.
type testGrid struct {
	occupied map[schema.Cell]bool
	devices  map[schema.Cell]schema.BlockID
}

var _ contract.Structure = &testGrid{} // Compile-time check

func newBoxGrid(nx, ny, nz int) *testGrid {
	g := &testGrid{occupied: make(map[schema.Cell]bool), devices: make(map[schema.Cell]schema.BlockID)}
	for x := range nx {
		for y := range ny {
			for z := range nz {
				g.occupied[schema.Cell{X: x, Y: y, Z: z}] = true
			}
		}
	}
	return g
}

func (g *testGrid) ID() schema.StructureID      { return 1 }
func (g *testGrid) Name() string                { return "" }
func (g *testGrid) SizeClass() schema.SizeClass { return schema.LargeGrid }
func (g *testGrid) IsStatic() bool              { return false }
func (g *testGrid) BoundingBox() schema.Box     { return schema.Box{} }

func (g *testGrid) CubeExists(c schema.Cell) bool { return g.occupied[c] }

func (g *testGrid) DeviceAt(c schema.Cell) (schema.BlockID, bool) {
	id, ok := g.devices[c]
	return id, ok
}
