package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunScore tests the scoring entry point in both modes.
func TestRunScore(t *testing.T) {
	ctx := context.Background()
	host := sampleHost(t)

	t.Run("single grid", func(t *testing.T) {
		cfg := testConfig(schema.StandardProfile)
		result, err := RunScore(ctx, cfg, host)
		require.NoError(t, err)

		require.Len(t, result.Structures, 1)
		assert.Equal(t, schema.StructureID(1), result.Structures[0].ID)
		assert.InDelta(t, result.Structures[0].Score, result.Total, delta)
		assert.True(t, result.CapabilityAvailable)
		assert.NotEmpty(t, result.RunID)
		assert.Positive(t, result.Instructions)
		assert.False(t, result.MultiGrid)
	})

	t.Run("multi grid", func(t *testing.T) {
		cfg := testConfig(schema.StandardProfile)
		cfg.MultiGrid = true
		result, err := RunScore(ctx, cfg, host)
		require.NoError(t, err)

		require.Len(t, result.Structures, 2)
		assert.InDelta(t, result.Structures[0].Score+result.Structures[1].Score, result.Total, delta)
		assert.True(t, result.MultiGrid)
		assert.Equal(t, schema.StandardProfile, result.Profile)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := RunScore(cancelled, testConfig(schema.StandardProfile), host)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unique run ids", func(t *testing.T) {
		cfg := testConfig(schema.StandardProfile)
		a, err := RunScore(ctx, cfg, host)
		require.NoError(t, err)
		b, err := RunScore(ctx, cfg, host)
		require.NoError(t, err)
		assert.NotEqual(t, a.RunID, b.RunID)
	})
}

// TestRunCount tests the walker-only entry point.
func TestRunCount(t *testing.T) {
	ctx := context.Background()
	host := sampleHost(t)

	tests := []struct {
		name     string
		multi    bool
		override int
		want     []schema.CellCount
	}{
		{"single", false, 0, []schema.CellCount{{ID: 1, Name: "Outpost", Cells: 27}}},
		{"single override", false, 99, []schema.CellCount{{ID: 1, Name: "Outpost", Cells: 99}}},
		{"multi", true, 0, []schema.CellCount{{ID: 1, Name: "Outpost", Cells: 27}, {ID: 2, Name: "Scout", Cells: 5}}},
		{"multi override", true, 99, []schema.CellCount{{ID: 1, Name: "Outpost", Cells: 99}, {ID: 2, Name: "Scout", Cells: 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(schema.StandardProfile)
			cfg.MultiGrid = tt.multi
			cfg.CellOverride = tt.override

			result, err := RunCount(ctx, cfg, host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Counts)
		})
	}
}

func TestRunCount_UnknownSelfStructure(t *testing.T) {
	host := new(contract.MockHost)
	host.On("Self").Return(schema.Block{ID: 1, Structure: 9})
	host.On("Blocks").Return([]schema.Block{})
	host.On("Structure", schema.StructureID(9)).Return(nil, false)

	_, err := RunCount(context.Background(), testConfig(schema.StandardProfile), host)
	assert.ErrorIs(t, err, ErrUnknownStructure)
	host.AssertExpectations(t)
}

func TestRunScore_UnknownSelfStructure(t *testing.T) {
	host := new(contract.MockHost)
	host.On("Self").Return(schema.Block{ID: 1, Structure: 9})
	host.On("Structure", schema.StructureID(9)).Return(nil, false)

	_, err := RunScore(context.Background(), testConfig(schema.StandardProfile), host)
	assert.ErrorIs(t, err, ErrUnknownStructure)
}

// TestExecuteScore checks the text report written for a single grid.
func TestExecuteScore(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.StandardProfile)

	require.NoError(t, ExecuteScore(context.Background(), cfg, sampleHost(t), &buf))

	out := buf.String()
	assert.Contains(t, out, "Grid threat score: ")
	assert.Contains(t, out, " - antenna: 5.25\n")
	assert.Contains(t, out, " - powergen: 1.97\n")
	assert.NotContains(t, out, " - weapons:")
	assert.Contains(t, out, "Runtime: ")
}

func TestExecuteScore_MultiGrid(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.StandardProfile)
	cfg.MultiGrid = true

	require.NoError(t, ExecuteScore(context.Background(), cfg, sampleHost(t), &buf))

	out := buf.String()
	assert.Contains(t, out, "Threat score: ")
	assert.Contains(t, out, "Threat score for Outpost: ")
	assert.Contains(t, out, "Threat score for Scout: ")
}

func TestExecuteCount(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.StandardProfile)
	cfg.MultiGrid = true

	require.NoError(t, ExecuteCount(context.Background(), cfg, sampleHost(t), &buf))

	out := buf.String()
	assert.Contains(t, out, "Occupied cells for Outpost: 27\n")
	assert.Contains(t, out, "Occupied cells for Scout: 5\n")
}

func TestExecuteCount_BudgetExceeded(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.StandardProfile)
	cfg.Budget = 5

	err := ExecuteCount(context.Background(), cfg, sampleHost(t), &buf)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Empty(t, buf.String())
}
