package planner_test

import (
	"testing"

	"github.com/steveyegge/optiq/internal/planner"
	"github.com/stretchr/testify/assert"
)

// TestScenarioAIndexLookupCost reproduces the spec's worked example: a
// 1,000,000-row table, 16384-byte blocks, 200-byte rows, a unique
// integer index, and a 1-column read set.
func TestScenarioAIndexLookupCost(t *testing.T) {
	stats := planner.TableStats{
		RecordBufferLength: 200,
		Records:             1_000_000,
		BlockSize:           16384,
	}

	height := planner.IndexHeight(stats)
	assert.InDelta(t, 3, height, 0.5)

	lookupCost := planner.IndexLookupCost(height)
	assert.InDelta(t, 2.0, lookupCost, 0.05)

	rangeCost := planner.RangeScanCost(1, 1, 1, 200, height, false)
	refCost := planner.RefAccessCost(rangeCost)
	assert.InDelta(t, 1.95, refCost, 0.15)
}

func TestEstimateSortCostOnSingleRow(t *testing.T) {
	// spec §8 boundary behaviour: a 1-row input costs exactly
	// kSortOneRowCost.
	cost := planner.EstimateSortCost(1, 1)
	assert.InDelta(t, 0.1, cost, 1e-9)
}

func TestJoinCardinalityInner(t *testing.T) {
	rows := planner.JoinCardinality(planner.JoinInner, 100, 10, 0.5, 0)
	assert.Equal(t, 500.0, rows)
}

func TestJoinCardinalityLeftOuterNeverGoesBelowLeftRows(t *testing.T) {
	rows := planner.JoinCardinality(planner.JoinLeft, 100, 10, 0.0, 0)
	assert.Equal(t, 100.0, rows, "every left row must survive an outer join even with zero selectivity")
}

func TestJoinCardinalityAnti(t *testing.T) {
	rows := planner.JoinCardinality(planner.JoinAnti, 100, 10, 0, 0.9)
	assert.InDelta(t, 10.0, rows, 1e-9)
}

func TestRowReadCostClampsNegativeRows(t *testing.T) {
	cost := planner.RowReadCost(-5, 1, 100)
	assert.Equal(t, 0.0, cost)
}
