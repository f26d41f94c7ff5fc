package planner_test

import (
	"testing"

	"github.com/steveyegge/optiq/internal/planner"
	"github.com/stretchr/testify/assert"
)

// TestScenarioFRollupRowEstimate reproduces the spec's worked example:
// 3 grouping fields, aggregate cardinality 1000 → m = 1000^(1/3) = 10,
// rollup rows = 1 + 10 + 100 = 111, total output = 1000 + 111 = 1111.
func TestScenarioFRollupRowEstimate(t *testing.T) {
	rollupRows := planner.RollupRows(1000, 3)
	assert.InDelta(t, 111, rollupRows, 1e-6)

	total := 1000 + rollupRows
	assert.InDelta(t, 1111, total, 1e-6)
}

func TestRollupRowsZeroFieldsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, planner.RollupRows(1000, 0))
}

func TestRollupRowsInterpolatesAcrossTheLargeSetBoundary(t *testing.T) {
	below := planner.RollupRows(10000, 50)
	at := planner.RollupRows(10000, 52)
	above := planner.RollupRows(10000, 55)
	assert.Greater(t, below, 0.0)
	assert.Greater(t, at, 0.0)
	assert.Greater(t, above, 0.0)
}
