package planner_test

import (
	"context"
	"testing"

	"github.com/steveyegge/optiq/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsSource struct {
	byTable map[string]planner.TableStats
}

func (f fakeStatsSource) Stats(table string) planner.TableStats { return f.byTable[table] }

func TestEstimateTreePropagatesRowsAndCostBottomUp(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	filtered := planner.MakeFilter(scan, "status = 'open'", false)
	limited := planner.MakeLimitOffset(filtered, 10, 0, false, false)

	ctx := planner.EstimateContext{
		Stats: fakeStatsSource{byTable: map[string]planner.TableStats{
			"orders": {RecordBufferLength: 100, Records: 500, BlockSize: 16384},
		}},
	}
	planner.EstimateTree(limited, ctx)

	require.GreaterOrEqual(t, scan.NumOutputRows, 0.0)
	assert.Equal(t, scan.NumOutputRows, filtered.NumOutputRows)
	assert.Equal(t, 10.0, limited.NumOutputRows, "limit must cap the filtered row count")
	assert.Greater(t, limited.Cost, scan.Cost, "downstream cost accumulates the child's cost")
}

func TestEstimateLimitOffsetBeyondChildRowsReportsZero(t *testing.T) {
	// spec §8 boundary behaviour: offset >= child_rows reports 0 rows.
	scan := planner.MakeTableScan("t")
	scan.NumOutputRows = 5
	scan.Cost = 1
	limited := planner.MakeLimitOffset(scan, 0, 10, false, false)

	planner.EstimateAccessPath(limited, planner.EstimateContext{})
	assert.Equal(t, 0.0, limited.NumOutputRows)
}

func TestEstimateAllRunsIndependentRootsConcurrently(t *testing.T) {
	roots := make([]*planner.AccessPath, 4)
	stats := map[string]planner.TableStats{}
	for i := range roots {
		table := string(rune('a' + i))
		stats[table] = planner.TableStats{RecordBufferLength: 50, Records: float64(i + 1), BlockSize: 4096}
		roots[i] = planner.MakeTableScan(table)
	}
	ctx := planner.EstimateContext{Stats: fakeStatsSource{byTable: stats}}

	err := planner.EstimateAll(context.Background(), roots, ctx)
	require.NoError(t, err)
	for i, root := range roots {
		assert.Equal(t, float64(i+1), root.NumOutputRows)
	}
}

func TestAccessPathUnknownSentinelBeforeEstimation(t *testing.T) {
	p := planner.MakeTableScan("t")
	assert.Equal(t, planner.UnknownSentinel, p.NumOutputRows)
	assert.Equal(t, planner.UnknownSentinel, p.Cost)
}
