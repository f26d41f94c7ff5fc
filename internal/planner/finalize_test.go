package planner_test

import (
	"testing"

	"github.com/steveyegge/optiq/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFinalizeCoalescesAdjacentFiltersWithMatchingSubqueryFlag(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	inner := planner.MakeFilter(scan, "status = 'open'", false)
	outer := planner.MakeFilter(inner, "total > 100", false)
	qb := planner.NewQueryBlock(outer, []string{"orders.id"})

	result, err := planner.PlanFinalize(qb, planner.FinalizeContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FiltersCoalesced)

	fp, ok := qb.Root.Payload().(*planner.FilterPayload)
	require.True(t, ok)
	assert.Equal(t, "(total > 100) AND (status = 'open')", fp.Condition)
	assert.Same(t, scan, fp.Child, "the intermediate filter must be spliced out entirely")
}

func TestPlanFinalizeDoesNotCoalesceFiltersWithDifferentSubqueryFlags(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	inner := planner.MakeFilter(scan, "status = 'open'", true)
	outer := planner.MakeFilter(inner, "total > 100", false)
	qb := planner.NewQueryBlock(outer, nil)

	result, err := planner.PlanFinalize(qb, planner.FinalizeContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.FiltersCoalesced)
}

func TestPlanFinalizeIsIdempotent(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	inner := planner.MakeFilter(scan, "status = 'open'", false)
	outer := planner.MakeFilter(inner, "total > 100", false)
	qb := planner.NewQueryBlock(outer, nil)

	first, err := planner.PlanFinalize(qb, planner.FinalizeContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.FiltersCoalesced)

	second, err := planner.PlanFinalize(qb, planner.FinalizeContext{})
	require.NoError(t, err)
	assert.Equal(t, planner.FinalizeResult{}, second, "a repeat call on an already-finalized block is a no-op")
}

func TestPlanFinalizeInstantiatesTempTableForStreamAndRewritesFilterAbove(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	stream := planner.MakeStream(scan, nil, "", 0, false)
	filtered := planner.MakeFilter(stream, "orders.id", false)
	qb := planner.NewQueryBlock(filtered, []string{"orders.id"})

	var created []*planner.TempTableParams
	fctx := planner.FinalizeContext{
		CreateTempTable: func(params *planner.TempTableParams) (string, error) {
			created = append(created, params)
			return "tmp_1", nil
		},
	}

	result, err := planner.PlanFinalize(qb, fctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TempTablesCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "tmp_1", created[0].Target)

	sp, ok := stream.Payload().(*planner.StreamPayload)
	require.True(t, ok)
	require.NotNil(t, sp.TempTableParams)
	assert.Equal(t, "tmp_1", sp.TempTableParams.Target)

	fp, ok := filtered.Payload().(*planner.FilterPayload)
	require.True(t, ok)
	assert.Equal(t, "tmp.col0", fp.Condition, "the filter above the stream must see the rewritten column name")
	assert.Equal(t, []string{"tmp.col0"}, qb.Projection, "the query block's own projection is rewritten too")
}

func TestPlanFinalizeMaterializeAboveWindowReusesWindowTempTable(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	window := planner.MakeWindowing(scan, 0, false)
	materialize := planner.MakeMaterialize(window, nil)
	qb := planner.NewQueryBlock(materialize, []string{"orders.id"})

	calls := 0
	fctx := planner.FinalizeContext{
		CreateTempTable: func(params *planner.TempTableParams) (string, error) {
			calls++
			return "tmp_window", nil
		},
	}

	result, err := planner.PlanFinalize(qb, fctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "only the window's own temp table should be created")
	assert.Equal(t, 1, result.TempTablesCreated)

	wp, ok := window.Payload().(*planner.WindowingPayload)
	require.True(t, ok)
	mp, ok := materialize.Payload().(*planner.MaterializePayload)
	require.True(t, ok)
	assert.Same(t, wp.TempTableParams, mp.Params)
}

func TestPlanFinalizeBuildsFilesortAndFlagsRowIDsWhenOrderItemNotProjected(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	sorted := planner.MakeSort(scan, []string{"orders.created_at"}, false, false, 0)
	qb := planner.NewQueryBlock(sorted, []string{"orders.id"})

	result, err := planner.PlanFinalize(qb, planner.FinalizeContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesortsBuilt)

	sp, ok := sorted.Payload().(*planner.SortPayload)
	require.True(t, ok)
	require.NotNil(t, sp.Filesort)
	assert.False(t, sp.Filesort.AddonFields)
	assert.True(t, sp.ForceSortRowIDs)
}

func TestPlanFinalizeFilesortUsesAddonFieldsWhenOrderItemIsProjected(t *testing.T) {
	scan := planner.MakeTableScan("orders")
	sorted := planner.MakeSort(scan, []string{"orders.id"}, false, false, 0)
	qb := planner.NewQueryBlock(sorted, []string{"orders.id"})

	_, err := planner.PlanFinalize(qb, planner.FinalizeContext{})
	require.NoError(t, err)

	sp, ok := sorted.Payload().(*planner.SortPayload)
	require.True(t, ok)
	assert.True(t, sp.Filesort.AddonFields)
	assert.False(t, sp.ForceSortRowIDs)
}
