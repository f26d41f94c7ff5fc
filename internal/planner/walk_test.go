package planner_test

import (
	"testing"

	"github.com/steveyegge/optiq/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTree() *planner.AccessPath {
	scan := planner.MakeTableScan("t")
	filtered := planner.MakeFilter(scan, "b < 10", false)
	return planner.MakeFilter(filtered, "a > 1", false)
}

func TestWalkPreOrderVisitsParentBeforeChildren(t *testing.T) {
	root := buildSampleTree()
	var order []planner.Variant
	planner.Walk(root, planner.EntireTree, nil, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		order = append(order, p.Type)
		return false
	})
	require.Len(t, order, 3)
	assert.Equal(t, planner.Filter, order[0])
	assert.Equal(t, planner.Filter, order[1])
	assert.Equal(t, planner.TableScan, order[2])
}

func TestWalkPostOrderIsPreOrderReversed(t *testing.T) {
	root := buildSampleTree()
	var pre, post []*planner.AccessPath
	planner.Walk(root, planner.EntireTree, nil, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		pre = append(pre, p)
		return false
	})
	planner.WalkPostOrder(root, planner.EntireTree, nil, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		post = append(post, p)
		return false
	})
	require.Len(t, post, len(pre))
	for i := range pre {
		assert.Same(t, pre[i], post[len(post)-1-i])
	}
}

func TestWalkPreOrderSkipsSubtreeOnTrueReturn(t *testing.T) {
	root := buildSampleTree()
	var visited int
	planner.Walk(root, planner.EntireTree, nil, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited++
		return p.Type == planner.Filter && visited == 1
	})
	assert.Equal(t, 1, visited, "returning true on the root must prevent any descent")
}

func TestWalkStopAtMaterializationDoesNotDescend(t *testing.T) {
	scan := planner.MakeTableScan("t")
	mat := planner.MakeMaterialize(scan, nil)
	wrapper := planner.MakeFilter(mat, "x > 0", false)

	var visited []planner.Variant
	planner.Walk(wrapper, planner.StopAtMaterialization, nil, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited = append(visited, p.Type)
		return false
	})
	assert.Equal(t, []planner.Variant{planner.Filter, planner.Materialize}, visited)
}

func TestWalkEntireTreeDescendsThroughMaterialize(t *testing.T) {
	scan := planner.MakeTableScan("t")
	mat := planner.MakeMaterialize(scan, nil)

	var visited []planner.Variant
	planner.Walk(mat, planner.EntireTree, nil, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited = append(visited, p.Type)
		return false
	})
	assert.Equal(t, []planner.Variant{planner.Materialize, planner.TableScan}, visited)
}

func TestWalkEntireQueryBlockNeverDescendsThroughMaterialize(t *testing.T) {
	scan := planner.MakeTableScan("t")
	mat := planner.MakeMaterialize(scan, nil)
	join := planner.NewLeafRelExpr("t", planner.TableBit(0))

	var visited []planner.Variant
	planner.Walk(mat, planner.EntireQueryBlock, join, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited = append(visited, p.Type)
		return false
	})
	assert.Equal(t, []planner.Variant{planner.Materialize}, visited)
}

func TestWalkEntireQueryBlockDescendsThroughStreamOnMatchingJoin(t *testing.T) {
	scan := planner.MakeTableScan("t")
	join := planner.NewLeafRelExpr("t", planner.TableBit(0))
	stream := planner.MakeStream(scan, join, "tmp", 0, false)

	var visited []planner.Variant
	planner.Walk(stream, planner.EntireQueryBlock, join, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited = append(visited, p.Type)
		return false
	})
	assert.Equal(t, []planner.Variant{planner.Stream, planner.TableScan}, visited)
}

func TestWalkEntireQueryBlockStopsAtStreamOnDifferentJoin(t *testing.T) {
	scan := planner.MakeTableScan("t")
	streamJoin := planner.NewLeafRelExpr("t", planner.TableBit(0))
	outerJoin := planner.NewLeafRelExpr("u", planner.TableBit(1))
	stream := planner.MakeStream(scan, streamJoin, "tmp", 0, false)

	var visited []planner.Variant
	planner.Walk(stream, planner.EntireQueryBlock, outerJoin, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited = append(visited, p.Type)
		return false
	})
	assert.Equal(t, []planner.Variant{planner.Stream}, visited)
}

func TestWalkEntireQueryBlockGatesAppendChildrenIndividually(t *testing.T) {
	matchingJoin := planner.NewLeafRelExpr("t", planner.TableBit(0))
	otherJoin := planner.NewLeafRelExpr("u", planner.TableBit(1))
	inBlock := planner.MakeTableScan("t")
	outOfBlock := planner.MakeTableScan("u")
	app := planner.MakeAppend([]planner.AppendChild{
		{Child: inBlock, Join: matchingJoin},
		{Child: outOfBlock, Join: otherJoin},
	})

	var visited []planner.Variant
	planner.Walk(app, planner.EntireQueryBlock, matchingJoin, func(p *planner.AccessPath, _ *planner.RelExpr) bool {
		visited = append(visited, p.Type)
		return false
	})
	assert.Equal(t, []planner.Variant{planner.Append, planner.TableScan}, visited)
}
