package planner

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/optiq/internal/config"
	"github.com/steveyegge/optiq/internal/obs"
)

// TableStatsSource resolves a table's cardinality/layout statistics
// (spec §6 "Table::stats", "Table::record_buffer_length").
type TableStatsSource interface {
	Stats(table string) TableStats
}

// ReadSet reports how many fields and bytes of a table a node actually
// reads, for the row-read-cost formulas; callers that don't track a
// projection this precisely can return a conservative default.
type ReadSet func(table string) (fields int, bytes int64)

// EstimateContext bundles the external collaborators every estimate_*
// function needs (spec §6): table statistics, histograms, the
// currently-in-scope read set, and an optional trace buffer that
// records each REF estimate (index height, rows, cost) when
// config.OptimizerTraceEnabled is true.
type EstimateContext struct {
	Stats      TableStatsSource
	Histograms func(table, column string) (Histogram, bool)
	Reads      ReadSet
	Trace      *obs.TraceBuffer
}

func (c EstimateContext) readSet(table string) (int, int64) {
	if c.Reads == nil {
		return 1, 8
	}
	return c.Reads(table)
}

func (c EstimateContext) trace(format string, args ...any) {
	if c.Trace == nil || !config.OptimizerTraceEnabled() {
		return
	}
	c.Trace.Append(fmt.Sprintf(format, args...))
}

// EstimateAccessPath computes num_output_rows and cost for path in
// place, dispatching on its Variant. It assumes every child of path
// already carries its own estimate (spec §4.6 "pure functions of the
// plan node and its children's already-computed num_output_rows/cost");
// callers estimate bottom-up (EstimateTree does this for a whole
// subtree).
func EstimateAccessPath(path *AccessPath, ctx EstimateContext) {
	switch payload := path.Payload().(type) {
	case *TableScanPayload:
		estimateTableScan(path, payload.Table, ctx)
	case *RefPayload:
		estimateRef(path, payload, ctx)
	case *ConstTablePayload:
		path.NumOutputRows = 1
		path.Cost = 0
	case *FilterPayload:
		estimateFilter(path, payload, ctx)
	case *SortPayload:
		estimateSort(path, payload)
	case *AggregatePayload:
		estimateAggregate(path, payload)
	case *LimitOffsetPayload:
		estimateLimitOffset(path, payload)
	case *NestedLoopJoinPayload:
		estimateNestedLoopJoin(path, payload)
	case *HashJoinPayload:
		estimateHashJoin(path, payload)
	case *MaterializePayload:
		estimateMaterialize(path, payload, ctx)
	default:
		// Variants with no cost-bearing payload (UNQUALIFIED_COUNT,
		// TABLE_VALUE_CONSTRUCTOR, …) or ones this package hasn't been
		// asked to cost yet: leave the sentinel in place rather than
		// guessing.
	}
}

func estimateTableScan(path *AccessPath, table string, ctx EstimateContext) {
	stats := ctx.Stats.Stats(table)
	fields, bytes := ctx.readSet(table)
	rows := clampNonNegative(stats.Records)
	path.NumOutputRows = rows
	path.Cost = RowReadCost(rows, fields, bytes)
}

func estimateRef(path *AccessPath, payload *RefPayload, ctx EstimateContext) {
	stats := ctx.Stats.Stats(payload.Table)
	height := IndexHeight(stats)
	fields, bytes := ctx.readSet(payload.Table)

	rows := 1.0
	if !payload.Key.IsUnique {
		rows = clampNonNegative(stats.Records / math.Max(1, estimateKeyCardinality(stats)))
		if rows < 1 {
			rows = 1
		}
	}

	nonCoveringNonClustered := !payload.Key.IsUnique
	scanCost := RangeScanCost(1, rows, fields, bytes, height, nonCoveringNonClustered)
	path.NumOutputRows = rows
	path.Cost = RefAccessCost(scanCost)
	ctx.trace("ref_access(%s): height=%.2f rows=%.2f cost=%.4f", payload.Table, height, rows, path.Cost)
}

// estimateKeyCardinality is a coarse stand-in for per-key distinct-
// value stats when the caller hasn't supplied a histogram: it assumes
// a key groups rows into roughly √N buckets, the same fallback the
// aggregate estimator uses when no better signal exists.
func estimateKeyCardinality(stats TableStats) float64 {
	return math.Sqrt(clampNonNegative(stats.Records))
}

func estimateFilter(path *AccessPath, payload *FilterPayload, ctx EstimateContext) {
	var nRows float64
	if payload.Child != nil {
		nRows = clampNonNegative(payload.Child.NumOutputRows)
	}
	path.NumOutputRows = nRows
	childCost := 0.0
	if payload.Child != nil {
		childCost = clampNonNegative(payload.Child.Cost)
	}
	path.Cost = childCost + EstimateFilterCost(nRows, nil)
}

func estimateSort(path *AccessPath, payload *SortPayload) {
	nRows := 0.0
	childCost := 0.0
	if payload.Child != nil {
		nRows = clampNonNegative(payload.Child.NumOutputRows)
		childCost = clampNonNegative(payload.Child.Cost)
	}
	outputRows := nRows
	if payload.Limit > 0 && float64(payload.Limit) < outputRows {
		outputRows = float64(payload.Limit)
	}
	path.NumOutputRows = outputRows
	path.Cost = childCost + EstimateSortCost(nRows, outputRows)
}

func estimateAggregate(path *AccessPath, payload *AggregatePayload) {
	nRows := 0.0
	childCost := 0.0
	if payload.Child != nil {
		nRows = clampNonNegative(payload.Child.NumOutputRows)
		childCost = clampNonNegative(payload.Child.Cost)
	}
	// Without a group-field list at this layer (that lives in the
	// query block the optimizer owns), EstimateDistinctRows is given no
	// fields and returns min(1, N): a single output row, as for an
	// aggregate without GROUP BY.
	rows := AggregateOutputRows(nRows, nil, payload.Rollup)
	path.NumOutputRows = rows
	path.Cost = childCost + kAggregateOneRowCost*nRows
}

func estimateLimitOffset(path *AccessPath, payload *LimitOffsetPayload) {
	childRows := 0.0
	childCost := 0.0
	if payload.Child != nil {
		childRows = clampNonNegative(payload.Child.NumOutputRows)
		childCost = clampNonNegative(payload.Child.Cost)
	}
	remaining := childRows - float64(payload.Offset)
	if remaining < 0 {
		remaining = 0
	}
	if payload.Limit > 0 && float64(payload.Limit) < remaining {
		remaining = float64(payload.Limit)
	}
	path.NumOutputRows = remaining
	path.Cost = childCost
}

func estimateNestedLoopJoin(path *AccessPath, payload *NestedLoopJoinPayload) {
	left, right := rowsOf(payload.Outer), rowsOf(payload.Inner)
	path.NumOutputRows = JoinCardinality(payload.JoinType, left, right, 1.0, 1.0)
	path.Cost = costOf(payload.Outer) + left*costOf(payload.Inner)
}

func estimateHashJoin(path *AccessPath, payload *HashJoinPayload) {
	left, right := rowsOf(payload.Build), rowsOf(payload.Probe)
	sel := payload.Predicate.Selectivity
	path.NumOutputRows = JoinCardinality(payload.Predicate.Type, left, right, sel, 1.0)
	path.Cost = costOf(payload.Build) + costOf(payload.Probe)
}

func estimateMaterialize(path *AccessPath, payload *MaterializePayload, ctx EstimateContext) {
	var childCosts []float64
	var outputRows float64
	if payload.TablePath != nil {
		childCosts = append(childCosts, costOf(payload.TablePath))
		outputRows = rowsOf(payload.TablePath)
	}
	scanCost := 0.0
	if payload.Params != nil {
		scanCost = materializeHandlerCost(outputRows, ctx)
	}
	path.NumOutputRows = outputRows
	path.Cost = MaterializationCost(childCosts, outputRows, scanCost)
}

// materializeHandlerCost picks between an in-memory and on-disk temp-
// table scan cost depending on config.MaxHeapTableSize, matching the
// config contract §6 names for max_heap_table_size.
func materializeHandlerCost(outputRows float64, ctx EstimateContext) float64 {
	const assumedRowBytes = 64
	estimatedBytes := int64(outputRows * assumedRowBytes)
	if estimatedBytes <= config.MaxHeapTableSize() {
		return kReadOneRowCost * outputRows
	}
	return kReadOneRowCost * 4 * outputRows
}

func rowsOf(p *AccessPath) float64 {
	if p == nil {
		return 0
	}
	return clampNonNegative(p.NumOutputRows)
}

func costOf(p *AccessPath) float64 {
	if p == nil {
		return 0
	}
	return clampNonNegative(p.Cost)
}

// EstimateTree runs EstimateAccessPath bottom-up over an entire plan
// tree (post-order, so every node's children are estimated first).
func EstimateTree(root *AccessPath, ctx EstimateContext) {
	WalkPostOrder(root, EntireTree, nil, func(p *AccessPath, _ *RelExpr) bool {
		EstimateAccessPath(p, ctx)
		return false
	})
}

// EstimateAll estimates a batch of independent query-block roots
// concurrently: the cost model's estimators are pure functions of
// already-computed child values within one tree, so distinct roots
// share no mutable state and can run on separate goroutines (spec §5
// "query planning runs single-threaded within a query's compilation
// context" — that's per root; nothing stops distinct roots fanning
// out).
func EstimateAll(goCtx context.Context, roots []*AccessPath, ctx EstimateContext) error {
	g, _ := errgroup.WithContext(goCtx)
	for _, root := range roots {
		root := root
		g.Go(func() error {
			EstimateTree(root, ctx)
			return nil
		})
	}
	return g.Wait()
}
