package planner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QueryBlock is the finalisation unit spec §4.7 operates on: one query
// block's root access path together with its projection list and the
// idempotency flag that makes a repeat PlanFinalize call a no-op
// (spec §6, §8 property 7).
type QueryBlock struct {
	Root          *AccessPath
	Projection    []string
	NeedsFinalize bool
}

// NewQueryBlock wraps root for finalisation. NeedsFinalize starts true;
// PlanFinalize clears it once the block has been through the pipeline.
func NewQueryBlock(root *AccessPath, projection []string) *QueryBlock {
	return &QueryBlock{Root: root, Projection: append([]string(nil), projection...), NeedsFinalize: true}
}

// FinalizeContext supplies the Storage_engine-side temp table factory.
// It carries no scan-cost callback. CreateTempTable may be nil in tests
// that don't exercise materialisation.
type FinalizeContext struct {
	CreateTempTable func(params *TempTableParams) (string, error)
}

// FinalizeResult reports what the pipeline actually did, mostly for
// tests and optimizer-trace consumers.
type FinalizeResult struct {
	FiltersCoalesced  int
	TempTablesCreated int
	FilesortsBuilt    int
}

// PlanFinalize runs the five ordered phases of spec §4.7 over qb.Root:
// coalesce adjacent filters, instantiate delayed temp tables, rewrite
// item references against the resulting copy maps, build filesorts,
// and cache constant conditions. It is idempotent: a block whose
// NeedsFinalize is already false returns immediately.
func PlanFinalize(qb *QueryBlock, fctx FinalizeContext) (FinalizeResult, error) {
	var result FinalizeResult
	if !qb.NeedsFinalize {
		return result, nil
	}

	qb.Root = coalesceFilters(qb.Root, &result)

	rewrites, err := instantiateTempTables(qb.Root, qb.Projection, fctx, &result)
	if err != nil {
		return result, fmt.Errorf("planner: instantiating temp tables: %w", err)
	}
	if len(rewrites) > 0 {
		qb.Projection = RewriteAll(qb.Projection, rewrites)
		applyRewrites(qb.Root, rewrites)
	}

	buildFilesorts(qb.Root, qb.Projection, &result)
	cacheConstantConditions(qb.Root)

	qb.NeedsFinalize = false
	return result, nil
}

// coalesceFilters merges a FILTER directly above another FILTER into
// one node, provided both agree on whether subqueries in the condition
// must materialize first (spec §4.7 step 1). It runs post-order so a
// chain of three or more filters collapses in one pass.
func coalesceFilters(p *AccessPath, result *FinalizeResult) *AccessPath {
	if p == nil {
		return nil
	}
	MapChildren(p, func(c *AccessPath) *AccessPath { return coalesceFilters(c, result) })

	fp, ok := p.payload.(*FilterPayload)
	if !ok || fp.Child == nil {
		return p
	}
	childFP, ok := fp.Child.payload.(*FilterPayload)
	if !ok || childFP.MaterializeSubqueries != fp.MaterializeSubqueries {
		return p
	}
	// childFP.Child is already maximally coalesced by the recursive
	// MapChildren call above, so one merge here is enough even across
	// a chain of three or more compatible filters.
	fp.Condition = fmt.Sprintf("(%s) AND (%s)", fp.Condition, childFP.Condition)
	fp.Child = childFP.Child
	result.FiltersCoalesced++
	return p
}

// instantiateTempTables walks the tree looking for WINDOW, MATERIALIZE,
// STREAM, and TEMPTABLE_AGGREGATE nodes without a temp table already
// attached, and builds one from the query block's projection (spec
// §4.7 step 2), as rewritten by every temp table already built below
// it. A MATERIALIZE sitting directly above a WINDOW reuses
// the window's own output table rather than creating a second one.
func instantiateTempTables(root *AccessPath, projection []string, fctx FinalizeContext, result *FinalizeResult) (RewriteMap, error) {
	combined := RewriteMap{}
	var walkErr error

	var visit func(p *AccessPath)
	visit = func(p *AccessPath) {
		if p == nil || walkErr != nil {
			return
		}
		for _, c := range children(p) {
			visit(c)
		}
		if walkErr != nil {
			return
		}

		switch v := p.payload.(type) {
		case *WindowingPayload:
			if v.TempTableParams != nil {
				return
			}
			params, rm, err := materializeProjection(projection, fctx, DedupNone)
			if err != nil {
				walkErr = err
				return
			}
			v.TempTableParams = params
			combined = combined.Merge(rm)
			projection = RewriteAll(projection, rm)
			result.TempTablesCreated++

		case *MaterializePayload:
			if v.Params != nil {
				return
			}
			if win, ok := payloadOf[*WindowingPayload](v.TablePath); ok && win.TempTableParams != nil {
				v.Params = win.TempTableParams
				return
			}
			params, rm, err := materializeProjection(projection, fctx, DedupNone)
			if err != nil {
				walkErr = err
				return
			}
			v.Params = params
			combined = combined.Merge(rm)
			projection = RewriteAll(projection, rm)
			result.TempTablesCreated++

		case *StreamPayload:
			if v.TempTableParams != nil {
				return
			}
			params, rm, err := materializeProjection(projection, fctx, DedupNone)
			if err != nil {
				walkErr = err
				return
			}
			v.TempTableParams = params
			combined = combined.Merge(rm)
			projection = RewriteAll(projection, rm)
			result.TempTablesCreated++

		case *TemptableAggregatePayload:
			if v.TempTableParams != nil {
				return
			}
			params, rm, err := materializeProjection(projection, fctx, DedupForGroupBy)
			if err != nil {
				walkErr = err
				return
			}
			v.TempTableParams = params
			combined = combined.Merge(rm)
			projection = RewriteAll(projection, rm)
			result.TempTablesCreated++
		}
	}
	visit(root)
	return combined, walkErr
}

// payloadOf type-asserts p's payload to T, reporting ok=false for a
// nil path or a payload of a different shape.
func payloadOf[T any](p *AccessPath) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	v, ok := p.payload.(T)
	return v, ok
}

func materializeProjection(projection []string, fctx FinalizeContext, dedup DedupReason) (*TempTableParams, RewriteMap, error) {
	params := &TempTableParams{Dedup: dedup}
	for i, expr := range projection {
		params.ItemsToCopy = append(params.ItemsToCopy, ItemCopy{
			Source: expr,
			Target: fmt.Sprintf("tmp.col%d", i),
		})
	}
	if fctx.CreateTempTable != nil {
		target, err := fctx.CreateTempTable(params)
		if err != nil {
			return nil, nil, err
		}
		params.Target = target
	} else {
		// No storage engine callback wired up (e.g. a planning-only
		// test or trace replay): synthesize a name unique enough not
		// to collide with a sibling materialization in the same block.
		params.Target = "tmp_" + uuid.NewString()
	}
	return params, NewRewriteMap(params.ItemsToCopy), nil
}

// applyRewrites rewrites every FILTER condition, hash-join predicate
// and SORT order item in the tree against rewrites (spec §4.7 step 3),
// so buildFilesorts later reads already-rewritten order items.
func applyRewrites(root *AccessPath, rewrites RewriteMap) {
	Walk(root, EntireTree, nil, func(p *AccessPath, _ *RelExpr) bool {
		switch v := p.payload.(type) {
		case *FilterPayload:
			v.Condition = Rewrite(v.Condition, rewrites)
		case *HashJoinPayload:
			v.Predicate.JoinConditions = RewriteAll(v.Predicate.JoinConditions, rewrites)
			v.Predicate.EquijoinConditions = RewriteAll(v.Predicate.EquijoinConditions, rewrites)
		case *SortPayload:
			v.OrderBy = RewriteAll(v.OrderBy, rewrites)
		}
		return false
	})
}

// buildFilesorts attaches a FilesortDescriptor to every SORT node,
// derived from its (already rewritten) order items against the query
// block's projection (spec §4.7 step 4).
func buildFilesorts(root *AccessPath, projection []string, result *FinalizeResult) {
	Walk(root, EntireTree, nil, func(p *AccessPath, _ *RelExpr) bool {
		if sp, ok := p.payload.(*SortPayload); ok {
			fs, forceRowIDs := BuildFilesort(sp.OrderBy, projection)
			sp.Filesort = fs
			sp.ForceSortRowIDs = forceRowIDs
			result.FilesortsBuilt++
		}
		return false
	})
}

// cacheConstantConditions wraps subexpressions that don't reference
// any column in a one-shot cache marker (spec §4.7 step 5), so the
// executor evaluates them once instead of once per row. This package
// has no expression AST to walk — conditions are opaque strings
// throughout (the Item-tree engine itself is out of scope per spec
// §1's non-goals) — so "references a column" is approximated as
// "contains an identifier outside a quoted string literal".
func cacheConstantConditions(root *AccessPath) {
	Walk(root, EntireTree, nil, func(p *AccessPath, _ *RelExpr) bool {
		switch v := p.payload.(type) {
		case *FilterPayload:
			v.Condition = cacheIfConstant(v.Condition)
		case *HashJoinPayload:
			v.Predicate.JoinConditions = cacheAllIfConstant(v.Predicate.JoinConditions)
		}
		return false
	})
}

func cacheIfConstant(expr string) string {
	if expr == "" || strings.HasPrefix(expr, "CACHE(") || !isConstantExpression(expr) {
		return expr
	}
	return "CACHE(" + expr + ")"
}

func cacheAllIfConstant(exprs []string) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = cacheIfConstant(e)
	}
	return out
}

// isConstantExpression is deliberately conservative: it only ever
// returns true for an expression with no letter or underscore outside a
// single-quoted literal (so no column name, bare or qualified), so
// cacheIfConstant never wraps something that needs a per-row value.
func isConstantExpression(expr string) bool {
	inQuote := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			return false
		}
	}
	return true
}
