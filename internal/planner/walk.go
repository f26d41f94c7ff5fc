package planner

// WalkPolicy controls how Walk descends through materialisation
// boundaries (spec §4.5).
type WalkPolicy int

const (
	// EntireTree descends unconditionally.
	EntireTree WalkPolicy = iota
	// EntireQueryBlock crosses a STREAM or APPEND boundary only when
	// that node's own join back-pointer equals the join inherited into
	// it; it never crosses a MATERIALIZE boundary, which carries no
	// join back-pointer to compare.
	EntireQueryBlock
	// StopAtMaterialization never descends through MATERIALIZE,
	// STREAM, or APPEND.
	StopAtMaterialization
)

// Visitor is called once per node. On pre-order it may return true to
// skip that node's subtree; the return value is ignored in post-order.
type Visitor func(path *AccessPath, currentJoin *RelExpr) bool

// Walk traverses the access-path tree rooted at root in pre-order,
// applying visit to each node before its children; WalkPostOrder is the
// post-order form. currentJoin is the RelExpr attributed to root at the
// start of the walk; it is passed unchanged to every node visited, and
// EntireQueryBlock compares it against STREAM and APPEND join
// back-pointers.
func Walk(root *AccessPath, policy WalkPolicy, currentJoin *RelExpr, visit Visitor) {
	if root == nil {
		return
	}
	walk(root, policy, currentJoin, visit, false)
}

// WalkPostOrder is Walk with post-order traversal, matching spec §8's
// round-trip law: it visits the same node set as Walk, in the reverse
// order, modulo the pre-order-only subtree pruning.
func WalkPostOrder(root *AccessPath, policy WalkPolicy, currentJoin *RelExpr, visit Visitor) {
	if root == nil {
		return
	}
	walk(root, policy, currentJoin, visit, true)
}

func walk(p *AccessPath, policy WalkPolicy, currentJoin *RelExpr, visit Visitor, postOrder bool) {
	if !postOrder {
		if visit(p, currentJoin) {
			return
		}
	}

	kids := descendInto(p, policy, currentJoin)
	if postOrder {
		// Last child first, so the post-order sequence is the exact
		// reverse of the pre-order one.
		for i := len(kids) - 1; i >= 0; i-- {
			walk(kids[i], policy, currentJoin, visit, postOrder)
		}
		visit(p, currentJoin)
		return
	}
	for _, c := range kids {
		walk(c, policy, currentJoin, visit, postOrder)
	}
}

// descendInto returns the children of p the walk should actually
// visit under policy. EntireTree always returns every child.
// StopAtMaterialization returns none at a MATERIALIZE, STREAM, or
// APPEND node. EntireQueryBlock can cross STREAM and APPEND, gated on
// their own join back-pointer: a
// STREAM whose JoinBackRef differs from currentJoin starts a new query
// block and the walk stops there; an APPEND gates each child
// independently by that child's own Join, since a UNION's branches can
// belong to different query blocks. MATERIALIZE carries no join
// back-pointer at all, so EntireQueryBlock stops there unconditionally,
// same as StopAtMaterialization.
func descendInto(p *AccessPath, policy WalkPolicy, currentJoin *RelExpr) []*AccessPath {
	if policy == EntireTree {
		return children(p)
	}

	switch v := p.payload.(type) {
	case *MaterializePayload:
		return nil
	case *StreamPayload:
		if policy == EntireQueryBlock && v.JoinBackRef == currentJoin {
			return nonNil(v.Child)
		}
		return nil
	case *AppendPayload:
		if policy != EntireQueryBlock {
			return nil
		}
		out := make([]*AccessPath, 0, len(v.Children))
		for _, c := range v.Children {
			if c.Join == currentJoin {
				out = append(out, nonNil(c.Child)...)
			}
		}
		return out
	default:
		return children(p)
	}
}

// children returns the direct child access paths of p, in a stable
// order, regardless of variant.
func children(p *AccessPath) []*AccessPath {
	switch v := p.payload.(type) {
	case *MaterializedTableFunctionPayload:
		return nonNil(v.Child)
	case *ZeroRowsPayload:
		return nonNil(v.Child)
	case *NestedLoopJoinPayload:
		return nonNil(v.Outer, v.Inner)
	case *NestedLoopSemiJoinDedupPayload:
		return nonNil(v.Outer, v.Inner)
	case *BKAJoinPayload:
		return nonNil(v.Outer, v.Inner)
	case *HashJoinPayload:
		return nonNil(v.Build, v.Probe)
	case *FilterPayload:
		return nonNil(v.Child)
	case *SortPayload:
		return nonNil(v.Child)
	case *AggregatePayload:
		return nonNil(v.Child)
	case *TemptableAggregatePayload:
		return nonNil(v.SubqueryPath, v.TablePath)
	case *LimitOffsetPayload:
		return nonNil(v.Child)
	case *StreamPayload:
		return nonNil(v.Child)
	case *MaterializePayload:
		return nonNil(v.TablePath)
	case *MaterializeInformationSchemaTablePayload:
		return nonNil(v.TablePath)
	case *AppendPayload:
		out := make([]*AccessPath, 0, len(v.Children))
		for _, c := range v.Children {
			out = append(out, nonNil(c.Child)...)
		}
		return out
	case *WindowingPayload:
		return nonNil(v.Child)
	case *WeedoutPayload:
		return nonNil(v.Child)
	case *RemoveDuplicatesPayload:
		return nonNil(v.Child)
	case *AlternativePayload:
		return nonNil(v.Primary, v.FallbackScan)
	case *CacheInvalidatorPayload:
		return nonNil(v.Child)
	default:
		return nil
	}
}

// MapChildren replaces each of p's direct children with f(child),
// writing the result back into p's payload. It's how finalisation
// phases rewrite the tree in place (e.g. splicing out a coalesced
// FILTER) without needing a setter per Variant at each call site.
func MapChildren(p *AccessPath, f func(*AccessPath) *AccessPath) {
	switch v := p.payload.(type) {
	case *MaterializedTableFunctionPayload:
		v.Child = mapOne(v.Child, f)
	case *ZeroRowsPayload:
		v.Child = mapOne(v.Child, f)
	case *NestedLoopJoinPayload:
		v.Outer, v.Inner = mapOne(v.Outer, f), mapOne(v.Inner, f)
	case *NestedLoopSemiJoinDedupPayload:
		v.Outer, v.Inner = mapOne(v.Outer, f), mapOne(v.Inner, f)
	case *BKAJoinPayload:
		v.Outer, v.Inner = mapOne(v.Outer, f), mapOne(v.Inner, f)
	case *HashJoinPayload:
		v.Build, v.Probe = mapOne(v.Build, f), mapOne(v.Probe, f)
	case *FilterPayload:
		v.Child = mapOne(v.Child, f)
	case *SortPayload:
		v.Child = mapOne(v.Child, f)
	case *AggregatePayload:
		v.Child = mapOne(v.Child, f)
	case *TemptableAggregatePayload:
		v.SubqueryPath, v.TablePath = mapOne(v.SubqueryPath, f), mapOne(v.TablePath, f)
	case *LimitOffsetPayload:
		v.Child = mapOne(v.Child, f)
	case *StreamPayload:
		v.Child = mapOne(v.Child, f)
	case *MaterializePayload:
		v.TablePath = mapOne(v.TablePath, f)
	case *MaterializeInformationSchemaTablePayload:
		v.TablePath = mapOne(v.TablePath, f)
	case *AppendPayload:
		for i := range v.Children {
			v.Children[i].Child = mapOne(v.Children[i].Child, f)
		}
	case *WindowingPayload:
		v.Child = mapOne(v.Child, f)
	case *WeedoutPayload:
		v.Child = mapOne(v.Child, f)
	case *RemoveDuplicatesPayload:
		v.Child = mapOne(v.Child, f)
	case *AlternativePayload:
		v.Primary, v.FallbackScan = mapOne(v.Primary, f), mapOne(v.FallbackScan, f)
	case *CacheInvalidatorPayload:
		v.Child = mapOne(v.Child, f)
	}
}

func mapOne(p *AccessPath, f func(*AccessPath) *AccessPath) *AccessPath {
	if p == nil {
		return nil
	}
	return f(p)
}

func nonNil(paths ...*AccessPath) []*AccessPath {
	out := make([]*AccessPath, 0, len(paths))
	for _, p := range paths {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
