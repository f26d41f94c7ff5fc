// Package planner implements the access-path tree, cost model, plan
// finaliser, and derived-key synthesiser that turn a relational
// expression into an executable plan (spec components C5-C8).
package planner

// Variant is the access path's discriminant. The cost model and the
// walker both dispatch on it, so it must stay observable on every
// node rather than be inferred from which payload pointer is non-nil
// (spec §9 "tagged sum type with exhaustive pattern-match").
type Variant int

const (
	TableScan Variant = iota
	IndexScan
	Ref
	RefOrNull
	EqRef
	PushedJoinRef
	FullTextSearch
	ConstTable
	MRR
	FollowTail
	IndexRangeScan
	DynamicIndexRangeScan
	TableValueConstructor
	FakeSingleRow
	ZeroRows
	ZeroRowsAggregated
	MaterializedTableFunction
	UnqualifiedCount
	NestedLoopJoin
	NestedLoopSemiJoinWithDuplicateRemoval
	BKAJoin
	HashJoin
	Filter
	Sort
	Aggregate
	TemptableAggregate
	LimitOffset
	Stream
	Materialize
	MaterializeInformationSchemaTable
	Append
	Windowing
	Weedout
	RemoveDuplicates
	Alternative
	CacheInvalidator
)

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return "UNKNOWN_VARIANT"
}

var variantNames = map[Variant]string{
	TableScan:                               "TABLE_SCAN",
	IndexScan:                               "INDEX_SCAN",
	Ref:                                     "REF",
	RefOrNull:                               "REF_OR_NULL",
	EqRef:                                   "EQ_REF",
	PushedJoinRef:                           "PUSHED_JOIN_REF",
	FullTextSearch:                          "FULL_TEXT_SEARCH",
	ConstTable:                              "CONST_TABLE",
	MRR:                                     "MRR",
	FollowTail:                              "FOLLOW_TAIL",
	IndexRangeScan:                          "INDEX_RANGE_SCAN",
	DynamicIndexRangeScan:                   "DYNAMIC_INDEX_RANGE_SCAN",
	TableValueConstructor:                   "TABLE_VALUE_CONSTRUCTOR",
	FakeSingleRow:                           "FAKE_SINGLE_ROW",
	ZeroRows:                                "ZERO_ROWS",
	ZeroRowsAggregated:                      "ZERO_ROWS_AGGREGATED",
	MaterializedTableFunction:               "MATERIALIZED_TABLE_FUNCTION",
	UnqualifiedCount:                        "UNQUALIFIED_COUNT",
	NestedLoopJoin:                          "NESTED_LOOP_JOIN",
	NestedLoopSemiJoinWithDuplicateRemoval:  "NESTED_LOOP_SEMIJOIN_WITH_DUPLICATE_REMOVAL",
	BKAJoin:                                 "BKA_JOIN",
	HashJoin:                                "HASH_JOIN",
	Filter:                                  "FILTER",
	Sort:                                    "SORT",
	Aggregate:                               "AGGREGATE",
	TemptableAggregate:                      "TEMPTABLE_AGGREGATE",
	LimitOffset:                             "LIMIT_OFFSET",
	Stream:                                  "STREAM",
	Materialize:                             "MATERIALIZE",
	MaterializeInformationSchemaTable:       "MATERIALIZE_INFORMATION_SCHEMA_TABLE",
	Append:                                  "APPEND",
	Windowing:                               "WINDOWING",
	Weedout:                                 "WEEDOUT",
	RemoveDuplicates:                        "REMOVE_DUPLICATES",
	Alternative:                             "ALTERNATIVE",
	CacheInvalidator:                        "CACHE_INVALIDATOR",
}

// UnknownSentinel is the value num_output_rows/cost carry before an
// estimator has run (spec §3, §8 property 5).
const UnknownSentinel = -1.0

// JoinType enumerates the relational-expression join kinds (spec §3).
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinSemi
	JoinAnti
	JoinFullOuter
	JoinStraightInner
	JoinMulti
)

// DedupReason is why a MATERIALIZE node is deduplicating its input.
type DedupReason int

const (
	DedupNone DedupReason = iota
	DedupForDistinct
	DedupForGroupBy
	DedupForUnion
)

// KeyRef is an opaque reference to a table's key/index metadata; the
// planner never interprets its contents, only carries it between the
// optimizer and the executor (spec §6 external collaborator contract).
type KeyRef struct {
	Table   string
	Index   int
	KeyLen  int
	IsUnique bool
}

// TempTableParams bundles the parameters materialised into a temp
// table (spec §3 "Materialisation parameters").
type TempTableParams struct {
	Target              string
	CTERef              string
	Invalidators        []*AccessPath
	Limit                int64
	RejectMultipleRows  bool
	Dedup               DedupReason
	ItemsToCopy         []ItemCopy
}

// ItemCopy maps one projected expression to the column of a newly
// materialised temp table it now lives in; C7's rewrite pass threads
// these through the tree instead of mutating item pointers in place
// (spec §9 "explicit replacement-map").
type ItemCopy struct {
	Source string
	Target string
}

// FilesortDescriptor is the opaque sort-key descriptor a SORT node
// carries once C7 has constructed one for it.
type FilesortDescriptor struct {
	OrderItems    []string
	AddonFields   bool
	ForceRowIDs   bool
}

// AccessPath is the C5 node: a fixed discriminant plus the shared
// cost/row fields, plus exactly one variant payload. It is plain data
// so it can be arena-allocated, overwritten wholesale during candidate
// enumeration, and never needs a destructor (spec §3, §9).
type AccessPath struct {
	Type Variant

	NumOutputRows     float64
	Cost              float64
	CountExaminedRows bool

	// NeedsFinalize mirrors query_block.needs_finalize. NewAccessPath
	// sets it true; PlanFinalize's idempotency rests on
	// QueryBlock.NeedsFinalize, and nothing in this package clears this
	// per-node copy.
	NeedsFinalize bool

	payload any
}

// NewAccessPath builds a node of the given variant with the shared
// fields at their unknown sentinel and the payload attached. Callers
// should use the Make* constructors below instead of calling this
// directly; they pin the right payload type to the right Variant.
func NewAccessPath(v Variant, payload any) *AccessPath {
	return &AccessPath{
		Type:              v,
		NumOutputRows:     UnknownSentinel,
		Cost:              UnknownSentinel,
		CountExaminedRows: true,
		NeedsFinalize:     true,
		payload:           payload,
	}
}

// Payload returns the node's variant-specific payload. Callers type-
// assert to the concrete *Payload struct matching p.Type. Payload itself
// never panics or checks the type; a caller that uses the single-value
// form of the type assertion panics on a mismatch.
func (p *AccessPath) Payload() any { return p.payload }
