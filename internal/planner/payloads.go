package planner

// This file holds the per-variant payload structs of spec §4.5's
// table and the Make* constructors that pair each payload with its
// Variant. Payloads are plain data, same as AccessPath itself: none of
// them owns a destructor, so a candidate plan can be thrown away or
// overwritten by the optimizer without any cleanup pass.

type TableScanPayload struct {
	Table string
}

func MakeTableScan(table string) *AccessPath {
	return NewAccessPath(TableScan, &TableScanPayload{Table: table})
}

func MakeFollowTail(table string) *AccessPath {
	return NewAccessPath(FollowTail, &TableScanPayload{Table: table})
}

type IndexScanPayload struct {
	Table    string
	Index    int
	UseOrder bool
	Reverse  bool
}

func MakeIndexScan(table string, index int, useOrder, reverse bool) *AccessPath {
	return NewAccessPath(IndexScan, &IndexScanPayload{Table: table, Index: index, UseOrder: useOrder, Reverse: reverse})
}

type RefPayload struct {
	Table    string
	Key      KeyRef
	UseOrder bool
	Reverse  bool  // REF only
	IsUnique bool  // PUSHED_JOIN_REF only
}

func MakeRef(table string, key KeyRef, useOrder, reverse bool) *AccessPath {
	return NewAccessPath(Ref, &RefPayload{Table: table, Key: key, UseOrder: useOrder, Reverse: reverse})
}

func MakeEqRef(table string, key KeyRef) *AccessPath {
	return NewAccessPath(EqRef, &RefPayload{Table: table, Key: key})
}

func MakeRefOrNull(table string, key KeyRef, useOrder bool) *AccessPath {
	return NewAccessPath(RefOrNull, &RefPayload{Table: table, Key: key, UseOrder: useOrder})
}

func MakePushedJoinRef(table string, key KeyRef, isUnique bool) *AccessPath {
	return NewAccessPath(PushedJoinRef, &RefPayload{Table: table, Key: key, IsUnique: isUnique})
}

func MakeFullTextSearch(table string, key KeyRef) *AccessPath {
	return NewAccessPath(FullTextSearch, &RefPayload{Table: table, Key: key})
}

type ConstTablePayload struct {
	Table string
	Key   KeyRef
}

func MakeConstTable(table string, key KeyRef) *AccessPath {
	p := NewAccessPath(ConstTable, &ConstTablePayload{Table: table, Key: key})
	p.NumOutputRows = 1
	p.Cost = 0
	return p
}

type MRRPayload struct {
	Table          string
	Key            KeyRef
	CacheCondition string
	MRRFlags       int
	EnclosingBKA   *AccessPath
}

func MakeMRR(table string, key KeyRef, cacheCondition string, flags int) *AccessPath {
	return NewAccessPath(MRR, &MRRPayload{Table: table, Key: key, CacheCondition: cacheCondition, MRRFlags: flags})
}

type IndexRangeScanPayload struct {
	Table string
	Range any // opaque range descriptor, interpreted by the executor
}

func MakeIndexRangeScan(table string, rng any) *AccessPath {
	return NewAccessPath(IndexRangeScan, &IndexRangeScanPayload{Table: table, Range: rng})
}

type DynamicIndexRangeScanPayload struct {
	Table       string
	RangeChooser any
}

func MakeDynamicIndexRangeScan(table string, chooser any) *AccessPath {
	return NewAccessPath(DynamicIndexRangeScan, &DynamicIndexRangeScanPayload{Table: table, RangeChooser: chooser})
}

type MaterializedTableFunctionPayload struct {
	Table      string
	Function   string
	Child      *AccessPath
}

func MakeMaterializedTableFunction(table, function string, child *AccessPath) *AccessPath {
	return NewAccessPath(MaterializedTableFunction, &MaterializedTableFunctionPayload{Table: table, Function: function, Child: child})
}

func MakeUnqualifiedCount() *AccessPath      { return NewAccessPath(UnqualifiedCount, nil) }
func MakeTableValueConstructor() *AccessPath { return NewAccessPath(TableValueConstructor, nil) }
func MakeFakeSingleRow() *AccessPath         { return NewAccessPath(FakeSingleRow, nil) }

type ZeroRowsPayload struct {
	Child *AccessPath
	Cause string
}

func MakeZeroRows(child *AccessPath, cause string) *AccessPath {
	p := NewAccessPath(ZeroRows, &ZeroRowsPayload{Child: child, Cause: cause})
	p.NumOutputRows = 0
	p.Cost = 0
	return p
}

type ZeroRowsAggregatedPayload struct {
	Cause string
}

func MakeZeroRowsAggregated(cause string) *AccessPath {
	p := NewAccessPath(ZeroRowsAggregated, &ZeroRowsAggregatedPayload{Cause: cause})
	p.NumOutputRows = 1
	p.Cost = 0
	return p
}

type NestedLoopJoinPayload struct {
	Outer, Inner *AccessPath
	JoinType     JoinType
	PFSBatchMode bool
}

func MakeNestedLoopJoin(outer, inner *AccessPath, jt JoinType, pfsBatchMode bool) *AccessPath {
	return NewAccessPath(NestedLoopJoin, &NestedLoopJoinPayload{Outer: outer, Inner: inner, JoinType: jt, PFSBatchMode: pfsBatchMode})
}

type NestedLoopSemiJoinDedupPayload struct {
	Outer, Inner *AccessPath
	DedupTable   string
	DedupKey     KeyRef
	KeyLen       int
}

func MakeNestedLoopSemiJoinWithDuplicateRemoval(outer, inner *AccessPath, dedupTable string, key KeyRef) *AccessPath {
	return NewAccessPath(NestedLoopSemiJoinWithDuplicateRemoval, &NestedLoopSemiJoinDedupPayload{
		Outer: outer, Inner: inner, DedupTable: dedupTable, DedupKey: key, KeyLen: key.KeyLen,
	})
}

type BKAJoinPayload struct {
	Outer, Inner     *AccessPath
	JoinType         JoinType
	MRRLength        int
	MRRRec           int
	StoreRowIDs      bool
	RowIDsNeeded     TableBitmap
}

func MakeBKAJoin(outer, inner *AccessPath, jt JoinType, mrrLength, mrrRec int, storeRowIDs bool, rowIDsNeeded TableBitmap) *AccessPath {
	return NewAccessPath(BKAJoin, &BKAJoinPayload{
		Outer: outer, Inner: inner, JoinType: jt, MRRLength: mrrLength, MRRRec: mrrRec,
		StoreRowIDs: storeRowIDs, RowIDsNeeded: rowIDsNeeded,
	})
}

type HashJoinPayload struct {
	Build, Probe        *AccessPath
	Predicate            JoinPredicate
	AllowSpillToDisk     bool
	StoreRowIDs          bool
	RowIDsNeeded         TableBitmap
}

func MakeHashJoin(build, probe *AccessPath, predicate JoinPredicate, allowSpill bool, storeRowIDs bool, rowIDsNeeded TableBitmap) *AccessPath {
	return NewAccessPath(HashJoin, &HashJoinPayload{
		Build: build, Probe: probe, Predicate: predicate,
		AllowSpillToDisk: allowSpill, StoreRowIDs: storeRowIDs, RowIDsNeeded: rowIDsNeeded,
	})
}

type FilterPayload struct {
	Child                 *AccessPath
	Condition             string
	MaterializeSubqueries bool
}

func MakeFilter(child *AccessPath, condition string, materializeSubqueries bool) *AccessPath {
	return NewAccessPath(Filter, &FilterPayload{Child: child, Condition: condition, MaterializeSubqueries: materializeSubqueries})
}

type SortPayload struct {
	Child             *AccessPath
	OrderBy           []string
	Filesort          *FilesortDescriptor
	RowIDsNeeded      TableBitmap
	RemoveDuplicates  bool
	ForceSortRowIDs   bool
	UnwrapRollup      bool
	Limit             int64
}

func MakeSort(child *AccessPath, orderBy []string, removeDuplicates, unwrapRollup bool, limit int64) *AccessPath {
	return NewAccessPath(Sort, &SortPayload{Child: child, OrderBy: orderBy, RemoveDuplicates: removeDuplicates, UnwrapRollup: unwrapRollup, Limit: limit})
}

type AggregatePayload struct {
	Child  *AccessPath
	Rollup bool
}

func MakeAggregate(child *AccessPath, rollup bool) *AccessPath {
	return NewAccessPath(Aggregate, &AggregatePayload{Child: child, Rollup: rollup})
}

type TemptableAggregatePayload struct {
	SubqueryPath    *AccessPath
	TempTableParams *TempTableParams
	Target          string
	TablePath       *AccessPath
	RefSliceID      int
}

func MakeTemptableAggregate(subquery *AccessPath, params *TempTableParams, target string, tablePath *AccessPath, refSliceID int) *AccessPath {
	return NewAccessPath(TemptableAggregate, &TemptableAggregatePayload{
		SubqueryPath: subquery, TempTableParams: params, Target: target, TablePath: tablePath, RefSliceID: refSliceID,
	})
}

type LimitOffsetPayload struct {
	Child               *AccessPath
	Limit               int64
	Offset              int64
	CountAllRows        bool
	RejectMultipleRows  bool
	SendRecordsOverride int64
	HasOverride         bool
}

func MakeLimitOffset(child *AccessPath, limit, offset int64, countAllRows, rejectMultipleRows bool) *AccessPath {
	return NewAccessPath(LimitOffset, &LimitOffsetPayload{
		Child: child, Limit: limit, Offset: offset, CountAllRows: countAllRows, RejectMultipleRows: rejectMultipleRows,
	})
}

type StreamPayload struct {
	Child           *AccessPath
	JoinBackRef     *RelExpr
	TempTableParams *TempTableParams
	Target          string
	RefSliceID      int
	ProvideRowID    bool
}

func MakeStream(child *AccessPath, joinBackRef *RelExpr, target string, refSliceID int, provideRowID bool) *AccessPath {
	return NewAccessPath(Stream, &StreamPayload{Child: child, JoinBackRef: joinBackRef, Target: target, RefSliceID: refSliceID, ProvideRowID: provideRowID})
}

type MaterializePayload struct {
	TablePath       *AccessPath
	Params          *TempTableParams
}

func MakeMaterialize(tablePath *AccessPath, params *TempTableParams) *AccessPath {
	return NewAccessPath(Materialize, &MaterializePayload{TablePath: tablePath, Params: params})
}

type MaterializeInformationSchemaTablePayload struct {
	TablePath *AccessPath
	TableList []string
	Condition string
}

func MakeMaterializeInformationSchemaTable(tablePath *AccessPath, tables []string, condition string) *AccessPath {
	return NewAccessPath(MaterializeInformationSchemaTable, &MaterializeInformationSchemaTablePayload{
		TablePath: tablePath, TableList: tables, Condition: condition,
	})
}

type AppendChild struct {
	Child *AccessPath
	Join  *RelExpr
}

type AppendPayload struct {
	Children []AppendChild
}

func MakeAppend(children []AppendChild) *AccessPath {
	return NewAccessPath(Append, &AppendPayload{Children: children})
}

type WindowingPayload struct {
	Child           *AccessPath
	TempTableParams *TempTableParams
	RefSliceID      int
	NeedsBuffering  bool
}

func MakeWindowing(child *AccessPath, refSliceID int, needsBuffering bool) *AccessPath {
	return NewAccessPath(Windowing, &WindowingPayload{Child: child, RefSliceID: refSliceID, NeedsBuffering: needsBuffering})
}

type WeedoutPayload struct {
	Child         *AccessPath
	WeedoutTable  string
	RowIDsNeeded  TableBitmap
}

func MakeWeedout(child *AccessPath, weedoutTable string, rowIDsNeeded TableBitmap) *AccessPath {
	return NewAccessPath(Weedout, &WeedoutPayload{Child: child, WeedoutTable: weedoutTable, RowIDsNeeded: rowIDsNeeded})
}

type RemoveDuplicatesPayload struct {
	Child            *AccessPath
	Table            string
	Key              KeyRef
	LoosescanKeyLen  int
}

func MakeRemoveDuplicates(child *AccessPath, table string, key KeyRef, loosescanKeyLen int) *AccessPath {
	return NewAccessPath(RemoveDuplicates, &RemoveDuplicatesPayload{Child: child, Table: table, Key: key, LoosescanKeyLen: loosescanKeyLen})
}

type AlternativePayload struct {
	Primary       *AccessPath
	FallbackScan  *AccessPath
	RefPredicate  string
}

func MakeAlternative(primary, fallbackScan *AccessPath, refPredicate string) *AccessPath {
	return NewAccessPath(Alternative, &AlternativePayload{Primary: primary, FallbackScan: fallbackScan, RefPredicate: refPredicate})
}

type CacheInvalidatorPayload struct {
	Child *AccessPath
	Name  string
}

func MakeCacheInvalidator(child *AccessPath, name string) *AccessPath {
	return NewAccessPath(CacheInvalidator, &CacheInvalidatorPayload{Child: child, Name: name})
}
