package planner

import "math"

// Cost-model constants (spec §4.6). Calibrated against a reference
// workload. They are package constants: there is no per-caller
// override.
const (
	kReadOneRowCost   = 0.1
	kReadOneFieldCost = 0.01
	kReadOneByteCost  = 0.00025

	kApplyOneFilterCost = 0.05

	kMaterializeOneRowCost = 0.1
	kAggregateOneRowCost   = 0.05
	kWindowOneRowCost      = 0.1
	kSortOneRowCost        = 0.1

	kIndexLookupFixedCost = 1.0
	kIndexLookupPageCost  = 1.0
)

// TableStats is the subset of Table::stats (§6 consumed contract) the
// cost model reads.
type TableStats struct {
	RecordBufferLength int64
	Records            float64
	BlockSize           int64
	RefLength           int
}

// bytesPerRow clamps a table's record length into the range the cost
// formulas assume a row occupies on a page (spec §4.6).
func bytesPerRow(stats TableStats) float64 {
	const min, max = 8, 16384
	n := float64(stats.RecordBufferLength)
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// IndexHeight estimates a B-tree index's height given the table's
// stats: ⌈log_{1+R}(N/R)⌉, where R = block_size/bytes_per_row is the
// index's fanout and N/R is the resulting leaf-page count — one fewer
// level than a naive log_{1+R}(N) would suggest, since N itself
// already counts the rows within a single leaf page (spec §4.6,
// scenario A: 1,000,000 rows / 200-byte rows / 16384-byte blocks
// yields height ≈ 3).
func IndexHeight(stats TableStats) float64 {
	bpr := bytesPerRow(stats)
	if bpr <= 0 {
		return 1
	}
	r := float64(stats.BlockSize) / bpr
	n := clampNonNegative(stats.Records)
	if r <= 0 {
		return 1
	}
	leafPages := n / r
	if leafPages <= 1 {
		return 1
	}
	h := math.Ceil(math.Log(leafPages) / math.Log(1+r))
	if h < 1 {
		return 1
	}
	return h
}

// RowReadCost is the §4.6 row_read_cost formula.
func RowReadCost(nRows float64, fields int, bytes int64) float64 {
	nRows = clampNonNegative(nRows)
	return (kReadOneRowCost + kReadOneFieldCost*float64(fields) + kReadOneByteCost*float64(bytes)) * nRows
}

// IndexLookupCost blends a cached-root assumption (fixed cost) with an
// uncached descent (one page read per level), 50/50.
func IndexLookupCost(indexHeight float64) float64 {
	return 0.5*kIndexLookupFixedCost + 0.5*kIndexLookupPageCost*indexHeight
}

// RangeScanCost is the §4.6 range_scan_cost formula: nRanges lookups
// plus reading the rows in range, plus (when the index doesn't cover
// the query and isn't the table's clustering index) one secondary-to-
// primary lookup per row.
func RangeScanCost(nRanges int, rowsInRange float64, fields int, bytes int64, indexHeight float64, nonCoveringNonClustered bool) float64 {
	cost := float64(nRanges)*IndexLookupCost(indexHeight) + RowReadCost(rowsInRange, fields, bytes)
	if nonCoveringNonClustered {
		cost += rowsInRange * IndexLookupCost(indexHeight)
	}
	return cost
}

// RefAccessCost applies the 5% discount spec §4.6 assigns unique
// lookups to prefer them on cost ties against an equivalent range scan.
func RefAccessCost(rangeScanCost float64) float64 {
	return 0.95 * rangeScanCost
}

// EstimateSortCost is the §4.6 sort formula: kSortOneRowCost·(N +
// K·log2 K), with log2 of a single row clamped to 1. An input of at
// most one row costs exactly kSortOneRowCost (spec §8 boundary
// behaviour).
func EstimateSortCost(nRows, outputRows float64) float64 {
	nRows = clampNonNegative(nRows)
	outputRows = clampNonNegative(outputRows)
	if nRows <= 1 {
		return kSortOneRowCost
	}
	logK := 1.0
	if outputRows > 1 {
		logK = math.Log2(outputRows)
	}
	return kSortOneRowCost * (nRows + outputRows*logK)
}

// SubqueryCost is one contained subquery's contribution to a FILTER's
// cost: re-evaluated per row unless materialised, in which case it's
// the one-time temp-table I/O cost plus the subquery's own cost.
type SubqueryCost struct {
	Cost           float64
	Materialized   bool
	TmpTableIOCost float64
}

// EstimateFilterCost is the §4.6 filter formula.
func EstimateFilterCost(nRows float64, subqueries []SubqueryCost) float64 {
	nRows = clampNonNegative(nRows)
	cost := nRows * kApplyOneFilterCost
	for _, sq := range subqueries {
		if sq.Materialized {
			cost += sq.TmpTableIOCost + sq.Cost
		} else {
			cost += nRows * sq.Cost
		}
	}
	return cost
}

// JoinCardinality computes output row counts per join type (spec §4.6
// "Join cardinality").
func JoinCardinality(jt JoinType, left, right, selectivity, semijoinFanout float64) float64 {
	left = clampNonNegative(left)
	right = clampNonNegative(right)
	selectivity = clampFraction(selectivity)
	switch jt {
	case JoinInner, JoinStraightInner, JoinMulti:
		return left * right * selectivity
	case JoinLeft, JoinFullOuter:
		return left * math.Max(right*selectivity, 1)
	case JoinSemi:
		return left * semijoinFanout
	case JoinAnti:
		return left * math.Max(1-semijoinFanout, 0.1)
	default:
		return left * right * selectivity
	}
}

// MaterializationCost sums the children's costs, the per-row
// materialise cost, and a handler-dependent scan cost (spec §4.6
// "Materialisation cost"). Deduplicating materialisations charge all
// children regardless of dedup reason, matching the spec's "charge all
// children" note.
func MaterializationCost(childCosts []float64, outputRows float64, handlerScanCost float64) float64 {
	total := handlerScanCost + kMaterializeOneRowCost*clampNonNegative(outputRows)
	for _, c := range childCosts {
		total += c
	}
	return total
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
