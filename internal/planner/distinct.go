package planner

import (
	"math"
	"sort"
)

// EstimateDistinctRows estimates the number of distinct combinations of
// a group of fields over nRows input rows (spec §4.6 "Aggregate output
// rows"). Each field contributes an independent estimate — from an
// index-prefix's records-per-key, a histogram's distinct-value count,
// or a √N fallback when neither is available — and the per-field
// estimates are combined by product with an exponential damping factor
// so they don't simply multiply out past the input row count; the
// result is always clamped to [min(1,N), N].
func EstimateDistinctRows(nRows float64, fields []FieldDistinctSource) float64 {
	nRows = clampNonNegative(nRows)
	if len(fields) == 0 {
		return math.Min(1, nRows)
	}

	estimates := make([]float64, len(fields))
	for i, f := range fields {
		estimates[i] = fieldEstimate(nRows, f)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(estimates)))

	// The largest single-field estimate anchors the product; each
	// subsequent field's contribution is damped by successive halving
	// of its exponent, so a long tail of weakly-informative fields
	// can't multiply the combined estimate far past what the most
	// selective field alone would suggest.
	combined := estimates[0]
	for i := 1; i < len(estimates); i++ {
		if estimates[i] <= 0 {
			continue
		}
		damp := 1.0 / math.Pow(2, float64(i))
		combined *= math.Pow(estimates[i], damp)
	}

	if combined > nRows {
		combined = nRows
	}
	if nRows > 0 && combined < 1 {
		combined = 1
	}
	return combined
}

func fieldEstimate(nRows float64, f FieldDistinctSource) float64 {
	if f.IndexPrefix != nil && f.IndexPrefix.RecordsPerKey > 0 {
		return nRows / f.IndexPrefix.RecordsPerKey
	}
	if f.Histogram != nil {
		if nd, ok := f.Histogram.GetNumDistinctValues(); ok {
			return math.Min(nd, nRows)
		}
	}
	return math.Sqrt(nRows)
}

// SemijoinFanout estimates a semijoin's row multiplier: the distinct-
// row count over the right side's join-predicate fields, scaled by the
// predicate's selectivity, capped at 1 (a semijoin never duplicates a
// left row; spec §4.6 "Semijoin fan-out", scenario D).
func SemijoinFanout(rightRows float64, rightJoinFields []FieldDistinctSource, selectivity float64) float64 {
	distinct := EstimateDistinctRows(rightRows, rightJoinFields)
	fanout := distinct * clampFraction(selectivity)
	if fanout > 1 {
		return 1
	}
	return fanout
}
