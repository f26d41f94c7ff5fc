package planner

// Histogram is the §6 consumed collaborator contract: per-column
// statistics the cost model reads to estimate distinct-value counts.
// The planner never builds or refreshes histograms itself.
type Histogram interface {
	GetNumDistinctValues() (float64, bool)
	GetNullValuesFraction() float64
}

// IndexPrefixStats reports, for a group of columns that happen to be a
// prefix of some index's key, the average number of rows sharing a
// value of that prefix — cheaper and usually more accurate than a
// histogram-based estimate (spec §4.6 "index-prefix record-per-key
// metadata").
type IndexPrefixStats struct {
	RecordsPerKey float64
}

// FieldDistinctSource is one group-by field's available statistics,
// used by EstimateDistinctRows. At most one of IndexPrefix/Histogram
// is expected to be populated; if neither is, the √N fallback applies.
type FieldDistinctSource struct {
	IndexPrefix *IndexPrefixStats
	Histogram   Histogram
}
