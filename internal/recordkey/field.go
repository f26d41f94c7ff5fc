// Package recordkey implements C1: computing a stable fingerprint for
// the first n_fields/n_bytes of a record under a given tree identity,
// and a matching total-order comparison over the same prefix.
//
// The row codec itself is an external collaborator (spec §1 non-goal):
// this package only assumes callers can produce something satisfying
// Record/Field.
package recordkey

// Kind distinguishes how a Field compares and folds, mirroring "Field
// comparisons follow the field's declared type" (spec §4.1).
type Kind int

const (
	// KindBytes compares and folds as a raw byte string (binary compare).
	KindBytes Kind = iota
	// KindCollatedText compares case-insensitively over ASCII, folds
	// over the case-folded bytes. A stand-in for a real collation.
	KindCollatedText
	// KindInt64 compares and folds as a signed 64-bit integer.
	KindInt64
	// KindFloat64 compares and folds as a 64-bit float.
	KindFloat64
)

// Field is the per-column contract consumed by Fold and Cmp (spec §6
// "Consumed from collaborators": Field::fold_contribution, Field::compare).
type Field interface {
	// Kind reports how this field should be compared/folded.
	Kind() Kind
	// Bytes returns the field's canonical byte representation, used
	// both as the fold contribution and (truncated) for prefix
	// comparison of an "incomplete tail" field.
	Bytes() []byte
	// Comparable reports false when this field's stored representation
	// does not support a meaningful comparison (spec §9 Open Question:
	// "externally stored fields ... return 0 with a side-channel flag").
	// Cmp surfaces this rather than silently treating it as equal.
	Comparable() bool
}

// CompareResult is the outcome of comparing two record prefixes. Order
// is only meaningful when Comparable is true.
type CompareResult struct {
	Order      int
	Comparable bool
}

func comparableResult(order int) CompareResult {
	return CompareResult{Order: order, Comparable: true}
}

var notComparable = CompareResult{Order: 0, Comparable: false}

// Record is the row contract: an ordered, fixed-arity sequence of fields.
type Record interface {
	NumFields() int
	FieldAt(i int) Field
}
