package recordkey

import (
	"encoding/binary"
	"math"
	"strings"
)

// Value is a reference Field implementation covering the four Kinds.
// Production callers will usually adapt their own row codec to the
// Field interface directly; Value exists so this package (and the AHI
// tests that build on it) have something concrete to exercise.
type Value struct {
	kind       Kind
	bytes      []byte
	i          int64
	f          float64
	comparable bool
}

func NewBytesValue(b []byte) Value {
	return Value{kind: KindBytes, bytes: append([]byte(nil), b...), comparable: true}
}

func NewTextValue(s string) Value {
	return Value{kind: KindCollatedText, bytes: []byte(s), comparable: true}
}

func NewIntValue(i int64) Value {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(i)^(1<<63)) // sign-flip keeps byte order monotonic
	return Value{kind: KindInt64, bytes: buf, i: i, comparable: true}
}

func NewFloatValue(f float64) Value {
	buf := make([]byte, 8)
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits // negative: flip all bits so larger magnitudes sort lower
	} else {
		bits |= 1 << 63 // non-negative: set the sign bit so it sorts above negatives
	}
	binary.BigEndian.PutUint64(buf, bits)
	return Value{kind: KindFloat64, bytes: buf, f: f, comparable: true}
}

// NewIncomparableValue builds a Value flagged as not comparable, e.g. an
// externally-stored column prefix that couldn't be resolved (spec §9
// Open Question).
func NewIncomparableValue(kind Kind, b []byte) Value {
	return Value{kind: kind, bytes: append([]byte(nil), b...), comparable: false}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) Bytes() []byte     { return v.bytes }
func (v Value) Comparable() bool  { return v.comparable }

// Tuple is a reference Record implementation: a flat slice of Values.
type Tuple []Value

func (t Tuple) NumFields() int     { return len(t) }
func (t Tuple) FieldAt(i int) Field { return t[i] }

// compareValues implements the per-Kind comparison semantics named in
// spec §4.1: binary compare for byte-strings, case-insensitive for
// collated text, numeric for ints/floats.
func compareValues(a, b Field) CompareResult {
	if !a.Comparable() || !b.Comparable() {
		return notComparable
	}
	switch a.Kind() {
	case KindCollatedText:
		as := strings.ToLower(string(a.Bytes()))
		bs := strings.ToLower(string(b.Bytes()))
		return comparableResult(strings.Compare(as, bs))
	case KindInt64, KindFloat64, KindBytes:
		fallthrough
	default:
		return comparableResult(compareBytes(a.Bytes(), b.Bytes()))
	}
}

func compareBytes(a, b []byte) int {
	la, lb := len(a), len(b)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}
