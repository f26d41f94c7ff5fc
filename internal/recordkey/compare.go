package recordkey

// Cmp totally orders two records over the prefix described by
// (nFields, nBytes): the first nFields complete fields, then the
// first nBytes of field nFields (spec §4.1).
//
// The contract Fold/Cmp must jointly uphold (spec §4.1): for any a, b
// and prefix spec P, Cmp(a,b,P).Order == 0 implies
// Fold(a,P,treeID) == Fold(b,P,treeID). compareValues and Fold's own
// foldBytes helper canonicalize each Kind the same way (in particular,
// both case-fold KindCollatedText), so two fields Cmp treats as equal
// always contribute identical bytes to Fold too.
func Cmp(a, b Record, nFields, nBytes int) CompareResult {
	na, nb := a.NumFields(), b.NumFields()

	complete := nFields
	if complete > na {
		complete = na
	}
	if complete > nb {
		complete = nb
	}

	for i := 0; i < complete; i++ {
		r := compareValues(a.FieldAt(i), b.FieldAt(i))
		if !r.Comparable {
			return r
		}
		if r.Order != 0 {
			return r
		}
	}

	// A record that runs out of fields inside the complete-field prefix
	// sorts before one that still has fields there.
	if complete < nFields && na != nb {
		if na < nb {
			return comparableResult(-1)
		}
		return comparableResult(1)
	}

	aHasTail := nFields < na
	bHasTail := nFields < nb
	switch {
	case !aHasTail && !bHasTail:
		return comparableResult(0)
	case aHasTail && !bHasTail:
		return comparableResult(1)
	case !aHasTail && bHasTail:
		return comparableResult(-1)
	}

	fa, fb := a.FieldAt(nFields), b.FieldAt(nFields)
	if !fa.Comparable() || !fb.Comparable() {
		return notComparable
	}
	ta, tb := truncate(fa.Bytes(), nBytes), truncate(fb.Bytes(), nBytes)
	return comparableResult(compareBytes(ta, tb))
}

func truncate(b []byte, n int) []byte {
	if n < len(b) {
		return b[:n]
	}
	return b
}
