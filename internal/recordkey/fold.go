package recordkey

import (
	"encoding/binary"
	"strings"
)

// Fold computes the record's fingerprint: the tree identity, the
// first nFields complete fields, and the first nBytes bytes of field
// nFields (0-indexed, i.e. the "(n_fields+1)-th field") — spec §4.1.
//
// Fold is deterministic and byte-order-stable: it never reads machine
// endianness or pointer values, only the field byte contributions
// handed to it, mixed through a fixed 64-bit avalanche finalizer so
// that small input differences flip roughly half the output bits
// (spec's "avalanche-quality" requirement).
func Fold(treeID uint64, rec Record, nFields, nBytes int) uint64 {
	h := fnv1aSeed
	h = mixBytes(h, uint64ToBytes(treeID))

	n := rec.NumFields()
	complete := nFields
	if complete > n {
		complete = n
	}
	for i := 0; i < complete; i++ {
		h = mixBytes(h, foldBytes(rec.FieldAt(i)))
	}

	if nFields < n && nBytes > 0 {
		f := rec.FieldAt(nFields)
		tail := foldBytes(f)
		if nBytes < len(tail) {
			tail = tail[:nBytes]
		}
		h = mixBytes(h, tail)
	}

	return avalanche(h)
}

// foldBytes returns a field's fold contribution, canonicalized the
// same way compareValues compares it: KindCollatedText folds over its
// case-folded bytes (field.go's Kind doc promises this), so two
// records comparing equal under Cmp always fold to the same value.
func foldBytes(f Field) []byte {
	if f.Kind() == KindCollatedText {
		return []byte(strings.ToLower(string(f.Bytes())))
	}
	return f.Bytes()
}

const fnv1aSeed = uint64(14695981039346656037) // FNV-1a 64-bit offset basis
const fnv1aPrime = uint64(1099511628211)

// mixBytes folds b into the running hash using FNV-1a, which is cheap
// and order-sensitive (so "ab","c" and "a","bc" don't collide purely
// because of concatenation).
func mixBytes(h uint64, b []byte) uint64 {
	// Mix in the length first so a field boundary is distinguishable
	// from a byte value equal to it.
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	for _, c := range lenBuf {
		h ^= uint64(c)
		h *= fnv1aPrime
	}
	for _, c := range b {
		h ^= uint64(c)
		h *= fnv1aPrime
	}
	return h
}

func uint64ToBytes(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}

// avalanche is splitmix64's finalizer: three multiply-xor-shift
// rounds that guarantee each output bit depends on most input bits,
// independent of how mixBytes accumulated them.
func avalanche(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
