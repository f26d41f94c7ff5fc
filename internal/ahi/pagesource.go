package ahi

import "github.com/steveyegge/optiq/internal/recordkey"

// RecordSlot pairs a record with the slot it occupies on its page, as
// handed back by PageSource.RecordsOnPage.
type RecordSlot struct {
	Slot   uint32
	Record recordkey.Record
}

// PageSource is the AHI's only collaborator with the storage engine
// (spec §6): everything the AHI needs to know about a page — its
// current modify-clock, whether it's currently hashed, the records
// resident on it — comes through here. The AHI never reaches for a
// buffer pool or a B-tree directly.
//
// Implementations must hold whatever page latch the call requires
// before returning data derived from the page; the AHI's own latch
// discipline (spec §5) assumes RecordAt and RecordsOnPage observe a
// consistent snapshot of the page at the instant they're called.
type PageSource interface {
	// ModifyClock returns a page's current modification counter. The
	// AHI uses two reads of this around a record fetch to detect that
	// the page changed underneath a lock-free probe.
	ModifyClock(pageID uint64) uint64

	// IsHashed reports whether pageID currently has entries in the
	// adaptive hash index.
	IsHashed(pageID uint64) bool

	// MarkHashed updates the page's hashed bit.
	MarkHashed(pageID uint64, hashed bool)

	// RecordAt resolves a single slot on a page, returning false if the
	// slot no longer holds a live record (it may have been purged or
	// the page may have been reorganized).
	RecordAt(pageID uint64, slot uint32) (recordkey.Record, bool)

	// RecordsOnPage returns every live record currently on pageID, for
	// a full page build or drop. A nil/empty result is valid (e.g. the
	// page has already been evicted) and callers must treat it as "no
	// work to do", not an error.
	RecordsOnPage(pageID uint64) []RecordSlot
}
