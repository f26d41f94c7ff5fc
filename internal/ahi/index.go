package ahi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/steveyegge/optiq/internal/config"
	"github.com/steveyegge/optiq/internal/obs"
	"github.com/steveyegge/optiq/internal/recordkey"
)

// GuessResult reports the outcome of a GuessOnHash probe.
type GuessResult struct {
	Hit      bool
	PageID   uint64
	Slot     uint32
	UpMatch  int
	LowMatch int
}

// AHI is the adaptive hash index of spec §4.4: a single hash table (C2)
// shared across every index in the system, latched as a whole (L_ahi),
// plus the page-level build/drop/maintenance operations that keep it
// consistent with the B-tree pages it shadows.
type AHI struct {
	mu      sync.RWMutex // L_ahi: RLock == S mode, Lock == X mode
	table   *HashTable
	pages   PageSource
	metrics *obs.Metrics
}

// NewAHI wires a hash table to a page source. metrics may be nil.
func NewAHI(table *HashTable, pages PageSource, metrics *obs.Metrics) *AHI {
	return &AHI{table: table, pages: pages, metrics: metrics}
}

// GuessOnHash attempts to resolve searchTuple directly to a page/slot
// via the adaptive hash index, bypassing the B-tree descent entirely.
// The bucket lookup, record re-compare and modify-clock freshness check
// run under L_ahi(S), so they appear atomic to a concurrent AHI
// build/drop; the fold of searchTuple is computed before the latch is
// taken, since it reads only the caller's own tuple.
//
// Only ModeE (equality) can be satisfied purely from the hash; the
// other CompareModes are accepted so callers can pass their real
// lookup mode through uniformly, but they always miss, since a range
// positioning needs the B-tree's ordering, which the hash doesn't
// preserve (spec §4.4).
func (a *AHI) GuessOnHash(ctx context.Context, treeID uint64, info *SearchInfo, searchTuple recordkey.Record, mode CompareMode) (GuessResult, error) {
	if err := ctx.Err(); err != nil {
		return GuessResult{}, err
	}
	if !config.AdaptiveHashIndexEnabled() {
		return GuessResult{}, nil
	}
	if mode != ModeE {
		return GuessResult{}, nil
	}

	nFields, nBytes, _ := info.GetRecommendedPrefix()
	fold := recordkey.Fold(treeID, searchTuple, nFields, nBytes)

	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.table.Lookup(fold)
	if !ok {
		a.recordMiss(ctx)
		return GuessResult{}, nil
	}

	clockBefore := a.pages.ModifyClock(data.PageID)
	rec, ok := a.pages.RecordAt(data.PageID, data.Slot)
	if !ok {
		a.recordMiss(ctx)
		return GuessResult{}, nil
	}
	cmp := recordkey.Cmp(rec, searchTuple, nFields, nBytes)
	if !cmp.Comparable || cmp.Order != 0 {
		a.recordMiss(ctx)
		return GuessResult{}, nil
	}
	if a.pages.ModifyClock(data.PageID) != clockBefore {
		// Page mutated mid-probe; the located slot can no longer be
		// trusted. The B-tree descent is the fallback, not an error.
		a.recordMiss(ctx)
		return GuessResult{}, nil
	}

	a.recordHit(ctx)
	up, low := matchExtent(rec, searchTuple, nFields, nBytes)
	return GuessResult{Hit: true, PageID: data.PageID, Slot: data.Slot, UpMatch: up, LowMatch: low}, nil
}

func (a *AHI) recordHit(ctx context.Context) {
	a.metrics.RecordHit(ctx)
}

func (a *AHI) recordMiss(ctx context.Context) {
	a.metrics.RecordMiss(ctx)
}

// matchExtent reports how many leading fields, and how many bytes into
// the first differing field, two records agree on — the up_match/
// low_match pair GuessOnHash reports so a B-tree cursor can avoid
// re-comparing a prefix it already knows matches. It compares raw
// field bytes rather than going through Cmp's per-Kind collation: it's
// an advisory extent hint, not a correctness-bearing ordering, so a
// case-insensitive text field that differs only in case ends the match
// at that field even though GuessOnHash's Cmp check treated it as equal.
func matchExtent(a, b recordkey.Record, nFields, nBytes int) (fields int, bytes int) {
	na, nb := a.NumFields(), b.NumFields()
	n := nFields
	if n > na {
		n = na
	}
	if n > nb {
		n = nb
	}
	i := 0
	for ; i < n; i++ {
		fa, fb := a.FieldAt(i).Bytes(), b.FieldAt(i).Bytes()
		if !bytesEqual(fa, fb) {
			return i, 0
		}
	}
	if i >= na || i >= nb {
		return i, 0
	}
	fa, fb := a.FieldAt(i).Bytes(), b.FieldAt(i).Bytes()
	matched := 0
	limit := len(fa)
	if len(fb) < limit {
		limit = len(fb)
	}
	if limit > nBytes {
		limit = nBytes
	}
	for ; matched < limit; matched++ {
		if fa[matched] != fb[matched] {
			break
		}
	}
	return i, matched
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// buildRetry bounds how long Build keeps retrying (50ms in all) after
// detecting a concurrent page mutation mid-snapshot; a build racing a heavily
// written page is expected to occasionally lose and should back off
// briefly rather than spin.
func buildRetry() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Microsecond
	b.MaxInterval = 5 * time.Millisecond
	b.MaxElapsedTime = 50 * time.Millisecond
	return b
}

// Build hashes every record currently on pageID using info's
// recommended prefix, inserting one node per record. It retries a
// bounded number of times if the page's modify-clock changes mid-build
// (spec §4.4 build/drop races with concurrent DML), and on final
// failure rolls back whatever partial entries it inserted rather than
// leaving the page half-hashed.
func (a *AHI) Build(ctx context.Context, treeID uint64, pageID uint64, info *SearchInfo) (int, error) {
	if !config.AdaptiveHashIndexEnabled() {
		return 0, nil
	}

	var built int
	op := func() error {
		n, err := a.buildOnce(treeID, pageID, info)
		built = n
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(buildRetry(), ctx))
	if err != nil {
		return built, fmt.Errorf("ahi: build page %d: %w", pageID, err)
	}
	if a.metrics != nil {
		a.metrics.RecordBuild(ctx, int64(built))
	}
	info.ResetAfterBuild()
	return built, nil
}

var errPageChangedMidBuild = fmt.Errorf("ahi: page modified during build")

func (a *AHI) buildOnce(treeID uint64, pageID uint64, info *SearchInfo) (int, error) {
	nFields, nBytes, _ := info.GetRecommendedPrefix()
	clockBefore := a.pages.ModifyClock(pageID)
	slots := a.pages.RecordsOnPage(pageID)

	a.mu.Lock()
	defer a.mu.Unlock()

	inserted := make([]uint64, 0, len(slots))
	for _, s := range slots {
		fold := recordkey.Fold(treeID, s.Record, nFields, nBytes)
		if err := a.table.Insert(fold, DataRef{PageID: pageID, Slot: s.Slot}); err != nil {
			for _, f := range inserted {
				a.table.RemoveAllNodesPointingToPage(f, pageID)
			}
			return 0, err
		}
		inserted = append(inserted, fold)
	}

	if a.pages.ModifyClock(pageID) != clockBefore {
		for _, f := range inserted {
			a.table.RemoveAllNodesPointingToPage(f, pageID)
		}
		return 0, errPageChangedMidBuild
	}

	a.pages.MarkHashed(pageID, true)
	return len(inserted), nil
}

// DropPageHashIndex removes every AHI entry for records currently on
// pageID. Each record still resident on the page is rehashed with
// info's prefix to find the bucket its entry lives in, then that
// bucket is swept for nodes pointing at pageID (spec §4.4
// drop_page_hash_index).
func (a *AHI) DropPageHashIndex(ctx context.Context, treeID uint64, pageID uint64, info *SearchInfo) error {
	nFields, nBytes, _ := info.GetRecommendedPrefix()
	slots := a.pages.RecordsOnPage(pageID)

	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for _, s := range slots {
		fold := recordkey.Fold(treeID, s.Record, nFields, nBytes)
		removed += a.table.RemoveAllNodesPointingToPage(fold, pageID)
	}
	a.pages.MarkHashed(pageID, false)
	if a.metrics != nil {
		a.metrics.RecordInvalidated(ctx, int64(removed))
	}
	return nil
}

// DropPageHashWhenFreed is DropPageHashIndex for a page leaving the
// buffer pool entirely, rather than merely being reorganized: the page
// source may no longer have any records to offer, which is treated as
// "nothing to drop", not an error.
func (a *AHI) DropPageHashWhenFreed(ctx context.Context, treeID uint64, pageID uint64, info *SearchInfo) error {
	if !a.pages.IsHashed(pageID) {
		return nil
	}
	return a.DropPageHashIndex(ctx, treeID, pageID, info)
}

// MoveOrDeleteHashEntries handles a page split: if the destination page
// is already hashed (it pre-existed and is being merged into), its
// stale entries are dropped; otherwise a fresh hash is built for it
// from its own post-split records, using the same prefix the source
// page was hashed on (spec §4.4 move_or_delete_hash_entries).
func (a *AHI) MoveOrDeleteHashEntries(ctx context.Context, treeID uint64, newPageID, oldPageID uint64, info *SearchInfo) error {
	if a.pages.IsHashed(newPageID) {
		return a.DropPageHashIndex(ctx, treeID, newPageID, info)
	}
	_, err := a.Build(ctx, treeID, newPageID, info)
	return err
}

// UpdateHashOnInsert adds a single node for a record just inserted
// into an already-hashed page. Pages that aren't currently hashed are
// left alone: a one-record hash would just be evicted by the next
// Build/Drop cycle, so there's no point paying the insert cost.
func (a *AHI) UpdateHashOnInsert(ctx context.Context, treeID uint64, pageID uint64, info *SearchInfo, rec recordkey.Record, slot uint32) error {
	if !a.pages.IsHashed(pageID) {
		return nil
	}
	nFields, nBytes, _ := info.GetRecommendedPrefix()
	fold := recordkey.Fold(treeID, rec, nFields, nBytes)

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.table.Insert(fold, DataRef{PageID: pageID, Slot: slot})
}

// UpdateHashOnDelete removes the single node for a record being purged
// from an already-hashed page.
func (a *AHI) UpdateHashOnDelete(ctx context.Context, treeID uint64, pageID uint64, info *SearchInfo, rec recordkey.Record, slot uint32) error {
	if !a.pages.IsHashed(pageID) {
		return nil
	}
	nFields, nBytes, _ := info.GetRecommendedPrefix()
	fold := recordkey.Fold(treeID, rec, nFields, nBytes)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.table.SearchAndDeleteIfFound(fold, DataRef{PageID: pageID, Slot: slot})
	return nil
}

// Validate re-derives each hashed record's fold from its current page
// contents (using info's current prefix) and confirms it still matches
// the fold the node is stored under. It's a consistency check meant
// for tests and diagnostics, not the hot path: it takes L_ahi(S) for
// its whole duration.
func (a *AHI) Validate(ctx context.Context, treeID uint64, info *SearchInfo) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	nFields, nBytes, _ := info.GetRecommendedPrefix()
	return a.table.Validate(ctx, func(fold uint64, data DataRef) bool {
		rec, ok := a.pages.RecordAt(data.PageID, data.Slot)
		if !ok {
			return true // page/slot already gone; not this check's concern
		}
		return recordkey.Fold(treeID, rec, nFields, nBytes) == fold
	})
}
