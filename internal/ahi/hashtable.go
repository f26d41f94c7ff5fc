package ahi

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DataRef is a weak pointer into the B-tree: a page identity and the
// slot within that page. The hash table never dereferences it; callers
// resolve it through a PageSource, which is the only component allowed
// to know what a page and a slot actually are (spec §4.2, §6).
type DataRef struct {
	PageID uint64
	Slot   uint32
}

// HashTable is the chained hash table of spec §4.2: an ordered sequence
// of buckets, partitioned into a power-of-two number of stripes, each
// stripe owning every bucket whose index modulo the stripe count equals
// the stripe's own index. A lookup, insert, or delete only ever takes
// one stripe's mutex — and only ever allocates from that same stripe's
// arena, so two stripes never contend on shared allocator state either.
type HashTable struct {
	buckets  []*node
	nBuckets uint64
	stripes  []sync.Mutex
	nStripes uint64
	arenas   []*arena
}

// NewHashTable builds a table with at least minBuckets buckets (rounded
// up to the next prime, so fold%nBuckets doesn't alias a power-of-two
// stride in the fold itself) and nStripes stripes (rounded up to the
// next power of two). maxNodes bounds the backing storage; it's split
// evenly across one arena per stripe, so the effective cap is
// maxNodes rounded up to a multiple of the stripe count, not a single
// shared ceiling.
func NewHashTable(minBuckets int, nStripes int, maxNodes int) *HashTable {
	if minBuckets < 1 {
		minBuckets = 1
	}
	if nStripes < 1 {
		nStripes = 1
	}
	nb := nextPrime(minBuckets)
	ns := nextPowerOfTwo(nStripes)
	perStripeMax := 0
	if maxNodes > 0 {
		perStripeMax = (maxNodes + ns - 1) / ns
		if perStripeMax < 1 {
			perStripeMax = 1
		}
	}
	arenas := make([]*arena, ns)
	for i := range arenas {
		arenas[i] = newArena(1024, perStripeMax)
	}
	return &HashTable{
		buckets:  make([]*node, nb),
		nBuckets: uint64(nb),
		stripes:  make([]sync.Mutex, ns),
		nStripes: uint64(ns),
		arenas:   arenas,
	}
}

func (h *HashTable) bucketOf(fold uint64) uint64 { return fold % h.nBuckets }
func (h *HashTable) stripeOf(bucket uint64) uint64 { return bucket % h.nStripes }

// Lookup returns the data pointer stored for fold, or false if no node
// carries that fold.
func (h *HashTable) Lookup(fold uint64) (DataRef, bool) {
	bucket := h.bucketOf(fold)
	stripe := h.stripeOf(bucket)
	h.stripes[stripe].Lock()
	defer h.stripes[stripe].Unlock()
	for n := h.buckets[bucket]; n != nil; n = n.next {
		if n.fold == fold {
			return n.data, true
		}
	}
	return DataRef{}, false
}

// LookupAndUpdateIfFound rewrites the first node matching fold and
// oldData to newData, atomically within that bucket's stripe. It
// reports whether a match was found.
func (h *HashTable) LookupAndUpdateIfFound(fold uint64, oldData, newData DataRef) bool {
	bucket := h.bucketOf(fold)
	stripe := h.stripeOf(bucket)
	h.stripes[stripe].Lock()
	defer h.stripes[stripe].Unlock()
	for n := h.buckets[bucket]; n != nil; n = n.next {
		if n.fold == fold && n.data == oldData {
			n.data = newData
			return true
		}
	}
	return false
}

// Insert upserts on (fold, data): if a node already carries exactly
// this pair, Insert is a no-op: it never creates a duplicate node
// within a bucket (spec §4.2 invariant). It fails only if the arena
// cannot allocate a new node.
func (h *HashTable) Insert(fold uint64, data DataRef) error {
	bucket := h.bucketOf(fold)
	stripe := h.stripeOf(bucket)
	h.stripes[stripe].Lock()
	defer h.stripes[stripe].Unlock()
	for n := h.buckets[bucket]; n != nil; n = n.next {
		if n.fold == fold && n.data == data {
			return nil
		}
	}
	n, err := h.arenas[stripe].alloc()
	if err != nil {
		return err
	}
	n.fold = fold
	n.data = data
	n.next = h.buckets[bucket]
	h.buckets[bucket] = n
	return nil
}

// Delete removes the node matching (fold, data). It returns
// ErrNotFound if no such node exists; callers that aren't certain a
// node is present should use SearchAndDeleteIfFound instead.
func (h *HashTable) Delete(fold uint64, data DataRef) error {
	ok := h.searchAndDelete(fold, data)
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SearchAndDeleteIfFound removes the node matching (fold, data) if
// present and reports whether it removed one. Unlike Delete, a miss is
// not an error: this is the form used on the hot delete-marking path,
// where the record may never have been hashed at all.
func (h *HashTable) SearchAndDeleteIfFound(fold uint64, data DataRef) bool {
	return h.searchAndDelete(fold, data)
}

func (h *HashTable) searchAndDelete(fold uint64, data DataRef) bool {
	bucket := h.bucketOf(fold)
	stripe := h.stripeOf(bucket)
	h.stripes[stripe].Lock()
	defer h.stripes[stripe].Unlock()
	var prev *node
	for n := h.buckets[bucket]; n != nil; n = n.next {
		if n.fold == fold && n.data == data {
			if prev == nil {
				h.buckets[bucket] = n.next
			} else {
				prev.next = n.next
			}
			h.arenas[stripe].release(n)
			return true
		}
		prev = n
	}
	return false
}

// RemoveAllNodesPointingToPage excises every node in fold's bucket
// whose data pointer lies on pageID, returning the count removed. It
// only walks the one bucket that fold maps to: callers drop a whole
// page's hash entries by calling this once per record still resident
// on the page, each with that record's own fold (spec §4.4
// drop_page_hash_index).
func (h *HashTable) RemoveAllNodesPointingToPage(fold uint64, pageID uint64) int {
	bucket := h.bucketOf(fold)
	stripe := h.stripeOf(bucket)
	h.stripes[stripe].Lock()
	defer h.stripes[stripe].Unlock()
	removed := 0
	var prev *node
	cur := h.buckets[bucket]
	for cur != nil {
		if cur.data.PageID == pageID {
			next := cur.next
			if prev == nil {
				h.buckets[bucket] = next
			} else {
				prev.next = next
			}
			h.arenas[stripe].release(cur)
			removed++
			cur = next
			continue
		}
		prev = cur
		cur = cur.next
	}
	return removed
}

// Validate walks every bucket, calling check(fold, data) for each node,
// and reports the first check failure found. Distinct stripes are
// independent mutexes, so validating them concurrently (bounded by a
// semaphore) carries none of the lock-order-inversion risk that
// motivates the spec's "acquire all stripes in index order" language
// for in-place mutation; it only matters here in that each goroutine
// owns exactly one stripe for its lifetime. The walk respects ctx
// cancellation between buckets so a long validation pass on a live
// table doesn't block a shutdown.
func (h *HashTable) Validate(ctx context.Context, check func(fold uint64, data DataRef) bool) error {
	const maxConcurrentStripes = 8
	sem := semaphore.NewWeighted(maxConcurrentStripes)
	g, ctx := errgroup.WithContext(ctx)

	for s := uint64(0); s < h.nStripes; s++ {
		stripe := s
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return h.validateStripe(ctx, stripe, check)
		})
	}
	return g.Wait()
}

func (h *HashTable) validateStripe(ctx context.Context, stripe uint64, check func(fold uint64, data DataRef) bool) error {
	h.stripes[stripe].Lock()
	defer h.stripes[stripe].Unlock()
	for b := stripe; b < h.nBuckets; b += h.nStripes {
		if err := ctx.Err(); err != nil {
			return err
		}
		for n := h.buckets[b]; n != nil; n = n.next {
			if !check(n.fold, n.data) {
				return ErrNotFound
			}
		}
	}
	return nil
}

func nextPrime(n int) int {
	if n < 3 {
		return 2
	}
	candidate := n
	if candidate%2 == 0 {
		candidate++
	}
	for !isPrime(candidate) {
		candidate += 2
	}
	return candidate
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
