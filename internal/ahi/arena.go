package ahi

// node is a chained hash table entry. Nodes are trivially destructible
// (no finalizers, no embedded locks) so the arena can hand them out and
// reclaim them without any per-node teardown (spec §4.2 "plain data,
// arena-allocated").
type node struct {
	fold uint64
	data DataRef
	next *node
}

// arena is a slab allocator for nodes: it hands out nodes from fixed-size
// blocks and tracks freed nodes on a free list, so steady-state rebuild
// churn (AHI entries are dropped and rebuilt constantly as pages split,
// merge, and evict) doesn't pressure the Go GC with one allocation per
// node. maxNodes, if non-zero, bounds the arena's total size; Build
// uses a bounded arena deliberately so a pathological prefix choice
// can't let the AHI grow without limit (spec §4.4 "build failures ...
// disable the AHI for that page without aborting").
type arena struct {
	blockSize int
	maxNodes  int
	allocated int
	free      *node
	blocks    [][]node
}

func newArena(blockSize, maxNodes int) *arena {
	if blockSize <= 0 {
		blockSize = 1024
	}
	return &arena{blockSize: blockSize, maxNodes: maxNodes}
}

func (a *arena) alloc() (*node, error) {
	if a.free != nil {
		n := a.free
		a.free = n.next
		*n = node{}
		return n, nil
	}
	if a.maxNodes > 0 && a.allocated >= a.maxNodes {
		return nil, ErrOutOfMemory
	}
	size := a.blockSize
	if a.maxNodes > 0 && a.maxNodes-a.allocated < size {
		size = a.maxNodes - a.allocated
	}
	block := make([]node, size)
	a.blocks = append(a.blocks, block)
	a.allocated += size
	// Thread the new block onto the free list past its first element,
	// which we hand out immediately.
	for i := len(block) - 1; i >= 1; i-- {
		block[i].next = a.free
		a.free = &block[i]
	}
	return &block[0], nil
}

func (a *arena) release(n *node) {
	*n = node{next: a.free}
	a.free = n
}
