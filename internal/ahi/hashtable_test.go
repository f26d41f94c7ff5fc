package ahi_test

import (
	"context"
	"sync"
	"testing"

	"github.com/steveyegge/optiq/internal/ahi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTableInsertLookupDelete(t *testing.T) {
	ht := ahi.NewHashTable(16, 4, 0)
	ref := ahi.DataRef{PageID: 1, Slot: 2}

	_, ok := ht.Lookup(42)
	assert.False(t, ok)

	require.NoError(t, ht.Insert(42, ref))
	got, ok := ht.Lookup(42)
	require.True(t, ok)
	assert.Equal(t, ref, got)

	require.NoError(t, ht.Delete(42, ref))
	_, ok = ht.Lookup(42)
	assert.False(t, ok)
}

func TestHashTableInsertIsIdempotentOnDuplicatePair(t *testing.T) {
	ht := ahi.NewHashTable(16, 4, 0)
	ref := ahi.DataRef{PageID: 1, Slot: 2}

	require.NoError(t, ht.Insert(7, ref))
	require.NoError(t, ht.Insert(7, ref))

	removed := ht.RemoveAllNodesPointingToPage(7, 1)
	assert.Equal(t, 1, removed, "duplicate (fold, data) insert must not create a second node")
}

func TestHashTableDeleteMissingReturnsErrNotFound(t *testing.T) {
	ht := ahi.NewHashTable(16, 4, 0)
	err := ht.Delete(1, ahi.DataRef{PageID: 1, Slot: 1})
	assert.ErrorIs(t, err, ahi.ErrNotFound)
}

func TestHashTableSearchAndDeleteIfFoundToleratesMiss(t *testing.T) {
	ht := ahi.NewHashTable(16, 4, 0)
	assert.False(t, ht.SearchAndDeleteIfFound(1, ahi.DataRef{PageID: 1, Slot: 1}))
}

func TestHashTableLookupAndUpdateIfFound(t *testing.T) {
	ht := ahi.NewHashTable(16, 4, 0)
	oldRef := ahi.DataRef{PageID: 1, Slot: 1}
	newRef := ahi.DataRef{PageID: 1, Slot: 9}
	require.NoError(t, ht.Insert(5, oldRef))

	ok := ht.LookupAndUpdateIfFound(5, oldRef, newRef)
	assert.True(t, ok)

	got, _ := ht.Lookup(5)
	assert.Equal(t, newRef, got)

	ok = ht.LookupAndUpdateIfFound(5, oldRef, newRef)
	assert.False(t, ok, "stale old-data no longer matches after the rewrite")
}

func TestHashTableRemoveAllNodesPointingToPageSparesOtherPages(t *testing.T) {
	ht := ahi.NewHashTable(16, 4, 0)
	require.NoError(t, ht.Insert(3, ahi.DataRef{PageID: 100, Slot: 1}))
	require.NoError(t, ht.Insert(3, ahi.DataRef{PageID: 100, Slot: 2}))
	require.NoError(t, ht.Insert(3, ahi.DataRef{PageID: 200, Slot: 1}))

	removed := ht.RemoveAllNodesPointingToPage(3, 100)
	assert.Equal(t, 2, removed)

	got, ok := ht.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, uint64(200), got.PageID)
}

func TestHashTableArenaExhaustionReturnsOutOfMemory(t *testing.T) {
	ht := ahi.NewHashTable(4, 1, 2)
	require.NoError(t, ht.Insert(1, ahi.DataRef{PageID: 1, Slot: 1}))
	require.NoError(t, ht.Insert(2, ahi.DataRef{PageID: 1, Slot: 2}))
	err := ht.Insert(3, ahi.DataRef{PageID: 1, Slot: 3})
	assert.ErrorIs(t, err, ahi.ErrOutOfMemory)
}

func TestHashTableValidatePassesOnConsistentTable(t *testing.T) {
	ht := ahi.NewHashTable(32, 4, 0)
	for i := uint64(0); i < 50; i++ {
		require.NoError(t, ht.Insert(i, ahi.DataRef{PageID: i, Slot: 0}))
	}
	err := ht.Validate(context.Background(), func(fold uint64, data ahi.DataRef) bool {
		return fold == data.PageID
	})
	assert.NoError(t, err)
}

func TestHashTableValidateReportsInconsistency(t *testing.T) {
	ht := ahi.NewHashTable(32, 4, 0)
	require.NoError(t, ht.Insert(1, ahi.DataRef{PageID: 999, Slot: 0}))
	err := ht.Validate(context.Background(), func(fold uint64, data ahi.DataRef) bool {
		return fold == data.PageID
	})
	assert.Error(t, err)
}

func TestHashTableConcurrentInsertLookupDoesNotRace(t *testing.T) {
	ht := ahi.NewHashTable(64, 8, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				fold := uint64(base*1000 + j)
				ref := ahi.DataRef{PageID: fold, Slot: 0}
				_ = ht.Insert(fold, ref)
				ht.Lookup(fold)
				ht.SearchAndDeleteIfFound(fold, ref)
			}
		}(i)
	}
	wg.Wait()
}
