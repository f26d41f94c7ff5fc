package planner_test

import (
	"testing"

	"github.com/steveyegge/optiq/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeDerivedKeysGroupsByClauseNotByFieldUnion(t *testing.T) {
	// spec §8 scenario E's setup: three separate clauses on D propose
	// {a}, {a,b}, and {c} -- never one key unioning all three fields.
	equalities := []planner.Equality{
		{Derived: "D", Field: "a", ClauseID: 1},
		{Derived: "D", Field: "a", ClauseID: 2},
		{Derived: "D", Field: "b", ClauseID: 2},
		{Derived: "D", Field: "c", ClauseID: 3},
	}
	keys := planner.ProposeDerivedKeys(equalities)

	dtk, ok := keys["D"]
	require.True(t, ok)
	require.Len(t, dtk.Keys, 3)
	assert.Equal(t, []string{"a"}, dtk.Keys[0].Fields)
	assert.Equal(t, []string{"a", "b"}, dtk.Keys[1].Fields)
	assert.Equal(t, []string{"c"}, dtk.Keys[2].Fields)
}

func TestFinalizeDerivedKeysPrunesUnusedKeysAndRewritesRefIndex(t *testing.T) {
	keys := map[string]*planner.DerivedTableKeys{
		"D": {
			Table: "D",
			Keys: []planner.CandidateKey{
				{Fields: []string{"a"}},
				{Fields: []string{"a", "b"}},
				{Fields: []string{"c"}},
			},
		},
	}
	ref := planner.MakeRef("D", planner.KeyRef{Table: "D", Index: 1, KeyLen: 2}, false, false)

	planner.FinalizeDerivedKeys(ref, keys)

	dtk := keys["D"]
	require.Len(t, dtk.Keys, 1, "only the {a,b} key actually used by the REF survives")
	assert.Equal(t, []string{"a", "b"}, dtk.Keys[0].Fields)

	rp, ok := ref.Payload().(*planner.RefPayload)
	require.True(t, ok)
	assert.Equal(t, 0, rp.Key.Index, "the REF path is rewritten to the compacted index")
}

func TestFinalizeDerivedKeysOnNoProposedKeysIsANoOp(t *testing.T) {
	// round-trip law: a plan with zero derived-table keys proposed
	// (e.g. no query block has any derived table) leaves the empty
	// key_info map untouched -- there's nothing to mark or compact.
	keys := map[string]*planner.DerivedTableKeys{}
	scan := planner.MakeTableScan("other_table")

	planner.FinalizeDerivedKeys(scan, keys)

	assert.Empty(t, keys)
}

func TestFinalizeDerivedKeysKeepsUniqueKeyEvenWhenUnused(t *testing.T) {
	keys := map[string]*planner.DerivedTableKeys{
		"D": {
			Table: "D",
			Keys: []planner.CandidateKey{
				{Fields: []string{"a"}, IsUnique: true},
				{Fields: []string{"b"}},
			},
		},
	}
	scan := planner.MakeTableScan("other_table")

	planner.FinalizeDerivedKeys(scan, keys)

	dtk := keys["D"]
	require.Len(t, dtk.Keys, 1)
	assert.Equal(t, []string{"a"}, dtk.Keys[0].Fields)
}
