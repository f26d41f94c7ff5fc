package planner

// CandidateKey is one proposed key on a derived table: the set of
// fields some `derived.f = expr` equality equated it on, plus whether
// the post-planning pass ever found a plan node that actually used it
// (spec §4.8).
type CandidateKey struct {
	Fields   []string
	Used     bool
	IsUnique bool // true for a derived table's own declared unique index; never pruned
}

// DerivedTableKeys is one derived table's key_info: the candidate keys
// proposed for it before planning, indexed the same way AccessPath's
// KeyRef.Index addresses them.
type DerivedTableKeys struct {
	Table string
	Keys  []CandidateKey
}

// Equality is one `derived.f = expr` equality found while walking a
// WHERE or ON clause. ClauseID groups equalities that came from the
// same AND-connected conjunction, so e.g. `d.a = x AND d.b = y` in one
// ON clause proposes a single two-field key, while an unrelated
// `d.a = z` elsewhere proposes its own single-field key (spec §8
// scenario E).
type Equality struct {
	Derived  string
	Field    string
	ClauseID int
}

// ProposeDerivedKeys is C8's pre-planning pass: group equalities by
// derived table and clause, and propose each distinct clause's field
// set as one candidate key on that table. Set-operation-backed derived
// tables are never passed in here — the caller excludes them while
// walking, since indexing their output is unsupported.
func ProposeDerivedKeys(equalities []Equality) map[string]*DerivedTableKeys {
	type clauseKey struct {
		table    string
		clauseID int
	}
	fieldsByClause := make(map[clauseKey][]string)
	var order []clauseKey
	for _, eq := range equalities {
		ck := clauseKey{table: eq.Derived, clauseID: eq.ClauseID}
		if _, seen := fieldsByClause[ck]; !seen {
			order = append(order, ck)
		}
		fieldsByClause[ck] = appendUniqueField(fieldsByClause[ck], eq.Field)
	}

	result := make(map[string]*DerivedTableKeys)
	for _, ck := range order {
		dtk, ok := result[ck.table]
		if !ok {
			dtk = &DerivedTableKeys{Table: ck.table}
			result[ck.table] = dtk
		}
		fields := fieldsByClause[ck]
		if keyAlreadyProposed(dtk.Keys, fields) {
			continue
		}
		dtk.Keys = append(dtk.Keys, CandidateKey{Fields: fields})
	}
	return result
}

func appendUniqueField(fields []string, f string) []string {
	for _, existing := range fields {
		if existing == f {
			return fields
		}
	}
	return append(fields, f)
}

func keyAlreadyProposed(keys []CandidateKey, fields []string) bool {
	for _, k := range keys {
		if sameFieldSet(k.Fields, fields) {
			return true
		}
	}
	return false
}

func sameFieldSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f] = true
	}
	for _, f := range b {
		if !seen[f] {
			return false
		}
	}
	return true
}

// FinalizeDerivedKeys is C8's post-planning pass: walk the final plan
// marking every derived-table key a REF access path, unique index, or
// hash-dedup key actually uses, then compact each derived table's
// key_info down to just the marked keys and rewrite every REF access
// path's key index to match (spec §4.8, scenario E).
func FinalizeDerivedKeys(root *AccessPath, keysByTable map[string]*DerivedTableKeys) {
	markUsedKeys(root, keysByTable)
	for table, dtk := range keysByTable {
		before := len(dtk.Keys)
		remap := compactDerivedTableKeys(dtk)
		if len(dtk.Keys) == before {
			continue
		}
		rewriteKeyIndices(root, table, remap)
	}
}

func markUsedKeys(root *AccessPath, keysByTable map[string]*DerivedTableKeys) {
	Walk(root, EntireTree, nil, func(p *AccessPath, _ *RelExpr) bool {
		switch v := p.payload.(type) {
		case *RefPayload:
			markKey(keysByTable, v.Table, v.Key.Index)
		case *ConstTablePayload:
			markKey(keysByTable, v.Table, v.Key.Index)
		case *RemoveDuplicatesPayload:
			markKey(keysByTable, v.Table, v.Key.Index)
		case *NestedLoopSemiJoinDedupPayload:
			markKey(keysByTable, v.DedupTable, v.DedupKey.Index)
		}
		return false
	})
}

func markKey(keysByTable map[string]*DerivedTableKeys, table string, index int) {
	dtk, ok := keysByTable[table]
	if !ok || index < 0 || index >= len(dtk.Keys) {
		return
	}
	dtk.Keys[index].Used = true
}

// compactDerivedTableKeys removes every unmarked, non-unique key from
// dtk in place, preserving the relative order of the keys that remain,
// and returns the old-index -> new-index remap for rewriteKeyIndices.
func compactDerivedTableKeys(dtk *DerivedTableKeys) map[int]int {
	remap := make(map[int]int, len(dtk.Keys))
	kept := dtk.Keys[:0]
	for i, k := range dtk.Keys {
		if !k.Used && !k.IsUnique {
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, k)
	}
	dtk.Keys = kept
	return remap
}

func rewriteKeyIndices(root *AccessPath, table string, remap map[int]int) {
	Walk(root, EntireTree, nil, func(p *AccessPath, _ *RelExpr) bool {
		switch v := p.payload.(type) {
		case *RefPayload:
			if v.Table == table {
				remapIndex(&v.Key.Index, remap)
			}
		case *ConstTablePayload:
			if v.Table == table {
				remapIndex(&v.Key.Index, remap)
			}
		case *RemoveDuplicatesPayload:
			if v.Table == table {
				remapIndex(&v.Key.Index, remap)
			}
		case *NestedLoopSemiJoinDedupPayload:
			if v.DedupTable == table {
				remapIndex(&v.DedupKey.Index, remap)
			}
		}
		return false
	})
}

func remapIndex(idx *int, remap map[int]int) {
	if n, ok := remap[*idx]; ok {
		*idx = n
	}
}
