package planner

// RewriteMap is the explicit replacement map spec §9 recommends in
// place of the source's whole-tree Item mutation: each materialisation
// captures one of these (ItemsToCopy, flattened), and the finaliser
// applies it functionally rather than walking and mutating expression
// trees in place.
type RewriteMap map[string]string

// NewRewriteMap flattens a TempTableParams' ItemsToCopy into a lookup
// table.
func NewRewriteMap(copies []ItemCopy) RewriteMap {
	m := make(RewriteMap, len(copies))
	for _, c := range copies {
		m[c.Source] = c.Target
	}
	return m
}

// Rewrite is the pure function spec §9 asks for: rewrite(expr, map) ->
// expr. An expression with no entry in the map passes through
// unchanged.
func Rewrite(expr string, m RewriteMap) string {
	if target, ok := m[expr]; ok {
		return target
	}
	return expr
}

// RewriteAll applies Rewrite across a slice, returning a new slice
// (the input is never mutated, matching the "pure function" framing).
func RewriteAll(exprs []string, m RewriteMap) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = Rewrite(e, m)
	}
	return out
}

// Merge layers m2 over m, with m2's entries taking precedence —
// later-discovered materialisations see earlier ones' rewrites already
// applied, spec §4.7 step 3: "the finaliser then rewrites: the
// projection list (so later materialisations see already-rewritten
// sources) …".
func (m RewriteMap) Merge(m2 RewriteMap) RewriteMap {
	out := make(RewriteMap, len(m)+len(m2))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range m2 {
		out[k] = v
	}
	return out
}
