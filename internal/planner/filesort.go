package planner

// BuildFilesort allocates a filesort descriptor for a SORT node from
// its (already rewritten) order items, and reports whether tables
// below the sort need to start carrying rowids — true when the sort
// can't pack every referenced column into its addon fields, i.e. some
// order item isn't present in the projection it's sorting (spec §4.7
// step 4).
func BuildFilesort(orderItems []string, projection []string) (*FilesortDescriptor, bool) {
	addon := true
	projected := make(map[string]bool, len(projection))
	for _, p := range projection {
		projected[p] = true
	}
	for _, item := range orderItems {
		if !projected[item] {
			addon = false
			break
		}
	}
	return &FilesortDescriptor{
		OrderItems:  append([]string(nil), orderItems...),
		AddonFields: addon,
		ForceRowIDs: !addon,
	}, !addon
}
