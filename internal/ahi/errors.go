package ahi

import "errors"

// Sentinel errors, modeled on the teacher's internal/storage/sqlite
// errors.go: wrap with fmt.Errorf("%w", ...) at call sites rather than
// constructing new error values, so callers can errors.Is against these.
var (
	// ErrOutOfMemory is returned when the node arena has a hard cap and
	// that cap has been reached. A real buffer-pool-backed arena would
	// instead evict; this package's arena is bounded so it can model
	// the "build failures degrade gracefully" contract (spec §4.4)
	// without an unbounded test-time allocator.
	ErrOutOfMemory = errors.New("ahi: node arena exhausted")

	// ErrNotFound is returned by Delete when the caller's precondition
	// (the node exists) doesn't hold, and by Validate when a node's
	// reference fails the caller's check. It is a programmer-error signal,
	// not a normal miss path — lookups use the bool return instead.
	ErrNotFound = errors.New("ahi: node not found")

	// ErrDisabled names the state in which config.AdaptiveHashIndexEnabled
	// reports false. No operation in this package returns it: when the
	// index is disabled GuessOnHash reports a miss and Build inserts
	// nothing, both with a nil error.
	ErrDisabled = errors.New("ahi: adaptive hash index disabled")
)
