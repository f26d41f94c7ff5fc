package ahi

import "sync/atomic"

// Side records which of several records sharing the recommended prefix
// the hash should point at: the leftmost or the rightmost. SearchInfo
// stores it alongside the prefix and GetRecommendedPrefix returns it;
// Build does not consult it, and inserts one node per record on the page.
type Side int32

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// CompareMode is the relational operator a B-tree positioning was
// asked to satisfy. The AHI can only stand in for G/GE/L/LE/E lookups
// that degenerate to an equality probe on the recommended prefix; spec
// §4.4 is explicit that a full range scan never consults the hash.
type CompareMode int

const (
	ModeL CompareMode = iota
	ModeLE
	ModeG
	ModeGE
	ModeE
)

// defaults for the build heuristic, as package constants. NewSearchInfo
// takes its build-after threshold from the caller; nothing in this
// package reads config.HashAnalysisThreshold.
const (
	defaultHashSuccessLimit = 100
	defaultPatternLimit     = 3
)

// SearchInfo is the per-index advisory state of spec §4.3: heuristic
// counters updated on every B-tree positioning, read (without ever
// blocking a reader) to decide whether building a hash for this index
// is currently worthwhile and what prefix to build it on. All fields
// are accessed through sync/atomic rather than guarded by a mutex: the
// values are advisory inputs to a heuristic, not data the AHI's
// correctness depends on, so a reader observing a slightly stale value
// is harmless (spec §5 "relaxed consistency is acceptable for advisory
// fields").
type SearchInfo struct {
	buildAfter  uint32
	successLimit uint32
	patternLimit uint32

	hashAnalysis   atomic.Uint32
	analyzing      atomic.Bool
	nHashPotential atomic.Int32
	lastHashSucc   atomic.Bool

	nFields atomic.Uint32
	nBytes  atomic.Uint32
	side    atomic.Int32

	lastMode      atomic.Int32
	patternRepeat atomic.Uint32

	rootGuess atomic.Uint64
}

// NewSearchInfo builds a SearchInfo whose analysis phase begins after
// buildAfter positionings and which recommends a build once
// nHashPotential reaches successLimit consecutive hash-eligible
// positionings.
func NewSearchInfo(buildAfter, successLimit uint32) *SearchInfo {
	if successLimit == 0 {
		successLimit = defaultHashSuccessLimit
	}
	si := &SearchInfo{
		buildAfter:   buildAfter,
		successLimit: successLimit,
		patternLimit: defaultPatternLimit,
	}
	si.nFields.Store(1)
	return si
}

// Position describes one B-tree positioning, as observed by the caller
// that performed it (normally the storage engine's cursor code, which
// this package never calls into directly — spec §6 PageSource is the
// only collaborator it knows about).
type Position struct {
	Mode         CompareMode
	WasHashHit   bool
	NFieldsUsed  uint32
	NBytesUsed   uint32
	Side         Side
}

// UpdateOnPosition folds one positioning's outcome into the running
// heuristic. It never blocks and never allocates.
func (si *SearchInfo) UpdateOnPosition(pos Position) {
	analysis := si.hashAnalysis.Add(1)
	if analysis > si.buildAfter {
		si.analyzing.Store(true)
	}

	if pos.WasHashHit {
		n := si.nHashPotential.Add(1)
		if n > int32(si.successLimit)*2 {
			si.nHashPotential.Store(int32(si.successLimit) * 2)
		}
		si.nFields.Store(pos.NFieldsUsed)
		si.nBytes.Store(pos.NBytesUsed)
		si.side.Store(int32(pos.Side))
	} else {
		n := si.nHashPotential.Add(-1)
		if n < 0 {
			si.nHashPotential.Store(0)
		}
	}
	si.lastHashSucc.Store(pos.WasHashHit)

	if si.lastMode.Load() == int32(pos.Mode) {
		si.patternRepeat.Add(1)
	} else {
		si.lastMode.Store(int32(pos.Mode))
		si.patternRepeat.Store(1)
	}
}

// ShouldBuildHash reports whether the accumulated heuristic recommends
// building (or rebuilding) a hash for this index right now.
func (si *SearchInfo) ShouldBuildHash() bool {
	return si.analyzing.Load() && si.nHashPotential.Load() >= int32(si.successLimit)
}

// RepeatedPattern reports whether the last patternLimit positionings
// used the same comparison mode, which the finaliser (C7) and the
// optimizer can use as a signal that a prepared-statement-style
// workload is running the same query shape repeatedly.
func (si *SearchInfo) RepeatedPattern() bool {
	return si.patternRepeat.Load() >= si.patternLimit
}

// GetRecommendedPrefix returns the (nFields, nBytes, side) the
// heuristic currently recommends hashing on.
func (si *SearchInfo) GetRecommendedPrefix() (nFields, nBytes int, side Side) {
	return int(si.nFields.Load()), int(si.nBytes.Load()), Side(si.side.Load())
}

// ResetAfterBuild clears the potential counter after a build has been
// attempted, so the next recommendation has to earn consensus again
// rather than immediately re-triggering a rebuild of the same prefix.
func (si *SearchInfo) ResetAfterBuild() {
	si.nHashPotential.Store(0)
	si.analyzing.Store(false)
	si.hashAnalysis.Store(0)
}

// RootGuess returns the last page id guessed to be the index's root,
// or 0 if none has been recorded. Storage engines that cache the root
// page identity per index can feed it back through SetRootGuess; the
// AHI package itself never reads this field.
func (si *SearchInfo) RootGuess() uint64 { return si.rootGuess.Load() }

func (si *SearchInfo) SetRootGuess(pageID uint64) { si.rootGuess.Store(pageID) }
