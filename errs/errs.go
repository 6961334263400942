// Package errs enumerates the error kinds surfaced by the pipeline stages.
//
// Fatal kinds abort the region they occur in and are returned from the
// stage function that detected them. Non-fatal kinds are accumulated into
// a diag.Log alongside a stage's normal output instead of being returned.
package errs

import "errors"

// Ingestion.
var (
	DuplicateID           = errors.New("duplicate id")
	DuplicateAcrossBasins = errors.New("duplicate id across basins")
	EmptyGeometry         = errors.New("empty geometry")
	InvalidJoin           = errors.New("join references unknown id")
	// CrsMismatch is reserved: no code in this module reads a CRS, so
	// nothing currently produces it.
	CrsMismatch = errors.New("crs mismatch")
)

// Topological. Reserved: spec.md §9 does not require traversal to enforce
// DAG-ness, so nothing currently produces this.
var CycleDetected = errors.New("cycle detected")

// Snapping. Non-fatal; reported alongside the chosen snap.
var AmbiguousSnap = errors.New("ambiguous snap")

// Cutting.
var IDCollision = errors.New("minted id collision")

// Border. Non-fatal; joins left as sentinels.
var BorderAmbiguity = errors.New("border ambiguity")

// Resource. Reserved: nothing in this module currently streams data large
// enough to need a resource-exhaustion guard.
var OutOfMemory = errors.New("out of memory")

// Store.
var UnknownID = errors.New("unknown id")

// Diagnostics-only, non-fatal (see SPEC_FULL.md §5.2): a barrier the
// source data flags as physically removed from the field, excluded from
// cutting but tracked apart from OffNetwork.
var BarrierExcludedRemoved = errors.New("barrier excluded: removed from field")

// Diagnostics-only, non-fatal (spec.md §4.F step 2): an upstream id was
// reached from more than one root during network assembly, which should
// not occur on a valid DAG.
var DoubleAssignment = errors.New("double assignment during network traversal")
