// Package snap projects point barriers onto the nearest flowline and
// computes the QA heuristics that downstream analysts use to judge a
// snap's trustworthiness (spec.md §4.D).
package snap

import (
	"math"

	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/errs"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/paulmach/orb"
)

// candidatesWithin100m is a fixed QA radius (spec.md §4.D step 4),
// independent of the configured MaxSnapDist.
const candidatesWithin100m = 100.0

// ambiguityMargin is the distance-tie window that triggers AmbiguousSnap
// (spec.md §7): two candidates within 0.1m of each other, both within
// MaxSnapDist.
const ambiguityMargin = 0.1

// Config parameterizes the Snapper (spec.md §6).
type Config struct {
	MaxSnapDist             float64 // meters, default 100
	EndpointEpsilon         float64 // meters, default 1
	NameSimilarityThreshold float64 // 0-1, default 0.8
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{MaxSnapDist: 100, EndpointEpsilon: 1, NameSimilarityThreshold: 0.8}
}

// candidateSearchLimit bounds how many nearest candidates Snap inspects
// per barrier when looking for an ambiguous tie; a barrier legitimately
// adjacent to more flowlines than this is astronomically rare on a
// real network and would indicate bad input data regardless.
const candidateSearchLimit = 16

// Snap projects each barrier onto its nearest flowline within cfg.MaxSnapDist
// and fills in its QA fields, mutating a copy of the input slice. Diagnostics
// (AmbiguousSnap) are appended to log; the returned slice is never nil.
func Snap(store *flowline.Store, barriers []barrier.Barrier, cfg Config, log *diag.Log) []barrier.Barrier {
	out := make([]barrier.Barrier, len(barriers))
	for i, b := range barriers {
		out[i] = snapOne(store, b, cfg, log)
	}
	return out
}

func snapOne(store *flowline.Store, b barrier.Barrier, cfg Config, log *diag.Log) barrier.Barrier {
	p := orb.Point{b.X, b.Y}

	candidates := store.Nearest(p, cfg.MaxSnapDist, candidateSearchLimit)
	b.CandidatesWithin100m = len(store.Nearest(p, candidatesWithin100m, 0))

	if len(candidates) == 0 {
		b.OffNetwork = true
		b.SnapDist = math.Inf(1)
		b.TargetFlowlineID = barrier.NoTarget
		return b
	}

	if len(candidates) >= 2 && candidates[1].Dist-candidates[0].Dist <= ambiguityMargin && candidates[1].Dist <= cfg.MaxSnapDist {
		if log != nil {
			log.Add(errs.AmbiguousSnap, "barrier %d: flowlines %d (%.3fm) and another within %.3fm of each other", b.ID, candidates[0].ID, candidates[0].Dist, ambiguityMargin)
		}
	}

	f0ID := candidates[0].ID
	f0, err := store.Get(f0ID)
	if err != nil {
		b.OffNetwork = true
		b.SnapDist = math.Inf(1)
		b.TargetFlowlineID = barrier.NoTarget
		return b
	}

	proj := flowline.Project(f0.Geometry, p)
	s0 := proj.S
	length := f0.Length

	b.TargetFlowlineID = f0ID
	b.SnapDist = proj.Dist
	b.SnapS = s0
	b.SnappedX, b.SnappedY = proj.Point[0], proj.Point[1]
	b.NameMatchKind = matchName(b.GnisName, f0.GnisName, cfg.NameSimilarityThreshold)

	switch {
	case s0 < cfg.EndpointEpsilon:
		b.AtEndpoint = true
		b.SnapS = 0
		b.SnappedX, b.SnappedY = f0.Geometry[0][0], f0.Geometry[0][1]
	case length-s0 < cfg.EndpointEpsilon:
		b.AtEndpoint = true
		b.SnapS = length
		b.SnappedX, b.SnappedY = f0.Geometry[len(f0.Geometry)-1][0], f0.Geometry[len(f0.Geometry)-1][1]
	}

	return b
}

func matchName(barrierName, flowlineName string, threshold float64) barrier.NameMatch {
	if barrierName == "" {
		return barrier.NoMatch
	}
	a, b := normalizeName(barrierName), normalizeName(flowlineName)
	if b == "" {
		return barrier.NoMatch
	}
	if a == b {
		return barrier.Exact
	}
	if tokenSetSimilarity(a, b) >= threshold {
		return barrier.Fuzzy
	}
	return barrier.NoMatch
}
