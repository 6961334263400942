// Package region concatenates per-basin Flowline Stores and reconciles
// Join Tables across basin borders (spec.md §4.C), the vector-network
// analogue of the teacher's sub-watershed remap step (build.sws.transfers.go)
// which stitches per-zone topology back into one domain-wide graph.
package region

import (
	"fmt"
	"sort"

	"github.com/brendan-ward/nhdnet/errs"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// endpointEpsilon is the border-stitch coincidence tolerance (spec.md §4.C
// step 3): "within 1 cm".
const endpointEpsilon = 0.01

// BorderAmbiguity records a downstream-sentinel flowline end that matched
// more than one upstream-sentinel candidate across a basin border; no edge
// is added for it and the sentinels are left in place (spec.md §4.C step 4).
type BorderAmbiguity struct {
	UpstreamID   int64
	DownstreamID []int64 // every candidate b that matched a
	Point        orb.Point
}

// Basin is one per-basin (FlowlineStore, JoinTable) pair.
type Basin struct {
	Store *flowline.Store
	Joins *join.Table
}

// Result is the output of Merge.
type Result struct {
	Store       *flowline.Store
	Joins       *join.Table
	Ambiguities []BorderAmbiguity
}

// Merge unions N per-basin (Store, Table) pairs and reconciles borders
// between them. It is commutative up to row ordering (spec.md §8
// property 5): merging [A,B] and [B,A] produce the same edges and rows.
func Merge(basins []Basin, log *diag.Log) (*Result, error) {
	store := flowline.New()
	joins := join.New()

	// step 1: union flowlines
	for _, b := range basins {
		var insErr error
		b.Store.Iter(func(f *flowline.Flowline) {
			if insErr != nil {
				return
			}
			if _, err := store.Get(f.ID); err == nil {
				insErr = fmt.Errorf("%w: id=%d", errs.DuplicateAcrossBasins, f.ID)
				return
			}
			if err := store.Insert(*f); err != nil {
				insErr = err
			}
		})
		if insErr != nil {
			return nil, insErr
		}
	}

	// step 2: union joins
	for _, b := range basins {
		for _, e := range b.Joins.Edges() {
			joins.Add(e[0], e[1])
		}
	}

	if err := validateJoinReferences(store, joins); err != nil {
		return nil, err
	}

	// step 3/4: border reconciliation
	ambiguities := reconcileBorders(store, joins, log)

	return &Result{Store: store, Joins: joins, Ambiguities: ambiguities}, nil
}

// validateJoinReferences checks invariant 1 / spec.md §8 property 2: every
// non-sentinel join endpoint must reference a flowline present in the
// merged store. A join naming an id no basin ever inserted means upstream
// ingestion built the join table against the wrong store.
func validateJoinReferences(store *flowline.Store, joins *join.Table) error {
	for _, e := range joins.Edges() {
		for _, id := range e {
			if id == join.Sentinel {
				continue
			}
			if _, err := store.Get(id); err != nil {
				return fmt.Errorf("%w: id=%d", errs.InvalidJoin, id)
			}
		}
	}
	return nil
}

// reconcileBorders implements spec.md §4.C steps 3-4.
func reconcileBorders(store *flowline.Store, joins *join.Table, log *diag.Log) []BorderAmbiguity {
	type endpointEntry struct {
		id    int64
		huc4  string
		point orb.Point
	}

	var downSentinelOnly, upSentinelOnly []endpointEntry

	for _, id := range store.IDs() {
		f, _ := store.Get(id)
		ds := joins.DownstreamOf(id)
		if len(ds) == 1 && ds[0] == join.Sentinel {
			end := f.Geometry[len(f.Geometry)-1]
			downSentinelOnly = append(downSentinelOnly, endpointEntry{id, f.HUC4, end})
		}
		us := joins.UpstreamOf(id)
		if len(us) == 1 && us[0] == join.Sentinel {
			start := f.Geometry[0]
			upSentinelOnly = append(upSentinelOnly, endpointEntry{id, f.HUC4, start})
		}
	}

	sort.Slice(downSentinelOnly, func(i, j int) bool { return downSentinelOnly[i].id < downSentinelOnly[j].id })
	sort.Slice(upSentinelOnly, func(i, j int) bool { return upSentinelOnly[i].id < upSentinelOnly[j].id })

	var ambiguities []BorderAmbiguity
	for _, a := range downSentinelOnly {
		var matches []endpointEntry
		for _, b := range upSentinelOnly {
			if b.huc4 == a.huc4 {
				continue
			}
			d := planar.Distance(a.point, b.point)
			if d <= endpointEpsilon {
				matches = append(matches, b)
			}
		}
		switch len(matches) {
		case 0:
			// no border partner; leave as-is (legitimate terminus)
		case 1:
			b := matches[0]
			joins.Remove(a.id, join.Sentinel)
			joins.Remove(join.Sentinel, b.id)
			joins.Add(a.id, b.id)
		default:
			ids := make([]int64, len(matches))
			for i, m := range matches {
				ids[i] = m.id
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			ambiguities = append(ambiguities, BorderAmbiguity{UpstreamID: a.id, DownstreamID: ids, Point: a.point})
			if log != nil {
				log.Add(errs.BorderAmbiguity, "flowline %d borders %d candidates across huc4 boundary; sentinels left in place", a.id, len(ids))
			}
		}
	}
	return ambiguities
}
