// Package cut splits flowlines at snapped barrier positions, mints fresh
// segment identifiers for the pieces, and rewires the join topology
// (spec.md §4.E). This is the network-surgery analogue of the teacher's
// sub-watershed remap (build.sws.transfers.go), which also tears a
// structural array apart and rebuilds its topology with freshly indexed
// pieces.
package cut

import (
	"errors"
	"fmt"
	"sort"

	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/errs"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/join"
)

// mergeEpsilon is the fixed (spec.md §4.E step 3) tolerance for collapsing
// two close barrier positions on the same flowline into a single cut;
// distinct from the configurable endpoint_epsilon the Snapper uses to snap
// a barrier onto an existing flowline endpoint.
const mergeEpsilon = 0.001 // 1mm

// Wiring is the barrier -> cut-endpoint mapping recorded by the Cutter
// (spec.md §4.E step 7): the flowline id immediately upstream and
// immediately downstream of where the barrier now sits. Either side may be
// the join.Sentinel 0 when the barrier sits at an origin/terminus that
// already existed (no new cut was needed there).
type Wiring struct {
	UpstreamID   int64
	DownstreamID int64
}

// CutPredicate decides whether a given barrier actually cuts the network
// for a given analysis (spec.md §9 "dynamic dispatch"); e.g. an analysis
// restricted to dams-only would return false for waterfalls and small
// barriers. A nil predicate cuts at every non-excluded barrier.
type CutPredicate func(barrier.Barrier) bool

// Config parameterizes the Cutter.
type Config struct {
	ShouldCut CutPredicate
}

// Cut mutates store and joins in place, splitting every flowline that has
// at least one eligible on-barrier position. It returns the barrier-id ->
// Wiring sidecar table. Off-network, Removed, and predicate-excluded
// barriers are skipped; duplicate barriers at an identical position on an
// identical flowline are collapsed, keeping the lowest id.
func Cut(store *flowline.Store, joins *join.Table, barriers []barrier.Barrier, cfg Config, counter *IDCounter, log *diag.Log) (map[int64]Wiring, error) {
	eligible := filterEligible(barriers, cfg, log)

	byFlowline := make(map[int64][]barrier.Barrier)
	for _, b := range eligible {
		byFlowline[b.TargetFlowlineID] = append(byFlowline[b.TargetFlowlineID], b)
	}

	fids := make([]int64, 0, len(byFlowline))
	for fid := range byFlowline {
		fids = append(fids, fid)
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })

	wiring := make(map[int64]Wiring)
	for _, fid := range fids {
		if err := cutOne(store, joins, fid, byFlowline[fid], counter, wiring); err != nil {
			return nil, err
		}
	}

	store.Rebuild()
	return wiring, nil
}

// filterEligible drops off-network, removed, and predicate-excluded
// barriers, then collapses same-position duplicates.
func filterEligible(barriers []barrier.Barrier, cfg Config, log *diag.Log) []barrier.Barrier {
	sorted := make([]barrier.Barrier, len(barriers))
	copy(sorted, barriers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	type posKey struct {
		fid int64
		s   int64 // position rounded to the nearest tenth of a millimeter
	}
	seen := make(map[posKey]bool)

	out := make([]barrier.Barrier, 0, len(sorted))
	for _, b := range sorted {
		if b.OffNetwork {
			continue
		}
		if b.Removed {
			if log != nil {
				log.Add(errs.BarrierExcludedRemoved, "barrier %d excluded from cutting: marked removed from field", b.ID)
			}
			continue
		}
		if cfg.ShouldCut != nil && !cfg.ShouldCut(b) {
			continue
		}
		key := posKey{fid: b.TargetFlowlineID, s: int64(b.SnapS*10000 + 0.5)}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

type cluster struct {
	s          float64
	barrierIDs []int64
}

// mergeClusters groups barriers on the same flowline whose snapped
// positions are within mergeEpsilon of each other into one cut point
// (spec.md §4.E step 3).
func mergeClusters(bs []barrier.Barrier) []cluster {
	sorted := make([]barrier.Barrier, len(bs))
	copy(sorted, bs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SnapS != sorted[j].SnapS {
			return sorted[i].SnapS < sorted[j].SnapS
		}
		return sorted[i].ID < sorted[j].ID
	})

	var clusters []cluster
	for _, b := range sorted {
		if len(clusters) > 0 && b.SnapS-clusters[len(clusters)-1].s <= mergeEpsilon {
			c := &clusters[len(clusters)-1]
			c.barrierIDs = append(c.barrierIDs, b.ID)
			continue
		}
		clusters = append(clusters, cluster{s: b.SnapS, barrierIDs: []int64{b.ID}})
	}
	return clusters
}

func cutOne(store *flowline.Store, joins *join.Table, fid int64, bs []barrier.Barrier, counter *IDCounter, wiring map[int64]Wiring) error {
	f, err := store.Get(fid)
	if err != nil {
		return err
	}

	clusters := mergeClusters(bs)
	if len(clusters) == 0 {
		return nil
	}

	// An at_endpoint cluster is never split, whether fid is a network
	// origin/terminus or an interior junction (spec.md §9): splitting at
	// s=0 or s=length mints a zero-length piece, which store.Insert
	// rejects. When fid has a real neighbor already sitting there, the
	// barrier is wired against that neighbor instead of the sentinel.
	dropUpstream := clusters[0].s <= mergeEpsilon
	dropDownstream := clusters[len(clusters)-1].s >= f.Length-mergeEpsilon
	if len(clusters) == 1 && dropUpstream && dropDownstream {
		// a single degenerate cluster sitting at both ends at once
		// (a near-zero-length flowline already bounded on both sides)
		// deterministically prefers the upstream-drop branch.
		dropDownstream = false
	}

	upstreamNeighbor := join.Sentinel
	if us := realNeighbors(joins.UpstreamOf(fid)); len(us) > 0 {
		// every real neighbor here belongs to the same not-yet-cut
		// network, so any one of them is a valid wiring target.
		upstreamNeighbor = us[0]
	}
	downstreamNeighbor := join.Sentinel
	if ds := realNeighbors(joins.DownstreamOf(fid)); len(ds) > 0 {
		downstreamNeighbor = ds[0]
	}

	kept := clusters
	var droppedUpstream, droppedDownstream *cluster
	if dropUpstream {
		droppedUpstream = &clusters[0]
		kept = kept[1:]
	}
	if dropDownstream && len(kept) > 0 {
		droppedDownstream = &clusters[len(clusters)-1]
		kept = kept[:len(kept)-1]
	}

	ss := make([]float64, len(kept))
	for i, c := range kept {
		ss[i] = c.s
	}

	var newIDs []int64
	if len(ss) > 0 {
		children := flowline.Split(f.Geometry, ss)
		newIDs = make([]int64, len(children))
		for i := range children {
			newIDs[i] = counter.Next()
		}

		upstreamEdges := joins.UpstreamOf(fid)
		downstreamEdges := joins.DownstreamOf(fid)

		if err := store.Remove(fid); err != nil {
			return err
		}
		for i, g := range children {
			child := flowline.Flowline{
				ID:          newIDs[i],
				Geometry:    g,
				HUC4:        f.HUC4,
				GnisName:    f.GnisName,
				SizeClass:   f.SizeClass,
				Loop:        f.Loop,
				CatchmentID: f.CatchmentID,
			}
			if err := store.Insert(child); err != nil {
				if errors.Is(err, errs.DuplicateID) {
					return fmt.Errorf("%w: minted id %d collides with an existing flowline", errs.IDCollision, newIDs[i])
				}
				return fmt.Errorf("minted id %d: %w", newIDs[i], err)
			}
		}

		for _, u := range upstreamEdges {
			joins.Remove(u, fid)
			joins.Add(u, newIDs[0])
		}
		for _, d := range downstreamEdges {
			joins.Remove(fid, d)
			joins.Add(newIDs[len(newIDs)-1], d)
		}
		for i := 0; i < len(newIDs)-1; i++ {
			joins.Add(newIDs[i], newIDs[i+1])
		}
	}

	finalUpstreamEnd, finalDownstreamEnd := fid, fid
	if len(newIDs) > 0 {
		finalUpstreamEnd, finalDownstreamEnd = newIDs[0], newIDs[len(newIDs)-1]
	}

	if droppedUpstream != nil {
		for _, bid := range droppedUpstream.barrierIDs {
			wiring[bid] = Wiring{UpstreamID: upstreamNeighbor, DownstreamID: finalUpstreamEnd}
		}
	}
	if droppedDownstream != nil {
		for _, bid := range droppedDownstream.barrierIDs {
			wiring[bid] = Wiring{UpstreamID: finalDownstreamEnd, DownstreamID: downstreamNeighbor}
		}
	}
	for j, c := range kept {
		for _, bid := range c.barrierIDs {
			wiring[bid] = Wiring{UpstreamID: newIDs[j], DownstreamID: newIDs[j+1]}
		}
	}

	return nil
}

// realNeighbors drops the origin/terminus sentinel from a join lookup,
// leaving only ids of actual flowlines.
func realNeighbors(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != join.Sentinel {
			out = append(out, id)
		}
	}
	return out
}
