package network

import (
	"sort"

	"github.com/brendan-ward/nhdnet/cut"
	"github.com/brendan-ward/nhdnet/join"
)

// BarrierLink is the barrier-to-network table of spec.md §6, restricted to
// the two network-id columns (iotable.BarrierLinkTable adds the snap QA
// columns alongside them).
type BarrierLink struct {
	BarrierID           int64
	UpstreamNetworkID   int64 // 0 if the barrier's upstream side is a bare origin with no cut network of its own
	DownstreamNetworkID int64 // 0 if the barrier's downstream side is a terminus
}

// LinkBarriers joins the Cutter's wiring sidecar to the assembled networks,
// producing one row per barrier that was actually cut (spec.md §6 output).
func LinkBarriers(networks []Network, wiring map[int64]cut.Wiring) []BarrierLink {
	root := rootOfFlowline(networks)

	barrierIDs := make([]int64, 0, len(wiring))
	for bid := range wiring {
		barrierIDs = append(barrierIDs, bid)
	}
	sort.Slice(barrierIDs, func(i, j int) bool { return barrierIDs[i] < barrierIDs[j] })

	out := make([]BarrierLink, 0, len(barrierIDs))
	for _, bid := range barrierIDs {
		w := wiring[bid]
		link := BarrierLink{BarrierID: bid}
		if w.UpstreamID != join.Sentinel {
			link.UpstreamNetworkID = root[w.UpstreamID]
		}
		if w.DownstreamID != join.Sentinel {
			link.DownstreamNetworkID = root[w.DownstreamID]
		}
		out = append(out, link)
	}
	return out
}

func rootOfFlowline(networks []Network) map[int64]int64 {
	m := make(map[int64]int64)
	for _, n := range networks {
		for _, id := range n.Members {
			m[id] = n.RootID
		}
	}
	return m
}

// Linkage indexes BarrierLink rows by network id for the supplemented
// upstream/downstream-barrier-spacing queries used by the stats package
// (SPEC_FULL.md §5.3).
type Linkage struct {
	upstreamBarriersOf   map[int64][]int64 // networkID -> barriers immediately downstream of it
	downstreamBarrierOf  map[int64]int64   // networkID -> the single barrier immediately upstream of it
}

// NewLinkage indexes links for lookup.
func NewLinkage(links []BarrierLink) *Linkage {
	l := &Linkage{
		upstreamBarriersOf:  make(map[int64][]int64),
		downstreamBarrierOf: make(map[int64]int64),
	}
	for _, lk := range links {
		if lk.UpstreamNetworkID != 0 {
			l.upstreamBarriersOf[lk.UpstreamNetworkID] = append(l.upstreamBarriersOf[lk.UpstreamNetworkID], lk.BarrierID)
		}
		if lk.DownstreamNetworkID != 0 {
			l.downstreamBarrierOf[lk.DownstreamNetworkID] = lk.BarrierID
		}
	}
	for id := range l.upstreamBarriersOf {
		sort.Slice(l.upstreamBarriersOf[id], func(i, j int) bool {
			return l.upstreamBarriersOf[id][i] < l.upstreamBarriersOf[id][j]
		})
	}
	return l
}

// UpstreamBarriers returns the barriers immediately downstream of
// networkID, i.e. the barrier(s) this network's outflow feeds into.
func (l *Linkage) UpstreamBarriers(networkID int64) []int64 {
	return l.upstreamBarriersOf[networkID]
}

// DownstreamBarrier returns the barrier immediately upstream of
// networkID, i.e. the barrier whose cut produced this network's root.
func (l *Linkage) DownstreamBarrier(networkID int64) (int64, bool) {
	b, ok := l.downstreamBarrierOf[networkID]
	return b, ok
}
