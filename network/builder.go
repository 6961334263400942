// Package network traverses the cut join graph upstream from every
// barrier outflow and every natural origin, assigning each flowline to
// exactly one functional network (spec.md §4.F). It is the vector
// analogue of the teacher's tem.TEM.climb contributing-area walk, except
// bounded: it stops at other roots instead of climbing to the domain edge.
package network

import (
	"sort"

	"github.com/brendan-ward/nhdnet/cut"
	"github.com/brendan-ward/nhdnet/errs"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/join"
)

// Network is a maximal connected subgraph of cut flowlines delimited
// upstream by a barrier or natural origin and downstream by a single
// barrier or terminus (spec.md §3).
type Network struct {
	RootID  int64
	Members []int64 // ascending
}

// Build assigns every flowline in store to exactly one Network (spec.md
// §8 property 3). wiring is the Cutter's barrier sidecar table, used to
// compute the root set's "immediately downstream of a barrier" half.
func Build(store *flowline.Store, joins *join.Table, wiring map[int64]cut.Wiring, log *diag.Log) []Network {
	roots := rootSet(store, joins, wiring)

	assigned := make(map[int64]int64, store.Len()) // flowline id -> root id
	rootIDs := sortedRootIDs(roots)

	for _, r := range rootIDs {
		walkUpstream(r, r, joins, roots, assigned, log)
	}

	// step 3: disjoint islands left unassigned after every root's walk.
	var unassigned []int64
	for _, id := range store.IDs() {
		if _, ok := assigned[id]; !ok {
			unassigned = append(unassigned, id)
		}
	}
	islandRoots := assignIslands(unassigned, joins, assigned)
	rootIDs = append(rootIDs, islandRoots...)
	sort.Slice(rootIDs, func(i, j int) bool { return rootIDs[i] < rootIDs[j] })

	members := make(map[int64][]int64, len(rootIDs))
	for id, r := range assigned {
		members[r] = append(members[r], id)
	}

	out := make([]Network, 0, len(rootIDs))
	for _, r := range rootIDs {
		ms := members[r]
		sort.Slice(ms, func(i, j int) bool { return ms[i] < ms[j] })
		out = append(out, Network{RootID: r, Members: ms})
	}
	return out
}

// rootSet implements spec.md §4.F step 1.
func rootSet(store *flowline.Store, joins *join.Table, wiring map[int64]cut.Wiring) map[int64]bool {
	roots := make(map[int64]bool)
	for _, w := range wiring {
		if w.DownstreamID != join.Sentinel {
			roots[w.DownstreamID] = true
		}
	}
	for _, id := range store.IDs() {
		if joins.IsOrigin(id) {
			roots[id] = true
		}
	}
	return roots
}

func sortedRootIDs(roots map[int64]bool) []int64 {
	out := make([]int64, 0, len(roots))
	for id := range roots {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// walkUpstream performs the bounded upstream walk of spec.md §4.F step 2
// (depth-first, via an explicit stack),
// rooted at r, starting from node x (x==r on the initial call).
func walkUpstream(r, x int64, joins *join.Table, roots map[int64]bool, assigned map[int64]int64, log *diag.Log) {
	if _, ok := assigned[x]; ok {
		return
	}
	assigned[x] = r

	stack := []int64{x}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, u := range joins.UpstreamOf(cur) {
			if u == join.Sentinel {
				continue
			}
			if u != r && roots[u] {
				continue // do not cross into another root's territory
			}
			if existing, ok := assigned[u]; ok {
				if existing != r && log != nil {
					log.Add(errs.DoubleAssignment, "flowline %d reached from roots %d and %d", u, existing, r)
				}
				continue
			}
			assigned[u] = r
			stack = append(stack, u)
		}
	}
}

// assignIslands groups leftover unassigned flowlines into connected
// components over the undirected join graph restricted to unassigned
// members, and roots each at its downstream-most member (spec.md §4.F
// step 3). It returns the chosen root id per island.
func assignIslands(unassigned []int64, joins *join.Table, assigned map[int64]int64) []int64 {
	inIsland := make(map[int64]bool, len(unassigned))
	for _, id := range unassigned {
		inIsland[id] = true
	}

	var roots []int64
	visited := make(map[int64]bool, len(unassigned))
	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i] < unassigned[j] })

	for _, start := range unassigned {
		if visited[start] {
			continue
		}
		// collect the connected component
		comp := []int64{}
		stack := []int64{start}
		visited[start] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			neighbors := append(append([]int64{}, joins.UpstreamOf(cur)...), joins.DownstreamOf(cur)...)
			for _, n := range neighbors {
				if n == join.Sentinel || !inIsland[n] || visited[n] {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}

		root := downstreamMost(comp, joins, inIsland)
		roots = append(roots, root)
		for _, id := range comp {
			assigned[id] = root
		}
	}
	return roots
}

// downstreamMost picks the component member with no downstream edge to
// another component member (a sink within the component); ties, or a
// component with an internal cycle and no clear sink, break to the lowest
// id (spec.md §4.F step 3).
func downstreamMost(comp []int64, joins *join.Table, inIsland map[int64]bool) int64 {
	best := int64(-1)
	for _, id := range comp {
		isSink := true
		for _, d := range joins.DownstreamOf(id) {
			if d != join.Sentinel && inIsland[d] {
				isSink = false
				break
			}
		}
		if isSink && (best == -1 || id < best) {
			best = id
		}
	}
	if best == -1 {
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		return comp[0]
	}
	return best
}
