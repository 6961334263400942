// Package join holds the directed topological edges between flowlines
// (spec.md §4.B) — a bidirectional multimap, same shape as the teacher's
// tem.TEM upslope index (map[int][]int) but edge-set-based so duplicate
// edges are idempotent and both traversal directions are O(1) to look up.
package join

import "sort"

// Origin/terminus sentinel: an upstream id of 0 means "this flowline is a
// network origin"; a downstream id of 0 means "this flowline is a network
// terminus" (ocean, sink, or region boundary).
const Sentinel int64 = 0

// Table is a multiset of directed edges (upstream_id -> downstream_id).
type Table struct {
	down map[int64]map[int64]struct{} // id -> set of downstream ids
	up   map[int64]map[int64]struct{} // id -> set of upstream ids
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		down: make(map[int64]map[int64]struct{}),
		up:   make(map[int64]map[int64]struct{}),
	}
}

// Add records edge (u,d). Idempotent if already present.
func (t *Table) Add(u, d int64) {
	if t.down[u] == nil {
		t.down[u] = make(map[int64]struct{})
	}
	t.down[u][d] = struct{}{}
	if t.up[d] == nil {
		t.up[d] = make(map[int64]struct{})
	}
	t.up[d][u] = struct{}{}
}

// Remove deletes edge (u,d) if present; no-op otherwise.
func (t *Table) Remove(u, d int64) {
	if s, ok := t.down[u]; ok {
		delete(s, d)
		if len(s) == 0 {
			delete(t.down, u)
		}
	}
	if s, ok := t.up[d]; ok {
		delete(s, u)
		if len(s) == 0 {
			delete(t.up, d)
		}
	}
}

// UpstreamOf returns the predecessors of id, ascending. A result containing
// Sentinel means id is a network origin; an empty result with no sentinel
// means id simply has no recorded join (also legal, per invariant 2).
func (t *Table) UpstreamOf(id int64) []int64 {
	return sortedKeys(t.up[id])
}

// DownstreamOf returns the successors of id, ascending. A result containing
// Sentinel means id is a network terminus.
func (t *Table) DownstreamOf(id int64) []int64 {
	return sortedKeys(t.down[id])
}

// HasUpstream reports whether id has any recorded predecessor edge,
// sentinel or otherwise.
func (t *Table) HasUpstream(id int64) bool {
	return len(t.up[id]) > 0
}

// IsOrigin reports whether id's only recorded upstream is the sentinel, or
// it has no recorded upstream join at all — either is "origin" per
// invariant 2 of spec.md §3.
func (t *Table) IsOrigin(id int64) bool {
	us := t.up[id]
	if len(us) == 0 {
		return true
	}
	if len(us) == 1 {
		_, ok := us[Sentinel]
		return ok
	}
	return false
}

// Edges returns every (u,d) pair in the table, ordered by u then d, for
// deterministic iteration (diagnostics, serialization, tests).
func (t *Table) Edges() [][2]int64 {
	us := make([]int64, 0, len(t.down))
	for u := range t.down {
		us = append(us, u)
	}
	sort.Slice(us, func(i, j int) bool { return us[i] < us[j] })

	out := make([][2]int64, 0)
	for _, u := range us {
		for _, d := range sortedKeys(t.down[u]) {
			out = append(out, [2]int64{u, d})
		}
	}
	return out
}

func sortedKeys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
