package network

import (
	"testing"

	"github.com/brendan-ward/nhdnet/cut"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(id int64, ax, ay, bx, by float64) flowline.Flowline {
	return flowline.Flowline{ID: id, Geometry: orb.LineString{{ax, ay}, {bx, by}}}
}

// Scenario 6: three-segment chain A->B->C with a barrier between A and B.
// Upstream walk from B stops at A's root; A and B land in separate networks.
func TestBuild_StopsAtBarrierRoot(t *testing.T) {
	s := flowline.New()
	require.NoError(t, s.Insert(seg(1, 0, 0, 10, 0)))  // A
	require.NoError(t, s.Insert(seg(2, 10, 0, 20, 0))) // B
	require.NoError(t, s.Insert(seg(3, 20, 0, 30, 0))) // C

	j := join.New()
	j.Add(join.Sentinel, 1) // A is an origin
	j.Add(1, 2)             // A -> B (the barrier sits here)
	j.Add(2, 3)             // B -> C
	j.Add(3, join.Sentinel) // C is a terminus

	wiring := map[int64]cut.Wiring{100: {UpstreamID: 1, DownstreamID: 2}}

	networks := Build(s, j, wiring, diag.New())

	byRoot := make(map[int64][]int64)
	for _, n := range networks {
		byRoot[n.RootID] = n.Members
	}

	assert.Equal(t, []int64{1}, byRoot[1])
	assert.Equal(t, []int64{2}, byRoot[2])
	assert.Equal(t, []int64{3}, byRoot[3]) // island, no further barrier downstream of B

	total := 0
	for _, n := range networks {
		total += len(n.Members)
	}
	assert.Equal(t, 3, total) // invariant 3: every flowline assigned exactly once
}

// Scenario 1's network half: after the cut, the upstream piece is its own
// origin-rooted network and the downstream piece is rooted at the barrier.
func TestBuild_SingleBarrierProducesTwoNetworks(t *testing.T) {
	s := flowline.New()
	require.NoError(t, s.Insert(seg(11, 0, 0, 50, 0)))
	require.NoError(t, s.Insert(seg(12, 50, 0, 100, 0)))

	j := join.New()
	j.Add(join.Sentinel, 11)
	j.Add(11, 12)
	j.Add(12, join.Sentinel)

	wiring := map[int64]cut.Wiring{1: {UpstreamID: 11, DownstreamID: 12}}
	networks := Build(s, j, wiring, diag.New())

	require.Len(t, networks, 2)
	assert.Equal(t, []int64{11}, networks[0].Members)
	assert.Equal(t, []int64{12}, networks[1].Members)
}

func TestBuild_EveryFlowlineAssignedExactlyOnce(t *testing.T) {
	s := flowline.New()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, s.Insert(seg(i, float64(i-1)*10, 0, float64(i)*10, 0)))
	}
	j := join.New()
	j.Add(join.Sentinel, 1)
	for i := int64(1); i < 5; i++ {
		j.Add(i, i+1)
	}
	j.Add(5, join.Sentinel)

	networks := Build(s, j, nil, diag.New())

	seen := make(map[int64]bool)
	for _, n := range networks {
		for _, m := range n.Members {
			assert.False(t, seen[m], "flowline %d assigned twice", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, 5)
}
