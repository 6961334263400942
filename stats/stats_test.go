package stats

import (
	"testing"

	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/network"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strait(ax, ay, bx, by float64) orb.LineString {
	return orb.LineString{{ax, ay}, {bx, by}}
}

func storeWithTwoMembers(t *testing.T) *flowline.Store {
	t.Helper()
	s := flowline.New()
	require.NoError(t, s.Insert(flowline.Flowline{ID: 1, Geometry: strait(0, 0, 1000, 0)}))
	require.NoError(t, s.Insert(flowline.Flowline{ID: 2, Geometry: strait(1000, 0, 2500, 0)}))
	return s
}

func TestCompute_AggregatesLengthAndSegmentCount(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{{RootID: 1, Members: []int64{1, 2}}}

	out := Compute(s, networks, nil, nil, Config{})

	require.Len(t, out, 1)
	row := out[0]
	assert.Equal(t, int64(1), row.RootID)
	assert.Equal(t, 2, row.NumSegments)
	assert.InDelta(t, 2.5, row.TotalLengthKM, 1e-9)
	assert.Equal(t, row.TotalLengthKM, row.PerennialLengthKM) // see DESIGN.md
}

func TestCompute_OutputOrderedByRootID(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{
		{RootID: 2, Members: []int64{2}},
		{RootID: 1, Members: []int64{1}},
	}

	out := Compute(s, networks, nil, nil, Config{})

	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].RootID)
	assert.Equal(t, int64(2), out[1].RootID)
}

func TestCompute_FlagsBelowMinimumLengthWithoutDropping(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{{RootID: 1, Members: []int64{1}}}

	out := Compute(s, networks, nil, nil, Config{MinNetworkLengthKM: 5})
	require.Len(t, out, 1)
	assert.True(t, out[0].BelowMinimumLength)
	assert.InDelta(t, 1.0, out[0].TotalLengthKM, 1e-9) // still fully accounted for
}

func TestCompute_FloodplainLeftJoinWithMissingCatchments(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{{RootID: 1, Members: []int64{1, 2}}}

	floodplain := map[int64]FloodplainRow{
		1: {NaturalM2: 300, TotalM2: 1000},
		// id 2 deliberately absent: missing catchment
	}

	out := Compute(s, networks, floodplain, nil, Config{})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].MissingFloodplainCatchments)
	assert.InDelta(t, 30.0, out[0].FloodplainNaturalPct, 1e-9)
}

func TestCompute_FloodplainPctIsNegativeOneWhenNoData(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{{RootID: 1, Members: []int64{1, 2}}}

	out := Compute(s, networks, nil, nil, Config{})
	require.Len(t, out, 1)
	assert.Equal(t, -1.0, out[0].FloodplainNaturalPct)
	assert.Equal(t, 2, out[0].MissingFloodplainCatchments)
}

// A cut product (minted id != its parent's original NHDPlusID) must still
// join against the catchment-keyed floodplain table via CatchmentID, not
// its own freshly minted ID.
func TestCompute_FloodplainJoinFollowsCatchmentIDAcrossCutProducts(t *testing.T) {
	s := flowline.New()
	require.NoError(t, s.Insert(flowline.Flowline{ID: 1001, CatchmentID: 1, Geometry: strait(0, 0, 1000, 0)}))
	networks := []network.Network{{RootID: 1001, Members: []int64{1001}}}

	floodplain := map[int64]FloodplainRow{
		1: {NaturalM2: 400, TotalM2: 1000}, // keyed by the original catchment id, not 1001
	}

	out := Compute(s, networks, floodplain, nil, Config{})
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].MissingFloodplainCatchments)
	assert.InDelta(t, 40.0, out[0].FloodplainNaturalPct, 1e-9)
}

func TestCompute_BarrierDistancesDefaultToNegativeOneWithoutLinkage(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{{RootID: 1, Members: []int64{1}}}

	out := Compute(s, networks, nil, nil, Config{})
	require.Len(t, out, 1)
	assert.Equal(t, -1.0, out[0].DistToUpstreamBarrierKM)
	assert.Equal(t, -1.0, out[0].DistToDownstreamBarrierKM)
}

func TestCompute_BarrierDistancesPopulatedFromLinkage(t *testing.T) {
	s := storeWithTwoMembers(t)
	networks := []network.Network{{RootID: 1, Members: []int64{1}}}

	links := []network.BarrierLink{
		{BarrierID: 9, UpstreamNetworkID: 0, DownstreamNetworkID: 1},
	}
	linkage := network.NewLinkage(links)

	out := Compute(s, networks, nil, linkage, Config{})
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0].DistToDownstreamBarrierKM, 1e-9)
	assert.Equal(t, -1.0, out[0].DistToUpstreamBarrierKM)
}

func TestCompute_SizeClassHistogramCountsPerClass(t *testing.T) {
	s := flowline.New()
	require.NoError(t, s.Insert(flowline.Flowline{ID: 1, Geometry: strait(0, 0, 10, 0), SizeClass: flowline.SizeClass(2)}))
	require.NoError(t, s.Insert(flowline.Flowline{ID: 2, Geometry: strait(10, 0, 20, 0), SizeClass: flowline.SizeClass(0)}))
	require.NoError(t, s.Insert(flowline.Flowline{ID: 3, Geometry: strait(20, 0, 30, 0), SizeClass: flowline.SizeClass(0)}))

	networks := []network.Network{{RootID: 1, Members: []int64{1, 2, 3}}}
	out := Compute(s, networks, nil, nil, Config{})

	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].SizeClassHistogram[flowline.SizeClass(0)])
	assert.Equal(t, 1, out[0].SizeClassHistogram[flowline.SizeClass(2)])
}
