package pipeline

import (
	"testing"

	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/config"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleBasinWithOneBarrier(t *testing.T) Basin {
	t.Helper()
	s := flowline.New()
	require.NoError(t, s.Insert(flowline.Flowline{ID: 1, HUC4: "0101", Geometry: orb.LineString{{0, 0}, {100, 0}}, GnisName: "Elk Creek"}))

	j := join.New()
	j.Add(join.Sentinel, 1)
	j.Add(1, join.Sentinel)

	return Basin{
		HUC4:  "0101",
		Store: s,
		Joins: j,
		Barriers: []barrier.Barrier{
			{ID: 100, Kind: barrier.Dam, X: 50, Y: 0, GnisName: "Elk Creek"},
		},
	}
}

func TestRun_SingleBasinSingleBarrierEndToEnd(t *testing.T) {
	basin := singleBasinWithOneBarrier(t)

	result, err := Run([]Basin{basin}, nil, config.Default())
	require.NoError(t, err)

	require.Len(t, result.Networks, 2) // barrier splits the one flowline into two networks
	require.Len(t, result.Links, 1)
	assert.Equal(t, int64(100), result.Links[0].BarrierID)

	require.Len(t, result.Stats, 2)
	var total float64
	for _, row := range result.Stats {
		total += row.TotalLengthKM
	}
	assert.InDelta(t, 0.1, total, 1e-6) // invariant 1: length conserved through the cut

	assert.NotEmpty(t, result.Log.RunID)
	assert.Empty(t, result.Ambiguities)
}

func TestRun_InvalidConfigIsRejected(t *testing.T) {
	basin := singleBasinWithOneBarrier(t)
	cfg := config.Default()
	cfg.MaxSnapDist = -1

	_, err := Run([]Basin{basin}, nil, cfg)
	assert.Error(t, err)
}

func TestRun_NoBarriersYieldsOneNetwork(t *testing.T) {
	s := flowline.New()
	require.NoError(t, s.Insert(flowline.Flowline{ID: 1, Geometry: orb.LineString{{0, 0}, {100, 0}}}))
	j := join.New()
	j.Add(join.Sentinel, 1)
	j.Add(1, join.Sentinel)

	basin := Basin{HUC4: "0102", Store: s, Joins: j}

	result, err := Run([]Basin{basin}, nil, config.Default())
	require.NoError(t, err)
	require.Len(t, result.Networks, 1)
	assert.Empty(t, result.Links)
}
