package region

import (
	"testing"

	"github.com/brendan-ward/nhdnet/errs"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basinA() Basin {
	s := flowline.New()
	_ = s.Insert(flowline.Flowline{ID: 1, Geometry: orb.LineString{{0, 0}, {10, 0}}, HUC4: "X"})
	j := join.New()
	j.Add(join.Sentinel, 1)
	j.Add(1, join.Sentinel)
	return Basin{Store: s, Joins: j}
}

func basinB() Basin {
	s := flowline.New()
	_ = s.Insert(flowline.Flowline{ID: 2, Geometry: orb.LineString{{10, 0}, {20, 0}}, HUC4: "Y"})
	j := join.New()
	j.Add(join.Sentinel, 2)
	j.Add(2, join.Sentinel)
	return Basin{Store: s, Joins: j}
}

// Scenario 3: border stitch — two basins meeting at one coincident point
// join cleanly, no sentinels remain at that point.
func TestMerge_BorderStitch(t *testing.T) {
	log := diag.New()
	res, err := Merge([]Basin{basinA(), basinB()}, log)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, res.Joins.DownstreamOf(1))
	assert.Equal(t, []int64{1}, res.Joins.UpstreamOf(2))
	assert.Empty(t, res.Ambiguities)
	assert.True(t, log.Empty())
}

func TestMerge_IsCommutativeUpToOrdering(t *testing.T) {
	ab, err := Merge([]Basin{basinA(), basinB()}, diag.New())
	require.NoError(t, err)
	ba, err := Merge([]Basin{basinB(), basinA()}, diag.New())
	require.NoError(t, err)

	assert.ElementsMatch(t, ab.Joins.Edges(), ba.Joins.Edges())
	assert.ElementsMatch(t, ab.Store.IDs(), ba.Store.IDs())
}

// Scenario 4: border ambiguity — an extra candidate at huc4 Y means flowline
// 1's downstream end has two equally-close partners; merger leaves sentinels
// and reports BorderAmbiguity.
func TestMerge_BorderAmbiguity(t *testing.T) {
	b := basinB()
	_ = b.Store.Insert(flowline.Flowline{ID: 3, Geometry: orb.LineString{{10, 0}, {10, 10}}, HUC4: "Y"})
	b.Joins.Add(join.Sentinel, 3)
	b.Joins.Add(3, join.Sentinel)

	log := diag.New()
	res, err := Merge([]Basin{basinA(), b}, log)
	require.NoError(t, err)

	require.Len(t, res.Ambiguities, 1)
	assert.Equal(t, int64(1), res.Ambiguities[0].UpstreamID)
	assert.ElementsMatch(t, []int64{2, 3}, res.Ambiguities[0].DownstreamID)
	assert.Equal(t, []int64{join.Sentinel}, res.Joins.DownstreamOf(1))
	assert.Equal(t, 1, log.CountKind(errs.BorderAmbiguity))
}

func TestMerge_JoinReferencingUnknownIDIsFatal(t *testing.T) {
	a := basinA()
	a.Joins.Add(1, 999) // 999 was never inserted into any basin's store

	_, err := Merge([]Basin{a, basinB()}, diag.New())
	assert.ErrorIs(t, err, errs.InvalidJoin)
}

func TestMerge_DuplicateIDAcrossBasinsIsFatal(t *testing.T) {
	a := basinA()
	b := basinB()
	_ = b.Store.Insert(flowline.Flowline{ID: 1, Geometry: orb.LineString{{0, 100}, {10, 100}}, HUC4: "Y"})

	_, err := Merge([]Basin{a, b}, diag.New())
	assert.ErrorIs(t, err, errs.DuplicateAcrossBasins)
}
