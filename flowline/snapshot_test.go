package flowline

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadGobStore_RoundTrips(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Flowline{ID: 1, Geometry: orb.LineString{{0, 0}, {10, 0}}, GnisName: "Elk Creek"}))
	require.NoError(t, s.Insert(Flowline{ID: 2, Geometry: orb.LineString{{10, 0}, {20, 0}}}))

	fp := filepath.Join(t.TempDir(), "flowlines.gob")
	require.NoError(t, s.SaveGob(fp))

	loaded, err := LoadGobStore(fp)
	require.NoError(t, err)

	assert.Equal(t, s.IDs(), loaded.IDs())
	got, err := loaded.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Elk Creek", got.GnisName)
	assert.InDelta(t, 10, got.Length, 1e-9)
}

func TestLoadGobStore_SpatialIndexIsRebuilt(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Flowline{ID: 1, Geometry: orb.LineString{{0, 0}, {10, 0}}}))

	fp := filepath.Join(t.TempDir(), "flowlines.gob")
	require.NoError(t, s.SaveGob(fp))

	loaded, err := LoadGobStore(fp)
	require.NoError(t, err)

	near := loaded.Nearest(orb.Point{5, 0.5}, 10, 1)
	require.Len(t, near, 1)
	assert.Equal(t, int64(1), near[0].ID)
}

func TestLoadGobStore_MissingFileErrors(t *testing.T) {
	_, err := LoadGobStore(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}
