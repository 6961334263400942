package join

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadGob_RoundTrips(t *testing.T) {
	tbl := New()
	tbl.Add(Sentinel, 1)
	tbl.Add(1, 2)
	tbl.Add(2, Sentinel)

	fp := filepath.Join(t.TempDir(), "joins.gob")
	require.NoError(t, tbl.SaveGob(fp))

	loaded, err := LoadGobTable(fp)
	require.NoError(t, err)
	assert.Equal(t, tbl.Edges(), loaded.Edges())

	_, err = os.Stat(fp)
	require.NoError(t, err)
}
