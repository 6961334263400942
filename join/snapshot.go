package join

import (
	"encoding/gob"
	"fmt"
	"os"
)

// SaveGob writes the edge list to fp as a gob-encoded slice, mirroring
// flowline.Store's own flat snapshot format.
func (t *Table) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("join.SaveGob: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(t.Edges()); err != nil {
		return fmt.Errorf("join.SaveGob: %w", err)
	}
	return nil
}

// LoadGobTable reads a Table snapshot written by SaveGob.
func LoadGobTable(fp string) (*Table, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("join.LoadGobTable: %w", err)
	}
	defer f.Close()

	var edges [][2]int64
	if err := gob.NewDecoder(f).Decode(&edges); err != nil {
		return nil, fmt.Errorf("join.LoadGobTable: %w", err)
	}

	t := New()
	for _, e := range edges {
		t.Add(e[0], e[1])
	}
	return t, nil
}
