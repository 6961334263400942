package barrier

import (
	"encoding/gob"
	"fmt"
	"os"
)

func init() {
	// Attributes values are opaque passthrough data (spec.md §3); gob needs
	// the concrete types it will see behind the interface{} registered up
	// front. These cover every scalar an attribute table column can hold.
	gob.Register("")
	gob.Register(float64(0))
	gob.Register(int64(0))
	gob.Register(false)
}

// SaveGob writes barriers to fp as a gob-encoded slice.
func SaveGob(fp string, barriers []Barrier) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("barrier.SaveGob: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(barriers); err != nil {
		return fmt.Errorf("barrier.SaveGob: %w", err)
	}
	return nil
}

// LoadGob reads a barrier slice written by SaveGob.
func LoadGob(fp string) ([]Barrier, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("barrier.LoadGob: %w", err)
	}
	defer f.Close()

	var barriers []Barrier
	if err := gob.NewDecoder(f).Decode(&barriers); err != nil {
		return nil, fmt.Errorf("barrier.LoadGob: %w", err)
	}
	return barriers, nil
}
