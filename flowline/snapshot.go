package flowline

import (
	"encoding/gob"
	"fmt"
	"os"
)

// SaveGob writes every flowline to fp as a gob-encoded slice, the same
// flat snapshot format the teacher uses for its structure/parameter/
// subwatershed build artifacts (struct.forcing.go's saveGob). The spatial
// index is rebuilt on load rather than serialized.
func (s *Store) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("flowline.SaveGob: %w", err)
	}
	defer f.Close()

	flowlines := make([]Flowline, 0, len(s.byID))
	for _, id := range s.IDs() {
		flowlines = append(flowlines, *s.byID[id])
	}
	if err := gob.NewEncoder(f).Encode(flowlines); err != nil {
		return fmt.Errorf("flowline.SaveGob: %w", err)
	}
	return nil
}

// LoadGobStore reads a Store snapshot written by SaveGob, rebuilding the
// spatial index as flowlines are inserted.
func LoadGobStore(fp string) (*Store, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("flowline.LoadGobStore: %w", err)
	}
	defer f.Close()

	var flowlines []Flowline
	if err := gob.NewDecoder(f).Decode(&flowlines); err != nil {
		return nil, fmt.Errorf("flowline.LoadGobStore: %w", err)
	}

	s := New()
	for _, fl := range flowlines {
		if err := s.Insert(fl); err != nil {
			return nil, fmt.Errorf("flowline.LoadGobStore: %w", err)
		}
	}
	return s, nil
}
