// Package flowline holds the in-memory table of flowline polylines
// (spec.md §4.A) backed by an R-tree spatial index over their bounding
// boxes, following the teacher's pattern of a flat id-indexed collection
// plus an auxiliary structural index (cf. goHydro/grid.Definition holding
// a dense cell array alongside its active-cell index).
package flowline

import (
	"sort"

	"github.com/brendan-ward/nhdnet/errs"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Flowline is a directed polyline segment of a stream (spec.md §3). The
// first point of Geometry is the upstream end, the last the downstream end.
type Flowline struct {
	ID        int64
	Geometry  orb.LineString
	HUC4      string
	GnisName  string
	SizeClass SizeClass
	Loop      bool

	// CatchmentID is the original NHDPlusID a catchment-keyed external
	// table (e.g. stats.FloodplainRow) joins against. It survives cut.Cut
	// splitting a flowline into freshly minted ids, so defaults to ID at
	// Insert time for a flowline that has never been cut.
	CatchmentID int64

	// derived, cached at Insert time
	Length    float64
	Sinuosity float64
}

// Store is an in-memory table of Flowlines keyed by ID, with a spatial
// index over their bounding boxes.
type Store struct {
	byID map[int64]*Flowline
	tree *rtreego.Rtree
	box  map[int64]*flowlineBox
}

const (
	minBranch = 25
	maxBranch = 50
)

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID: make(map[int64]*Flowline),
		tree: rtreego.NewTree(2, minBranch, maxBranch),
		box:  make(map[int64]*flowlineBox),
	}
}

// flowlineBox is the Spatial adapter inserted into the R-tree; it carries
// only the id and bounds, not the geometry, to keep the index compact.
type flowlineBox struct {
	id   int64
	rect *rtreego.Rect
}

func (b *flowlineBox) Bounds() *rtreego.Rect { return b.rect }

func boundsOf(g orb.LineString) (*rtreego.Rect, error) {
	b := g.Bound()
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	// rtreego requires strictly positive side lengths; pad degenerate
	// (vertical/horizontal/point) boxes by a hair so they remain indexable.
	const pad = 1e-6
	if w <= 0 {
		w = pad
	}
	if h <= 0 {
		h = pad
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
}

// Insert adds f to the store. Returns errs.DuplicateID if f.ID is already
// present.
func (s *Store) Insert(f Flowline) error {
	if _, ok := s.byID[f.ID]; ok {
		return errs.DuplicateID
	}
	if err := ValidateGeometry(f.Geometry); err != nil {
		return err
	}
	if f.CatchmentID == 0 {
		f.CatchmentID = f.ID
	}
	f.Length = Length(f.Geometry)
	f.Sinuosity = Sinuosity(f.Geometry)

	rect, err := boundsOf(f.Geometry)
	if err != nil {
		return err
	}
	box := &flowlineBox{id: f.ID, rect: rect}

	cp := f
	s.byID[f.ID] = &cp
	s.box[f.ID] = box
	s.tree.Insert(box)
	return nil
}

// Remove deletes the flowline with the given id. Returns errs.UnknownID if
// absent.
func (s *Store) Remove(id int64) error {
	box, ok := s.box[id]
	if !ok {
		return errs.UnknownID
	}
	s.tree.Delete(box)
	delete(s.box, id)
	delete(s.byID, id)
	return nil
}

// Get returns the flowline with the given id, or errs.UnknownID.
func (s *Store) Get(id int64) (*Flowline, error) {
	f, ok := s.byID[id]
	if !ok {
		return nil, errs.UnknownID
	}
	return f, nil
}

// Len returns the number of flowlines in the store.
func (s *Store) Len() int { return len(s.byID) }

// Iter calls fn for every flowline in the store, in ascending id order, so
// the order is stable within one store snapshot.
func (s *Store) Iter(fn func(*Flowline)) {
	for _, id := range s.IDs() {
		fn(s.byID[id])
	}
}

// IDs returns every id in the store, ascending, for callers (tests,
// diagnostics printers) that need a reproducible enumeration order.
func (s *Store) IDs() []int64 {
	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Candidate is one result of a nearest-neighbour query.
type Candidate struct {
	ID   int64
	Dist float64
}

// Nearest returns up to limit flowlines within maxDist of point, ascending
// by distance; ties are broken by ascending id (spec.md §4.D, §5).
// Distance is the true point-to-polyline distance, not bbox distance.
func (s *Store) Nearest(point orb.Point, maxDist float64, limit int) []Candidate {
	searchRect, err := rtreego.NewRect(
		rtreego.Point{point[0] - maxDist, point[1] - maxDist},
		[]float64{2 * maxDist, 2 * maxDist},
	)
	if err != nil {
		return nil
	}
	hits := s.tree.SearchIntersect(searchRect)

	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		id := h.(*flowlineBox).id
		f := s.byID[id]
		d := Project(f.Geometry, point).Dist
		if d <= maxDist {
			out = append(out, Candidate{ID: id, Dist: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dist != out[j].Dist {
			return out[i].Dist < out[j].Dist
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Within returns the ids of every flowline whose bounding box intersects
// envelope (spec.md §4.A); it is a bbox test, not an exact geometry test.
func (s *Store) Within(envelope orb.Bound) []int64 {
	w, h := envelope.Max[0]-envelope.Min[0], envelope.Max[1]-envelope.Min[1]
	if w <= 0 {
		w = 1e-6
	}
	if h <= 0 {
		h = 1e-6
	}
	rect, err := rtreego.NewRect(rtreego.Point{envelope.Min[0], envelope.Min[1]}, []float64{w, h})
	if err != nil {
		return nil
	}
	hits := s.tree.SearchIntersect(rect)
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*flowlineBox).id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rebuild reconstructs the spatial index from scratch. Implementations
// maintain the index incrementally on Insert/Remove; Rebuild exists for
// callers (the Cutter, after a bulk remove-and-reinsert pass) that prefer
// one rebalance over many incremental ones.
func (s *Store) Rebuild() {
	s.tree = rtreego.NewTree(2, minBranch, maxBranch)
	for id, f := range s.byID {
		rect, err := boundsOf(f.Geometry)
		if err != nil {
			continue
		}
		box := &flowlineBox{id: id, rect: rect}
		s.box[id] = box
		s.tree.Insert(box)
	}
}
