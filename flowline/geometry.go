package flowline

import (
	"math"

	"github.com/brendan-ward/nhdnet/errs"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EpsilonLength is the minimum legal flowline length (meters), per the
// data-model invariant in spec.md §3.
const EpsilonLength = 0.01

// Length returns the cumulative straight-segment length of a polyline, in
// the units of its CRS (meters, given the common equal-area planar CRS
// required by spec.md §6).
func Length(g orb.LineString) float64 {
	var l float64
	for i := 1; i < len(g); i++ {
		l += planar.Distance(g[i-1], g[i])
	}
	return l
}

// Sinuosity is straight-line distance between endpoints divided by length.
// A single-point or zero-length geometry has no defined sinuosity; callers
// must reject those via ValidateGeometry before calling Sinuosity.
func Sinuosity(g orb.LineString) float64 {
	l := Length(g)
	if l <= 0 {
		return 0
	}
	straight := planar.Distance(g[0], g[len(g)-1])
	return straight / l
}

// ValidateGeometry enforces the non-empty, length>=epsilon invariant of
// spec.md §3. It does not check self-overlap (left to the upstream
// collaborator that produced the geometry; detecting self-intersection on
// arbitrary polylines is out of the core's scope).
func ValidateGeometry(g orb.LineString) error {
	if len(g) < 2 {
		return errs.EmptyGeometry
	}
	if Length(g) < EpsilonLength {
		return errs.EmptyGeometry
	}
	return nil
}

// Projection is the result of projecting a point onto a polyline: the
// closest point q on the line, the perpendicular distance to it, and the
// measured position s along the line from its upstream (first) end.
type Projection struct {
	Point orb.Point
	Dist  float64
	S     float64
}

// Project finds the closest point on g to p, clamped to g's endpoints, and
// the arc-length position of that point measured from g[0]. Ties between
// equally-close segments are broken by the earlier (more-upstream) segment,
// which keeps S deterministic.
func Project(g orb.LineString, p orb.Point) Projection {
	best := Projection{Point: g[0], Dist: math.Inf(1), S: 0}
	var sAtSegStart float64
	for i := 1; i < len(g); i++ {
		a, b := g[i-1], g[i]
		q, t := closestPointOnSegment(a, b, p)
		d := planar.Distance(p, q)
		if d < best.Dist {
			segLen := planar.Distance(a, b)
			best = Projection{Point: q, Dist: d, S: sAtSegStart + t*segLen}
		}
		sAtSegStart += planar.Distance(a, b)
	}
	return best
}

// closestPointOnSegment returns the closest point on segment a-b to p, and
// the parametric position t in [0,1] of that point along a-b.
func closestPointOnSegment(a, b, p orb.Point) (orb.Point, float64) {
	ax, ay := a[0], a[1]
	bx, by := b[0], b[1]
	px, py := p[0], p[1]

	dx, dy := bx-ax, by-ay
	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return a, 0
	}
	t := ((px-ax)*dx + (py-ay)*dy) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return orb.Point{ax + t*dx, ay + t*dy}, t
}

// Split divides g into child polylines at the ascending, in-bounds
// positions ss (arc length from g[0]). Positions within 1mm of either end
// of g, or of each other, are expected to have already been collapsed by
// the caller (cut.Cut does this). Split does not validate ss itself: a
// position of 0 or Length(g) yields a zero-length child, and a position
// outside [0, Length(g)] is never reached, so it and every later position
// are ignored.
func Split(g orb.LineString, ss []float64) []orb.LineString {
	if len(ss) == 0 {
		return []orb.LineString{g}
	}
	children := make([]orb.LineString, 0, len(ss)+1)
	cur := orb.LineString{g[0]}
	var travelled float64
	si := 0
	for i := 1; i < len(g); i++ {
		a, b := g[i-1], g[i]
		segLen := planar.Distance(a, b)
		segStart := travelled
		for si < len(ss) && ss[si] >= segStart && ss[si] <= segStart+segLen {
			t := 0.0
			if segLen > 0 {
				t = (ss[si] - segStart) / segLen
			}
			cut := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
			cur = append(cur, cut)
			children = append(children, cur)
			cur = orb.LineString{cut}
			si++
		}
		cur = append(cur, b)
		travelled += segLen
	}
	children = append(children, cur)
	return children
}
