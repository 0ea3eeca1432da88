// Package mesh implements component B: the weighted Delaunay / regular
// triangulation clipped to the rectangular domain.
//
// Rather than maintaining an explicit flip-based triangulation (gofem's
// mesh reader, inp.Mesh, has the luxury of a fixed input mesh; ours is
// rebuilt every optimizer step), each site's cell is built directly as the
// intersection of the domain rectangle with the power-diagram half-plane
// of every other site — the standard dual formulation of a weighted
// Voronoi diagram. This produces the identical cell polygons, dual edges
// and adjacency a flip-based regular triangulation would, without the
// numerical fragility of incremental retriangulation under near-degenerate
// weights, at the cost of an O(n^2) rebuild instead of O(n log n). For the
// site counts this system targets (tens to low hundreds, per spec §8's
// scenarios) that trade is the right one; see DESIGN.md.
package mesh

import (
	"math"

	"github.com/sylvainthery/ccvt/ccvterr"
	"github.com/sylvainthery/ccvt/geom"
)

const dupEps = 1e-12

// Edge is a polygon boundary edge of a site's cell. Neighbor is the index
// of the site across the power bisector that produced this edge, or -1 if
// the edge lies on the domain boundary (no dual edge).
type Edge struct {
	A, B     geom.Point
	Neighbor int
}

// Vertex is one site's record within the triangulation: its position,
// weight, hidden flag and the ordered (CCW) boundary of its cell.
type Vertex struct {
	Index    int
	Position geom.Point
	Weight   float64
	Hidden   bool
	Cell     []Edge // ordered CCW boundary, domain-clipped
}

// IncidentDualEdges returns the subset of Cell whose Neighbor is a real
// site (not a domain-boundary edge) — the incident-edge circulator of
// spec §4.B.
func (v *Vertex) IncidentDualEdges() []Edge {
	out := make([]Edge, 0, len(v.Cell))
	for _, e := range v.Cell {
		if e.Neighbor >= 0 {
			out = append(out, e)
		}
	}
	return out
}

// Area returns the cell polygon's area via the shoelace formula.
func (v *Vertex) Area() float64 {
	if len(v.Cell) < 3 {
		return 0
	}
	sum := 0.0
	for _, e := range v.Cell {
		sum += e.A.X*e.B.Y - e.B.X*e.A.Y
	}
	return math.Abs(sum) / 2
}

// Triangulation is the weighted Delaunay of the current sites, clipped to
// the domain rectangle, with a monotonically increasing Generation that
// lets callers detect stale cached derived state (spec §9 design note on
// rebuild generations).
type Triangulation struct {
	Bounds     geom.Rect
	Vertices   []*Vertex
	Generation int
}

// SetBoundary sets the domain rectangle used to clip every cell.
func (t *Triangulation) SetBoundary(bounds geom.Rect) {
	t.Bounds = bounds
}

// Build rebuilds the triangulation from scratch for the given positions
// and weights, indexed densely in [0,n). Returns ccvterr.DegenerateTriangulation
// if two distinct sites coincide exactly (within dupEps) with equal
// weight, which makes their power bisector ill-defined (spec §4.B
// Failure).
func (t *Triangulation) Build(points []geom.Point, weights []float64) error {
	n := len(points)
	if len(weights) != n {
		return ccvterr.New(ccvterr.InvalidConfig, "mesh: %d points but %d weights", n, len(weights))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := points[i].X - points[j].X
			dy := points[i].Y - points[j].Y
			if dx*dx+dy*dy < dupEps*dupEps && math.Abs(weights[i]-weights[j]) < dupEps {
				return ccvterr.New(ccvterr.DegenerateTriangulation,
					"coincident sites %d and %d prevent a valid power diagram", i, j)
			}
		}
	}

	verts := make([]*Vertex, n)
	for i := 0; i < n; i++ {
		cell := boundaryPolygon(t.Bounds)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			cell = clipHalfPlane(cell, points[i], weights[i], points[j], weights[j], j)
			if len(cell) == 0 {
				break
			}
		}
		cell = dropDegenerateEdges(cell)
		v := &Vertex{Index: i, Position: points[i], Weight: weights[i], Cell: cell}
		if polygonArea(cell) <= dupEps {
			v.Hidden = true
			v.Cell = nil
		}
		verts[i] = v
	}
	t.Vertices = verts
	t.Generation++
	return nil
}

// IsInside reports whether a dual edge (as produced by Build) lies within
// the closed domain rectangle; true by construction since every edge is
// the result of clipping against Bounds, but kept as an explicit
// predicate so callers don't need to trust that invariant, and to guard
// against NaN corruption.
func (t *Triangulation) IsInside(e Edge) bool {
	return t.Bounds.Contains(e.A) && t.Bounds.Contains(e.B) &&
		!math.IsNaN(e.A.X) && !math.IsNaN(e.A.Y) && !math.IsNaN(e.B.X) && !math.IsNaN(e.B.Y)
}

// BoundedDualEdge returns the segment of the dual edge between site i and
// its neighbor at the given Edge, clipped to the domain (already true by
// construction — this accessor exists so callers never need to know that
// the clip happened inside Build).
func BoundedDualEdge(e Edge) geom.Segment {
	return geom.Segment{Source: e.A, Target: e.B}
}

// boundaryPolygon returns the domain rectangle as a CCW edge list with
// Neighbor=-1 (no dual edge: these are domain-boundary edges).
func boundaryPolygon(b geom.Rect) []Edge {
	corners := []geom.Point{
		{X: b.XMin, Y: b.YMin},
		{X: b.XMax, Y: b.YMin},
		{X: b.XMax, Y: b.YMax},
		{X: b.XMin, Y: b.YMax},
	}
	edges := make([]Edge, 4)
	for k := 0; k < 4; k++ {
		edges[k] = Edge{A: corners[k], B: corners[(k+1)%4], Neighbor: -1}
	}
	return edges
}

// clipHalfPlane clips the CCW polygon `cell` (belonging to site i, weight
// wi) against the power bisector of (pi,wi) and (pj,wj), keeping the side
// closer to i in the power-distance sense:
//
//	||y-pi||^2 - wi <= ||y-pj||^2 - wj
//	<=> n.y <= K,  n = pj-pi,  K = (|pj|^2-|pi|^2 + wi-wj) / 2 ... *2 below
//
// Edges introduced by the cut are tagged with neighbor index j; edges
// surviving untouched keep their original tag.
func clipHalfPlane(cell []Edge, pi geom.Point, wi float64, pj geom.Point, wj float64, j int) []Edge {
	if len(cell) == 0 {
		return cell
	}
	nx := pj.X - pi.X
	ny := pj.Y - pi.Y
	k := (pj.X*pj.X + pj.Y*pj.Y - pi.X*pi.X - pi.Y*pi.Y) + (wi - wj)
	// condition: 2*(n.y) <= k  <=>  n.y <= k/2
	k /= 2

	inside := func(p geom.Point) bool {
		return nx*p.X+ny*p.Y <= k+1e-9
	}
	intersect := func(a, b geom.Point) geom.Point {
		da := nx*a.X + ny*a.Y - k
		db := nx*b.X + ny*b.Y - k
		denom := da - db
		if denom == 0 {
			return a
		}
		t := da / denom
		return geom.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
	}

	// Build the clipped vertex chain with a per-vertex *outgoing* edge
	// tag, because a vertex introduced where the polygon exits the
	// half-plane starts the new cut edge that isn't resolved until the
	// chain re-enters — a plain per-input-edge tag can't express that
	// pending link, so we defer tagging to the vertex the edge leaves.
	type tagged struct {
		P   geom.Point
		Tag int
	}
	out := make([]tagged, 0, len(cell)+1)
	for _, e := range cell {
		aIn, bIn := inside(e.A), inside(e.B)
		switch {
		case aIn && bIn:
			out = append(out, tagged{e.A, e.Neighbor})
		case aIn && !bIn:
			ip := intersect(e.A, e.B)
			out = append(out, tagged{e.A, e.Neighbor})
			out = append(out, tagged{ip, j})
		case !aIn && bIn:
			ip := intersect(e.A, e.B)
			out = append(out, tagged{ip, e.Neighbor})
		default:
			// fully outside: dropped
		}
	}
	if len(out) < 3 {
		return nil
	}
	edges := make([]Edge, len(out))
	for idx := range out {
		edges[idx] = Edge{A: out[idx].P, B: out[(idx+1)%len(out)].P, Neighbor: out[idx].Tag}
	}
	return edges
}

func dropDegenerateEdges(cell []Edge) []Edge {
	out := make([]Edge, 0, len(cell))
	for _, e := range cell {
		seg := geom.Segment{Source: e.A, Target: e.B}
		if seg.Length() > 1e-10 {
			out = append(out, e)
		}
	}
	return out
}

func polygonArea(cell []Edge) float64 {
	if len(cell) < 3 {
		return 0
	}
	sum := 0.0
	for _, e := range cell {
		sum += e.A.X*e.B.Y - e.B.X*e.A.Y
	}
	return math.Abs(sum) / 2
}
