// Package raster implements component C: pixel assignment. Every pixel's
// unit-square mass must be attributed to exactly one cell, or split into
// site-tagged fragments when a dual edge crosses it (spec §4.C).
//
// The reference sketch walks dual edges across the pixel grid with a
// DDA-like traversal (move/move_horizontal/move_vertical) to find only the
// pixels an edge actually crosses. At the grid sizes this system targets
// (spec §8's scenarios top out at 64x64) a pixel-by-pixel pass is used
// instead: each pixel's center and four corners are located by testing
// them against every cell polygon (O(n) per point), and only pixels whose
// points disagree are split. It is far simpler to get right without a
// CGAL-style half-edge walk; see DESIGN.md for the trade-off.
package raster

import (
	"sort"

	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/gauss"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/mesh"
)

// EdgeKey identifies a dual edge by its two (unordered) site indices.
type EdgeKey struct {
	I, J int
}

func edgeKey(i, j int) EdgeKey {
	if i > j {
		i, j = j, i
	}
	return EdgeKey{i, j}
}

// Assignment is the pixel-assignment structure owned by the core and
// cleared on every rebuild (spec §5): per-site integrated mass (area),
// and the per-edge ratio map accumulating the fractional mass that
// crossed each cut pixel. Package energy's gradients do not read Ratio.
type Assignment struct {
	CellMass []float64 // [n] integrated density per site == "area"
	MomentX  []float64 // [n] integral of x*rho over the site's cell
	MomentY  []float64 // [n] integral of y*rho over the site's cell
	Ratio    map[EdgeKey]float64
}

// Centroid returns the mass-weighted centroid of site i's assigned
// pixels, i.e. the Lloyd target position; the zero point if the site
// carries no mass (hidden or fully starved).
func (a *Assignment) Centroid(i int) (geom.Point, bool) {
	if a.CellMass[i] <= 0 {
		return geom.Point{}, false
	}
	return geom.Point{X: a.MomentX[i] / a.CellMass[i], Y: a.MomentY[i] / a.CellMass[i]}, true
}

// AssignPixels rasterizes the current triangulation's cells against the
// domain's pixel grid (spec §4.C). Hidden sites receive zero mass.
func AssignPixels(tri *mesh.Triangulation, dom *density.Domain) *Assignment {
	n := len(tri.Vertices)
	a := &Assignment{
		CellMass: make([]float64, n),
		MomentX:  make([]float64, n),
		MomentY:  make([]float64, n),
		Ratio:    make(map[EdgeKey]float64),
	}

	polys := make([][]geom.Point, n)
	boxes := make([]geom.Rect, n)
	for i, v := range tri.Vertices {
		if v.Hidden || len(v.Cell) == 0 {
			boxes[i] = geom.Rect{XMin: 1, XMax: 0} // placeholder; polys[i] stays nil, so i is never a candidate
			continue
		}
		polys[i] = cellPolygon(v)
		boxes[i] = boundingBox(polys[i])
	}

	for j := 0; j < dom.H; j++ {
		for i := 0; i < dom.W; i++ {
			b := dom.Bounds()
			px := geom.Rect{XMin: b.XMin + float64(i), XMax: b.XMin + float64(i) + 1,
				YMin: b.YMin + float64(j), YMax: b.YMin + float64(j) + 1}
			center := dom.PixelCenter(i, j)
			pixelMass := gauss.PixelMass(dom, center)

			owner, single := locate(tri, polys, center)
			if single && cornersAgree(tri, polys, px, owner) {
				if owner >= 0 {
					a.CellMass[owner] += pixelMass
					a.MomentX[owner] += pixelMass * center.X
					a.MomentY[owner] += pixelMass * center.Y
				}
				continue
			}

			// Cut pixel: split against every candidate cell whose
			// bounding box can possibly overlap this pixel, then
			// distribute pixelMass by area fraction (exact, since
			// fragment areas always sum to the pixel's unit area).
			type frag struct {
				site int
				area float64
			}
			var frags []frag
			for s := 0; s < n; s++ {
				if polys[s] == nil || !boxes[s].Overlaps(px) {
					continue
				}
				clipped := clipToRect(polys[s], px)
				area := polygonArea(clipped)
				if area > 1e-12 {
					frags = append(frags, frag{s, area})
				}
			}
			if len(frags) == 0 {
				continue
			}
			totalArea := 0.0
			for _, f := range frags {
				totalArea += f.area
			}
			for _, f := range frags {
				share := pixelMass * f.area / totalArea
				a.CellMass[f.site] += share
				a.MomentX[f.site] += share * center.X
				a.MomentY[f.site] += share * center.Y
			}
			// accumulate the crossing ratio between every pair of
			// fragments sharing this pixel: sum, then clamp to [0,1]
			// per spec §9's default resolution of the open question
			// on set_ratio/get_ratio accumulation.
			for x := 0; x < len(frags); x++ {
				for y := x + 1; y < len(frags); y++ {
					small := frags[x].area
					if frags[y].area < small {
						small = frags[y].area
					}
					key := edgeKey(frags[x].site, frags[y].site)
					a.Ratio[key] += small / totalArea
				}
			}
		}
	}
	for k, v := range a.Ratio {
		if v > 1 {
			a.Ratio[k] = 1
		}
	}
	return a
}

// cellPolygon returns the ordered CCW vertex list of v's cell.
func cellPolygon(v *mesh.Vertex) []geom.Point {
	pts := make([]geom.Point, len(v.Cell))
	for i, e := range v.Cell {
		pts[i] = e.A
	}
	return pts
}

func boundingBox(pts []geom.Point) geom.Rect {
	if len(pts) == 0 {
		return geom.Rect{XMin: 1, XMax: 0}
	}
	r := geom.Rect{XMin: pts[0].X, XMax: pts[0].X, YMin: pts[0].Y, YMax: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < r.XMin {
			r.XMin = p.X
		}
		if p.X > r.XMax {
			r.XMax = p.X
		}
		if p.Y < r.YMin {
			r.YMin = p.Y
		}
		if p.Y > r.YMax {
			r.YMax = p.Y
		}
	}
	return r
}

// locate finds the (lexicographically smallest, for deterministic ties)
// site index whose cell polygon contains p, and reports whether at most
// one candidate contains it (more than one means p lies on a shared cell
// boundary). When no cell contains p, owner is -1 and single is true;
// that shouldn't happen for points inside the domain, and the caller
// guards it defensively.
func locate(tri *mesh.Triangulation, polys [][]geom.Point, p geom.Point) (owner int, single bool) {
	owner = -1
	count := 0
	for i, poly := range polys {
		if poly == nil {
			continue
		}
		if pointInConvexPolygon(poly, p) {
			count++
			if owner == -1 || i < owner {
				owner = i
			}
		}
	}
	return owner, count <= 1
}

func cornersAgree(tri *mesh.Triangulation, polys [][]geom.Point, px geom.Rect, owner int) bool {
	corners := []geom.Point{
		{X: px.XMin, Y: px.YMin}, {X: px.XMax, Y: px.YMin},
		{X: px.XMax, Y: px.YMax}, {X: px.XMin, Y: px.YMax},
	}
	for _, c := range corners {
		o, single := locate(tri, polys, c)
		if !single || o != owner {
			return false
		}
	}
	return true
}

// pointInConvexPolygon tests containment of a convex, CCW polygon using
// the standard "all cross products same sign" test, with an epsilon so
// boundary points count as contained (matching the half-plane clip's own
// <=  tolerance in package mesh).
func pointInConvexPolygon(poly []geom.Point, p geom.Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross < -1e-9 {
			return false
		}
	}
	return true
}

// clipToRect clips the convex polygon poly against the rectangle r via
// Sutherland-Hodgman, used to compute the exact fragment of a cell
// overlapping a single pixel.
func clipToRect(poly []geom.Point, r geom.Rect) []geom.Point {
	clip := func(pts []geom.Point, inside func(geom.Point) bool, intersect func(a, b geom.Point) geom.Point) []geom.Point {
		if len(pts) == 0 {
			return nil
		}
		var out []geom.Point
		n := len(pts)
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			aIn, bIn := inside(a), inside(b)
			switch {
			case aIn && bIn:
				out = append(out, a)
			case aIn && !bIn:
				out = append(out, a, intersect(a, b))
			case !aIn && bIn:
				out = append(out, intersect(a, b))
			}
		}
		return out
	}
	pts := poly
	pts = clip(pts, func(p geom.Point) bool { return p.X >= r.XMin },
		func(a, b geom.Point) geom.Point {
			t := (r.XMin - a.X) / (b.X - a.X)
			return geom.Point{X: r.XMin, Y: a.Y + t*(b.Y-a.Y)}
		})
	pts = clip(pts, func(p geom.Point) bool { return p.X <= r.XMax },
		func(a, b geom.Point) geom.Point {
			t := (r.XMax - a.X) / (b.X - a.X)
			return geom.Point{X: r.XMax, Y: a.Y + t*(b.Y-a.Y)}
		})
	pts = clip(pts, func(p geom.Point) bool { return p.Y >= r.YMin },
		func(a, b geom.Point) geom.Point {
			t := (r.YMin - a.Y) / (b.Y - a.Y)
			return geom.Point{X: a.X + t*(b.X-a.X), Y: r.YMin}
		})
	pts = clip(pts, func(p geom.Point) bool { return p.Y <= r.YMax },
		func(a, b geom.Point) geom.Point {
			t := (r.YMax - a.Y) / (b.Y - a.Y)
			return geom.Point{X: a.X + t*(b.X-a.X), Y: r.YMax}
		})
	return pts
}

func polygonArea(pts []geom.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// sortedKeys returns the Ratio map's keys in deterministic order (spec §5
// ordering rule). Nothing in the package calls it.
func (a *Assignment) sortedKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(a.Ratio))
	for k := range a.Ratio {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].I != keys[j].I {
			return keys[i].I < keys[j].I
		}
		return keys[i].J < keys[j].J
	})
	return keys
}
