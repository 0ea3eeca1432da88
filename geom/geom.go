// Package geom implements the minimal 2D primitives shared by every CCVT-N
// component: points, vectors and segments in continuous domain coordinates.
package geom

import "math"

// Point is a location in continuous domain coordinates.
type Point struct {
	X, Y float64
}

// Vector is a displacement in continuous domain coordinates.
type Vector struct {
	Dx, Dy float64
}

// Segment is an ordered pair of points; Source is where a dual edge enters
// the clip region, Target is where it leaves.
type Segment struct {
	Source, Target Point
}

// Add returns p + v.
func (p Point) Add(v Vector) Point {
	return Point{p.X + v.Dx, p.Y + v.Dy}
}

// Sub returns the vector from q to p (p - q).
func (p Point) Sub(q Point) Vector {
	return Vector{p.X - q.X, p.Y - q.Y}
}

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.Dx * s, v.Dy * s}
}

// Add returns v + u.
func (v Vector) Add(u Vector) Vector {
	return Vector{v.Dx + u.Dx, v.Dy + u.Dy}
}

// Dot returns the dot product of v and u.
func (v Vector) Dot(u Vector) float64 {
	return v.Dx*u.Dx + v.Dy*u.Dy
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.Target.Sub(s.Source).Norm()
}

// Lerp returns the point at parameter t in [0,1] along the segment.
func (s Segment) Lerp(t float64) Point {
	return s.Source.Add(s.Target.Sub(s.Source).Scale(t))
}

// Rect is an axis-aligned rectangle, used both for the domain boundary
// (centered at the density mean) and for individual pixel cells.
type Rect struct {
	XMin, YMin, XMax, YMax float64
}

// Contains reports whether p lies within the closed rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.XMin && p.X <= r.XMax && p.Y >= r.YMin && p.Y <= r.YMax
}

// Overlaps reports whether the closed rectangles r and s share any point;
// rectangles that only touch along an edge or a corner count as overlapping.
func (r Rect) Overlaps(s Rect) bool {
	return r.XMin <= s.XMax && r.XMax >= s.XMin && r.YMin <= s.YMax && r.YMax >= s.YMin
}

// Clamp returns p moved onto the closed rectangle if it lies outside.
func (r Rect) Clamp(p Point) Point {
	if p.X < r.XMin {
		p.X = r.XMin
	} else if p.X > r.XMax {
		p.X = r.XMax
	}
	if p.Y < r.YMin {
		p.Y = r.YMin
	} else if p.Y > r.YMax {
		p.Y = r.YMax
	}
	return p
}

// ClipLine clips the infinite line through a and b (direction b-a) against
// the rectangle using Liang-Barsky, returning the bounded segment and false
// if the line misses the rectangle entirely. The returned segment runs
// between the line's two crossings of the rectangle boundary, whether a and
// b lie inside or outside it. Nothing else in the module calls it: package
// mesh builds its dual edges by half-plane clipping instead.
func (r Rect) ClipLine(a, b Point) (Segment, bool) {
	d := b.Sub(a)
	tMin, tMax := math.Inf(-1), math.Inf(1)
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > tMax {
				return false
			}
			if t > tMin {
				tMin = t
			}
		} else {
			if t < tMin {
				return false
			}
			if t < tMax {
				tMax = t
			}
		}
		return true
	}
	if !clip(-d.Dx, a.X-r.XMin) {
		return Segment{}, false
	}
	if !clip(d.Dx, r.XMax-a.X) {
		return Segment{}, false
	}
	if !clip(-d.Dy, a.Y-r.YMin) {
		return Segment{}, false
	}
	if !clip(d.Dy, r.YMax-a.Y) {
		return Segment{}, false
	}
	if tMin > tMax {
		return Segment{}, false
	}
	return Segment{
		Source: a.Add(d.Scale(tMin)),
		Target: a.Add(d.Scale(tMax)),
	}, true
}
