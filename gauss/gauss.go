// Package gauss implements component D: the closed-form line integral of a
// 2D Gaussian along a straight segment (spec §4.D). A dual edge's mass is
// the integral of the domain density along its bounded segment; because
// the density factors as a product of two independent 1D Gaussians and the
// segment is linear in its parameter t, that line integral reduces to a
// single 1D Gaussian integral evaluated in closed form via the error
// function (math.Erf), the same reduction gofem's constitutive models lean
// on gosl/num for when a closed form exists instead of quadrature.
package gauss

import (
	"math"

	"github.com/cpmech/gosl/num"

	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/geom"
)

const sqrt2 = math.Sqrt2

// Product holds the coefficients of the 1D Gaussian obtained by evaluating
// a 2D Gaussian along a parameterized line t -> c + t*(a,b).
type Product struct {
	Amplitude float64 // A: value of the 2D Gaussian's non-t-dependent factor
	Mu        float64 // mean of the resulting 1D Gaussian in t
	Var       float64 // variance of the resulting 1D Gaussian in t
}

// Line computes the product-Gaussian coefficients for the 2D density d
// evaluated along the line through c with direction (a,b), i.e.
// rho(c.X+t*a, c.Y+t*b) = Vmax * Amplitude * exp(-0.5*(t-Mu)^2/Var) when d
// is not inverted. Guards sigma<=0 per the numerical contract in spec
// §4.D, returning a zero Product (degenerate -> zero contribution).
func Line(d *density.Domain, c geom.Point, a, b float64) Product {
	if d.SigX <= 0 || d.SigY <= 0 {
		return Product{}
	}
	dx0 := c.X - d.MuX
	dy0 := c.Y - d.MuY
	sx2, sy2 := d.SigX*d.SigX, d.SigY*d.SigY

	p := a*a/sx2 + b*b/sy2
	if p <= num.EPS {
		// direction collinear with neither axis spread and zero-length
		// reduces to a point evaluation; treat as non-concentrating.
		return Product{Amplitude: math.Exp(-0.5 * (dx0*dx0/sx2 + dy0*dy0/sy2))}
	}
	q := dx0*a/sx2 + dy0*b/sy2
	r := dx0*dx0/sx2 + dy0*dy0/sy2

	mu := -q / p
	variance := 1.0 / p
	amplitude := math.Exp(-0.5 * (r - q*q/p))
	return Product{Amplitude: amplitude, Mu: mu, Var: variance}
}

// Int01 computes int_0^1 exp(-0.5*(t-mu)^2/var) dt in closed form via the
// error function. Guards var<=0 per the numerical contract (returns 0).
func Int01(mu, variance float64) float64 {
	if variance <= 0 {
		return 0
	}
	sigma := math.Sqrt(variance)
	hi := math.Erf((1 - mu) / (sigma * sqrt2))
	lo := math.Erf((0 - mu) / (sigma * sqrt2))
	return sigma * math.Sqrt(math.Pi/2) * (hi - lo)
}

// SegmentMass returns the integral of d's density along the bounded
// segment seg: |seg| * Amplitude * Int01(Mu, Var) * Vmax, i.e. m_ij from
// spec §4.D, or |seg| * Vmax minus that value when d is inverted. Returns 0
// if the segment has non-positive length (numerical contract).
func SegmentMass(d *density.Domain, seg geom.Segment) float64 {
	length := seg.Length()
	if length <= 0 {
		return 0
	}
	a := seg.Target.X - seg.Source.X
	b := seg.Target.Y - seg.Source.Y
	prod := Line(d, seg.Source, a, b)
	mass := length * d.VMax * prod.Amplitude * Int01(prod.Mu, prod.Var)
	if d.Inverted {
		return length*d.VMax - mass
	}
	return mass
}

// PixelMass returns the integral of d's density over the unit-square pixel
// centered at c, approximated by the midpoint rule at the resolution the
// rest of the core uses (consistent with density.Domain.Integral and the
// whole-pixel branch of component C's pixel assignment).
func PixelMass(d *density.Domain, c geom.Point) float64 {
	return d.Rho(c.X, c.Y)
}
