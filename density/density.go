// Package density implements component A: the rectangular sampling grid
// and the continuous 2D Gaussian density it carries (spec §4.A).
package density

import (
	"math"

	"github.com/sylvainthery/ccvt/ccvterr"
	"github.com/sylvainthery/ccvt/geom"
)

// Domain holds the Gaussian density parameters and the pixel grid they are
// sampled on. Continuous coordinates are centered at (MuX, MuY); pixel
// centers sit on a regular grid of step 1 spanning
// [MuX-Dx, MuX+Dx] x [MuY-Dy, MuY+Dy].
type Domain struct {
	MuX, MuY   float64
	SigX, SigY float64
	W, H       int // pixel grid size
	VMax       float64
	Inverted   bool
}

// Set configures the domain; it mirrors CCVT::set_domain, returning
// InvalidConfig instead of silently returning on bad input (spec §7).
func (d *Domain) Set(muX, muY, sigX, sigY float64, w, h int, vmax float64) error {
	if w <= 0 || h <= 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "domain extent must be positive, got w=%d h=%d", w, h)
	}
	if sigX <= 0 || sigY <= 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "sigma must be positive, got sigX=%g sigY=%g", sigX, sigY)
	}
	if vmax <= 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "vmax must be positive, got %g", vmax)
	}
	d.MuX, d.MuY = muX, muY
	d.SigX, d.SigY = sigX, sigY
	d.W, d.H = w, h
	d.VMax = vmax
	return nil
}

// ToggleInvert flips the inverted flag: Rho(x,y) becomes Vmax - Rho(x,y).
func (d *Domain) ToggleInvert() {
	d.Inverted = !d.Inverted
}

// Dx, Dy are the domain's half-extents in continuous coordinates.
func (d *Domain) Dx() float64 { return float64(d.W) / 2 }
func (d *Domain) Dy() float64 { return float64(d.H) / 2 }

// Bounds returns the domain rectangle in continuous coordinates.
func (d *Domain) Bounds() geom.Rect {
	return geom.Rect{
		XMin: d.MuX - d.Dx(), XMax: d.MuX + d.Dx(),
		YMin: d.MuY - d.Dy(), YMax: d.MuY + d.Dy(),
	}
}

// Rho evaluates the density at continuous (x,y).
func (d *Domain) Rho(x, y float64) float64 {
	dx := (x - d.MuX) / d.SigX
	dy := (y - d.MuY) / d.SigY
	v := d.VMax * math.Exp(-0.5*(dx*dx+dy*dy))
	if d.Inverted {
		return d.VMax - v
	}
	return v
}

// PixelCenter returns the continuous-coordinate center of pixel (i,j),
// i in [0,W), j in [0,H).
func (d *Domain) PixelCenter(i, j int) geom.Point {
	b := d.Bounds()
	return geom.Point{X: b.XMin + float64(i) + 0.5, Y: b.YMin + float64(j) + 0.5}
}

// Integral returns the total density integral over the rectangle, computed
// by exact midpoint-rule pixel summation (unit-area pixels, so the
// midpoint rule is exact for the piecewise-constant-per-pixel model the
// rest of the core uses — capacities and the pixel assignment both
// operate at this same resolution, so there is no discretization mismatch
// between Sigma(area_i) and this total).
func (d *Domain) Integral() float64 {
	total := 0.0
	for j := 0; j < d.H; j++ {
		for i := 0; i < d.W; i++ {
			p := d.PixelCenter(i, j)
			total += d.Rho(p.X, p.Y)
		}
	}
	return total
}
