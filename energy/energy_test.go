package energy

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/mesh"
	"github.com/sylvainthery/ccvt/raster"
)

func buildScene(tst *testing.T) (*mesh.Triangulation, *density.Domain, *raster.Assignment) {
	var d density.Domain
	if err := d.Set(0, 0, 5, 5, 20, 20, 2); err != nil {
		tst.Fatal(err)
	}
	var t mesh.Triangulation
	t.SetBoundary(d.Bounds())
	pts := []geom.Point{{X: -3, Y: 0}, {X: 3, Y: 0}}
	if err := t.Build(pts, []float64{0, 0}); err != nil {
		tst.Fatal(err)
	}
	return &t, &d, raster.AssignPixels(&t, &d)
}

func TestWeightGradientZeroAtTarget(tst *testing.T) {
	chk.PrintTitle("energy: weight gradient is zero when capacity matches area exactly")
	_, _, a := buildScene(tst)
	g := WeightGradient(a.CellMass, a)
	for i, v := range g {
		chk.Scalar(tst, "gradient", 1e-9, v, 0)
		_ = i
	}
}

func TestWeightGradientSign(tst *testing.T) {
	chk.PrintTitle("energy: a site wanting more capacity than it has gets a positive gradient")
	_, _, a := buildScene(tst)
	capacity := make([]float64, len(a.CellMass))
	copy(capacity, a.CellMass)
	capacity[0] += 1.0
	g := WeightGradient(capacity, a)
	if g[0] <= 0 {
		tst.Fatalf("expected a positive weight gradient, got %g", g[0])
	}
}

func TestCentroidsLieWithinDomain(tst *testing.T) {
	chk.PrintTitle("energy: every centroid lies within the domain bounds")
	t, d, a := buildScene(tst)
	centroids := Centroids(t, a)
	b := d.Bounds()
	for i, c := range centroids {
		if !b.Contains(c) {
			tst.Fatalf("centroid %d = %v outside bounds %v", i, c, b)
		}
	}
}

func TestPositionGradientZeroAtCentroid(tst *testing.T) {
	chk.PrintTitle("energy: a site already at its centroid has zero position gradient")
	var d density.Domain
	if err := d.Set(0, 0, 5, 5, 20, 20, 2); err != nil {
		tst.Fatal(err)
	}
	var t mesh.Triangulation
	t.SetBoundary(d.Bounds())
	// the domain's density is symmetric about its mean, so a single site
	// placed exactly at the mean is already at its own centroid.
	if err := t.Build([]geom.Point{{X: 0, Y: 0}}, []float64{0}); err != nil {
		tst.Fatal(err)
	}
	a := raster.AssignPixels(&t, &d)
	grad := PositionGradient(&t, a)
	chk.Scalar(tst, "grad.Dx", 1e-6, grad[0].Dx, 0)
	chk.Scalar(tst, "grad.Dy", 1e-6, grad[0].Dy, 0)
}
