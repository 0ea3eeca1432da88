package raster

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/mesh"
)

func buildDomain(tst *testing.T) *density.Domain {
	var d density.Domain
	if err := d.Set(0, 0, 5, 5, 20, 20, 2); err != nil {
		tst.Fatal(err)
	}
	return &d
}

func TestAreaConservation(tst *testing.T) {
	chk.PrintTitle("raster: total assigned mass equals the domain integral")
	d := buildDomain(tst)
	var t mesh.Triangulation
	t.SetBoundary(d.Bounds())
	pts := []geom.Point{{X: -5, Y: -5}, {X: 5, Y: -5}, {X: 0, Y: 5}}
	if err := t.Build(pts, []float64{0, 0, 0}); err != nil {
		tst.Fatal(err)
	}
	a := AssignPixels(&t, d)
	sum := 0.0
	for _, m := range a.CellMass {
		sum += m
	}
	chk.Scalar(tst, "sum(CellMass) vs Integral", 1e-6, sum, d.Integral())
}

func TestSingleSiteGetsEverything(tst *testing.T) {
	chk.PrintTitle("raster: a single site absorbs the entire integral")
	d := buildDomain(tst)
	var t mesh.Triangulation
	t.SetBoundary(d.Bounds())
	if err := t.Build([]geom.Point{{X: 0, Y: 0}}, []float64{0}); err != nil {
		tst.Fatal(err)
	}
	a := AssignPixels(&t, d)
	chk.Scalar(tst, "cell mass", 1e-6, a.CellMass[0], d.Integral())
	if len(a.Ratio) != 0 {
		tst.Fatalf("expected no edge ratios with a single site, got %d", len(a.Ratio))
	}
}

func TestRatioSymmetricKey(tst *testing.T) {
	chk.PrintTitle("raster: edge ratio keys are order-independent")
	if edgeKey(2, 5) != edgeKey(5, 2) {
		tst.Fatal("edgeKey must normalize argument order")
	}
}

func TestRatioBoundedByOne(tst *testing.T) {
	chk.PrintTitle("raster: accumulated ratios never exceed 1")
	d := buildDomain(tst)
	var t mesh.Triangulation
	t.SetBoundary(d.Bounds())
	pts := []geom.Point{{X: -1, Y: 0}, {X: 1, Y: 0}}
	if err := t.Build(pts, []float64{0, 0}); err != nil {
		tst.Fatal(err)
	}
	a := AssignPixels(&t, d)
	for k, v := range a.Ratio {
		if v > 1+1e-9 || v < 0 {
			tst.Fatalf("ratio[%v] = %g out of [0,1]", k, v)
		}
	}
}

func TestHiddenSiteGetsNoMass(tst *testing.T) {
	chk.PrintTitle("raster: a hidden site is assigned zero mass")
	d := buildDomain(tst)
	var t mesh.Triangulation
	t.SetBoundary(d.Bounds())
	pts := []geom.Point{{X: 0, Y: 0}, {X: 0.01, Y: 0}}
	if err := t.Build(pts, []float64{0, -1000}); err != nil {
		tst.Fatal(err)
	}
	a := AssignPixels(&t, d)
	chk.Scalar(tst, "hidden site mass", 1e-9, a.CellMass[1], 0)
}
