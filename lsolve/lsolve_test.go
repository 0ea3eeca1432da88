package lsolve

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/mesh"
)

func buildTri(tst *testing.T) *mesh.Triangulation {
	var t mesh.Triangulation
	t.SetBoundary(geom.Rect{XMin: -5, XMax: 5, YMin: -5, YMax: 5})
	pts := []geom.Point{{X: -2, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 3}}
	if err := t.Build(pts, []float64{0, 0, 0}); err != nil {
		tst.Fatal(err)
	}
	return &t
}

func TestSolveZeroRhsGivesZero(tst *testing.T) {
	chk.PrintTitle("lsolve: a zero right-hand side solves to zero")
	t := buildTri(tst)
	sys := Assemble(t)
	x, err := sys.Solve(make([]float64, len(t.Vertices)), 1e-10, 200)
	if err != nil {
		tst.Fatal(err)
	}
	for i, v := range x {
		chk.Scalar(tst, "x", 1e-9, v, 0)
		_ = i
	}
}

func TestSolveResidualConverges(tst *testing.T) {
	chk.PrintTitle("lsolve: CG reduces ||A*x - b|| below tolerance")
	t := buildTri(tst)
	sys := Assemble(t)
	rhs := []float64{1, -1, 0}
	x, err := sys.Solve(rhs, 1e-10, 500)
	if err != nil {
		tst.Fatal(err)
	}
	ax := make([]float64, len(rhs))
	la.SpMatVecMulAdd(ax, 1, sys.Matrix, x)
	b := make([]float64, len(rhs))
	copy(b, rhs)
	b[sys.pinned] = 0
	for i := range ax {
		chk.Scalar(tst, "A*x - b", 1e-6, ax[i]-b[i], 0)
	}
}

func TestGaugePinForcesFirstFreeRowToZero(tst *testing.T) {
	chk.PrintTitle("lsolve: the gauge-pinned row is forced to zero regardless of rhs")
	var t mesh.Triangulation
	t.SetBoundary(geom.Rect{XMin: -5, XMax: 5, YMin: -5, YMax: 5})
	// site 1 is so disfavored it is hidden, leaving site 0 the only free
	// row; Assemble immediately gauge-pins it (the 1-D nullspace still
	// needs pinning even with a single free variable).
	pts := []geom.Point{{X: 0, Y: 0}, {X: 0.01, Y: 0}}
	if err := t.Build(pts, []float64{0, -1000}); err != nil {
		tst.Fatal(err)
	}
	sys := Assemble(&t)
	x, err := sys.Solve([]float64{1, 1}, 1e-10, 10)
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "pinned row x[0]", 1e-12, x[0], 0)
	chk.Scalar(tst, "hidden row passes its rhs through unchanged", 1e-12, x[1], 1)
}
