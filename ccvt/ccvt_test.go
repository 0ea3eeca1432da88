package ccvt

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func newTestInstance(tst *testing.T) *CCVT {
	c := New(42)
	if err := c.SetDomain(0, 0, 1000, 1000, 20, 20, 1); err != nil {
		tst.Fatal(err)
	}
	return c
}

func TestGenerateRegularGridCount(tst *testing.T) {
	chk.PrintTitle("ccvt: GenerateRegularGrid lays out exactly n sites")
	c := newTestInstance(tst)
	c.GenerateRegularGrid(9)
	if len(c.positions) != 9 {
		tst.Fatalf("expected 9 sites, got %d", len(c.positions))
	}
}

func TestGenerateRandomSitesWithinBounds(tst *testing.T) {
	chk.PrintTitle("ccvt: GenerateRandomSites never places a site outside the domain")
	c := newTestInstance(tst)
	c.GenerateRandomSites(25)
	b := c.Domain.Bounds()
	for i, p := range c.positions {
		if !b.Contains(p) {
			tst.Fatalf("site %d at %v lies outside %v", i, p, b)
		}
	}
}

func TestSetCapacitiesSizeMismatch(tst *testing.T) {
	chk.PrintTitle("ccvt: SetCapacities rejects a size mismatch")
	c := newTestInstance(tst)
	c.GenerateRegularGrid(4)
	if err := c.SetCapacities([]float64{1, 2, 3}); err == nil {
		tst.Fatal("expected an error for a capacity/site count mismatch")
	}
}

func TestOptimizeAllEndToEnd(tst *testing.T) {
	chk.PrintTitle("ccvt: OptimizeAll runs a small regular-grid scenario to convergence")
	c := newTestInstance(tst)
	c.GenerateRegularGrid(4)
	total := c.Domain.Integral()
	capacities := make([]float64, 4)
	for i := range capacities {
		capacities[i] = total / 4
	}
	if err := c.SetCapacities(capacities); err != nil {
		tst.Fatal(err)
	}
	if err := c.OptimizeAll(); err != nil {
		tst.Fatal(err)
	}
	areas, err := c.GetCapacities()
	if err != nil {
		tst.Fatal(err)
	}
	for i, a := range areas {
		chk.Scalar(tst, "matched area", total*1e-2, a, capacities[i])
	}
	if !c.IsValid() {
		tst.Fatal("expected the converged instance to report IsValid")
	}
}

func TestCountVisibleSitesMatchesSiteCount(tst *testing.T) {
	chk.PrintTitle("ccvt: with well-separated equal weights every site is visible")
	c := newTestInstance(tst)
	c.GenerateRegularGrid(4)
	n, err := c.CountVisibleSites()
	if err != nil {
		tst.Fatal(err)
	}
	if n != 4 {
		tst.Fatalf("expected 4 visible sites, got %d", n)
	}
}
