package inp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestDefaultValidates(tst *testing.T) {
	chk.PrintTitle("inp: the Default config validates once a domain is set")
	cfg := Default()
	cfg.Domain = DomainData{W: 10, H: 10, SigX: 1, SigY: 1, VMax: 1}
	if err := cfg.Validate(); err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNonPositiveExtent(tst *testing.T) {
	chk.PrintTitle("inp: Validate rejects a non-positive domain extent")
	cfg := Default()
	cfg.Domain = DomainData{W: 0, H: 10, SigX: 1, SigY: 1, VMax: 1}
	if err := cfg.Validate(); err == nil {
		tst.Fatal("expected an error for W=0")
	}
}

func TestValidateRejectsCapacityMismatch(tst *testing.T) {
	chk.PrintTitle("inp: Validate rejects a capacity/site count mismatch")
	cfg := Default()
	cfg.Domain = DomainData{W: 10, H: 10, SigX: 1, SigY: 1, VMax: 1}
	cfg.Sites.Points = [][2]float64{{0, 0}, {1, 1}}
	cfg.Targets.Capacities = []float64{1, 2, 3}
	if err := cfg.Validate(); err == nil {
		tst.Fatal("expected an error for a capacity/site count mismatch")
	}
}

func TestValidateRejectsNonSquareNeighborProportions(tst *testing.T) {
	chk.PrintTitle("inp: Validate rejects a non-square neighborProportions matrix")
	cfg := Default()
	cfg.Domain = DomainData{W: 10, H: 10, SigX: 1, SigY: 1, VMax: 1}
	cfg.Targets.NeighborProportions = [][]float64{{0, 1}, {1}}
	if err := cfg.Validate(); err == nil {
		tst.Fatal("expected an error for a non-square neighborProportions matrix")
	}
}

func TestToParamsCarriesSolverFields(tst *testing.T) {
	chk.PrintTitle("inp: ToParams carries every solver knob through to optimize.Params")
	cfg := Default()
	p := cfg.ToParams()
	chk.Scalar(tst, "WStep", 1e-12, p.WStep, cfg.Solver.WStep)
	chk.Scalar(tst, "XStep", 1e-12, p.XStep, cfg.Solver.XStep)
	if p.MaxIters != cfg.Solver.MaxIters {
		tst.Fatalf("MaxIters mismatch: %d vs %d", p.MaxIters, cfg.Solver.MaxIters)
	}
}

func TestParamsNamesEveryKnob(tst *testing.T) {
	chk.PrintTitle("inp: Params exposes every solver knob by name")
	cfg := Default()
	prms := cfg.Params()
	found := map[string]float64{}
	for _, p := range prms {
		found[p.N] = p.V
	}
	chk.Scalar(tst, "wstep", 1e-12, found["wstep"], cfg.Solver.WStep)
	chk.Scalar(tst, "tau", 1e-12, found["tau"], cfg.Solver.Tau)
}
