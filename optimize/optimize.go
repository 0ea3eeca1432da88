// Package optimize implements component G: the three-phase CCVT-N driver —
// Newton-on-weights, Lloyd-on-positions, gradient-descent-on-neighbors —
// and the overall convergence state machine (spec §4.G).
//
// The phase loop and its progress logging follow fem/main.go's Main.Run:
// a small state machine with an optional CPU-time stopwatch and
// tab-separated per-iteration status lines through gosl/io, driven until
// convergence or a hard iteration cap.
package optimize

import (
	"math"
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/sylvainthery/ccvt/ccvterr"
	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/energy"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/lsolve"
	"github.com/sylvainthery/ccvt/mesh"
	"github.com/sylvainthery/ccvt/raster"
)

// State is the driver's current phase (spec §4.G).
type State int

const (
	Init State = iota
	WeightPhase
	PositionPhase
	NeighborPhase
	Converged
	Failed
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case WeightPhase:
		return "WeightPhase"
	case PositionPhase:
		return "PositionPhase"
	case NeighborPhase:
		return "NeighborPhase"
	case Converged:
		return "Converged"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Params collects the driver's tunables, mirroring inp.SolverData.
type Params struct {
	WStep            float64 // Newton step scale / line-search start
	XStep            float64 // Lloyd / neighbor-phase step scale
	MaxNewtonIters   int
	Epsilon          float64 // capacity-residual convergence tolerance
	MaxIters         int     // outer phase-loop cap
	ConnectivityFixed bool   // skip the neighbor phase entirely
	StepByStep       bool    // stored only; OptimizeAll does not read it
	Verbose          bool
}

// Driver owns the full mutable optimization state: the triangulation, the
// sites' positions and weights, and the targets being matched.
type Driver struct {
	Params     Params
	Domain     *density.Domain
	Tri        *mesh.Triangulation
	Positions  []geom.Point
	Weights    []float64
	Capacities []float64
	NeighborTargets [][]float64

	State     State
	Iteration int
	Cancelled bool

	LastAssignment *raster.Assignment
}

// NewDriver builds a driver over the given sites, bounded by dom and
// matching the given per-site capacities (spec §4.G Init).
func NewDriver(dom *density.Domain, positions []geom.Point, weights []float64, capacities []float64, params Params) *Driver {
	tri := &mesh.Triangulation{}
	tri.SetBoundary(dom.Bounds())
	return &Driver{
		Params:     params,
		Domain:     dom,
		Tri:        tri,
		Positions:  positions,
		Weights:    weights,
		Capacities: capacities,
		State:      Init,
	}
}

// rebuild re-triangulates and re-rasterizes at the driver's current
// positions/weights, caching the assignment for the energy-gradient calls
// that follow in the same iteration.
func (d *Driver) rebuild() error {
	if err := d.Tri.Build(d.Positions, d.Weights); err != nil {
		return err
	}
	d.LastAssignment = raster.AssignPixels(d.Tri, d.Domain)
	return nil
}

// capacityResidualNorm returns ||capacity - area||, the Newton phase's
// convergence and line-search merit function.
func (d *Driver) capacityResidualNorm() float64 {
	g := energy.WeightGradient(d.Capacities, d.LastAssignment)
	sum := 0.0
	for _, v := range g {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// NewtonWeights runs the capacity-matching weight phase to convergence:
// assemble the Laplacian Jacobian, solve for the Newton step, backtrack
// (Armijo, factor 0.5) until the residual actually decreases, apply, and
// repeat up to Params.MaxNewtonIters times (spec §4.E/F/G).
func (d *Driver) NewtonWeights() error {
	if err := d.rebuild(); err != nil {
		return err
	}
	resid := d.capacityResidualNorm()
	for iter := 0; iter < d.Params.MaxNewtonIters; iter++ {
		if resid < d.Params.Epsilon {
			return nil
		}
		sys := lsolve.Assemble(d.Tri)
		rhs := energy.WeightGradient(d.Capacities, d.LastAssignment)
		step, err := sys.Solve(rhs, 1e-10, 200)
		if err != nil {
			return err
		}

		saved := make([]float64, len(d.Weights))
		copy(saved, d.Weights)
		alpha := d.Params.WStep
		accepted := false
		for backtrack := 0; backtrack < 20; backtrack++ {
			for i := range d.Weights {
				d.Weights[i] = saved[i] + alpha*step[i]
			}
			if err := d.rebuild(); err != nil {
				if ccvterr.Is(err, ccvterr.DegenerateTriangulation) {
					alpha *= 0.5
					continue
				}
				return err
			}
			newResid := d.capacityResidualNorm()
			if newResid < resid || alpha < 1e-12 {
				resid = newResid
				accepted = true
				break
			}
			alpha *= 0.5
		}
		if !accepted {
			copy(d.Weights, saved)
			if err := d.rebuild(); err != nil {
				return err
			}
			return ccvterr.New(ccvterr.SolverDivergence, "weight-phase line search stalled at residual %g", resid)
		}
		if d.Params.Verbose {
			io.Pf("newton\t%d\t%23.10e\t%23.10e\n", iter, resid, alpha)
		}
	}
	if resid >= d.Params.Epsilon {
		return ccvterr.New(ccvterr.SolverDivergence, "weight phase did not converge within %d iterations, residual=%g", d.Params.MaxNewtonIters, resid)
	}
	return nil
}

// LloydStep moves every visible site toward its cell's mass-weighted
// centroid, scaled by XStep (1.0 reproduces classical Lloyd; <1.0 damps
// the step for stability near-degenerate configurations).
func (d *Driver) LloydStep() (moved float64, err error) {
	if err = d.rebuild(); err != nil {
		return 0, err
	}
	centroids := energy.Centroids(d.Tri, d.LastAssignment)
	for i, v := range d.Tri.Vertices {
		if v.Hidden {
			continue
		}
		delta := centroids[i].Sub(d.Positions[i]).Scale(d.Params.XStep)
		d.Positions[i] = d.Positions[i].Add(delta)
		moved += delta.Norm()
	}
	return moved, d.rebuild()
}

// NeighborStep descends the neighbor-proportion energy by one
// finite-difference gradient step per site (spec §9's default resolution
// of the neighbor-gradient open question), skipped entirely when
// Params.ConnectivityFixed is set.
func (d *Driver) NeighborStep() (resid float64, err error) {
	if d.Params.ConnectivityFixed || d.NeighborTargets == nil {
		return 0, nil
	}
	if err = d.rebuild(); err != nil {
		return 0, err
	}
	errs := energy.NeighborProportionError(d.Tri, d.Domain, d.NeighborTargets)
	for _, v := range errs {
		resid += v * v
	}
	resid = math.Sqrt(resid)
	if resid < d.Params.Epsilon {
		return resid, nil
	}
	step := 1e-3
	for i, v := range d.Tri.Vertices {
		if v.Hidden {
			continue
		}
		grad, err := energy.NeighborGradient(i, d.Positions, d.Weights, d.Domain.Bounds(), d.Domain, d.NeighborTargets, step)
		if err != nil {
			return resid, err
		}
		d.Positions[i] = d.Positions[i].Add(grad.Scale(-d.Params.XStep))
	}
	return resid, d.rebuild()
}

// OptimizeAll runs the full Init -> WeightPhase -> PositionPhase ->
// (NeighborPhase) -> Converged|Failed state machine until every residual
// is under Epsilon or MaxIters outer rounds elapse (spec §4.G). Checks
// Cancelled at the top of each outer iteration for cooperative
// cancellation, and
// Params.StepByStep callers are expected to poll State between calls
// rather than looping internally — OptimizeAll itself always runs to
// completion.
func (d *Driver) OptimizeAll() error {
	start := time.Now()
	d.State = Init
	for d.Iteration = 0; d.Iteration < d.Params.MaxIters; d.Iteration++ {
		if d.Cancelled {
			d.State = Failed
			return ccvterr.New(ccvterr.InvariantViolation, "optimization cancelled at iteration %d", d.Iteration)
		}

		d.State = WeightPhase
		if err := d.NewtonWeights(); err != nil {
			d.State = Failed
			return err
		}

		d.State = PositionPhase
		moved, err := d.LloydStep()
		if err != nil {
			d.State = Failed
			return err
		}

		neighborResid := 0.0
		if !d.Params.ConnectivityFixed && d.NeighborTargets != nil {
			d.State = NeighborPhase
			neighborResid, err = d.NeighborStep()
			if err != nil {
				d.State = Failed
				return err
			}
		}

		if d.Params.Verbose {
			io.Pf("iter\t%d\tmoved\t%23.10e\tneighbor\t%23.10e\n", d.Iteration, moved, neighborResid)
		}

		if moved < d.Params.Epsilon && neighborResid < d.Params.Epsilon {
			d.State = Converged
			if d.Params.Verbose {
				io.Pf("> converged at iteration %d, cpu time = %v\n", d.Iteration, time.Now().Sub(start))
			}
			return nil
		}
	}
	d.State = Failed
	return ccvterr.New(ccvterr.SolverDivergence, "optimization did not converge within %d outer iterations", d.Params.MaxIters)
}
