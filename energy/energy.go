// Package energy implements component E: the weighted CVT energy and its
// gradients with respect to weights, positions and neighbor proportions
// (spec §4.E).
package energy

import (
	"github.com/cpmech/gosl/num"
	"github.com/sylvainthery/ccvt/adjacency"
	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/mesh"
	"github.com/sylvainthery/ccvt/raster"
)

// WeightGradient returns dE/dw_i = C_i - area_i for every site (spec
// §4.E): the Newton solver drives this vector to zero, since each site's
// integrated pixel mass must match its target capacity.
func WeightGradient(capacity []float64, assignment *raster.Assignment) []float64 {
	n := len(capacity)
	g := make([]float64, n)
	for i := 0; i < n; i++ {
		g[i] = capacity[i] - assignment.CellMass[i]
	}
	return g
}

// Centroids returns the Lloyd target position of every visible site: the
// mass-weighted centroid of its rasterized cell. Hidden or starved sites
// keep their current position (no pull where there is no mass to pull
// toward).
func Centroids(tri *mesh.Triangulation, assignment *raster.Assignment) []geom.Point {
	n := len(tri.Vertices)
	out := make([]geom.Point, n)
	for i, v := range tri.Vertices {
		if c, ok := assignment.Centroid(i); ok {
			out[i] = c
		} else {
			out[i] = v.Position
		}
	}
	return out
}

// PositionGradient returns dE/dx_i = 2*area_i*(x_i - centroid_i), the WCVT
// position gradient (spec §4.E); Lloyd's algorithm takes the step that
// sets this to zero directly (x_i <- centroid_i) rather than descending
// it, but the optimizer driver exposes both.
func PositionGradient(tri *mesh.Triangulation, assignment *raster.Assignment) []geom.Vector {
	n := len(tri.Vertices)
	grad := make([]geom.Vector, n)
	for i, v := range tri.Vertices {
		c, ok := assignment.Centroid(i)
		if !ok {
			continue
		}
		d := v.Position.Sub(c)
		grad[i] = d.Scale(2 * assignment.CellMass[i])
	}
	return grad
}

// NeighborProportionError returns, for every visible (i,j) adjacency, the
// signed difference between the current and target neighbor proportion
// (spec §4.E), used both as a convergence test and as the residual driving
// the neighbor-phase gradient descent.
func NeighborProportionError(tri *mesh.Triangulation, dom *density.Domain, target [][]float64) map[adjacency.Pair]float64 {
	current := adjacency.ProportionMatrix(tri, dom)
	out := make(map[adjacency.Pair]float64)
	for _, p := range adjacency.Graph(tri) {
		out[p] = current[p.I][p.J] - target[p.I][p.J]
	}
	return out
}

// NeighborGradient estimates dE_N/dx_i and dE_N/dy_i by central finite
// difference (spec §9's default resolution of the neighbor-phase gradient
// open question, in the absence of a closed form for how the proportion
// matrix depends on a site's position): E_N = sum_{(i,j)} (p_ij -
// target_ij)^2. rebuild re-triangulates and re-rasterizes at a perturbed
// position, mirroring the way fem/testing.go's Kb check perturbs one DOF,
// re-solves, and restores it (num.DerivCentral, gofem's own finite
// difference helper).
func NeighborGradient(i int, positions []geom.Point, weights []float64, bounds geom.Rect, dom *density.Domain, target [][]float64, step float64) (geom.Vector, error) {
	loss := func(px, py float64) (float64, error) {
		saved := positions[i]
		positions[i] = geom.Point{X: px, Y: py}
		defer func() { positions[i] = saved }()

		tri := &mesh.Triangulation{}
		tri.SetBoundary(bounds)
		if err := tri.Build(positions, weights); err != nil {
			return 0, err
		}
		current := adjacency.ProportionMatrix(tri, dom)
		sum := 0.0
		for _, p := range adjacency.Graph(tri) {
			d := current[p.I][p.J] - target[p.I][p.J]
			sum += d * d
		}
		return sum, nil
	}

	var buildErr error
	fx := func(x float64, args ...interface{}) float64 {
		v, err := loss(x, positions[i].Y)
		if err != nil {
			buildErr = err
		}
		return v
	}
	fy := func(y float64, args ...interface{}) float64 {
		v, err := loss(positions[i].X, y)
		if err != nil {
			buildErr = err
		}
		return v
	}

	dx, _ := num.DerivCentral(fx, positions[i].X, step)
	if buildErr != nil {
		return geom.Vector{}, buildErr
	}
	dy, _ := num.DerivCentral(fy, positions[i].Y, step)
	if buildErr != nil {
		return geom.Vector{}, buildErr
	}
	return geom.Vector{Dx: dx, Dy: dy}, nil
}
