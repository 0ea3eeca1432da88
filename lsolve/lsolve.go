// Package lsolve implements component F: assembly of the weight-Newton
// system's sparse Jacobian (a graph Laplacian over the dual edges) and its
// solution by a preconditioned conjugate-gradient iteration (spec §4.F).
//
// gofem assembles its tangent stiffness the same way — each element pushes
// its local contribution into a shared *la.Triplet (fem/domain.go's Kb),
// which is then compressed via Triplet.ToMatrix into a *la.CCMatrix for the
// linear solve. We reuse that assembly idiom for the (much smaller, always
// symmetric) capacity-Newton system. gofem hands the compressed matrix to
// MUMPS or UMFPACK (la.GetSolver), both cgo-linked direct solvers; this
// system has no such dependency available, and the Laplacian here is
// symmetric positive semi-definite after gauge-pinning, so a hand-rolled
// Jacobi-preconditioned CG (la.SpMatVecMulAdd driving the matrix-vector
// product) is both simpler and a better fit — see DESIGN.md.
package lsolve

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/sylvainthery/ccvt/ccvterr"
	"github.com/sylvainthery/ccvt/mesh"
)

// System is the assembled weight-Newton Jacobian: the graph Laplacian over
// visible sites' dual edges, with sensitivity s_ij = |edge_ij| / (2*dist(i,j))
// on the off-diagonals (the standard power-diagram area-to-weight
// sensitivity) and row sums on the diagonal.
type System struct {
	N       int
	Trip    la.Triplet
	Matrix  *la.CCMatrix
	Diag    []float64 // Jacobi preconditioner, one entry per row
	pinned  int       // gauge-pinned row index, or -1 if none (all hidden)
	anyFree bool
}

// Assemble builds the Newton system for the current triangulation. Hidden
// sites get an identity row (their weight is never adjusted since they
// carry no area to match). The first visible site's row and column are
// replaced with those of the identity too, gauge-pinning the 1-D nullspace
// that the Laplacian of a connected graph always has (uniform weight shift
// leaves every power bisector, hence every area, unchanged).
func Assemble(tri *mesh.Triangulation) *System {
	n := len(tri.Vertices)
	s := &System{N: n, pinned: -1}
	s.Trip.Init(n, n, n*8+n)
	for i, v := range tri.Vertices {
		if !v.Hidden {
			s.pinned = i
			break
		}
	}

	diag := make([]float64, n)
	visited := make(map[[2]int]bool)
	for i, v := range tri.Vertices {
		if v.Hidden {
			continue
		}
		for _, e := range v.IncidentDualEdges() {
			j := e.Neighbor
			if j < 0 || j >= n || tri.Vertices[j].Hidden {
				continue
			}
			key := [2]int{i, j}
			if i > j {
				key = [2]int{j, i}
			}
			if visited[key] {
				continue
			}
			visited[key] = true

			seg := mesh.BoundedDualEdge(e)
			edgeLen := seg.Length()
			dx := v.Position.X - tri.Vertices[j].Position.X
			dy := v.Position.Y - tri.Vertices[j].Position.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist <= 1e-12 || edgeLen <= 0 {
				continue
			}
			sens := edgeLen / (2 * dist)
			if i != s.pinned && j != s.pinned {
				s.Trip.Put(i, j, -sens)
				s.Trip.Put(j, i, -sens)
			}
			diag[i] += sens
			diag[j] += sens
		}
	}

	s.Diag = make([]float64, n)
	for i, v := range tri.Vertices {
		if v.Hidden {
			s.Trip.Put(i, i, 1)
			s.Diag[i] = 1
			continue
		}
		s.anyFree = true
		if i == s.pinned {
			s.Trip.Put(i, i, 1)
			s.Diag[i] = 1
			continue
		}
		if diag[i] <= 0 {
			diag[i] = 1e-9
		}
		s.Trip.Put(i, i, diag[i])
		s.Diag[i] = diag[i]
	}
	s.Matrix = s.Trip.ToMatrix(nil)
	return s
}

// Solve computes w such that System*w = rhs via Jacobi-preconditioned CG,
// with rhs[pinned row] forced to 0 so the gauge pin is honored regardless
// of what the caller passed in. Returns ccvterr.SolverDivergence if the
// relative residual hasn't reached tol after maxIters.
func (s *System) Solve(rhs []float64, tol float64, maxIters int) ([]float64, error) {
	n := s.N
	if !s.anyFree {
		return make([]float64, n), nil
	}
	b := make([]float64, n)
	copy(b, rhs)
	if s.pinned >= 0 {
		b[s.pinned] = 0
	}

	x := make([]float64, n)
	r := make([]float64, n)
	copy(r, b)
	// r -= A*x (x starts at 0, so r == b)

	jacobi := make([]float64, n)
	copy(jacobi, s.Diag)
	for i := range jacobi {
		if jacobi[i] == 0 {
			jacobi[i] = 1
		}
	}

	z := make([]float64, n)
	applyPrecond(z, jacobi, r)
	p := make([]float64, n)
	copy(p, z)
	rz := dot(r, z)

	bNorm := la.VecNorm(b)
	if bNorm == 0 {
		bNorm = 1
	}

	ap := make([]float64, n)
	for iter := 0; iter < maxIters; iter++ {
		for i := range ap {
			ap[i] = 0
		}
		la.SpMatVecMulAdd(ap, 1, s.Matrix, p)

		pap := dot(p, ap)
		if pap == 0 {
			break
		}
		alpha := rz / pap
		for i := 0; i < n; i++ {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}

		if la.VecNorm(r)/bNorm < tol {
			return x, nil
		}

		applyPrecond(z, jacobi, r)
		rzNew := dot(r, z)
		beta := rzNew / rz
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}
		rz = rzNew
	}

	if la.VecNorm(r)/bNorm < tol {
		return x, nil
	}
	return nil, ccvterr.New(ccvterr.SolverDivergence,
		"weight-Newton CG failed to converge to tol=%g within %d iterations", tol, maxIters)
}

func applyPrecond(z, jacobi, r []float64) {
	for i := range z {
		z[i] = r[i] / jacobi[i]
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
