// Package adjacency implements component H: the adjacency graph and the
// per-edge mass matrices derived from the current triangulation and
// density (spec §4.H).
package adjacency

import (
	"github.com/sylvainthery/ccvt/density"
	"github.com/sylvainthery/ccvt/gauss"
	"github.com/sylvainthery/ccvt/mesh"
)

// Pair is a directed (i,j) adjacency: site i has a visible dual edge to
// site j.
type Pair struct {
	I, J int
}

// Graph returns the flat list of visible-site (i,j) pairs, both
// directions, mirroring CCVT::get_adjacence_graph.
func Graph(tri *mesh.Triangulation) []Pair {
	var pairs []Pair
	for i, v := range tri.Vertices {
		if v.Hidden {
			continue
		}
		for _, e := range v.IncidentDualEdges() {
			if !tri.IsInside(e) {
				continue
			}
			pairs = append(pairs, Pair{I: i, J: e.Neighbor})
		}
	}
	return pairs
}

// MassMatrix returns the n x n unnormalized edge-mass matrix m_ij (spec
// §4.H get_neighbor_val): m_ij is the Gaussian line integral along the
// bounded dual edge between i and j, 0 where no dual edge exists or
// either site is hidden.
func MassMatrix(tri *mesh.Triangulation, dom *density.Domain) [][]float64 {
	n := len(tri.Vertices)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i, v := range tri.Vertices {
		if v.Hidden {
			continue
		}
		for _, e := range v.IncidentDualEdges() {
			if !tri.IsInside(e) {
				continue
			}
			seg := mesh.BoundedDualEdge(e)
			m[i][e.Neighbor] = gauss.SegmentMass(dom, seg)
		}
	}
	return m
}

// ProportionMatrix returns the n x n row-stochastic matrix p_ij =
// m_ij / sum_k m_ik (spec §4.H get_neighbor_proportion). A hidden site's
// row, or a row with zero total mass, is all zero — this is the explicit
// resolution of spec §8's testable property ("or is zero for hidden
// sites"), which the original header's early-continue would instead have
// dropped the row entirely; we keep the row present and zeroed so every
// caller can always index by site, dense in [0,n).
func ProportionMatrix(tri *mesh.Triangulation, dom *density.Domain) [][]float64 {
	m := MassMatrix(tri, dom)
	p := make([][]float64, len(m))
	for i, row := range m {
		p[i] = make([]float64, len(row))
		if tri.Vertices[i].Hidden {
			continue
		}
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum <= 0 {
			continue
		}
		for j, v := range row {
			p[i][j] = v / sum
		}
	}
	return p
}
