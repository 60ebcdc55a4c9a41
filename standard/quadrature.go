// Package standard provides the catalog of reference ("standard") elements
// and faces used by the DG mesh: integration rules, nodal lattices, and
// Lagrange basis values/derivatives at the integration points, deduplicated
// by (topology, polynomial degree) signature.
package standard

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/notargets/dgmesh/types"
)

// gaussLegendre returns an n point Gauss-Legendre rule on [0,1]
func gaussLegendre(n int) (x, w []float64) {
	x = make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	return
}

// IntegrationRule holds quadrature locations and weights on the reference
// element. The reference shapes are the unit line/square/cube, the unit
// simplices, the unit triangle extruded to z in [0,1] for the prism, and the
// pyramid with base [0,1]^2 shrinking linearly to the apex (0,0,1).
type IntegrationRule struct {
	Points  [][3]float64
	Weights []float64
}

// NewIntegrationRule builds a rule exact for polynomials of degree 2*p+1 in
// each tensor direction, from collapsed Gauss-Legendre products.
func NewIntegrationRule(t types.ElemType, p int) (r *IntegrationRule, err error) {
	n := p + 1
	x, w := gaussLegendre(n)
	r = &IntegrationRule{}
	switch t {
	case types.Line:
		for i := 0; i < n; i++ {
			r.Points = append(r.Points, [3]float64{x[i], 0, 0})
			r.Weights = append(r.Weights, w[i])
		}
	case types.Quad:
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				r.Points = append(r.Points, [3]float64{x[i], x[j], 0})
				r.Weights = append(r.Weights, w[i]*w[j])
			}
		}
	case types.Hex:
		for k := 0; k < n; k++ {
			for j := 0; j < n; j++ {
				for i := 0; i < n; i++ {
					r.Points = append(r.Points, [3]float64{x[i], x[j], x[k]})
					r.Weights = append(r.Weights, w[i]*w[j]*w[k])
				}
			}
		}
	case types.Triangle:
		// Duffy collapse of the unit square onto the unit triangle
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				u, v := x[i], x[j]
				r.Points = append(r.Points, [3]float64{u * (1 - v), v, 0})
				r.Weights = append(r.Weights, w[i]*w[j]*(1-v))
			}
		}
	case types.Tet:
		for k := 0; k < n; k++ {
			for j := 0; j < n; j++ {
				for i := 0; i < n; i++ {
					u, v, s := x[i], x[j], x[k]
					r.Points = append(r.Points, [3]float64{
						u * (1 - v) * (1 - s), v * (1 - s), s})
					r.Weights = append(r.Weights,
						w[i]*w[j]*w[k]*(1-v)*(1-s)*(1-s))
				}
			}
		}
	case types.Prism:
		tri, _ := NewIntegrationRule(types.Triangle, p)
		for k := 0; k < n; k++ {
			for q, pt := range tri.Points {
				r.Points = append(r.Points, [3]float64{pt[0], pt[1], x[k]})
				r.Weights = append(r.Weights, tri.Weights[q]*w[k])
			}
		}
	case types.Pyramid:
		for k := 0; k < n; k++ {
			for j := 0; j < n; j++ {
				for i := 0; i < n; i++ {
					u, v, s := x[i], x[j], x[k]
					r.Points = append(r.Points, [3]float64{
						u * (1 - s), v * (1 - s), s})
					r.Weights = append(r.Weights,
						w[i]*w[j]*w[k]*(1-s)*(1-s))
				}
			}
		}
	default:
		return nil, fmt.Errorf("no integration rule for element type %s", t)
	}
	return
}

// NodeParams returns the reference coordinates of the degree p nodal lattice
// of topology t, in the canonical connectivity order.
func NodeParams(t types.ElemType, p int) (pts [][3]float64) {
	coords := types.LatticeCoords(t, p)
	pts = make([][3]float64, len(coords))
	fp := float64(p)
	for n, u := range coords {
		switch t {
		case types.Pyramid:
			// Layers shrink toward the apex
			k := u[2]
			z := float64(k) / fp
			q := p - k
			if q == 0 {
				pts[n] = [3]float64{0, 0, 1}
				continue
			}
			scale := (1 - z) / float64(q)
			pts[n] = [3]float64{float64(u[0]) * scale, float64(u[1]) * scale, z}
		default:
			pts[n] = [3]float64{float64(u[0]) / fp, float64(u[1]) / fp,
				float64(u[2]) / fp}
		}
	}
	return
}
