package standard

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgmesh/types"
)

// monomial x^a y^b z^c
type monomial struct{ a, b, c int }

// monomialBasis returns the monomial exponents spanning the polynomial space
// of a degree p element of topology t. The count always equals NDOFs(p).
func monomialBasis(t types.ElemType, p int) (mono []monomial, err error) {
	switch t {
	case types.Line:
		for a := 0; a <= p; a++ {
			mono = append(mono, monomial{a, 0, 0})
		}
	case types.Triangle:
		for b := 0; b <= p; b++ {
			for a := 0; a <= p-b; a++ {
				mono = append(mono, monomial{a, b, 0})
			}
		}
	case types.Quad:
		for b := 0; b <= p; b++ {
			for a := 0; a <= p; a++ {
				mono = append(mono, monomial{a, b, 0})
			}
		}
	case types.Tet:
		for c := 0; c <= p; c++ {
			for b := 0; b <= p-c; b++ {
				for a := 0; a <= p-c-b; a++ {
					mono = append(mono, monomial{a, b, c})
				}
			}
		}
	case types.Hex:
		for c := 0; c <= p; c++ {
			for b := 0; b <= p; b++ {
				for a := 0; a <= p; a++ {
					mono = append(mono, monomial{a, b, c})
				}
			}
		}
	case types.Prism:
		for c := 0; c <= p; c++ {
			for b := 0; b <= p; b++ {
				for a := 0; a <= p-b; a++ {
					mono = append(mono, monomial{a, b, c})
				}
			}
		}
	case types.Pyramid:
		// The polynomial space of a high order pyramid is rational; only the
		// classic 5 node linear pyramid is supported closed form
		if p != 1 {
			return nil, fmt.Errorf(
				"pyramid basis only supported for degree 1, got %d", p)
		}
		mono = []monomial{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}}
	default:
		return nil, fmt.Errorf("unknown element type %d", t)
	}
	if len(mono) != t.NDOFs(p) {
		panic(fmt.Sprintf("monomial count %d does not match %s degree %d DOFs %d",
			len(mono), t, p, t.NDOFs(p)))
	}
	return
}

func powInt(x float64, n int) (r float64) {
	r = 1
	for i := 0; i < n; i++ {
		r *= x
	}
	return
}

func (m monomial) eval(pt [3]float64) float64 {
	return powInt(pt[0], m.a) * powInt(pt[1], m.b) * powInt(pt[2], m.c)
}

func (m monomial) deriv(pt [3]float64, dir int) float64 {
	switch dir {
	case 0:
		if m.a == 0 {
			return 0
		}
		return float64(m.a) * powInt(pt[0], m.a-1) * powInt(pt[1], m.b) *
			powInt(pt[2], m.c)
	case 1:
		if m.b == 0 {
			return 0
		}
		return float64(m.b) * powInt(pt[0], m.a) * powInt(pt[1], m.b-1) *
			powInt(pt[2], m.c)
	default:
		if m.c == 0 {
			return 0
		}
		return float64(m.c) * powInt(pt[0], m.a) * powInt(pt[1], m.b) *
			powInt(pt[2], m.c-1)
	}
}

// vandermondeInv inverts the nodal Vandermonde matrix of the monomial basis
func vandermondeInv(mono []monomial, nodes [][3]float64) (vInv *mat.Dense, err error) {
	n := len(nodes)
	if n != len(mono) {
		return nil, fmt.Errorf("vandermonde not square: %d nodes, %d monomials",
			n, len(mono))
	}
	v := mat.NewDense(n, n, nil)
	for i, pt := range nodes {
		for j, m := range mono {
			v.Set(i, j, m.eval(pt))
		}
	}
	vInv = mat.NewDense(n, n, nil)
	if err = vInv.Inverse(v); err != nil {
		return nil, fmt.Errorf("singular nodal vandermonde matrix: %w", err)
	}
	return
}

// BasisAtPoints evaluates the degree p Lagrange basis of topology t and its
// parametric derivatives at the given points. Row q of each returned matrix
// holds the values of all nDOFs basis functions at point q.
func BasisAtPoints(t types.ElemType, p int, pts [][3]float64) (
	b, dr, ds, dt *mat.Dense, err error) {
	mono, err := monomialBasis(t, p)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	vInv, err := vandermondeInv(mono, NodeParams(t, p))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%s degree %d: %w", t, p, err)
	}
	nq, nd := len(pts), len(mono)
	pm := mat.NewDense(nq, nd, nil)
	pr := mat.NewDense(nq, nd, nil)
	ps := mat.NewDense(nq, nd, nil)
	pt3 := mat.NewDense(nq, nd, nil)
	for q, x := range pts {
		for j, m := range mono {
			pm.Set(q, j, m.eval(x))
			pr.Set(q, j, m.deriv(x, 0))
			ps.Set(q, j, m.deriv(x, 1))
			pt3.Set(q, j, m.deriv(x, 2))
		}
	}
	b = mat.NewDense(nq, nd, nil)
	dr = mat.NewDense(nq, nd, nil)
	ds = mat.NewDense(nq, nd, nil)
	dt = mat.NewDense(nq, nd, nil)
	b.Mul(pm, vInv)
	dr.Mul(pr, vInv)
	ds.Mul(ps, vInv)
	dt.Mul(pt3, vInv)
	return
}
