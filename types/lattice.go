package types

import "fmt"

// The node ordering of a degree p element connectivity follows the
// equidistant lattice of its topology. The enumeration runs the first
// parametric direction fastest: i, then j, then k. Simplex directions are
// constrained so that the multi-indices stay inside the reference shape.

// TriIndex returns the lattice index of node (i,j) of a degree p triangle
func TriIndex(i, j, p int) int {
	if i < 0 || j < 0 || i+j > p {
		panic(fmt.Sprintf("triangle lattice coordinates (%d,%d) outside degree %d", i, j, p))
	}
	return j*(p+1) - j*(j-1)/2 + i
}

// QuadIndex returns the lattice index of node (i,j) of a degree p quadrilateral
func QuadIndex(i, j, p int) int {
	if i < 0 || j < 0 || i > p || j > p {
		panic(fmt.Sprintf("quad lattice coordinates (%d,%d) outside degree %d", i, j, p))
	}
	return j*(p+1) + i
}

// TetIndex returns the lattice index of node (i,j,k) of a degree p tetrahedron
func TetIndex(i, j, k, p int) int {
	if i < 0 || j < 0 || k < 0 || i+j+k > p {
		panic(fmt.Sprintf("tet lattice coordinates (%d,%d,%d) outside degree %d", i, j, k, p))
	}
	var offset int
	for m := 0; m < k; m++ {
		q := p - m
		offset += (q + 1) * (q + 2) / 2
	}
	return offset + TriIndex(i, j, p-k)
}

// HexIndex returns the lattice index of node (i,j,k) of a degree p hexahedron
func HexIndex(i, j, k, p int) int {
	if i < 0 || j < 0 || k < 0 || i > p || j > p || k > p {
		panic(fmt.Sprintf("hex lattice coordinates (%d,%d,%d) outside degree %d", i, j, k, p))
	}
	return (k*(p+1)+j)*(p+1) + i
}

// PrismIndex returns the lattice index of node (i,j,k) of a degree p prism.
// The (i,j) pair indexes the triangle lattice, k the line lattice.
func PrismIndex(i, j, k, p int) int {
	if k < 0 || k > p {
		panic(fmt.Sprintf("prism lattice coordinate k=%d outside degree %d", k, p))
	}
	return k*(p+1)*(p+2)/2 + TriIndex(i, j, p)
}

// PyrIndex returns the lattice index of node (i,j,k) of a degree p pyramid.
// Layer k holds a quad lattice of (p-k+1)^2 nodes, shrinking to the apex.
func PyrIndex(i, j, k, p int) int {
	q := p - k
	if k < 0 || k > p || i < 0 || j < 0 || i > q || j > q {
		panic(fmt.Sprintf("pyramid lattice coordinates (%d,%d,%d) outside degree %d", i, j, k, p))
	}
	var offset int
	for m := 0; m < k; m++ {
		n := p - m + 1
		offset += n * n
	}
	return offset + j*(q+1) + i
}

// LatticeCoords returns the integer lattice coordinates of all nodes of a
// degree p element of topology t, in the canonical connectivity order.
func LatticeCoords(t ElemType, p int) (coords [][3]int) {
	coords = make([][3]int, 0, t.NDOFs(p))
	switch t {
	case Line:
		for i := 0; i <= p; i++ {
			coords = append(coords, [3]int{i, 0, 0})
		}
	case Triangle:
		for j := 0; j <= p; j++ {
			for i := 0; i <= p-j; i++ {
				coords = append(coords, [3]int{i, j, 0})
			}
		}
	case Quad:
		for j := 0; j <= p; j++ {
			for i := 0; i <= p; i++ {
				coords = append(coords, [3]int{i, j, 0})
			}
		}
	case Tet:
		for k := 0; k <= p; k++ {
			for j := 0; j <= p-k; j++ {
				for i := 0; i <= p-k-j; i++ {
					coords = append(coords, [3]int{i, j, k})
				}
			}
		}
	case Hex:
		for k := 0; k <= p; k++ {
			for j := 0; j <= p; j++ {
				for i := 0; i <= p; i++ {
					coords = append(coords, [3]int{i, j, k})
				}
			}
		}
	case Prism:
		for k := 0; k <= p; k++ {
			for j := 0; j <= p; j++ {
				for i := 0; i <= p-j; i++ {
					coords = append(coords, [3]int{i, j, k})
				}
			}
		}
	case Pyramid:
		for k := 0; k <= p; k++ {
			for j := 0; j <= p-k; j++ {
				for i := 0; i <= p-k; i++ {
					coords = append(coords, [3]int{i, j, k})
				}
			}
		}
	default:
		panic(fmt.Sprintf("unknown element type %d", t))
	}
	return
}

// cornerLattice gives the lattice coordinates of the corners, in units of p
var cornerLattice = map[ElemType][][3]int{
	Line:     {{0, 0, 0}, {1, 0, 0}},
	Triangle: {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	Quad:     {{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	Tet:      {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	Hex: {
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	},
	Prism: {
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1},
	},
	Pyramid: {
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0, 0, 1},
	},
}

// CornerCoords returns the lattice coordinates of corner c for degree p
func CornerCoords(t ElemType, c, p int) [3]int {
	cl := cornerLattice[t]
	if c < 0 || c >= len(cl) {
		panic(fmt.Sprintf("no corner %d for element type %s", c, t))
	}
	u := cl[c]
	return [3]int{u[0] * p, u[1] * p, u[2] * p}
}

// NodeIndex returns the connectivity index of lattice node (i,j,k)
func NodeIndex(t ElemType, i, j, k, p int) int {
	switch t {
	case Line:
		if i < 0 || i > p {
			panic(fmt.Sprintf("line lattice coordinate %d outside degree %d", i, p))
		}
		return i
	case Triangle:
		return TriIndex(i, j, p)
	case Quad:
		return QuadIndex(i, j, p)
	case Tet:
		return TetIndex(i, j, k, p)
	case Hex:
		return HexIndex(i, j, k, p)
	case Prism:
		return PrismIndex(i, j, k, p)
	case Pyramid:
		return PyrIndex(i, j, k, p)
	}
	panic(fmt.Sprintf("unknown element type %d", t))
}

// CornerIndices returns the connectivity indices of the corners of a degree p
// element, in corner order
func CornerIndices(t ElemType, p int) (ind []int) {
	ind = make([]int, t.NCorners())
	for c := range ind {
		u := CornerCoords(t, c, p)
		ind[c] = NodeIndex(t, u[0], u[1], u[2], p)
	}
	return
}

// FromVTKOrder reorders a corner connectivity from the counterclockwise VTK
// wire order used by mesh file formats into the degree 1 lattice enumeration.
// The two orders differ for Quad, Hex and Pyramid, whose lattice runs i
// fastest and so visits the (1,1) corner of a quad layer third, not second.
func FromVTKOrder(t ElemType, corners []uint64) (out []uint64) {
	ind := CornerIndices(t, 1)
	if len(corners) != len(ind) {
		panic(fmt.Sprintf("%s corner list has %d entries, want %d",
			t, len(corners), len(ind)))
	}
	out = make([]uint64, len(corners))
	for c, m := range ind {
		out[m] = corners[c]
	}
	return
}
