package types

import "fmt"

// ElemType identifies the topology of an element or face
type ElemType uint8

const (
	Line ElemType = iota
	Triangle
	Quad
	Tet
	Hex
	Prism
	Pyramid
)

func (t ElemType) String() string {
	return [...]string{"Line", "Triangle", "Quad", "Tet", "Hex", "Prism",
		"Pyramid"}[t]
}

// Dim returns the parametric dimension of the topology
func (t ElemType) Dim() int {
	switch t {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	default:
		return 3
	}
}

// NCorners returns the number of corner points
func (t ElemType) NCorners() int {
	switch t {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Pyramid:
		return 5
	case Prism:
		return 6
	case Hex:
		return 8
	}
	panic(fmt.Sprintf("unknown element type %d", t))
}

// NFaces returns the number of faces (edges in 2D)
func (t ElemType) NFaces() int {
	switch t {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Prism, Pyramid:
		return 5
	case Hex:
		return 6
	}
	panic(fmt.Sprintf("unknown element type %d", t))
}

// NDOFs returns the number of nodes of the equidistant lattice of degree p
func (t ElemType) NDOFs(p int) int {
	switch t {
	case Line:
		return p + 1
	case Triangle:
		return (p + 1) * (p + 2) / 2
	case Quad:
		return (p + 1) * (p + 1)
	case Tet:
		return (p + 1) * (p + 2) * (p + 3) / 6
	case Hex:
		return (p + 1) * (p + 1) * (p + 1)
	case Prism:
		return (p + 1) * (p + 1) * (p + 2) / 2
	case Pyramid:
		// Stacked quad layers of decreasing size
		return (p + 1) * (p + 2) * (2*p + 3) / 6
	}
	panic(fmt.Sprintf("unknown element type %d", t))
}

// faceCornerTable holds, per topology, the local corner indices of each
// face. The traversal of each face is counterclockwise seen from outside the
// element, so the traversal cross product points outward. For 2D elements
// the edges follow the counterclockwise element traversal.
var faceCornerTable = map[ElemType][][]int{
	Line:     {{0}, {1}},
	Triangle: {{0, 1}, {1, 2}, {2, 0}},
	Quad:     {{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	Tet:      {{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	Hex: {
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {1, 2, 6, 5},
		{2, 3, 7, 6}, {0, 4, 7, 3},
	},
	Prism: {
		{0, 2, 1}, {3, 4, 5},
		{0, 3, 5, 2}, {0, 1, 4, 3}, {1, 2, 5, 4},
	},
	Pyramid: {
		{0, 3, 2, 1},
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
	},
}

// FaceCorners returns the local corner indices of face number f
func (t ElemType) FaceCorners(f int) []int {
	faces, ok := faceCornerTable[t]
	if !ok || f < 0 || f >= len(faces) {
		panic(fmt.Sprintf("no face %d for element type %s", f, t))
	}
	return faces[f]
}

// FaceType returns the topology of face number f
func (t ElemType) FaceType(f int) ElemType {
	nc := len(t.FaceCorners(f))
	switch t.Dim() {
	case 2:
		return Line
	case 3:
		if nc == 3 {
			return Triangle
		}
		return Quad
	}
	panic(fmt.Sprintf("faces of a %s have no type", t))
}
