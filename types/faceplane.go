package types

import "fmt"

// RefFace returns the reference face index used by the connectivity
// canonicalization for a face of topology f adjacent to an element of
// topology t.
func RefFace(f, t ElemType) (face int, err error) {
	switch {
	case t == Triangle && f == Line,
		t == Quad && f == Line,
		t == Tet && f == Triangle,
		t == Prism && f == Triangle,
		t == Hex && f == Quad,
		t == Pyramid && f == Quad:
		return 0, nil
	case t == Pyramid && f == Triangle:
		return 1, nil
	case t == Prism && f == Quad:
		return 3, nil
	}
	return -1, fmt.Errorf("no canonicalization for a %s face of a %s", f, t)
}

// facePlaneTable maps, per (element, face topology), the normalized
// positions of the reference face plane to element corner indices. The
// plane parametrization is the lattice read-out order of the reference
// face: tet/hex/prism-triangle/pyramid-quad faces lie in the k=0 plane
// read as (i,j); prism-quad and pyramid-triangle faces lie in the j=0
// plane read as (i,k); 2D element edges lie on j=0 read as (i).
var facePlaneTable = map[[2]ElemType]map[[2]int8]int{
	{Line, Triangle}:    {{0, 0}: 0, {1, 0}: 1},
	{Line, Quad}:        {{0, 0}: 0, {1, 0}: 1},
	{Triangle, Tet}:     {{0, 0}: 0, {1, 0}: 1, {0, 1}: 2},
	{Quad, Hex}:         {{0, 0}: 0, {1, 0}: 1, {1, 1}: 2, {0, 1}: 3},
	{Triangle, Prism}:   {{0, 0}: 0, {1, 0}: 1, {0, 1}: 2},
	{Quad, Prism}:       {{0, 0}: 0, {1, 0}: 1, {1, 1}: 4, {0, 1}: 3},
	{Quad, Pyramid}:     {{0, 0}: 0, {1, 0}: 1, {1, 1}: 2, {0, 1}: 3},
	{Triangle, Pyramid}: {{0, 0}: 0, {1, 0}: 1, {0, 1}: 4},
}

// FacePlaneCorners returns the map from normalized reference face plane
// positions to element corner indices.
func FacePlaneCorners(f, t ElemType) (corners map[[2]int8]int, err error) {
	corners, ok := facePlaneTable[[2]ElemType{f, t}]
	if !ok {
		return nil, fmt.Errorf("a %s has no canonical %s face plane", t, f)
	}
	return
}

// FacePlaneOfCorner returns, for each element corner on the reference face
// plane, its normalized plane position.
func FacePlaneOfCorner(f, t ElemType) (pos map[int][2]int8, err error) {
	corners, err := FacePlaneCorners(f, t)
	if err != nil {
		return nil, err
	}
	pos = make(map[int][2]int8, len(corners))
	for pp, c := range corners {
		pos[c] = pp
	}
	return
}

// FacePlaneToLattice converts reference face plane coordinates (a,b) of a
// degree p lattice into element lattice coordinates (i,j,k).
func FacePlaneToLattice(f, t ElemType, a, b int) (u [3]int, err error) {
	switch {
	case t == Triangle && f == Line, t == Quad && f == Line:
		u = [3]int{a, 0, 0}
	case t == Tet && f == Triangle, t == Hex && f == Quad,
		t == Prism && f == Triangle, t == Pyramid && f == Quad:
		u = [3]int{a, b, 0}
	case t == Prism && f == Quad, t == Pyramid && f == Triangle:
		u = [3]int{a, 0, b}
	default:
		err = fmt.Errorf("a %s has no canonical %s face plane", t, f)
	}
	return
}
