package mesh

import (
	"fmt"

	"github.com/notargets/dgmesh/types"
)

/*
Face connectivity canonicalization

When two elements share a face, or a boundary surface element sits on a face
of a volume element, the nodal connectivity of the face must be expressed in
one agreed order on both sides so that face DOF j of one side is the same
grid point as face DOF j of the other. The agreed order is the "desired"
corner sequence of the face, fixed once when the face is created.

Canonicalization renumbers the adjacent element with a proper rotation of
its topology so that the face lands on the reference face of that topology,
then reads the face lattice out of the renumbered element anchored at the
desired corners. Proper rotations only: a reflection would flip the sign of
the element Jacobian and corrupt the metric terms.
*/

// composePerms returns the permutation "a after b", c[n] = a[b[n]]
func composePerms(a, b []int) (c []int) {
	c = make([]int, len(a))
	for n := range c {
		c[n] = a[b[n]]
	}
	return
}

func invertPerm(a []int) (inv []int) {
	inv = make([]int, len(a))
	for n, v := range a {
		inv[v] = n
	}
	return
}

// permClosure generates the group spanned by the generator permutations.
// The group order of each topology is known, so a size mismatch means the
// generators are wrong.
func permClosure(gens [][]int, want int, what string) (group [][]int) {
	id := make([]int, len(gens[0]))
	for n := range id {
		id[n] = n
	}
	seen := map[string]bool{fmt.Sprint(id): true}
	group = [][]int{id}
	for head := 0; head < len(group); head++ {
		for _, g := range gens {
			next := composePerms(group[head], g)
			key := fmt.Sprint(next)
			if !seen[key] {
				seen[key] = true
				group = append(group, next)
			}
		}
	}
	if len(group) != want {
		panic(fmt.Sprintf("%s rotation group has %d members, want %d",
			what, len(group), want))
	}
	return
}

// properRotations holds, per topology, every corner renumbering realizable
// by a rigid rotation of the reference element. Entry n of a permutation is
// the old corner that lands at new corner slot n.
var properRotations = map[types.ElemType][][]int{}

func init() {
	properRotations[types.Triangle] = permClosure(
		[][]int{{1, 2, 0}}, 3, "triangle")
	properRotations[types.Quad] = permClosure(
		[][]int{{1, 2, 3, 0}}, 4, "quad")
	properRotations[types.Tet] = permClosure(
		[][]int{{1, 2, 0, 3}, {0, 2, 3, 1}}, 12, "tet")
	properRotations[types.Hex] = permClosure(
		[][]int{{1, 2, 3, 0, 5, 6, 7, 4}, {3, 2, 6, 7, 0, 1, 5, 4}},
		24, "hex")
	properRotations[types.Prism] = permClosure(
		[][]int{{1, 2, 0, 4, 5, 3}, {4, 3, 5, 1, 0, 2}}, 6, "prism")
	properRotations[types.Pyramid] = permClosure(
		[][]int{{1, 2, 3, 0, 4}}, 4, "pyramid")
}

// orientSwap reports whether the plane positions traverse the face against
// the reference face orientation
func orientSwap(faceType types.ElemType, pos [4][2]int8) bool {
	switch faceType {
	case types.Line:
		return pos[0][0] == 1
	case types.Triangle, types.Quad:
		last := 2
		if faceType == types.Quad {
			last = 3
		}
		e1 := [2]int{int(pos[1][0] - pos[0][0]), int(pos[1][1] - pos[0][1])}
		e2 := [2]int{int(pos[last][0] - pos[0][0]),
			int(pos[last][1] - pos[0][1])}
		return e1[0]*e2[1]-e1[1]*e2[0] < 0
	}
	panic(fmt.Sprintf("%s is not a face topology", faceType))
}

// planeTraversalOK reports whether the plane positions form a contiguous
// traversal of the face. A rigid rotation always produces one, but a desired
// sequence listing the corners of a quad face in diagonal order lands
// non-adjacent positions side by side and must be rejected, not read out.
func planeTraversalOK(faceType types.ElemType, pos [4][2]int8) bool {
	if faceType != types.Quad {
		return true
	}
	e1 := [2]int8{pos[1][0] - pos[0][0], pos[1][1] - pos[0][1]}
	e2 := [2]int8{pos[3][0] - pos[0][0], pos[3][1] - pos[0][1]}
	unit := func(e [2]int8) bool {
		return (e[0] == 0) != (e[1] == 0)
	}
	if !unit(e1) || !unit(e2) {
		return false
	}
	return pos[2][0] == pos[1][0]+pos[3][0]-pos[0][0] &&
		pos[2][1] == pos[1][1]+pos[3][1]-pos[0][1]
}

func orientLess(a, b types.FaceOrient) bool {
	for m := 0; m < 4; m++ {
		for d := 0; d < 2; d++ {
			if a.Pos[m][d] != b.Pos[m][d] {
				return a.Pos[m][d] < b.Pos[m][d]
			}
		}
	}
	return !a.Swap && b.Swap
}

// permuteConn renumbers a degree p element connectivity according to a
// corner rotation, remapping the full node lattice
func permuteConn(t types.ElemType, conn []uint64, p int,
	rot []int) (out []uint64, err error) {

	if len(conn) != t.NDOFs(p) {
		return nil, fmt.Errorf(
			"%s connectivity has %d entries, want %d for degree %d",
			t, len(conn), t.NDOFs(p), p)
	}
	out = make([]uint64, len(conn))
	coords := types.LatticeCoords(t, p)
	for m, u := range coords {
		v := rotateLattice(t, u, p, rot)
		out[m] = conn[types.NodeIndex(t, v[0], v[1], v[2], p)]
	}
	return
}

// rotateLattice maps the lattice coordinates of a node in the renumbered
// element back to its coordinates in the original numbering
func rotateLattice(t types.ElemType, u [3]int, p int, rot []int) (v [3]int) {
	switch t {
	case types.Triangle:
		b := [3]int{p - u[0] - u[1], u[0], u[1]}
		var o [3]int
		for m := 0; m < 3; m++ {
			o[rot[m]] = b[m]
		}
		v = [3]int{o[1], o[2], 0}
	case types.Tet:
		b := [4]int{p - u[0] - u[1] - u[2], u[0], u[1], u[2]}
		var o [4]int
		for m := 0; m < 4; m++ {
			o[rot[m]] = b[m]
		}
		v = [3]int{o[1], o[2], o[3]}
	case types.Quad, types.Hex:
		o := types.CornerCoords(t, rot[0], p)
		a1 := axisFromCorners(t, rot[0], rot[1], p)
		a2 := axisFromCorners(t, rot[0], rot[3], p)
		a3 := [3]int{}
		if t == types.Hex {
			a3 = axisFromCorners(t, rot[0], rot[4], p)
		}
		for d := 0; d < 3; d++ {
			v[d] = o[d] + u[0]*a1[d] + u[1]*a2[d] + u[2]*a3[d]
		}
	case types.Prism:
		bot := rot[0] < 3
		b := [3]int{p - u[0] - u[1], u[0], u[1]}
		var o [3]int
		for m := 0; m < 3; m++ {
			o[rot[m]%3] = b[m]
		}
		k := u[2]
		if !bot {
			k = p - u[2]
		}
		v = [3]int{o[1], o[2], k}
	case types.Pyramid:
		// Every pyramid rotation fixes the vertical axis
		k := u[2]
		q := p - k
		if q == 0 {
			return [3]int{0, 0, p}
		}
		layer := [4][2]int{{0, 0}, {q, 0}, {q, q}, {0, q}}
		o := layer[rot[0]]
		a1 := [2]int{(layer[rot[1]][0] - o[0]) / q,
			(layer[rot[1]][1] - o[1]) / q}
		a2 := [2]int{(layer[rot[3]][0] - o[0]) / q,
			(layer[rot[3]][1] - o[1]) / q}
		v = [3]int{o[0] + u[0]*a1[0] + u[1]*a2[0],
			o[1] + u[0]*a1[1] + u[1]*a2[1], k}
	default:
		panic(fmt.Sprintf("no lattice rotation for element type %s", t))
	}
	return
}

func axisFromCorners(t types.ElemType, c0, c1, p int) (a [3]int) {
	u0 := types.CornerCoords(t, c0, p)
	u1 := types.CornerCoords(t, c1, p)
	for d := 0; d < 3; d++ {
		a[d] = (u1[d] - u0[d]) / p
	}
	return
}

/*
canonicalizeFace renumbers one element adjacent to a face so that the face
becomes the reference face of the element topology, and extracts the face
connectivity in the order of the desired corner sequence.

desired holds the global grid IDs of the face corners in the agreed order.
gridNodeIDs is the grid connectivity of the element at degree pGrid, used to
locate the face. conn is the connectivity actually renumbered, at degree
pConn; it is the grid connectivity itself when canonicalizing the grid, or
the solution DOF connectivity of the same element otherwise.

Among the rotations that place the face on the reference face, the one
landing desired corner 0 at the plane origin is preferred; when the
stabilizer of the reference face makes that unreachable the lexicographically
smallest landing is used, so both elements sharing a face make the same
choice. The returned orientation records where each desired corner landed on
the reference face plane and whether the mapping reverses the face
orientation.
*/
func canonicalizeFace(faceType, elemType types.ElemType,
	desired, gridNodeIDs []uint64, pGrid int, conn []uint64,
	pConn int) (modConnFace, modConnElem []uint64,
	orient types.FaceOrient, err error) {

	refFace, err := types.RefFace(faceType, elemType)
	if err != nil {
		return
	}
	nc := faceType.NCorners()
	if len(desired) != nc {
		err = fmt.Errorf("%s face needs %d corners, got %d",
			faceType, nc, len(desired))
		return
	}
	if len(gridNodeIDs) != elemType.NDOFs(pGrid) {
		err = fmt.Errorf(
			"%s grid connectivity has %d entries, want %d for degree %d",
			elemType, len(gridNodeIDs), elemType.NDOFs(pGrid), pGrid)
		return
	}

	// Element corner global IDs, then the local corner of each desired ID
	cornerInd := types.CornerIndices(elemType, pGrid)
	nCorn := elemType.NCorners()
	loc := make([]int, nc)
	for m, d := range desired {
		loc[m] = -1
		for c := 0; c < nCorn; c++ {
			if gridNodeIDs[cornerInd[c]] == d {
				loc[m] = c
				break
			}
		}
		if loc[m] < 0 {
			err = fmt.Errorf(
				"face corner ID %d is not a corner of the %s element", d,
				elemType)
			return
		}
	}

	onRef := make([]bool, nCorn)
	for _, c := range elemType.FaceCorners(refFace) {
		onRef[c] = true
	}
	planeOf, err := types.FacePlaneOfCorner(faceType, elemType)
	if err != nil {
		return
	}

	var best []int
	var found bool
	for _, rot := range properRotations[elemType] {
		pos := invertPerm(rot)
		ok := true
		var cand types.FaceOrient
		for m := 0; m < nc; m++ {
			slot := pos[loc[m]]
			if !onRef[slot] {
				ok = false
				break
			}
			cand.Pos[m] = planeOf[slot]
		}
		if !ok || !planeTraversalOK(faceType, cand.Pos) {
			continue
		}
		cand.Swap = orientSwap(faceType, cand.Pos)
		if !found || orientLess(cand, orient) {
			best, orient, found = rot, cand, true
		}
	}
	if !found {
		err = fmt.Errorf(
			"face corner IDs %v do not traverse a %s face of the %s element",
			desired, faceType, elemType)
		return
	}

	modConnElem, err = permuteConn(elemType, conn, pConn, best)
	if err != nil {
		return
	}

	// Read the face lattice out of the renumbered element, anchored at the
	// landing positions of the desired corners. The reference face is flat
	// in the lattice so the read-out is an integer affine map.
	p0 := [2]int{int(orient.Pos[0][0]) * pConn, int(orient.Pos[0][1]) * pConn}
	e1 := [2]int{int(orient.Pos[1][0] - orient.Pos[0][0]),
		int(orient.Pos[1][1] - orient.Pos[0][1])}
	var e2 [2]int
	switch faceType {
	case types.Triangle:
		e2 = [2]int{int(orient.Pos[2][0] - orient.Pos[0][0]),
			int(orient.Pos[2][1] - orient.Pos[0][1])}
	case types.Quad:
		e2 = [2]int{int(orient.Pos[3][0] - orient.Pos[0][0]),
			int(orient.Pos[3][1] - orient.Pos[0][1])}
	}

	faceCoords := types.LatticeCoords(faceType, pConn)
	modConnFace = make([]uint64, len(faceCoords))
	for m, fc := range faceCoords {
		a, b := fc[0], fc[1]
		pa := p0[0] + a*e1[0] + b*e2[0]
		pb := p0[1] + a*e1[1] + b*e2[1]
		var u [3]int
		u, err = types.FacePlaneToLattice(faceType, elemType, pa, pb)
		if err != nil {
			return
		}
		modConnFace[m] = modConnElem[types.NodeIndex(
			elemType, u[0], u[1], u[2], pConn)]
	}
	return
}

// ConnFunc canonicalizes the connectivity of one half face against its
// adjacent element
type ConnFunc func(desired, gridNodeIDs []uint64, pGrid int, conn []uint64,
	pConn int) (modConnFace, modConnElem []uint64, orient types.FaceOrient,
	err error)

func pairFunc(faceType, elemType types.ElemType) ConnFunc {
	return func(desired, gridNodeIDs []uint64, pGrid int, conn []uint64,
		pConn int) ([]uint64, []uint64, types.FaceOrient, error) {
		return canonicalizeFace(faceType, elemType, desired, gridNodeIDs,
			pGrid, conn, pConn)
	}
}

// connectivityDispatch maps (face topology, element topology) to its
// canonicalization routine. Every legal adjacency of the supported element
// zoo has an entry.
var connectivityDispatch = map[[2]types.ElemType]ConnFunc{
	{types.Line, types.Triangle}:    pairFunc(types.Line, types.Triangle),
	{types.Line, types.Quad}:        pairFunc(types.Line, types.Quad),
	{types.Triangle, types.Tet}:     pairFunc(types.Triangle, types.Tet),
	{types.Triangle, types.Prism}:   pairFunc(types.Triangle, types.Prism),
	{types.Triangle, types.Pyramid}: pairFunc(types.Triangle, types.Pyramid),
	{types.Quad, types.Hex}:         pairFunc(types.Quad, types.Hex),
	{types.Quad, types.Prism}:       pairFunc(types.Quad, types.Prism),
	{types.Quad, types.Pyramid}:     pairFunc(types.Quad, types.Pyramid),
}

// FaceConnectivity canonicalizes one half face: it renumbers the adjacent
// element so the face is its reference face and returns the face
// connectivity in the desired corner order, the renumbered element
// connectivity, and the orientation record
func FaceConnectivity(faceType, elemType types.ElemType,
	desired, gridNodeIDs []uint64, pGrid int, conn []uint64,
	pConn int) (modConnFace, modConnElem []uint64, orient types.FaceOrient,
	err error) {

	fn, ok := connectivityDispatch[[2]types.ElemType{faceType, elemType}]
	if !ok {
		err = fmt.Errorf("a %s has no %s faces", elemType, faceType)
		return
	}
	return fn(desired, gridNodeIDs, pGrid, conn, pConn)
}
