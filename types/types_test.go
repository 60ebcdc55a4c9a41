package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementCounts(t *testing.T) {
	cases := []struct {
		t        ElemType
		corners  int
		faces    int
		nDOFsP1  int
		nDOFsP2  int
	}{
		{Line, 2, 2, 2, 3},
		{Triangle, 3, 3, 3, 6},
		{Quad, 4, 4, 4, 9},
		{Tet, 4, 4, 4, 10},
		{Hex, 8, 6, 8, 27},
		{Prism, 6, 5, 6, 18},
		{Pyramid, 5, 5, 5, 14},
	}
	for _, c := range cases {
		assert.Equal(t, c.corners, c.t.NCorners(), c.t.String())
		assert.Equal(t, c.faces, c.t.NFaces(), c.t.String())
		assert.Equal(t, c.nDOFsP1, c.t.NDOFs(1), c.t.String())
		assert.Equal(t, c.nDOFsP2, c.t.NDOFs(2), c.t.String())
	}
}

func TestLatticeEnumerationMatchesIndexFunctions(t *testing.T) {
	for _, et := range []ElemType{Line, Triangle, Quad, Tet, Hex, Prism, Pyramid} {
		for p := 1; p <= 3; p++ {
			coords := LatticeCoords(et, p)
			require.Equal(t, et.NDOFs(p), len(coords),
				"%s degree %d lattice size", et, p)
			for n, u := range coords {
				assert.Equal(t, n, NodeIndex(et, u[0], u[1], u[2], p),
					"%s degree %d node %v", et, p, u)
			}
		}
	}
}

func TestCornerIndicesDegreeOne(t *testing.T) {
	// Corner numbering follows the VTK counterclockwise convention, the
	// lattice enumeration runs i fastest: the two agree for the simplex and
	// prism topologies and transpose the (1,1) corners of quad layers
	cases := map[ElemType][]int{
		Line:     {0, 1},
		Triangle: {0, 1, 2},
		Quad:     {0, 1, 3, 2},
		Tet:      {0, 1, 2, 3},
		Hex:      {0, 1, 3, 2, 4, 5, 7, 6},
		Prism:    {0, 1, 2, 3, 4, 5},
		Pyramid:  {0, 1, 3, 2, 4},
	}
	for et, want := range cases {
		assert.Equal(t, want, CornerIndices(et, 1), et.String())
	}
}

func TestFromVTKOrder(t *testing.T) {
	// A reordered corner list must place each VTK corner at its lattice slot
	hex := FromVTKOrder(Hex, []uint64{10, 11, 12, 13, 14, 15, 16, 17})
	assert.Equal(t, []uint64{10, 11, 13, 12, 14, 15, 17, 16}, hex)
	for c, ind := range CornerIndices(Hex, 1) {
		assert.Equal(t, uint64(10+c), hex[ind], "corner %d", c)
	}

	// Simplex orders coincide
	assert.Equal(t, []uint64{7, 8, 9, 6}, FromVTKOrder(Tet, []uint64{7, 8, 9, 6}))

	assert.Equal(t, []uint64{0, 1, 3, 2, 4}, FromVTKOrder(Pyramid, []uint64{0, 1, 2, 3, 4}))

	assert.Panics(t, func() { FromVTKOrder(Quad, []uint64{0, 1, 2}) })
}

func TestCornerIndicesDegreeTwoTet(t *testing.T) {
	// Degree 2 tet: 10 nodes, corners at lattice extremes
	ind := CornerIndices(Tet, 2)
	assert.Equal(t, []int{0, 2, 5, 9}, ind)
}

func TestFaceCornerTablesReferToValidCorners(t *testing.T) {
	for _, et := range []ElemType{Triangle, Quad, Tet, Hex, Prism, Pyramid} {
		for f := 0; f < et.NFaces(); f++ {
			for _, c := range et.FaceCorners(f) {
				assert.Less(t, c, et.NCorners())
			}
			if et.Dim() == 3 {
				ft := et.FaceType(f)
				assert.Equal(t, len(et.FaceCorners(f)), ft.NCorners())
			}
		}
	}
}

func TestFaceKeyOrderIndependent(t *testing.T) {
	a := NewFaceKey([]uint64{12, 5, 9})
	b := NewFaceKey([]uint64{9, 12, 5})
	assert.True(t, a.Equal(b))
	assert.Equal(t, 3, a.NCorners())

	c := NewFaceKey([]uint64{12, 5, 10})
	assert.False(t, a.Equal(c))
	assert.True(t, a.Less(c) || c.Less(a))
}

func TestFaceKeyTriangleVersusQuad(t *testing.T) {
	tri := NewFaceKey([]uint64{1, 2, 3})
	quad := NewFaceKey([]uint64{1, 2, 3, 4})
	assert.False(t, tri.Equal(quad))
	assert.True(t, tri.Less(quad))
}
