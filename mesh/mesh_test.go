package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgmesh/types"
)

func point(id uint64, x, y, z float64) PointFEM {
	return PointFEM{ID: id, PeriodIndexToDonor: -1, Coor: [3]float64{x, y, z}}
}

// Two unit tets sharing the x+y+z=1 face, all exterior faces on one marker
func twoTetMesh() *RawMesh {
	return &RawMesh{
		Dim: 3,
		Points: []PointFEM{
			point(0, 0, 0, 0),
			point(1, 1, 0, 0),
			point(2, 0, 1, 0),
			point(3, 0, 0, 1),
			point(4, 1, 1, 1),
		},
		VolElems: []RawVolumeElement{
			{Topology: types.Tet, NPolyGrid: 1, NPolySol: 1, GlobalID: 0,
				NodeIDsGrid: []uint64{0, 1, 2, 3}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
			{Topology: types.Tet, NPolyGrid: 1, NPolySol: 1, GlobalID: 1,
				NodeIDsGrid: []uint64{1, 2, 3, 4}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
		},
		Boundaries: []RawBoundary{{
			MarkerTag: "wall",
			Elems: []RawSurfaceElement{
				{Topology: types.Triangle, NPolyGrid: 1, GlobalBoundElemID: 0,
					NodeIDsGrid: []uint64{0, 2, 1}},
				{Topology: types.Triangle, NPolyGrid: 1, GlobalBoundElemID: 1,
					NodeIDsGrid: []uint64{0, 1, 3}},
				{Topology: types.Triangle, NPolyGrid: 1, GlobalBoundElemID: 2,
					NodeIDsGrid: []uint64{0, 3, 2}},
				{Topology: types.Triangle, NPolyGrid: 1, GlobalBoundElemID: 3,
					NodeIDsGrid: []uint64{1, 2, 4}},
				{Topology: types.Triangle, NPolyGrid: 1, GlobalBoundElemID: 4,
					NodeIDsGrid: []uint64{1, 4, 3}},
				{Topology: types.Triangle, NPolyGrid: 1, GlobalBoundElemID: 5,
					NodeIDsGrid: []uint64{2, 3, 4}},
			},
		}},
	}
}

func TestTwoTetMeshEndToEnd(t *testing.T) {
	m, err := NewMesh(twoTetMesh(), Serial, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, m.NVolElemTot())
	assert.Equal(t, 2, m.NVolElemOwned)
	require.Len(t, m.IntFaces, 1)
	require.Len(t, m.Boundaries, 1)
	assert.Len(t, m.Boundaries[0].SurfElems, 6)

	f := &m.IntFaces[0]
	assert.Equal(t, uint64(0), m.VolElems[f.ElemID0].GlobalID)
	assert.Equal(t, uint64(1), m.VolElems[f.ElemID1].GlobalID)
	assert.Equal(t, f.DOFsGridFaceSide0, f.DOFsGridFaceSide1)

	// The shared face lies in the x+y+z=1 plane; the normal points from
	// element 0 toward element 1
	fg := m.Catalog.Faces[f.StdFaceGrid0]
	s := 1 / math.Sqrt(3)
	for q := 0; q < fg.NInt; q++ {
		row := f.MetricNormals[q*4:]
		assert.InDelta(t, s, row[0], 1.e-12)
		assert.InDelta(t, s, row[1], 1.e-12)
		assert.InDelta(t, s, row[2], 1.e-12)
		assert.InDelta(t, math.Sqrt(3), row[3], 1.e-12)
	}

	// Affine elements: one metric row each. The first tet is the reference
	// tet, volume 1/6; the second spans twice that volume.
	vols := []float64{1.0 / 6.0, 1.0 / 3.0}
	for e := range m.VolElems {
		ve := &m.VolElems[e]
		assert.True(t, ve.JacIsConstant)
		assert.Len(t, ve.MetricTerms, 10)
		vol := vols[ve.GlobalID]
		assert.InDelta(t, vol, math.Pow(ve.LengthScale, 3), 1.e-12)
		assert.InDelta(t, 6*vol, ve.MetricTerms[0], 1.e-12)

		var sum float64
		for _, v := range ve.LumpedMassMatrix {
			sum += v
		}
		assert.InDelta(t, vol, sum, 1.e-12,
			"element %d mass must integrate the volume", ve.GlobalID)
	}

	// Boundary face 0 is the z=0 face of element 0, outward normal -z
	for i := range m.Boundaries[0].SurfElems {
		se := &m.Boundaries[0].SurfElems[i]
		if se.GlobalBoundElemID != 0 {
			continue
		}
		for q := 0; q < m.Catalog.Faces[se.StdFaceGrid].NInt; q++ {
			row := se.MetricNormals[q*4:]
			assert.InDelta(t, 0.0, row[0], 1.e-12)
			assert.InDelta(t, 0.0, row[1], 1.e-12)
			assert.InDelta(t, -1.0, row[2], 1.e-12)
			assert.InDelta(t, 1.0, row[3], 1.e-12)
		}
		// Largest corner distance of the right unit triangle
		assert.InDelta(t, math.Sqrt2, se.LengthScale, 1.e-12)
	}

	// Self communication is always present, trivially empty here
	require.Equal(t, []int{0}, m.RanksComm)
	assert.Empty(t, m.EntitiesSend[0])
	assert.Empty(t, m.EntitiesReceive[0])

	assert.Equal(t, uint64(8), m.NDOFsSolOwned)
	assert.Equal(t, uint64(0), m.VolElems[0].OffsetDOFsSolLocal)
	assert.Equal(t, uint64(4), m.VolElems[1].OffsetDOFsSolLocal)
}

// Two triangles tiling the unit square, split along the diagonal
func twoTriMesh() *RawMesh {
	return &RawMesh{
		Dim: 2,
		Points: []PointFEM{
			point(0, 0, 0, 0),
			point(1, 1, 0, 0),
			point(2, 0, 1, 0),
			point(3, 1, 1, 0),
		},
		VolElems: []RawVolumeElement{
			{Topology: types.Triangle, NPolyGrid: 1, NPolySol: 1, GlobalID: 0,
				NodeIDsGrid: []uint64{0, 1, 2}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
			{Topology: types.Triangle, NPolyGrid: 1, NPolySol: 1, GlobalID: 1,
				NodeIDsGrid: []uint64{1, 3, 2}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
		},
		Boundaries: []RawBoundary{{
			MarkerTag: "outer",
			Elems: []RawSurfaceElement{
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 0,
					NodeIDsGrid: []uint64{0, 1}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 1,
					NodeIDsGrid: []uint64{1, 3}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 2,
					NodeIDsGrid: []uint64{3, 2}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 3,
					NodeIDsGrid: []uint64{2, 0}},
			},
		}},
	}
}

func TestTwoTriangleMesh2D(t *testing.T) {
	m, err := NewMesh(twoTriMesh(), Serial, nil)
	require.NoError(t, err)

	require.Len(t, m.IntFaces, 1)
	assert.Len(t, m.Boundaries[0].SurfElems, 4)

	// Diagonal face normal points from triangle 0 into triangle 1
	f := &m.IntFaces[0]
	s := 1 / math.Sqrt(2)
	fg := m.Catalog.Faces[f.StdFaceGrid0]
	for q := 0; q < fg.NInt; q++ {
		row := f.MetricNormals[q*3:]
		assert.InDelta(t, s, row[0], 1.e-12)
		assert.InDelta(t, s, row[1], 1.e-12)
		assert.InDelta(t, math.Sqrt(2), row[2], 1.e-12)
	}

	// Bottom edge outward normal is -y, length Jacobian 1
	se := &m.Boundaries[0].SurfElems[0]
	for q := 0; q < m.Catalog.Faces[se.StdFaceGrid].NInt; q++ {
		row := se.MetricNormals[q*3:]
		assert.InDelta(t, 0.0, row[0], 1.e-12)
		assert.InDelta(t, -1.0, row[1], 1.e-12)
		assert.InDelta(t, 1.0, row[2], 1.e-12)
	}
}

// A single hex, the unit cube scaled by 2: the Jacobian determinant must be
// 8 everywhere and the boundary area Jacobians 4
func TestScaledCubeMetrics(t *testing.T) {
	raw := &RawMesh{
		Dim: 3,
		Points: []PointFEM{
			point(0, 0, 0, 0), point(1, 2, 0, 0),
			point(2, 2, 2, 0), point(3, 0, 2, 0),
			point(4, 0, 0, 2), point(5, 2, 0, 2),
			point(6, 2, 2, 2), point(7, 0, 2, 2),
		},
		VolElems: []RawVolumeElement{
			{Topology: types.Hex, NPolyGrid: 1, NPolySol: 1, GlobalID: 0,
				NodeIDsGrid: types.FromVTKOrder(types.Hex,
					[]uint64{0, 1, 2, 3, 4, 5, 6, 7}),
				ElemIsOwned: true, PeriodIndexToDonor: -1},
		},
		Boundaries: []RawBoundary{{
			MarkerTag: "box",
			Elems: []RawSurfaceElement{
				{Topology: types.Quad, NPolyGrid: 1, GlobalBoundElemID: 0,
					NodeIDsGrid: types.FromVTKOrder(types.Quad,
						[]uint64{0, 3, 2, 1})},
				{Topology: types.Quad, NPolyGrid: 1, GlobalBoundElemID: 1,
					NodeIDsGrid: types.FromVTKOrder(types.Quad,
						[]uint64{4, 5, 6, 7})},
				{Topology: types.Quad, NPolyGrid: 1, GlobalBoundElemID: 2,
					NodeIDsGrid: types.FromVTKOrder(types.Quad,
						[]uint64{0, 1, 5, 4})},
				{Topology: types.Quad, NPolyGrid: 1, GlobalBoundElemID: 3,
					NodeIDsGrid: types.FromVTKOrder(types.Quad,
						[]uint64{1, 2, 6, 5})},
				{Topology: types.Quad, NPolyGrid: 1, GlobalBoundElemID: 4,
					NodeIDsGrid: types.FromVTKOrder(types.Quad,
						[]uint64{2, 3, 7, 6})},
				{Topology: types.Quad, NPolyGrid: 1, GlobalBoundElemID: 5,
					NodeIDsGrid: types.FromVTKOrder(types.Quad,
						[]uint64{0, 4, 7, 3})},
			},
		}},
	}
	m, err := NewMesh(raw, Serial, nil)
	require.NoError(t, err)

	ve := &m.VolElems[0]
	assert.True(t, ve.JacIsConstant)
	assert.InDelta(t, 8.0, ve.MetricTerms[0], 1.e-12)
	assert.InDelta(t, 2.0, ve.LengthScale, 1.e-12)
	for f := 0; f < 6; f++ {
		assert.True(t, ve.JacFacesIsConstant[f], "face %d", f)
	}
	var sum float64
	for _, v := range ve.LumpedMassMatrix {
		sum += v
	}
	assert.InDelta(t, 8.0, sum, 1.e-12)

	assert.Empty(t, m.IntFaces)
	for i := range m.Boundaries[0].SurfElems {
		se := &m.Boundaries[0].SurfElems[i]
		fg := m.Catalog.Faces[se.StdFaceGrid]
		for q := 0; q < fg.NInt; q++ {
			row := se.MetricNormals[q*4:]
			assert.InDelta(t, 4.0, row[3], 1.e-12,
				"face %d area Jacobian", se.GlobalBoundElemID)
			var outward float64
			for b := 0; b < 3; b++ {
				c := se.CoorIntPoints[q*3+b] - 1
				outward += row[b] * c
			}
			assert.Greater(t, outward, 0.0,
				"face %d normal must point out of the cube",
				se.GlobalBoundElemID)
		}
		// Face diagonal of the 2x2 cube faces
		assert.InDelta(t, 2*math.Sqrt2, se.LengthScale, 1.e-12,
			"face %d length scale", se.GlobalBoundElemID)
	}
}

// Three triangles in a strip with mixed solution degrees: the matching
// faces must come out grouped by their standard face signatures, not in the
// order pairing discovered them
func TestMatchingFaceSignatureGrouping(t *testing.T) {
	raw := &RawMesh{
		Dim: 2,
		Points: []PointFEM{
			point(0, 0, 0, 0),
			point(1, 1, 0, 0),
			point(2, 0, 1, 0),
			point(3, 1, 1, 0),
			point(4, 2, 1, 0),
		},
		VolElems: []RawVolumeElement{
			{Topology: types.Triangle, NPolyGrid: 1, NPolySol: 2, GlobalID: 0,
				NodeIDsGrid: []uint64{0, 1, 2}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
			{Topology: types.Triangle, NPolyGrid: 1, NPolySol: 1, GlobalID: 1,
				NodeIDsGrid: []uint64{1, 3, 2}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
			{Topology: types.Triangle, NPolyGrid: 1, NPolySol: 2, GlobalID: 2,
				NodeIDsGrid: []uint64{1, 4, 3}, ElemIsOwned: true,
				PeriodIndexToDonor: -1},
		},
		Boundaries: []RawBoundary{{
			MarkerTag: "outer",
			Elems: []RawSurfaceElement{
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 0,
					NodeIDsGrid: []uint64{0, 1}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 1,
					NodeIDsGrid: []uint64{2, 0}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 2,
					NodeIDsGrid: []uint64{3, 2}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 3,
					NodeIDsGrid: []uint64{1, 4}},
				{Topology: types.Line, NPolyGrid: 1, GlobalBoundElemID: 4,
					NodeIDsGrid: []uint64{4, 3}},
			},
		}},
	}
	m, err := NewMesh(raw, Serial, nil)
	require.NoError(t, err)
	require.Len(t, m.IntFaces, 2)

	for i := 0; i+1 < len(m.IntFaces); i++ {
		a, b := &m.IntFaces[i], &m.IntFaces[i+1]
		assert.LessOrEqual(t, a.StdFaceSol0, b.StdFaceSol0)
		if a.StdFaceSol0 == b.StdFaceSol0 {
			assert.LessOrEqual(t, a.StdFaceSol1, b.StdFaceSol1)
		}
	}

	// The degree 1 side0 signature of the second discovered face sorts
	// before the degree 2 side0 signature of the first, so pairing order
	// and final order differ
	assert.Equal(t, uint64(1), m.VolElems[m.IntFaces[0].ElemID0].GlobalID)
	assert.Equal(t, uint64(2), m.VolElems[m.IntFaces[0].ElemID1].GlobalID)
	assert.Equal(t, uint64(0), m.VolElems[m.IntFaces[1].ElemID0].GlobalID)
	assert.Less(t, m.IntFaces[0].StdFaceSol0, m.IntFaces[1].StdFaceSol0)
}

func TestUnmatchedInteriorFaceIsFatalOnSerialMesh(t *testing.T) {
	raw := twoTetMesh()
	// Drop one exterior marker face: its half face is then unmatched
	raw.Boundaries[0].Elems = raw.Boundaries[0].Elems[:5]
	_, err := NewMesh(raw, Serial, nil)
	require.Error(t, err)
}

func TestNonPositiveJacobianIsFatal(t *testing.T) {
	raw := twoTetMesh()
	// Swap two corners of element 1: it becomes inverted
	raw.VolElems[1].NodeIDsGrid = []uint64{2, 1, 3, 4}
	_, err := NewMesh(raw, Serial, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Jacobian")
}
