package mesh

import (
	"math"

	"github.com/notargets/dgmesh/types"
)

/*
VolumeElement is one high order volume element of the local partition, owned
or halo. The numeric buffers are views into arenas owned by the Mesh, sized
per integration point; a constant Jacobian element stores a single
representative metric row.
*/
type VolumeElement struct {
	Topology types.ElemType
	NPolyGrid,
	NPolySol int
	NDOFsGrid,
	NDOFsSol int
	GlobalID uint64

	// Solution DOF offsets. Halo elements alias the owning rank's global
	// offset and never originate DOFs of their own.
	OffsetDOFsSolGlobal,
	OffsetDOFsSolLocal,
	OffsetDOFsSolThisRank uint64

	NodeIDsGrid []uint64

	// Catalog entries for the grid basis and the solution basis, both
	// evaluated at the shared integration rule of the element
	StdElemGrid, StdElemSol int

	ElemIsOwned        bool
	RankOriginal       int
	PeriodIndexToDonor int

	JacIsConstant      bool
	JacFacesIsConstant []bool

	LengthScale float64

	// Per integration point: |J| followed by the dim*dim inverse Jacobian
	// entries. One row when JacIsConstant.
	MetricTerms []float64

	MassMatrix       []float64 // NDOFsSol x NDOFsSol
	LumpedMassMatrix []float64 // NDOFsSol
	CoorIntPoints    []float64 // NInt x dim
	WallDistance     []float64 // NInt
}

// GetCornerPointsAllFaces returns, per face, the corner point global IDs in
// the outward traversal order of this element
func (ve *VolumeElement) GetCornerPointsAllFaces() (corners [][]uint64) {
	cornerInd := types.CornerIndices(ve.Topology, ve.NPolyGrid)
	corners = make([][]uint64, ve.Topology.NFaces())
	for f := range corners {
		fc := ve.Topology.FaceCorners(f)
		ids := make([]uint64, len(fc))
		for m, c := range fc {
			ids[m] = ve.NodeIDsGrid[cornerInd[c]]
		}
		corners[f] = ids
	}
	return
}

/*
SurfaceElement is one boundary face. NodeIDsGrid keeps the original input
ordering; the DOFs lists are canonicalized against the adjacent volume
element so that the face parametrization runs outward.
*/
type SurfaceElement struct {
	Topology types.ElemType
	NPolyGrid,
	NDOFsGrid int
	GlobalBoundElemID uint64

	VolElemID     int // local index of the adjacent volume element
	FaceIDInElem  int
	StdFaceGrid   int
	StdFaceSol    int
	NodeIDsGrid   []uint64
	DOFsGridFace  []uint64
	DOFsSolFace   []uint64
	DOFsGridElem  []uint64
	DOFsSolElem   []uint64
	Orient        types.FaceOrient
	JacIsConstant bool
	LengthScale   float64

	// Per integration point: unit outward normal (dim) plus area Jacobian
	MetricNormals   []float64
	MetricCoorDeriv []float64 // NInt x dim*dim inverse Jacobian of the element
	CoorIntPoints   []float64 // NInt x dim
	WallDistance    []float64 // NInt
}

// GetCornerPointsFace returns the corner point global IDs of the face in the
// canonical desired order. Reads the canonicalized face DOF list, since the
// raw marker node list may carry only the degree 1 corners.
func (se *SurfaceElement) GetCornerPointsFace() (ids []uint64) {
	cornerInd := types.CornerIndices(se.Topology, se.NPolyGrid)
	ids = make([]uint64, len(cornerInd))
	for m, ind := range cornerInd {
		ids[m] = se.DOFsGridFace[ind]
	}
	return
}

// DetermineLengthScale gives a characteristic face size from the corner
// point coordinates, the largest corner to corner distance
func (se *SurfaceElement) DetermineLengthScale(m *Mesh) (h float64) {
	ids := se.GetCornerPointsFace()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pi := m.Points[m.pointInd[ids[i]]].Coor
			pj := m.Points[m.pointInd[ids[j]]].Coor
			var d2 float64
			for d := 0; d < 3; d++ {
				d2 += (pi[d] - pj[d]) * (pi[d] - pj[d])
			}
			if d := math.Sqrt(d2); d > h {
				h = d
			}
		}
	}
	return
}

// Boundary groups the surface elements of one boundary marker. The numeric
// buffers of its faces are backed by one contiguous arena per boundary so
// kernels can sweep all faces of a marker at once.
type Boundary struct {
	MarkerTag        string
	Periodic         bool
	RotationalPeriod bool
	PeriodIndex      int // transform index for periodic markers, else -1
	SurfElems        []SurfaceElement

	VecNormals,
	VecCoorDeriv,
	VecCoorIntPoints,
	VecWallDistance []float64
}
