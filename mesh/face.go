package mesh

import "github.com/notargets/dgmesh/types"

/*
InternalFace is one matching face between two volume elements. The normal
convention is side0 toward side1; the grid face DOF lists of the two sides
reference the same global point IDs in the same order, which is what the
canonicalization guarantees and what the face flux kernels rely on.
*/
type InternalFace struct {
	Topology  types.ElemType
	NPolyGrid int

	ElemID0, ElemID1 int // local volume element indices

	FaceIDInElem0, FaceIDInElem1 int

	StdFaceGrid0, StdFaceSol0 int
	StdFaceGrid1, StdFaceSol1 int

	DOFsGridFaceSide0, DOFsGridFaceSide1 []uint64
	DOFsSolFaceSide0, DOFsSolFaceSide1   []uint64
	DOFsGridElemSide0, DOFsGridElemSide1 []uint64
	DOFsSolElemSide0, DOFsSolElemSide1   []uint64

	Orient0, Orient1 types.FaceOrient

	JacIsConstant bool

	// Per integration point: unit normal (dim) plus area Jacobian,
	// pointing from side0 to side1
	MetricNormals []float64

	// Per side, per integration point: dim*dim inverse Jacobian of the
	// adjacent element at the face integration points
	MetricCoorDerivSide0, MetricCoorDerivSide1 []float64

	// SIP penalty metric: normal component of the Cartesian gradient of
	// each solution basis function, NInt x NDOFsSol per side
	MetricSIPSide0, MetricSIPSide1 []float64

	CoorIntPoints []float64 // NInt x dim
	WallDistance  []float64 // NInt
}
