package mesh

import (
	"fmt"
	"log"
	"sort"

	"github.com/notargets/dgmesh/standard"
	"github.com/notargets/dgmesh/types"
	"github.com/notargets/dgmesh/utils"
)

// SendReceiveTag is the marker tag of the boundary synthesized for unpaired
// faces at partition boundaries
const SendReceiveTag = "SEND_RECEIVE"

// DefaultTolerance is the default point matching tolerance, relative to a
// characteristic mesh length of one
const DefaultTolerance = 1.e-10

// RawVolumeElement is one volume element as delivered by the external mesh
// reader/partitioner. NodeIDsGrid follows the lattice enumeration of the
// topology; corner lists in VTK wire order go through types.FromVTKOrder
// first.
type RawVolumeElement struct {
	Topology           types.ElemType
	NPolyGrid          int
	NPolySol           int
	GlobalID           uint64
	NodeIDsGrid        []uint64
	ElemIsOwned        bool
	RankOriginal       int
	PeriodIndexToDonor int
}

// RawSurfaceElement is one boundary face in input form, adjacency unknown.
// NodeIDsGrid follows the lattice enumeration, like RawVolumeElement.
type RawSurfaceElement struct {
	Topology          types.ElemType
	NPolyGrid         int
	GlobalBoundElemID uint64
	NodeIDsGrid       []uint64
}

// RawBoundary is one boundary marker of the input mesh
type RawBoundary struct {
	MarkerTag        string
	Periodic         bool
	RotationalPeriod bool
	PeriodIndex      int
	Elems            []RawSurfaceElement
}

// RawMesh is the flat partitioned input this core consumes
type RawMesh struct {
	Dim        int
	Tolerance  float64 // point matching tolerance, DefaultTolerance when 0
	Points     []PointFEM
	VolElems   []RawVolumeElement
	Boundaries []RawBoundary
}

/*
Mesh is the geometric mesh representation of one rank: canonicalized volume
elements, boundary surface elements and internal matching faces, the
standard element catalog in use, the metric term arenas, and the halo
communication tables.
*/
type Mesh struct {
	Dim       int
	Tolerance float64
	Ctx       ParallelContext

	Points   []PointFEM
	pointInd map[uint64]int

	VolElems      []VolumeElement
	NVolElemOwned int
	NDOFsSolOwned uint64

	IntFaces   []InternalFace
	Boundaries []Boundary

	Catalog standard.Catalog

	// Communication tables, index aligned: RanksComm[i] exchanges the
	// element lists EntitiesSend[i] / EntitiesReceive[i]
	RanksComm       []int
	EntitiesSend    [][]int
	EntitiesReceive [][]int

	// Per rotationally periodic marker, the halo elements needing the
	// rotational correction of that marker's transform
	RotPerMarkers []int
	RotPerHalos   [][]int

	// Arenas backing the per entity numeric buffers
	volMetric, volMass, volLumped, volCoor, volWall []float64
	faceMetric                                      []float64
}

// NewMesh builds the full geometric representation from the raw partitioned
// input. exch may be nil for a mesh without halo elements.
func NewMesh(raw *RawMesh, ctx ParallelContext,
	exch HaloExchanger) (m *Mesh, err error) {

	if raw.Dim != 2 && raw.Dim != 3 {
		return nil, fmt.Errorf("mesh dimension %d, want 2 or 3", raw.Dim)
	}
	tol := raw.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	m = &Mesh{Dim: raw.Dim, Tolerance: tol, Ctx: ctx}

	if m.Points, err = BuildPointRegistry(raw.Points, tol); err != nil {
		return nil, fmt.Errorf("point registry: %w", err)
	}
	m.pointInd = make(map[uint64]int, len(m.Points))
	for i := range m.Points {
		m.pointInd[m.Points[i].ID] = i
	}

	if err = m.buildVolumeElements(raw.VolElems); err != nil {
		return nil, err
	}
	if err = m.createFaces(raw); err != nil {
		return nil, err
	}
	if err = m.computeMetrics(); err != nil {
		return nil, err
	}
	if err = m.SetSendReceive(exch); err != nil {
		return nil, err
	}
	m.logStats()
	return m, nil
}

// buildVolumeElements validates and orders the elements: owned first by
// global ID, then halo grouped by original rank, and lays out the local
// solution DOF offsets
func (m *Mesh) buildVolumeElements(raw []RawVolumeElement) (err error) {
	m.VolElems = make([]VolumeElement, 0, len(raw))
	for i := range raw {
		re := &raw[i]
		if re.Topology.Dim() != m.Dim {
			return fmt.Errorf("element %d: %s element in a %dD mesh",
				re.GlobalID, re.Topology, m.Dim)
		}
		want := re.Topology.NDOFs(re.NPolyGrid)
		if len(re.NodeIDsGrid) != want {
			return fmt.Errorf(
				"element %d: %d grid nodes, want %d for a degree %d %s",
				re.GlobalID, len(re.NodeIDsGrid), want, re.NPolyGrid,
				re.Topology)
		}
		for _, id := range re.NodeIDsGrid {
			if _, ok := m.pointInd[id]; !ok {
				return fmt.Errorf(
					"element %d references unknown point %d",
					re.GlobalID, id)
			}
		}
		m.VolElems = append(m.VolElems, VolumeElement{
			Topology:           re.Topology,
			NPolyGrid:          re.NPolyGrid,
			NPolySol:           re.NPolySol,
			NDOFsGrid:          want,
			NDOFsSol:           re.Topology.NDOFs(re.NPolySol),
			GlobalID:           re.GlobalID,
			NodeIDsGrid:        re.NodeIDsGrid,
			ElemIsOwned:        re.ElemIsOwned,
			RankOriginal:       re.RankOriginal,
			PeriodIndexToDonor: re.PeriodIndexToDonor,
			JacFacesIsConstant: make([]bool, re.Topology.NFaces()),
		})
	}

	sort.Slice(m.VolElems, func(i, j int) bool {
		a, b := &m.VolElems[i], &m.VolElems[j]
		if a.ElemIsOwned != b.ElemIsOwned {
			return a.ElemIsOwned
		}
		if !a.ElemIsOwned && a.RankOriginal != b.RankOriginal {
			return a.RankOriginal < b.RankOriginal
		}
		return a.GlobalID < b.GlobalID
	})

	var offLocal, offRank uint64
	for e := range m.VolElems {
		ve := &m.VolElems[e]
		ve.OffsetDOFsSolLocal = offLocal
		offLocal += uint64(ve.NDOFsSol)
		if ve.ElemIsOwned {
			m.NVolElemOwned++
			ve.OffsetDOFsSolThisRank = offRank
			ve.OffsetDOFsSolGlobal = m.Ctx.DOFOffsetRank + offRank
			offRank += uint64(ve.NDOFsSol)
		}
	}
	m.NDOFsSolOwned = offRank

	// Catalog entries: grid and solution bases share the integration rule
	for e := range m.VolElems {
		ve := &m.VolElems[e]
		pInt := maxInt(ve.NPolyGrid, ve.NPolySol)
		if ve.StdElemGrid, err = m.Catalog.ElementIndex(
			ve.Topology, ve.NPolyGrid, pInt); err != nil {
			return fmt.Errorf("element %d: %w", ve.GlobalID, err)
		}
		if ve.StdElemSol, err = m.Catalog.ElementIndex(
			ve.Topology, ve.NPolySol, pInt); err != nil {
			return fmt.Errorf("element %d: %w", ve.GlobalID, err)
		}
	}
	return nil
}

// solConn gives the element local solution DOF sequence of an element; the
// canonicalization permutes it like a connectivity
func solConn(ve *VolumeElement) (conn []uint64) {
	conn = make([]uint64, ve.NDOFsSol)
	for j := range conn {
		conn[j] = ve.OffsetDOFsSolLocal + uint64(j)
	}
	return
}

/*
createFaces pairs the half faces contributed by the volume elements,
attaches the boundary surface elements to their adjacent volume elements,
and canonicalizes every face against its element(s). Unpaired faces of
owned elements that no marker claims become a synthesized send/receive
boundary on a multi rank mesh and are fatal on a serial one; unpaired halo
faces are the truncation of the halo layer and are dropped.
*/
func (m *Mesh) createFaces(raw *RawMesh) (err error) {
	hf := make([]halfFace, 0, 6*len(m.VolElems))
	for e := range m.VolElems {
		corners := m.VolElems[e].GetCornerPointsAllFaces()
		for f, ids := range corners {
			hf = append(hf, halfFace{
				key: types.NewFaceKey(ids), elem: e, face: f})
		}
	}
	sortHalfFaces(hf, m.VolElems)

	inc := utils.NewIncidence(len(m.Points), len(m.VolElems))
	for e := range m.VolElems {
		ve := &m.VolElems[e]
		for _, ind := range types.CornerIndices(ve.Topology, ve.NPolyGrid) {
			inc.Add(m.pointInd[ve.NodeIDsGrid[ind]], e)
		}
	}
	inc.Freeze()

	claimedBy := make(map[types.FaceKey]int)
	m.Boundaries = make([]Boundary, 0, len(raw.Boundaries)+1)
	for _, rb := range raw.Boundaries {
		bd := Boundary{
			MarkerTag:        rb.MarkerTag,
			Periodic:         rb.Periodic,
			RotationalPeriod: rb.RotationalPeriod,
			PeriodIndex:      rb.PeriodIndex,
		}
		if !rb.Periodic {
			bd.PeriodIndex = -1
		}
		for _, rs := range rb.Elems {
			se, key, aerr := m.attachSurfElem(rs, inc)
			if aerr != nil {
				return fmt.Errorf("boundary %s: %w", rb.MarkerTag, aerr)
			}
			claimedBy[key] = len(m.Boundaries)
			bd.SurfElems = append(bd.SurfElems, se)
		}
		m.Boundaries = append(m.Boundaries, bd)
	}

	var sendRecv Boundary
	sendRecv.MarkerTag = SendReceiveTag
	sendRecv.PeriodIndex = -1

	for i := 0; i < len(hf); {
		j := i + 1
		for j < len(hf) && hf[j].key.Equal(hf[i].key) {
			j++
		}
		n := j - i
		switch {
		case n > 2:
			return fmt.Errorf(
				"face %v is shared by %d elements, mesh is non-conforming",
				hf[i].key, n)
		case n == 2:
			if bi, ok := claimedBy[hf[i].key]; ok &&
				!m.Boundaries[bi].Periodic {
				return fmt.Errorf(
					"boundary %s claims the interior face between elements %d and %d",
					m.Boundaries[bi].MarkerTag,
					m.VolElems[hf[i].elem].GlobalID,
					m.VolElems[hf[i+1].elem].GlobalID)
			}
			iface, ferr := m.buildInternalFace(hf[i], hf[i+1])
			if ferr != nil {
				return ferr
			}
			m.IntFaces = append(m.IntFaces, iface)
		default:
			if _, ok := claimedBy[hf[i].key]; ok {
				break // boundary marker face, already attached
			}
			ve := &m.VolElems[hf[i].elem]
			if !ve.ElemIsOwned {
				break // truncated halo layer
			}
			if m.Ctx.NRanks > 1 {
				rs := m.synthesizeSurfElem(hf[i])
				se, _, aerr := m.attachSurfElem(rs, inc)
				if aerr != nil {
					return aerr
				}
				sendRecv.SurfElems = append(sendRecv.SurfElems, se)
				break
			}
			return fmt.Errorf(
				"face %d of element %d is unmatched and claimed by no boundary marker",
				hf[i].face, ve.GlobalID)
		}
		i = j
	}
	if len(sendRecv.SurfElems) > 0 {
		m.Boundaries = append(m.Boundaries, sendRecv)
	}
	return nil
}

// synthesizeSurfElem fabricates the raw boundary face of an unclaimed half
// face at a partition boundary
func (m *Mesh) synthesizeSurfElem(h halfFace) RawSurfaceElement {
	ve := &m.VolElems[h.elem]
	faceType := ve.Topology.FaceType(h.face)
	desired := ve.GetCornerPointsAllFaces()[h.face]
	// Degree 1 node list: the canonicalization rebuilds the high order
	// face DOFs from the element connectivity
	return RawSurfaceElement{
		Topology:          faceType,
		NPolyGrid:         1,
		GlobalBoundElemID: ve.GlobalID,
		NodeIDsGrid:       types.FromVTKOrder(faceType, desired),
	}
}

// attachSurfElem locates the volume element adjacent to a boundary face via
// the point incidence, then canonicalizes the face against it
func (m *Mesh) attachSurfElem(rs RawSurfaceElement,
	inc *utils.Incidence) (se SurfaceElement, key types.FaceKey, err error) {

	cornerInd := types.CornerIndices(rs.Topology, rs.NPolyGrid)
	ids := make([]uint64, len(cornerInd))
	for c, ind := range cornerInd {
		if ind >= len(rs.NodeIDsGrid) {
			err = fmt.Errorf(
				"boundary element %d: %d grid nodes, want %d for a degree %d %s",
				rs.GlobalBoundElemID, len(rs.NodeIDsGrid),
				rs.Topology.NDOFs(rs.NPolyGrid), rs.NPolyGrid, rs.Topology)
			return
		}
		ids[c] = rs.NodeIDsGrid[ind]
	}
	key = types.NewFaceKey(ids)

	pi, ok := m.pointInd[ids[0]]
	if !ok {
		err = fmt.Errorf("boundary element %d references unknown point %d",
			rs.GlobalBoundElemID, ids[0])
		return
	}
	elemID, faceID := -1, -1
	for _, e := range inc.Row(pi) {
		for f, corners := range m.VolElems[e].GetCornerPointsAllFaces() {
			if types.NewFaceKey(corners).Equal(key) {
				elemID, faceID = e, f
				break
			}
		}
		if elemID >= 0 {
			break
		}
	}
	if elemID < 0 {
		err = fmt.Errorf(
			"boundary element %d matches no face of any volume element",
			rs.GlobalBoundElemID)
		return
	}
	ve := &m.VolElems[elemID]
	if rs.NPolyGrid != 1 && rs.NPolyGrid != ve.NPolyGrid {
		err = fmt.Errorf(
			"boundary element %d has degree %d against degree %d element %d",
			rs.GlobalBoundElemID, rs.NPolyGrid, ve.NPolyGrid, ve.GlobalID)
		return
	}

	// The desired sequence is the element's outward traversal, so the face
	// parametrization normal points out of the domain
	faceType := ve.Topology.FaceType(faceID)
	desired := ve.GetCornerPointsAllFaces()[faceID]

	se = SurfaceElement{
		Topology:          faceType,
		NPolyGrid:         ve.NPolyGrid,
		NDOFsGrid:         faceType.NDOFs(ve.NPolyGrid),
		GlobalBoundElemID: rs.GlobalBoundElemID,
		VolElemID:         elemID,
		FaceIDInElem:      faceID,
		NodeIDsGrid:       rs.NodeIDsGrid,
	}
	se.DOFsGridFace, se.DOFsGridElem, se.Orient, err = FaceConnectivity(
		faceType, ve.Topology, desired, ve.NodeIDsGrid, ve.NPolyGrid,
		ve.NodeIDsGrid, ve.NPolyGrid)
	if err != nil {
		err = fmt.Errorf("boundary element %d against element %d: %w",
			rs.GlobalBoundElemID, ve.GlobalID, err)
		return
	}
	se.DOFsSolFace, se.DOFsSolElem, _, err = FaceConnectivity(
		faceType, ve.Topology, desired, ve.NodeIDsGrid, ve.NPolyGrid,
		solConn(ve), ve.NPolySol)
	if err != nil {
		err = fmt.Errorf("boundary element %d against element %d: %w",
			rs.GlobalBoundElemID, ve.GlobalID, err)
	}
	return
}

// buildInternalFace canonicalizes both sides of a paired face. Side0 is the
// first half under the sort order; its outward traversal of the face is the
// desired sequence, so the face normal runs side0 to side1.
func (m *Mesh) buildInternalFace(h0, h1 halfFace) (iface InternalFace, err error) {
	e0, e1 := &m.VolElems[h0.elem], &m.VolElems[h1.elem]
	faceType := e0.Topology.FaceType(h0.face)
	if ft1 := e1.Topology.FaceType(h1.face); ft1 != faceType {
		err = fmt.Errorf(
			"elements %d and %d share a face as %s and %s",
			e0.GlobalID, e1.GlobalID, faceType, ft1)
		return
	}
	if e0.NPolyGrid != e1.NPolyGrid {
		err = fmt.Errorf(
			"elements %d and %d meet with grid degrees %d and %d",
			e0.GlobalID, e1.GlobalID, e0.NPolyGrid, e1.NPolyGrid)
		return
	}
	desired := e0.GetCornerPointsAllFaces()[h0.face]

	iface = InternalFace{
		Topology:      faceType,
		NPolyGrid:     e0.NPolyGrid,
		ElemID0:       h0.elem,
		ElemID1:       h1.elem,
		FaceIDInElem0: h0.face,
		FaceIDInElem1: h1.face,
	}
	iface.DOFsGridFaceSide0, iface.DOFsGridElemSide0, iface.Orient0,
		err = FaceConnectivity(faceType, e0.Topology, desired,
		e0.NodeIDsGrid, e0.NPolyGrid, e0.NodeIDsGrid, e0.NPolyGrid)
	if err == nil {
		iface.DOFsGridFaceSide1, iface.DOFsGridElemSide1, iface.Orient1,
			err = FaceConnectivity(faceType, e1.Topology, desired,
			e1.NodeIDsGrid, e1.NPolyGrid, e1.NodeIDsGrid, e1.NPolyGrid)
	}
	if err == nil {
		iface.DOFsSolFaceSide0, iface.DOFsSolElemSide0, _,
			err = FaceConnectivity(faceType, e0.Topology, desired,
			e0.NodeIDsGrid, e0.NPolyGrid, solConn(e0), e0.NPolySol)
	}
	if err == nil {
		iface.DOFsSolFaceSide1, iface.DOFsSolElemSide1, _,
			err = FaceConnectivity(faceType, e1.Topology, desired,
			e1.NodeIDsGrid, e1.NPolyGrid, solConn(e1), e1.NPolySol)
	}
	if err != nil {
		err = fmt.Errorf("matching face between elements %d and %d: %w",
			e0.GlobalID, e1.GlobalID, err)
		return
	}

	for j := range iface.DOFsGridFaceSide0 {
		if iface.DOFsGridFaceSide0[j] != iface.DOFsGridFaceSide1[j] {
			err = fmt.Errorf(
				"face DOF %d disagrees between elements %d and %d: %d vs %d",
				j, e0.GlobalID, e1.GlobalID,
				iface.DOFsGridFaceSide0[j], iface.DOFsGridFaceSide1[j])
			return
		}
	}
	return
}

func (m *Mesh) logStats() {
	nHalo := len(m.VolElems) - m.NVolElemOwned
	nSurf := 0
	for i := range m.Boundaries {
		nSurf += len(m.Boundaries[i].SurfElems)
	}
	log.Printf("Mesh: %dD, %d points, %d elements (%d owned, %d halo)",
		m.Dim, len(m.Points), len(m.VolElems), m.NVolElemOwned, nHalo)
	log.Printf("Mesh: %d matching faces, %d boundary faces on %d markers, "+
		"%d standard elements, %d standard faces",
		len(m.IntFaces), nSurf, len(m.Boundaries),
		len(m.Catalog.Elements), len(m.Catalog.Faces))
	log.Printf("Mesh: %d owned solution DOFs, comm with %d ranks",
		m.NDOFsSolOwned, len(m.RanksComm))
}

// PointIndex returns the registry index of a global point ID
func (m *Mesh) PointIndex(id uint64) (ind int, ok bool) {
	ind, ok = m.pointInd[id]
	return
}

// NVolElemTot returns the total local element count, owned plus halo
func (m *Mesh) NVolElemTot() int { return len(m.VolElems) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
