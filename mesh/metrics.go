package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgmesh/standard"
)

// constJacRelTol is the relative spread below which the metric of an
// element is treated as constant over its integration points
const constJacRelTol = 1.e-12

func (m *Mesh) computeMetrics() (err error) {
	if err = m.computeVolumeMetrics(); err != nil {
		return
	}
	if err = m.computeInternalFaceMetrics(); err != nil {
		return
	}
	return m.computeBoundaryMetrics()
}

// nodeCoords gathers the coordinates of the given global point IDs
func (m *Mesh) nodeCoords(ids []uint64) (X [][3]float64, err error) {
	X = make([][3]float64, len(ids))
	for j, id := range ids {
		ind, ok := m.pointInd[id]
		if !ok {
			return nil, fmt.Errorf("unknown point %d", id)
		}
		X[j] = m.Points[ind].Coor
	}
	return
}

// forwardJacobian evaluates A[b][a] = dx_b/dr_a at integration point q from
// the parametric derivative matrices and the nodal coordinates. For a 2D
// mesh the third row and column are padded identity so the 3x3 inversion
// applies unchanged.
func forwardJacobian(dim, q int, d [3]*mat.Dense, X [][3]float64) (A [3][3]float64) {
	for a := 0; a < dim; a++ {
		for j := range X {
			v := d[a].At(q, j)
			for b := 0; b < dim; b++ {
				A[b][a] += v * X[j][b]
			}
		}
	}
	if dim == 2 {
		A[2][2] = 1
	}
	return
}

func det3(A [3][3]float64) float64 {
	return A[0][0]*(A[1][1]*A[2][2]-A[1][2]*A[2][1]) -
		A[0][1]*(A[1][0]*A[2][2]-A[1][2]*A[2][0]) +
		A[0][2]*(A[1][0]*A[2][1]-A[1][1]*A[2][0])
}

// inv3 inverts via the adjugate. inv[a][b] = dr_a/dx_b when A is the
// forward Jacobian.
func inv3(A [3][3]float64, det float64) (inv [3][3]float64) {
	inv[0][0] = (A[1][1]*A[2][2] - A[1][2]*A[2][1]) / det
	inv[0][1] = (A[0][2]*A[2][1] - A[0][1]*A[2][2]) / det
	inv[0][2] = (A[0][1]*A[1][2] - A[0][2]*A[1][1]) / det
	inv[1][0] = (A[1][2]*A[2][0] - A[1][0]*A[2][2]) / det
	inv[1][1] = (A[0][0]*A[2][2] - A[0][2]*A[2][0]) / det
	inv[1][2] = (A[0][2]*A[1][0] - A[0][0]*A[1][2]) / det
	inv[2][0] = (A[1][0]*A[2][1] - A[1][1]*A[2][0]) / det
	inv[2][1] = (A[0][1]*A[2][0] - A[0][0]*A[2][1]) / det
	inv[2][2] = (A[0][0]*A[1][1] - A[0][1]*A[1][0]) / det
	return
}

func rowsNearlyEqual(rows []float64, stride int) bool {
	for q := stride; q < len(rows); q += stride {
		for c := 0; c < stride; c++ {
			v0, v := rows[c], rows[q+c]
			if math.Abs(v-v0) > constJacRelTol*math.Max(1, math.Abs(v0)) {
				return false
			}
		}
	}
	return true
}

type volScratch struct {
	metric, mass, lumped, coor []float64
	nInt                       int
	constant                   bool
}

/*
computeVolumeMetrics evaluates, per element and integration point, the
Jacobian determinant and the inverse Jacobian, then the mass matrices, the
integration point coordinates and the length scale. An element whose metric
rows agree within constJacRelTol is flagged constant Jacobian and stores a
single representative row. Results are packed into contiguous arenas owned
by the Mesh; the elements hold views.
*/
func (m *Mesh) computeVolumeMetrics() (err error) {
	dim := m.Dim
	nm := 1 + dim*dim
	scratch := make([]volScratch, len(m.VolElems))

	for e := range m.VolElems {
		ve := &m.VolElems[e]
		sg := m.Catalog.Elements[ve.StdElemGrid]
		ss := m.Catalog.Elements[ve.StdElemSol]
		X, cerr := m.nodeCoords(ve.NodeIDsGrid)
		if cerr != nil {
			return fmt.Errorf("element %d: %w", ve.GlobalID, cerr)
		}

		sc := &scratch[e]
		sc.nInt = sg.NInt
		sc.metric = make([]float64, sg.NInt*nm)
		jDet := make([]float64, sg.NInt)
		d := [3]*mat.Dense{sg.Dr, sg.Ds, sg.Dt}
		for q := 0; q < sg.NInt; q++ {
			A := forwardJacobian(dim, q, d, X)
			det := det3(A)
			if det <= 0 {
				return fmt.Errorf(
					"element %d has non positive Jacobian %g at integration point %d",
					ve.GlobalID, det, q)
			}
			jDet[q] = det
			inv := inv3(A, det)
			row := sc.metric[q*nm:]
			row[0] = det
			for a := 0; a < dim; a++ {
				for b := 0; b < dim; b++ {
					row[1+a*dim+b] = inv[a][b]
				}
			}
		}
		sc.constant = rowsNearlyEqual(sc.metric, nm)
		ve.JacIsConstant = sc.constant
		if sc.constant {
			sc.metric = sc.metric[:nm]
		}

		var vol float64
		for q := 0; q < sg.NInt; q++ {
			vol += sg.IntWeights[q] * jDet[q]
		}
		ve.LengthScale = math.Pow(vol, 1/float64(dim))

		// Mass matrix M = B' diag(w J) B over the solution basis
		wb := mat.NewDense(ss.NInt, ss.NDOFs, nil)
		for q := 0; q < ss.NInt; q++ {
			wj := ss.IntWeights[q] * jDet[q]
			for j := 0; j < ss.NDOFs; j++ {
				wb.Set(q, j, wj*ss.B.At(q, j))
			}
		}
		var mm mat.Dense
		mm.Mul(ss.B.T(), wb)
		sc.mass = make([]float64, ss.NDOFs*ss.NDOFs)
		copy(sc.mass, mm.RawMatrix().Data)
		sc.lumped = make([]float64, ss.NDOFs)
		for i := 0; i < ss.NDOFs; i++ {
			var sum float64
			for j := 0; j < ss.NDOFs; j++ {
				sum += mm.At(i, j)
			}
			sc.lumped[i] = sum
		}

		sc.coor = make([]float64, sg.NInt*dim)
		for q := 0; q < sg.NInt; q++ {
			for j := range X {
				v := sg.B.At(q, j)
				for b := 0; b < dim; b++ {
					sc.coor[q*dim+b] += v * X[j][b]
				}
			}
		}
	}

	var nMetric, nMass, nLumped, nCoor, nWall int
	for e := range scratch {
		nMetric += len(scratch[e].metric)
		nMass += len(scratch[e].mass)
		nLumped += len(scratch[e].lumped)
		nCoor += len(scratch[e].coor)
		nWall += scratch[e].nInt
	}
	m.volMetric = make([]float64, nMetric)
	m.volMass = make([]float64, nMass)
	m.volLumped = make([]float64, nLumped)
	m.volCoor = make([]float64, nCoor)
	m.volWall = make([]float64, nWall)

	var oMetric, oMass, oLumped, oCoor, oWall int
	for e := range m.VolElems {
		ve, sc := &m.VolElems[e], &scratch[e]
		ve.MetricTerms = m.volMetric[oMetric : oMetric+len(sc.metric)]
		copy(ve.MetricTerms, sc.metric)
		oMetric += len(sc.metric)
		ve.MassMatrix = m.volMass[oMass : oMass+len(sc.mass)]
		copy(ve.MassMatrix, sc.mass)
		oMass += len(sc.mass)
		ve.LumpedMassMatrix = m.volLumped[oLumped : oLumped+len(sc.lumped)]
		copy(ve.LumpedMassMatrix, sc.lumped)
		oLumped += len(sc.lumped)
		ve.CoorIntPoints = m.volCoor[oCoor : oCoor+len(sc.coor)]
		copy(ve.CoorIntPoints, sc.coor)
		oCoor += len(sc.coor)
		ve.WallDistance = m.volWall[oWall : oWall+sc.nInt]
		oWall += sc.nInt
	}
	return nil
}

// faceNormal gives the unnormalized face normal from the tangential
// coordinate derivatives: the edge perpendicular in 2D, the tangent cross
// product in 3D. Both point away from side0 because the face
// parametrization follows side0's outward traversal.
func faceNormal(dim int, tu, tv [3]float64) (n [3]float64) {
	if dim == 2 {
		return [3]float64{tu[1], -tu[0], 0}
	}
	return [3]float64{
		tu[1]*tv[2] - tu[2]*tv[1],
		tu[2]*tv[0] - tu[0]*tv[2],
		tu[0]*tv[1] - tu[1]*tv[0],
	}
}

// faceTangents evaluates the coordinate derivatives of the face
// parametrization at integration point q
func faceTangents(dim, q int, fg *standard.Face,
	XF [][3]float64) (tu, tv [3]float64) {
	for j := range XF {
		du := fg.DuFace.At(q, j)
		dv := 0.0
		if dim == 3 {
			dv = fg.DvFace.At(q, j)
		}
		for b := 0; b < dim; b++ {
			tu[b] += du * XF[j][b]
			tv[b] += dv * XF[j][b]
		}
	}
	return
}

// fillFaceNormals writes [unit normal, area Jacobian] rows for every
// integration point of a face
func (m *Mesh) fillFaceNormals(out []float64, fg *standard.Face,
	XF [][3]float64, what string) error {

	dim := m.Dim
	for q := 0; q < fg.NInt; q++ {
		tu, tv := faceTangents(dim, q, fg, XF)
		n := faceNormal(dim, tu, tv)
		jac := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if !(jac > 0) {
			return fmt.Errorf(
				"%s is degenerate at integration point %d", what, q)
		}
		row := out[q*(dim+1):]
		for b := 0; b < dim; b++ {
			row[b] = n[b] / jac
		}
		row[dim] = jac
	}
	return nil
}

// fillSideCoorDeriv writes the inverse Jacobian of one adjacent element at
// the face integration points and reports whether it is constant
func (m *Mesh) fillSideCoorDeriv(out []float64, fg *standard.Face,
	XE [][3]float64, elemID uint64) (constant bool, err error) {

	dim := m.Dim
	d := [3]*mat.Dense{fg.DrElem, fg.DsElem, fg.DtElem}
	for q := 0; q < fg.NInt; q++ {
		A := forwardJacobian(dim, q, d, XE)
		det := det3(A)
		if det <= 0 {
			return false, fmt.Errorf(
				"element %d has non positive Jacobian %g at face integration point %d",
				elemID, det, q)
		}
		inv := inv3(A, det)
		row := out[q*dim*dim:]
		for a := 0; a < dim; a++ {
			for b := 0; b < dim; b++ {
				row[a*dim+b] = inv[a][b]
			}
		}
	}
	return rowsNearlyEqual(out, dim*dim), nil
}

// fillSideSIP writes, per integration point and solution DOF, the normal
// component of the DOF's Cartesian gradient: the penalty metric of the
// symmetric interior penalty formulation
func (m *Mesh) fillSideSIP(out []float64, fs *standard.Face,
	coorDeriv, normals []float64) {

	dim := m.Dim
	d := [3]*mat.Dense{fs.DrElem, fs.DsElem, fs.DtElem}
	for q := 0; q < fs.NInt; q++ {
		inv := coorDeriv[q*dim*dim:]
		un := normals[q*(dim+1):]
		for j := 0; j < fs.NDOFsElem; j++ {
			var sip float64
			for b := 0; b < dim; b++ {
				var grad float64
				for a := 0; a < dim; a++ {
					grad += d[a].At(q, j) * inv[a*dim+b]
				}
				sip += grad * un[b]
			}
			out[q*fs.NDOFsElem+j] = sip
		}
	}
}

// fillFaceCoor writes the Cartesian coordinates of the face integration
// points
func (m *Mesh) fillFaceCoor(out []float64, fg *standard.Face, XF [][3]float64) {
	dim := m.Dim
	for q := 0; q < fg.NInt; q++ {
		for j := range XF {
			v := fg.BFace.At(q, j)
			for b := 0; b < dim; b++ {
				out[q*dim+b] += v * XF[j][b]
			}
		}
	}
}

func (m *Mesh) computeInternalFaceMetrics() (err error) {
	dim := m.Dim

	// First pass assigns the catalog entries and sizes the arena, so the
	// views handed out in the second pass stay valid
	var total int
	for i := range m.IntFaces {
		f := &m.IntFaces[i]
		e0, e1 := &m.VolElems[f.ElemID0], &m.VolElems[f.ElemID1]
		pInt := maxInt(maxInt(e0.NPolyGrid, e0.NPolySol),
			maxInt(e1.NPolyGrid, e1.NPolySol))
		if f.StdFaceGrid0, err = m.Catalog.FaceIndex(f.Topology, f.NPolyGrid,
			pInt, e0.Topology, e0.NPolyGrid, f.Orient0); err != nil {
			return err
		}
		if f.StdFaceSol0, err = m.Catalog.FaceIndex(f.Topology, f.NPolyGrid,
			pInt, e0.Topology, e0.NPolySol, f.Orient0); err != nil {
			return err
		}
		if f.StdFaceGrid1, err = m.Catalog.FaceIndex(f.Topology, f.NPolyGrid,
			pInt, e1.Topology, e1.NPolyGrid, f.Orient1); err != nil {
			return err
		}
		if f.StdFaceSol1, err = m.Catalog.FaceIndex(f.Topology, f.NPolyGrid,
			pInt, e1.Topology, e1.NPolySol, f.Orient1); err != nil {
			return err
		}
		nInt := m.Catalog.Faces[f.StdFaceGrid0].NInt
		total += nInt*(dim+1) + 2*nInt*dim*dim +
			nInt*(e0.NDOFsSol+e1.NDOFsSol) + nInt*dim + nInt
	}

	// The grouping sort needs the catalog assignments above; the arena fill
	// below is order independent
	sortMatchingFaces(m.IntFaces)
	m.faceMetric = make([]float64, total)

	off := 0
	take := func(n int) []float64 {
		s := m.faceMetric[off : off+n]
		off += n
		return s
	}
	for i := range m.IntFaces {
		f := &m.IntFaces[i]
		e0, e1 := &m.VolElems[f.ElemID0], &m.VolElems[f.ElemID1]
		fg0 := m.Catalog.Faces[f.StdFaceGrid0]
		fg1 := m.Catalog.Faces[f.StdFaceGrid1]
		fs0 := m.Catalog.Faces[f.StdFaceSol0]
		fs1 := m.Catalog.Faces[f.StdFaceSol1]
		nInt := fg0.NInt

		XF, cerr := m.nodeCoords(f.DOFsGridFaceSide0)
		if cerr != nil {
			return cerr
		}
		XE0, cerr := m.nodeCoords(f.DOFsGridElemSide0)
		if cerr != nil {
			return cerr
		}
		XE1, cerr := m.nodeCoords(f.DOFsGridElemSide1)
		if cerr != nil {
			return cerr
		}

		f.MetricNormals = take(nInt * (dim + 1))
		f.MetricCoorDerivSide0 = take(nInt * dim * dim)
		f.MetricCoorDerivSide1 = take(nInt * dim * dim)
		f.MetricSIPSide0 = take(nInt * e0.NDOFsSol)
		f.MetricSIPSide1 = take(nInt * e1.NDOFsSol)
		f.CoorIntPoints = take(nInt * dim)
		f.WallDistance = take(nInt)

		what := fmt.Sprintf("matching face between elements %d and %d",
			e0.GlobalID, e1.GlobalID)
		if err = m.fillFaceNormals(f.MetricNormals, fg0, XF, what); err != nil {
			return err
		}
		const0, cerr := m.fillSideCoorDeriv(f.MetricCoorDerivSide0, fg0,
			XE0, e0.GlobalID)
		if cerr != nil {
			return cerr
		}
		const1, cerr := m.fillSideCoorDeriv(f.MetricCoorDerivSide1, fg1,
			XE1, e1.GlobalID)
		if cerr != nil {
			return cerr
		}
		e0.JacFacesIsConstant[f.FaceIDInElem0] = const0
		e1.JacFacesIsConstant[f.FaceIDInElem1] = const1
		f.JacIsConstant = const0 && const1

		m.fillSideSIP(f.MetricSIPSide0, fs0, f.MetricCoorDerivSide0,
			f.MetricNormals)
		m.fillSideSIP(f.MetricSIPSide1, fs1, f.MetricCoorDerivSide1,
			f.MetricNormals)
		m.fillFaceCoor(f.CoorIntPoints, fg0, XF)
	}
	return nil
}

// computeBoundaryMetrics mirrors the internal face pass for the boundary
// surface elements, with the buffers of each marker flattened into arenas
// owned by the Boundary so kernels sweep a whole marker contiguously
func (m *Mesh) computeBoundaryMetrics() (err error) {
	dim := m.Dim
	for bi := range m.Boundaries {
		bd := &m.Boundaries[bi]
		var total [4]int
		for si := range bd.SurfElems {
			se := &bd.SurfElems[si]
			ve := &m.VolElems[se.VolElemID]
			pInt := maxInt(ve.NPolyGrid, ve.NPolySol)
			if se.StdFaceGrid, err = m.Catalog.FaceIndex(se.Topology,
				se.NPolyGrid, pInt, ve.Topology, ve.NPolyGrid,
				se.Orient); err != nil {
				return err
			}
			if se.StdFaceSol, err = m.Catalog.FaceIndex(se.Topology,
				se.NPolyGrid, pInt, ve.Topology, ve.NPolySol,
				se.Orient); err != nil {
				return err
			}
			nInt := m.Catalog.Faces[se.StdFaceGrid].NInt
			total[0] += nInt * (dim + 1)
			total[1] += nInt * dim * dim
			total[2] += nInt * dim
			total[3] += nInt
		}
		bd.VecNormals = make([]float64, total[0])
		bd.VecCoorDeriv = make([]float64, total[1])
		bd.VecCoorIntPoints = make([]float64, total[2])
		bd.VecWallDistance = make([]float64, total[3])

		var o [4]int
		for si := range bd.SurfElems {
			se := &bd.SurfElems[si]
			ve := &m.VolElems[se.VolElemID]
			fg := m.Catalog.Faces[se.StdFaceGrid]
			nInt := fg.NInt

			se.MetricNormals = bd.VecNormals[o[0] : o[0]+nInt*(dim+1)]
			o[0] += nInt * (dim + 1)
			se.MetricCoorDeriv = bd.VecCoorDeriv[o[1] : o[1]+nInt*dim*dim]
			o[1] += nInt * dim * dim
			se.CoorIntPoints = bd.VecCoorIntPoints[o[2] : o[2]+nInt*dim]
			o[2] += nInt * dim
			se.WallDistance = bd.VecWallDistance[o[3] : o[3]+nInt]
			o[3] += nInt

			XF, cerr := m.nodeCoords(se.DOFsGridFace)
			if cerr != nil {
				return cerr
			}
			XE, cerr := m.nodeCoords(se.DOFsGridElem)
			if cerr != nil {
				return cerr
			}
			what := fmt.Sprintf("boundary face %d on marker %s",
				se.GlobalBoundElemID, bd.MarkerTag)
			if err = m.fillFaceNormals(se.MetricNormals, fg, XF,
				what); err != nil {
				return err
			}
			constFace, cerr := m.fillSideCoorDeriv(se.MetricCoorDeriv, fg,
				XE, ve.GlobalID)
			if cerr != nil {
				return cerr
			}
			se.JacIsConstant = constFace
			ve.JacFacesIsConstant[se.FaceIDInElem] = constFace
			m.fillFaceCoor(se.CoorIntPoints, fg, XF)
			se.LengthScale = se.DetermineLengthScale(m)
		}
	}
	return nil
}
