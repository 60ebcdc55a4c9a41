package standard

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgmesh/types"
)

// Element holds the reference data of a volume element signature: the
// integration rule and the basis values/derivatives at the integration
// points. Deduplicated in the Catalog by (topology, NPoly, NPolyInt).
type Element struct {
	Topology types.ElemType
	NPoly    int // polynomial degree of the nodal basis
	NPolyInt int // degree the integration rule is sized for
	NDOFs    int
	NInt     int

	IntPoints  [][3]float64
	IntWeights []float64

	// Basis values and parametric derivatives at the integration points,
	// NInt x NDOFs
	B, Dr, Ds, Dt *mat.Dense
}

// NewElement builds the reference element for topology t, nodal degree p,
// with an integration rule sized for degree pInt (normally max of the grid
// and solution degrees so grid and solution share integration points).
func NewElement(t types.ElemType, p, pInt int) (se *Element, err error) {
	rule, err := NewIntegrationRule(t, pInt)
	if err != nil {
		return nil, err
	}
	b, dr, ds, dt, err := BasisAtPoints(t, p, rule.Points)
	if err != nil {
		return nil, err
	}
	se = &Element{
		Topology:   t,
		NPoly:      p,
		NPolyInt:   pInt,
		NDOFs:      t.NDOFs(p),
		NInt:       len(rule.Points),
		IntPoints:  rule.Points,
		IntWeights: rule.Weights,
		B:          b, Dr: dr, Ds: ds, Dt: dt,
	}
	return
}

// FaceIntPointsInElement maps the face integration points into the
// parametric space of the adjacent element, using the orientation recorded
// during canonicalization. The reference face planes are flat in parametric
// space, so the map is affine and exact.
func FaceIntPointsInElement(face types.ElemType, pts [][3]float64,
	elem types.ElemType, orient types.FaceOrient) (mapped [][3]float64, err error) {

	plane, err := types.FacePlaneCorners(face, elem)
	if err != nil {
		return nil, err
	}
	nc := face.NCorners()
	// Element parametric positions of the face corners, in face corner order
	var corner [4][3]float64
	for m := 0; m < nc; m++ {
		c, ok := plane[orient.Pos[m]]
		if !ok {
			return nil, fmt.Errorf(
				"orientation position %v is not a corner of the %s/%s face plane",
				orient.Pos[m], elem, face)
		}
		u := types.CornerCoords(elem, c, 1)
		corner[m] = [3]float64{float64(u[0]), float64(u[1]), float64(u[2])}
	}

	mapped = make([][3]float64, len(pts))
	for q, pt := range pts {
		u, v := pt[0], pt[1]
		var sh [4]float64
		switch face {
		case types.Line:
			sh = [4]float64{1 - u, u, 0, 0}
		case types.Triangle:
			sh = [4]float64{1 - u - v, u, v, 0}
		case types.Quad:
			sh = [4]float64{(1 - u) * (1 - v), u * (1 - v), u * v, (1 - u) * v}
		default:
			return nil, fmt.Errorf("%s is not a face topology", face)
		}
		var x [3]float64
		for m := 0; m < nc; m++ {
			for d := 0; d < 3; d++ {
				x[d] += sh[m] * corner[m][d]
			}
		}
		mapped[q] = x
	}
	return
}

// Face holds the reference data of one side of a boundary or matching face:
// the face quadrature, the face basis at the face integration points, and
// the adjacent element's basis/derivatives at those same points mapped into
// the element parametric space.
type Face struct {
	Topology  types.ElemType // face topology
	NPolyFace int
	NPolyInt  int
	NDOFsFace int
	NInt      int

	IntPoints  [][3]float64 // face reference coordinates
	IntWeights []float64

	BFace, DuFace, DvFace *mat.Dense // face basis, NInt x NDOFsFace

	// Adjacent element view
	ElemTopology types.ElemType
	NPolyElem    int
	NDOFsElem    int
	Orient       types.FaceOrient

	BElem, DrElem, DsElem, DtElem *mat.Dense // NInt x NDOFsElem
}

// NewFace builds the reference face for face degree pFace against an
// adjacent element of degree pElem, with the integration rule sized for
// degree pInt.
func NewFace(face types.ElemType, pFace, pInt int, elem types.ElemType,
	pElem int, orient types.FaceOrient) (sf *Face, err error) {

	rule, err := NewIntegrationRule(face, pInt)
	if err != nil {
		return nil, err
	}
	bf, du, dv, _, err := BasisAtPoints(face, pFace, rule.Points)
	if err != nil {
		return nil, err
	}
	mapped, err := FaceIntPointsInElement(face, rule.Points, elem, orient)
	if err != nil {
		return nil, err
	}
	be, dr, ds, dt, err := BasisAtPoints(elem, pElem, mapped)
	if err != nil {
		return nil, err
	}
	sf = &Face{
		Topology:   face,
		NPolyFace:  pFace,
		NPolyInt:   pInt,
		NDOFsFace:  face.NDOFs(pFace),
		NInt:       len(rule.Points),
		IntPoints:  rule.Points,
		IntWeights: rule.Weights,
		BFace:      bf, DuFace: du, DvFace: dv,
		ElemTopology: elem,
		NPolyElem:    pElem,
		NDOFsElem:    elem.NDOFs(pElem),
		Orient:       orient,
		BElem:        be, DrElem: dr, DsElem: ds, DtElem: dt,
	}
	return
}

// Catalog deduplicates standard elements and faces by signature. Lookup is a
// linear scan; the number of distinct signatures in a mesh is tiny.
type Catalog struct {
	Elements []*Element
	Faces    []*Face
}

// ElementIndex returns the index of the standard element with the given
// signature, creating it on first use.
func (c *Catalog) ElementIndex(t types.ElemType, p, pInt int) (ind int, err error) {
	for i, se := range c.Elements {
		if se.Topology == t && se.NPoly == p && se.NPolyInt == pInt {
			return i, nil
		}
	}
	se, err := NewElement(t, p, pInt)
	if err != nil {
		return -1, err
	}
	c.Elements = append(c.Elements, se)
	return len(c.Elements) - 1, nil
}

// FaceIndex returns the index of the standard face with the given signature,
// creating it on first use.
func (c *Catalog) FaceIndex(face types.ElemType, pFace, pInt int,
	elem types.ElemType, pElem int, orient types.FaceOrient) (ind int, err error) {
	for i, sf := range c.Faces {
		if sf.Topology == face && sf.NPolyFace == pFace && sf.NPolyInt == pInt &&
			sf.ElemTopology == elem && sf.NPolyElem == pElem &&
			sf.Orient.Equal(orient) {
			return i, nil
		}
	}
	sf, err := NewFace(face, pFace, pInt, elem, pElem, orient)
	if err != nil {
		return -1, err
	}
	c.Faces = append(c.Faces, sf)
	return len(c.Faces) - 1, nil
}
