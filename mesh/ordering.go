package mesh

import (
	"sort"

	"github.com/notargets/dgmesh/types"
)

// halfFace is one face of one volume element before pairing
type halfFace struct {
	key  types.FaceKey
	elem int // local volume element index
	face int // face number within the element
}

// sortHalfFaces orders half faces so the two halves of a shared face become
// adjacent. Key first; within a key the preferred side0 comes first: an
// owned element beats a halo element, then the lower global element ID wins,
// and between two halo halves the lower original rank wins.
func sortHalfFaces(hf []halfFace, elems []VolumeElement) {
	sort.Slice(hf, func(i, j int) bool {
		if !hf[i].key.Equal(hf[j].key) {
			return hf[i].key.Less(hf[j].key)
		}
		return side0Before(&elems[hf[i].elem], &elems[hf[j].elem])
	})
}

// side0Before decides which of two elements sharing a face becomes side0
func side0Before(a, b *VolumeElement) bool {
	if a.ElemIsOwned != b.ElemIsOwned {
		return a.ElemIsOwned
	}
	if !a.ElemIsOwned && a.RankOriginal != b.RankOriginal {
		return a.RankOriginal < b.RankOriginal
	}
	return a.GlobalID < b.GlobalID
}

// sortMatchingFaces groups the internal faces by their standard face
// signatures so the solver sweeps faces of one signature contiguously
func sortMatchingFaces(faces []InternalFace) {
	sort.Slice(faces, func(i, j int) bool {
		a, b := &faces[i], &faces[j]
		if a.StdFaceSol0 != b.StdFaceSol0 {
			return a.StdFaceSol0 < b.StdFaceSol0
		}
		if a.StdFaceSol1 != b.StdFaceSol1 {
			return a.StdFaceSol1 < b.StdFaceSol1
		}
		if a.StdFaceGrid0 != b.StdFaceGrid0 {
			return a.StdFaceGrid0 < b.StdFaceGrid0
		}
		if a.StdFaceGrid1 != b.StdFaceGrid1 {
			return a.StdFaceGrid1 < b.StdFaceGrid1
		}
		if a.ElemID0 != b.ElemID0 {
			return a.ElemID0 < b.ElemID0
		}
		return a.ElemID1 < b.ElemID1
	})
}
