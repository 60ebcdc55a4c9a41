package types

/*
FaceOrient records how the corner sequence of a face maps onto the reference
face plane of its adjacent element after canonicalization. Pos[m] is the
normalized plane position (components 0 or 1) where face corner m landed.
Swap is true when the mapping reverses the orientation of the face plane,
which happens for the combinatorially ambiguous pairs (triangular faces of a
pyramid, quadrilateral faces of a prism) and whenever the desired traversal
runs against the reference face traversal.
*/
type FaceOrient struct {
	Pos  [4][2]int8
	Swap bool
}

// Equal reports whether two orientations are identical
func (o FaceOrient) Equal(other FaceOrient) bool {
	return o == other
}
