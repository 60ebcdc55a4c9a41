package types

import "sort"

/*
FaceKey stores the corner point IDs of a face in ascending order so that the
two half faces contributed by neighboring elements compare equal. Unused
entries are -1, which sorts before any valid ID, so faces with fewer corners
compare consistently against faces with more.
*/
type FaceKey [4]int64

// NewFaceKey builds the key from the corner point global IDs of a face
func NewFaceKey(corners []uint64) (fk FaceKey) {
	if len(corners) > 4 {
		panic("a face has at most 4 corner points")
	}
	for i := range fk {
		fk[i] = -1
	}
	for i, c := range corners {
		fk[i] = int64(c)
	}
	sort.Slice(fk[:], func(i, j int) bool { return fk[i] < fk[j] })
	return
}

// Less provides the total order used for the sort based face pairing
func (fk FaceKey) Less(other FaceKey) bool {
	for i := range fk {
		if fk[i] != other[i] {
			return fk[i] < other[i]
		}
	}
	return false
}

func (fk FaceKey) Equal(other FaceKey) bool {
	return fk == other
}

// NCorners returns the number of valid corner IDs in the key
func (fk FaceKey) NCorners() (n int) {
	for _, v := range fk {
		if v >= 0 {
			n++
		}
	}
	return
}
