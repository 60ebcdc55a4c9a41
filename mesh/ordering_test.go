package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/dgmesh/types"
)

func TestSide0Preference(t *testing.T) {
	owned := &VolumeElement{GlobalID: 9, ElemIsOwned: true}
	halo := &VolumeElement{GlobalID: 1, RankOriginal: 2}

	// Ownership beats the global ID
	assert.True(t, side0Before(owned, halo))
	assert.False(t, side0Before(halo, owned))

	// Both owned: lower global ID wins
	owned2 := &VolumeElement{GlobalID: 4, ElemIsOwned: true}
	assert.True(t, side0Before(owned2, owned))

	// Both halo: lower original rank, then lower global ID
	halo2 := &VolumeElement{GlobalID: 7, RankOriginal: 1}
	assert.True(t, side0Before(halo2, halo))
	halo3 := &VolumeElement{GlobalID: 3, RankOriginal: 2}
	assert.True(t, side0Before(halo, halo3))
	assert.False(t, side0Before(halo3, halo))
}

func TestSortHalfFacesPairsSharedKeys(t *testing.T) {
	elems := []VolumeElement{
		{GlobalID: 0, ElemIsOwned: true},
		{GlobalID: 1, ElemIsOwned: true},
	}
	shared := types.NewFaceKey([]uint64{1, 2, 3})
	hf := []halfFace{
		{key: types.NewFaceKey([]uint64{0, 1, 2}), elem: 0, face: 0},
		{key: shared, elem: 1, face: 3},
		{key: shared, elem: 0, face: 1},
		{key: types.NewFaceKey([]uint64{2, 3, 4}), elem: 1, face: 0},
	}
	sortHalfFaces(hf, elems)
	for i := 0; i+1 < len(hf); i++ {
		if hf[i].key.Equal(hf[i+1].key) {
			// The preferred side0 comes first in the pair
			assert.Equal(t, 0, hf[i].elem)
			assert.Equal(t, 1, hf[i+1].elem)
		}
	}
}
