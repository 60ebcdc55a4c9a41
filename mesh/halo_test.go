package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgmesh/types"
)

// fakeExchanger answers the symmetric request with a canned element list
type fakeExchanger struct {
	sendBack map[int][]uint64
	asked    map[int][]uint64
}

func (f *fakeExchanger) Trade(r int, needed []uint64) ([]uint64, error) {
	if f.asked == nil {
		f.asked = make(map[int][]uint64)
	}
	f.asked[r] = needed
	return f.sendBack[r], nil
}

// Rank 0 of a two rank partition of the two tet mesh: element 1 is a halo
// copy owned by rank 1, and the faces of element 0 not shared with it sit
// on the partition boundary
func partitionedTetMesh() *RawMesh {
	raw := twoTetMesh()
	raw.VolElems[1].ElemIsOwned = false
	raw.VolElems[1].RankOriginal = 1
	// Markers only cover the owned element's exterior; the halo's exterior
	// faces are the truncation of the halo layer
	raw.Boundaries[0].Elems = raw.Boundaries[0].Elems[:3]
	return raw
}

func TestSendReceiveTables(t *testing.T) {
	exch := &fakeExchanger{sendBack: map[int][]uint64{1: {0}}}
	ctx := ParallelContext{Rank: 0, NRanks: 2}
	m, err := NewMesh(partitionedTetMesh(), ctx, exch)
	require.NoError(t, err)

	require.Equal(t, []int{0, 1}, m.RanksComm)
	// Self communication first, trivially empty
	assert.Empty(t, m.EntitiesSend[0])
	assert.Empty(t, m.EntitiesReceive[0])

	// The halo element is received from rank 1, element 0 goes back
	require.Len(t, m.EntitiesReceive[1], 1)
	halo := m.EntitiesReceive[1][0]
	assert.Equal(t, uint64(1), m.VolElems[halo].GlobalID)
	assert.False(t, m.VolElems[halo].ElemIsOwned)
	assert.Equal(t, []int{0}, m.EntitiesSend[1])
	assert.Equal(t, []uint64{1}, exch.asked[1])

	// One matching face across the partition boundary, owned side first
	require.Len(t, m.IntFaces, 1)
	assert.True(t, m.VolElems[m.IntFaces[0].ElemID0].ElemIsOwned)
	assert.False(t, m.VolElems[m.IntFaces[0].ElemID1].ElemIsOwned)
}

func TestHaloWithoutExchangerIsFatal(t *testing.T) {
	ctx := ParallelContext{Rank: 0, NRanks: 2}
	_, err := NewMesh(partitionedTetMesh(), ctx, nil)
	require.Error(t, err)
}

func TestRotationalPeriodicHaloLists(t *testing.T) {
	raw := partitionedTetMesh()
	// The halo element is the rotational periodic image under transform 3
	raw.VolElems[1].PeriodIndexToDonor = 3
	raw.Boundaries = append(raw.Boundaries, RawBoundary{
		MarkerTag:        "per_rot",
		Periodic:         true,
		RotationalPeriod: true,
		PeriodIndex:      3,
	})
	exch := &fakeExchanger{sendBack: map[int][]uint64{1: {0}}}
	ctx := ParallelContext{Rank: 0, NRanks: 2}
	m, err := NewMesh(raw, ctx, exch)
	require.NoError(t, err)

	require.Len(t, m.RotPerMarkers, 1)
	assert.Equal(t, "per_rot", m.Boundaries[m.RotPerMarkers[0]].MarkerTag)
	require.Len(t, m.RotPerHalos, 1)
	require.Len(t, m.RotPerHalos[0], 1)
	halo := m.RotPerHalos[0][0]
	assert.Equal(t, uint64(1), m.VolElems[halo].GlobalID)
}

func TestSynthesizedSendReceiveBoundary(t *testing.T) {
	// Drop the halo element entirely: the owned element's shared face has
	// no partner and no marker, so it lands on the synthesized boundary
	raw := twoTetMesh()
	raw.VolElems = raw.VolElems[:1]
	raw.Boundaries[0].Elems = raw.Boundaries[0].Elems[:3]
	ctx := ParallelContext{Rank: 0, NRanks: 2}
	m, err := NewMesh(raw, ctx, nil)
	require.NoError(t, err)

	require.Len(t, m.Boundaries, 2)
	sr := &m.Boundaries[1]
	assert.Equal(t, SendReceiveTag, sr.MarkerTag)
	require.Len(t, sr.SurfElems, 1)
	assert.Equal(t, types.Triangle, sr.SurfElems[0].Topology)
	assert.Equal(t, uint64(0),
		m.VolElems[sr.SurfElems[0].VolElemID].GlobalID)
}
