package mesh

import (
	"fmt"
	"sort"
)

// ParallelContext carries the rank state explicitly so the core runs single
// or multi rank without a distributed runtime. DOFOffsetRank is the first
// global solution DOF of this rank, established by the partitioner.
type ParallelContext struct {
	Rank          int
	NRanks        int
	DOFOffsetRank uint64
}

// Serial is the context of a single rank mesh
var Serial = ParallelContext{Rank: 0, NRanks: 1}

/*
HaloExchanger is the external transport collaborator of the halo
bookkeeping: given the global IDs of the elements this rank needs from rank
r, it returns the global IDs of the owned elements rank r needs back. The
core defines the exchanged data, the collaborator moves it.
*/
type HaloExchanger interface {
	Trade(r int, needed []uint64) (requested []uint64, err error)
}

/*
SetSendReceive builds the per rank communication tables. Halo elements are
grouped by their rank of origin; per partner rank the receive list holds
their local indices in ascending global ID order, which is the order the
sender produces, and the send list holds the owned elements the partner
requested. Self communication is always present, trivially empty on a mesh
without same rank periodicity, so downstream code never special cases it.
*/
func (m *Mesh) SetSendReceive(exch HaloExchanger) (err error) {
	recvFrom := make(map[int][]int)
	for e := m.NVolElemOwned; e < len(m.VolElems); e++ {
		r := m.VolElems[e].RankOriginal
		recvFrom[r] = append(recvFrom[r], e)
	}

	ranks := []int{m.Ctx.Rank}
	for r := range recvFrom {
		if r != m.Ctx.Rank {
			ranks = append(ranks, r)
		}
	}
	sort.Ints(ranks[1:])

	ownedInd := make(map[uint64]int, m.NVolElemOwned)
	for e := 0; e < m.NVolElemOwned; e++ {
		ownedInd[m.VolElems[e].GlobalID] = e
	}

	m.RanksComm = ranks
	m.EntitiesSend = make([][]int, len(ranks))
	m.EntitiesReceive = make([][]int, len(ranks))
	for i, r := range ranks {
		recv := recvFrom[r]
		m.EntitiesReceive[i] = recv
		if len(recv) == 0 && r == m.Ctx.Rank {
			m.EntitiesSend[i] = []int{}
			continue
		}
		if exch == nil {
			return fmt.Errorf(
				"%d halo elements from rank %d but no halo exchanger",
				len(recv), r)
		}
		needed := make([]uint64, len(recv))
		for j, e := range recv {
			needed[j] = m.VolElems[e].GlobalID
		}
		requested, terr := exch.Trade(r, needed)
		if terr != nil {
			return fmt.Errorf("halo exchange with rank %d: %w", r, terr)
		}
		send := make([]int, len(requested))
		for j, id := range requested {
			e, ok := ownedInd[id]
			if !ok {
				return fmt.Errorf(
					"rank %d requested element %d, not owned by rank %d",
					r, id, m.Ctx.Rank)
			}
			send[j] = e
		}
		m.EntitiesSend[i] = send
	}

	m.buildRotationalPeriodicLists()
	return nil
}

// buildRotationalPeriodicLists records, per rotationally periodic marker,
// the halo elements whose donor transform is that marker's, so downstream
// code applies the rotation matrix without re-deriving membership
func (m *Mesh) buildRotationalPeriodicLists() {
	m.RotPerMarkers = m.RotPerMarkers[:0]
	m.RotPerHalos = m.RotPerHalos[:0]
	for bi := range m.Boundaries {
		bd := &m.Boundaries[bi]
		if !bd.Periodic || !bd.RotationalPeriod {
			continue
		}
		var halos []int
		for e := m.NVolElemOwned; e < len(m.VolElems); e++ {
			if m.VolElems[e].PeriodIndexToDonor == bd.PeriodIndex {
				halos = append(halos, e)
			}
		}
		m.RotPerMarkers = append(m.RotPerMarkers, bi)
		m.RotPerHalos = append(m.RotPerHalos, halos)
	}
}
