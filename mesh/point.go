package mesh

import (
	"fmt"
	"math"
	"sort"
)

// PointFEM is one grid node. PeriodIndexToDonor is negative for a normal
// point and holds the periodic transform index for a periodic image point.
type PointFEM struct {
	ID                 uint64
	PeriodIndexToDonor int
	Coor               [3]float64
}

// quantize maps a coordinate onto the integer grid of the matching
// tolerance. Two coordinates compare equal iff they quantize to the same
// cell, a per axis test, not a distance test.
func quantize(c, tol float64) int64 {
	return int64(math.Floor(c/tol + 0.5))
}

// pointLess is the total order used by the registry: periodic transform
// index first, then quantized coordinates axis by axis
func pointLess(a, b *PointFEM, tol float64) bool {
	if a.PeriodIndexToDonor != b.PeriodIndexToDonor {
		return a.PeriodIndexToDonor < b.PeriodIndexToDonor
	}
	for d := 0; d < 3; d++ {
		qa, qb := quantize(a.Coor[d], tol), quantize(b.Coor[d], tol)
		if qa != qb {
			return qa < qb
		}
	}
	return false
}

func pointEqual(a, b *PointFEM, tol float64) bool {
	return !pointLess(a, b, tol) && !pointLess(b, a, tol)
}

/*
BuildPointRegistry sorts and deduplicates the raw node list. Copies of the
same node received from several sources carry the same global ID and merge
into one entry. Two distinct IDs landing in the same tolerance cell is a
mesh consistency error, not a merge: merging them silently would corrupt
connectivity.
*/
func BuildPointRegistry(points []PointFEM, tol float64) (reg []PointFEM, err error) {
	if tol <= 0 {
		return nil, fmt.Errorf("point matching tolerance %g must be positive", tol)
	}
	reg = make([]PointFEM, len(points))
	copy(reg, points)
	sort.Slice(reg, func(i, j int) bool {
		return pointLess(&reg[i], &reg[j], tol)
	})
	out := reg[:0]
	for i := range reg {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if pointEqual(last, &reg[i], tol) {
				if last.ID != reg[i].ID {
					return nil, fmt.Errorf(
						"points %d and %d coincide within tolerance %g at (%g,%g,%g)",
						last.ID, reg[i].ID, tol,
						reg[i].Coor[0], reg[i].Coor[1], reg[i].Coor[2])
				}
				continue
			}
		}
		out = append(out, reg[i])
	}
	return out, nil
}

// FindPoint locates a point by coordinates and periodic index using the
// registry sort order. Returns -1 when no point matches within tolerance.
func FindPoint(reg []PointFEM, coor [3]float64, periodIndex int,
	tol float64) int {

	probe := PointFEM{PeriodIndexToDonor: periodIndex, Coor: coor}
	i := sort.Search(len(reg), func(i int) bool {
		return !pointLess(&reg[i], &probe, tol)
	})
	if i < len(reg) && pointEqual(&reg[i], &probe, tol) {
		return i
	}
	return -1
}
