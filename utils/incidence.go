package utils

import (
	"github.com/james-bowman/sparse"
)

/*
Incidence is a boolean sparse relation built row by row, used for the point
to element incidence of a mesh partition. Construction goes through a DOK so
repeated insertions collapse, then Freeze converts to CSR for fast row
queries.
*/
type Incidence struct {
	dok *sparse.DOK
	csr *sparse.CSR
}

func NewIncidence(nRows, nCols int) *Incidence {
	return &Incidence{dok: sparse.NewDOK(nRows, nCols)}
}

func (inc *Incidence) Add(row, col int) {
	if inc.csr != nil {
		panic("incidence is frozen")
	}
	inc.dok.Set(row, col, 1)
}

// Freeze converts to the compressed form. No insertions afterwards.
func (inc *Incidence) Freeze() {
	if inc.csr == nil {
		inc.csr = inc.dok.ToCSR()
		inc.dok = nil
	}
}

// Row returns the column indices incident to row i. Valid only after Freeze;
// the returned slice aliases the compressed storage.
func (inc *Incidence) Row(i int) []int {
	if inc.csr == nil {
		panic("incidence queried before Freeze")
	}
	raw := inc.csr.RawMatrix()
	return raw.Ind[raw.Indptr[i]:raw.Indptr[i+1]]
}
