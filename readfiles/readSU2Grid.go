package readfiles

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/dgmesh/mesh"
	"github.com/notargets/dgmesh/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
	ELType_Tetrahedral   SU2ElementType = 10
	ELType_Hexahedral    SU2ElementType = 12
	ELType_Prism         SU2ElementType = 13
	ELType_Pyramid       SU2ElementType = 14
)

func (t SU2ElementType) ElemType() types.ElemType {
	switch t {
	case ELType_LINE:
		return types.Line
	case ELType_Triangle:
		return types.Triangle
	case ELType_Quadrilateral:
		return types.Quad
	case ELType_Tetrahedral:
		return types.Tet
	case ELType_Hexahedral:
		return types.Hex
	case ELType_Prism:
		return types.Prism
	case ELType_Pyramid:
		return types.Pyramid
	}
	panic(fmt.Errorf("unsupported SU2 element type %d", t))
}

func getLine(reader *bufio.Reader) (line string) {
	var err error
	if line, err = reader.ReadString('\n'); err != nil && len(line) == 0 {
		panic(err)
	}
	return strings.TrimSpace(line)
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = getLine(reader)
		if len(line) == 0 || strings.Index(line, "%") == 0 {
			continue
		}
		return
	}
}

func getToken(reader *bufio.Reader) (token string) {
	line := getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		panic(fmt.Errorf("badly formed input line [%s], should have an =", line))
	}
	return strings.TrimSpace(line[ind+1:])
}

func readLabel(reader *bufio.Reader) (label string) {
	return getToken(reader)
}

func readNumber(reader *bufio.Reader) (num int) {
	var err error
	token := getToken(reader)
	if num, err = strconv.Atoi(token); err != nil {
		panic(fmt.Errorf("unable to read number from token: [%s]", token))
	}
	return
}

func readElementLine(line string) (et types.ElemType, nodes []uint64) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		panic(fmt.Errorf("badly formed element line [%s]", line))
	}
	nType, err := strconv.Atoi(fields[0])
	if err != nil {
		panic(fmt.Errorf("badly formed element line [%s]", line))
	}
	et = SU2ElementType(nType).ElemType()
	nc := et.NCorners()
	if len(fields) < 1+nc {
		panic(fmt.Errorf("element line [%s] needs %d vertices", line, nc))
	}
	nodes = make([]uint64, nc)
	for i := 0; i < nc; i++ {
		v, err := strconv.ParseUint(fields[1+i], 10, 64)
		if err != nil {
			panic(fmt.Errorf("badly formed element line [%s]", line))
		}
		nodes[i] = v
	}
	// The file stores corners in VTK order, connectivity is lattice order
	nodes = types.FromVTKOrder(et, nodes)
	return
}

func readElements(reader *bufio.Reader, dim, npolySol int) (elems []mesh.RawVolumeElement) {
	K := readNumber(reader)
	elems = make([]mesh.RawVolumeElement, K)
	for k := 0; k < K; k++ {
		et, nodes := readElementLine(getLineNoComments(reader))
		if et.Dim() != dim {
			panic(fmt.Errorf("element %d: %s element in a %dD mesh", k, et, dim))
		}
		elems[k] = mesh.RawVolumeElement{
			Topology:           et,
			NPolyGrid:          1,
			NPolySol:           npolySol,
			GlobalID:           uint64(k),
			NodeIDsGrid:        nodes,
			ElemIsOwned:        true,
			PeriodIndexToDonor: -1,
		}
	}
	return
}

func readVertices(reader *bufio.Reader, dim int) (points []mesh.PointFEM) {
	Nv := readNumber(reader)
	points = make([]mesh.PointFEM, Nv)
	for i := 0; i < Nv; i++ {
		fields := strings.Fields(getLineNoComments(reader))
		if len(fields) < dim {
			panic(fmt.Errorf("unable to read %dD coordinates from [%s]",
				dim, strings.Join(fields, " ")))
		}
		p := mesh.PointFEM{ID: uint64(i), PeriodIndexToDonor: -1}
		for d := 0; d < dim; d++ {
			x, err := strconv.ParseFloat(fields[d], 64)
			if err != nil {
				panic(fmt.Errorf("unable to read coordinate [%s]", fields[d]))
			}
			p.Coor[d] = x
		}
		points[i] = p
	}
	return
}

func readBCs(reader *bufio.Reader, dim int) (bcs []mesh.RawBoundary) {
	NBCs := readNumber(reader)
	bcs = make([]mesh.RawBoundary, 0, NBCs)
	for n := 0; n < NBCs; n++ {
		bd := mesh.RawBoundary{MarkerTag: readLabel(reader), PeriodIndex: -1}
		nElems := readNumber(reader)
		for i := 0; i < nElems; i++ {
			et, nodes := readElementLine(getLineNoComments(reader))
			if et.Dim() != dim-1 {
				panic(fmt.Errorf(
					"marker %s: %s element on a %dD mesh boundary",
					bd.MarkerTag, et, dim))
			}
			bd.Elems = append(bd.Elems, mesh.RawSurfaceElement{
				Topology:          et,
				NPolyGrid:         1,
				GlobalBoundElemID: uint64(i),
				NodeIDsGrid:       nodes,
			})
		}
		bcs = append(bcs, bd)
	}
	return
}

// ReadSU2 reads an ASCII .su2 mesh into the raw form the mesh core
// consumes. Linear elements only; npolySol sets the solution degree of
// every element.
func ReadSU2(filename string, npolySol int, verbose bool) (raw *mesh.RawMesh) {
	file, err := os.Open(filename)
	if err != nil {
		panic(fmt.Errorf("unable to open file %s\n %s", filename, err))
	}
	defer file.Close()
	reader := bufio.NewReader(file)

	dim := readNumber(reader)
	if verbose {
		fmt.Printf("Reading %dD SU2 mesh from %s...\n", dim, filename)
	}
	raw = &mesh.RawMesh{Dim: dim}
	raw.VolElems = readElements(reader, dim, npolySol)
	raw.Points = readVertices(reader, dim)
	raw.Boundaries = readBCs(reader, dim)
	if verbose {
		fmt.Printf("Read %d elements, %d points, %d markers\n",
			len(raw.VolElems), len(raw.Points), len(raw.Boundaries))
	}
	return
}
