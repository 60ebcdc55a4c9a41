package readfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgmesh/mesh"
	"github.com/notargets/dgmesh/types"
)

const twoTriSU2 = `%
% Unit square, two triangles
%
NDIME= 2
NELEM= 2
5 0 1 2
5 1 3 2
NPOIN= 4
0.0 0.0
1.0 0.0
0.0 1.0
1.0 1.0
NMARK= 1
MARKER_TAG= outer
MARKER_ELEMS= 4
3 0 1
3 1 3
3 3 2
3 2 0
`

func TestReadSU2(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "square.su2")
	require.NoError(t, os.WriteFile(fname, []byte(twoTriSU2), 0644))

	raw := ReadSU2(fname, 2, false)
	require.Equal(t, 2, raw.Dim)
	require.Len(t, raw.VolElems, 2)
	require.Len(t, raw.Points, 4)
	require.Len(t, raw.Boundaries, 1)

	assert.Equal(t, types.Triangle, raw.VolElems[0].Topology)
	assert.Equal(t, []uint64{0, 1, 2}, raw.VolElems[0].NodeIDsGrid)
	assert.Equal(t, 2, raw.VolElems[0].NPolySol)
	assert.Equal(t, [3]float64{1, 1, 0}, raw.Points[3].Coor)
	assert.Equal(t, "outer", raw.Boundaries[0].MarkerTag)
	assert.Len(t, raw.Boundaries[0].Elems, 4)

	// The raw form must build end to end
	m, err := mesh.NewMesh(raw, mesh.Serial, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NVolElemOwned)
	assert.Len(t, m.IntFaces, 1)
}
