package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidence(t *testing.T) {
	inc := NewIncidence(4, 3)
	inc.Add(0, 0)
	inc.Add(0, 2)
	inc.Add(0, 2) // duplicate insertion collapses
	inc.Add(2, 1)
	inc.Freeze()

	row := inc.Row(0)
	require.Len(t, row, 2)
	assert.ElementsMatch(t, []int{0, 2}, row)
	assert.Equal(t, []int{1}, inc.Row(2))
	assert.Empty(t, inc.Row(1))
	assert.Empty(t, inc.Row(3))
}
