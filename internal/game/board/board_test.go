package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoard_Sanitize(t *testing.T) {
	t.Parallel()

	in := Board{
		Grid:     []int{1, 0, 12, -3, 9, 4},
		Specials: []int{0, 5, 5, 9, -1},
		Bonuses:  []int{2, 3},
		Frozen:   []int{4, 100},
	}

	out := in.Sanitize(5)

	assert.Equal(t, []int{1, 0, 0, 0, 9}, out.Grid)
	assert.Equal(t, []int{0}, out.Specials)
	assert.Equal(t, []int{2, 3}, out.Bonuses)
	assert.Equal(t, []int{4}, out.Frozen)
	assert.Len(t, in.Grid, 6, "input must not be modified")
}

func TestBoard_Clone(t *testing.T) {
	t.Parallel()

	b := Board{Grid: []int{1, 2}, Specials: []int{0}, Bonuses: []int{1}, Frozen: []int{}}
	c := b.Clone()
	c.Grid[0] = 9
	c.Specials[0] = 1

	assert.Equal(t, 1, b.Grid[0])
	assert.Equal(t, 0, b.Specials[0])
}
